package mibc

import (
	"bufio"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/golangsnmp/mibc/internal/types"
)

// PathEnvVar names a colon separated list of MIB directories searched
// before any toolkit's configured directories.
const PathEnvVar = "MIBC_PATH"

type pathOp int

const (
	pathReplace pathOp = iota
	pathAppend
	pathPrepend
)

// pathEdit is one change to a search path: a config directive or an
// environment override.
type pathEdit struct {
	op   pathOp
	dirs []string
}

func (e pathEdit) apply(current []string) []string {
	switch e.op {
	case pathAppend:
		return append(slices.Clip(current), e.dirs...)
	case pathPrepend:
		return append(slices.Clone(e.dirs), current...)
	default:
		return e.dirs
	}
}

// toolkit describes where one SNMP toolkit looks for MIB files and how
// its configuration edits that list.
type toolkit struct {
	name     string
	env      string
	defaults func(home string) []string
	configs  func(home string) []string
	// directive parses one config file line.
	directive func(line string) (pathEdit, bool)
	// override parses the environment variable.
	override func(value string) pathEdit
}

var toolkits = []toolkit{
	{
		name: "net-snmp",
		env:  "MIBDIRS",
		defaults: func(home string) []string {
			var dirs []string
			if home != "" {
				dirs = append(dirs, filepath.Join(home, ".snmp", "mibs"))
			}
			return append(dirs,
				"/usr/share/snmp/mibs",
				"/usr/share/snmp/mibs/iana",
				"/usr/share/snmp/mibs/ietf",
				"/usr/local/share/snmp/mibs",
			)
		},
		configs: func(home string) []string {
			files := []string{"/etc/snmp/snmp.conf"}
			if home != "" {
				files = append(files, filepath.Join(home, ".snmp", "snmp.conf"))
			}
			return files
		},
		directive: netsnmpDirective,
		override:  signedEdit,
	},
	{
		name: "libsmi",
		env:  "SMIPATH",
		defaults: func(string) []string {
			var dirs []string
			for _, prefix := range []string{"/usr/share/mibs", "/usr/local/share/mibs"} {
				for _, sub := range []string{"ietf", "iana", "irtf", "site"} {
					dirs = append(dirs, prefix+"/"+sub)
				}
			}
			return dirs
		},
		configs: func(home string) []string {
			files := []string{"/etc/smi.conf"}
			if home != "" {
				files = append(files, filepath.Join(home, ".smirc"))
			}
			return files
		},
		directive: libsmiDirective,
		override:  colonEdit,
	},
}

// netsnmpDirective handles "mibdirs [+-]a:b" and "[+-]mibdirs a:b".
func netsnmpDirective(line string) (pathEdit, bool) {
	fields := configFields(line)
	if len(fields) < 2 {
		return pathEdit{}, false
	}
	switch fields[0] {
	case "mibdirs":
		return signedEdit(fields[1]), true
	case "+mibdirs":
		return pathEdit{pathAppend, splitPaths(fields[1])}, true
	case "-mibdirs":
		return pathEdit{pathPrepend, splitPaths(fields[1])}, true
	}
	return pathEdit{}, false
}

// libsmiDirective handles "path value". Lines scoped to one libsmi tool
// ("smilint: path ...") do not apply.
func libsmiDirective(line string) (pathEdit, bool) {
	fields := configFields(line)
	if len(fields) < 2 || fields[0] != "path" {
		return pathEdit{}, false
	}
	return colonEdit(fields[1]), true
}

func configFields(line string) []string {
	line = strings.TrimSpace(line)
	if line == "" || line[0] == '#' {
		return nil
	}
	return strings.Fields(line)
}

// signedEdit reads a leading "+" as append and "-" as prepend.
func signedEdit(value string) pathEdit {
	switch {
	case strings.HasPrefix(value, "+"):
		return pathEdit{pathAppend, splitPaths(value[1:])}
	case strings.HasPrefix(value, "-"):
		return pathEdit{pathPrepend, splitPaths(value[1:])}
	}
	return pathEdit{pathReplace, splitPaths(value)}
}

// colonEdit reads a leading colon as append and a trailing one as
// prepend.
func colonEdit(value string) pathEdit {
	switch {
	case strings.HasPrefix(value, ":"):
		return pathEdit{pathAppend, splitPaths(value[1:])}
	case strings.HasSuffix(value, ":"):
		return pathEdit{pathPrepend, splitPaths(strings.TrimSuffix(value, ":"))}
	}
	return pathEdit{pathReplace, splitPaths(value)}
}

func splitPaths(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ":") {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// host is the slice of the operating system that path discovery reads.
type host struct {
	getenv func(string) string
	home   string
	open   func(string) (io.ReadCloser, error)
	isDir  func(string) bool
	types.Logger
}

func osHost(logger types.Logger) host {
	home, _ := os.UserHomeDir()
	return host{
		getenv: os.Getenv,
		home:   home,
		open:   func(p string) (io.ReadCloser, error) { return os.Open(p) },
		isDir: func(p string) bool {
			info, err := os.Stat(p)
			return err == nil && info.IsDir()
		},
		Logger: logger,
	}
}

// discover returns MIBC_PATH entries followed by each toolkit's
// directories, deduplicated and limited to directories that exist.
func (h host) discover() []string {
	all := splitPaths(h.getenv(PathEnvVar))
	for _, tk := range toolkits {
		all = append(all, h.toolkitPaths(tk)...)
	}
	seen := make(map[string]bool, len(all))
	var out []string
	for _, p := range all {
		if seen[p] {
			continue
		}
		seen[p] = true
		if h.isDir(p) {
			out = append(out, p)
		}
	}
	return out
}

// toolkitPaths applies tk's config files, then its environment
// variable, to its defaults.
func (h host) toolkitPaths(tk toolkit) []string {
	dirs := tk.defaults(h.home)
	for _, cf := range tk.configs(h.home) {
		dirs = h.applyConfig(cf, dirs, tk.directive)
	}
	if v := h.getenv(tk.env); v != "" {
		dirs = tk.override(v).apply(dirs)
	}
	if h.TraceEnabled() {
		h.Trace("toolkit search path", slog.String("toolkit", tk.name), slog.Any("dirs", dirs))
	}
	return dirs
}

func (h host) applyConfig(path string, dirs []string, directive func(string) (pathEdit, bool)) []string {
	f, err := h.open(path)
	if err != nil {
		return dirs
	}
	defer f.Close() //nolint:errcheck // read only

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if edit, ok := directive(scanner.Text()); ok {
			dirs = edit.apply(dirs)
		}
	}
	if err := scanner.Err(); err != nil {
		h.Log(slog.LevelDebug, "error reading config file", slog.String("path", path), slog.Any("error", err))
	}
	return dirs
}

// SystemPaths returns the MIB directories configured on this host:
// MIBC_PATH, then net-snmp's, then libsmi's. Only existing directories
// are returned.
func SystemPaths(logger *slog.Logger) []string {
	return osHost(types.Logger{L: logger}).discover()
}

// discoverSystemSources returns a provider for each discovered system
// MIB directory.
func discoverSystemSources(logger types.Logger) []SourceProvider {
	var sources []SourceProvider
	for _, d := range osHost(logger).discover() {
		if src, err := Dir(d); err == nil {
			sources = append(sources, src)
		}
	}
	return sources
}
