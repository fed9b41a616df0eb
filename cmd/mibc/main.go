// Command mibc compiles MIB modules into JSON or YAML documents.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"strings"

	"github.com/golangsnmp/mibc"
	"github.com/golangsnmp/mibc/cmd/internal/cliutil"
)

// Exit codes.
const (
	exitOK       = 0 // success
	exitFailures = 1 // one or more modules failed, or an I/O error
	exitUsage    = 2 // bad flags or arguments
)

const usage = `mibc - SMI/MIB module compiler

Usage:
  mibc <command> [options] [arguments]

Commands:
  compile  Compile MIB modules and their imports
  parse    Parse a MIB file and dump its declarations
  version  Show version

Common options:
  -p, --path PATH   Add MIB source directory (repeatable)
  -v, --verbose     Enable debug logging
  -vv               Enable trace logging (implies -v)
  -h, --help        Show help

Examples:
  mibc compile -p ./mibs --dest out IF-MIB
  mibc compile --format yaml --borrow prebuilt ACME-MIB
  mibc parse ./mibs/IF-MIB.txt
`

type cli struct {
	verbose  int
	paths    []string
	helpFlag bool
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var c cli
	var cmdArgs []string
	var cmd string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-h" || arg == "--help":
			c.helpFlag = true
		case arg == "-v" || arg == "--verbose":
			if c.verbose < 1 {
				c.verbose = 1
			}
		case arg == "-vv":
			c.verbose = 2
		case arg == "-p" || arg == "--path":
			if i+1 < len(args) {
				i++
				c.paths = append(c.paths, args[i])
			}
		case strings.HasPrefix(arg, "--path="):
			c.paths = append(c.paths, arg[7:])
		case strings.HasPrefix(arg, "-p") && !strings.HasPrefix(arg, "--"):
			c.paths = append(c.paths, arg[2:])
		case len(arg) > 0 && arg[0] == '-':
			cmdArgs = append(cmdArgs, arg)
		default:
			if cmd == "" {
				cmd = arg
			} else {
				cmdArgs = append(cmdArgs, arg)
			}
		}
	}

	if c.helpFlag && cmd == "" {
		_, _ = fmt.Fprint(os.Stdout, usage)
		return exitOK
	}
	if cmd == "" {
		_, _ = fmt.Fprint(os.Stderr, usage)
		return exitUsage
	}

	switch cmd {
	case "compile":
		return c.cmdCompile(cmdArgs)
	case "parse":
		return c.cmdParse(cmdArgs)
	case "version":
		printVersion()
		return exitOK
	case "help":
		_, _ = fmt.Fprint(os.Stdout, usage)
		return exitOK
	default:
		cliutil.PrintError("unknown command: %s", cmd)
		_, _ = fmt.Fprint(os.Stderr, usage)
		return exitUsage
	}
}

func (c *cli) setupLogger() *slog.Logger {
	if c.verbose == 0 {
		return nil
	}
	level := slog.LevelDebug
	if c.verbose >= 2 {
		level = mibc.LevelTrace
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

func printVersion() {
	version := mibc.Version
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		version = info.Main.Version
	}
	fmt.Printf("mibc %s\n", version)
}
