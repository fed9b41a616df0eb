package mibc

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/golangsnmp/mibc/internal/types"
)

// FileConfig is the YAML configuration read by the mibc command.
//
//	sources: [/usr/share/snmp/mibs, ./mibs]
//	destination: out
//	format: yaml
//	borrow: [prebuilt]
//	strictness: strict
type FileConfig struct {
	Sources        []string `yaml:"sources"`
	SystemPaths    bool     `yaml:"system-paths"`
	Destination    string   `yaml:"destination"`
	Format         string   `yaml:"format"`
	Borrow         []string `yaml:"borrow"`
	Strictness     string   `yaml:"strictness"`
	Texts          bool     `yaml:"texts"`
	IgnoreErrors   bool     `yaml:"ignore-errors"`
	SkipTransitive bool     `yaml:"no-deps"`
	Rebuild        bool     `yaml:"rebuild"`
	DryRun         bool     `yaml:"dry-run"`
	Index          bool     `yaml:"index"`
	// Ignore lists diagnostic code patterns to suppress.
	Ignore []string `yaml:"ignore"`
}

// LoadConfig reads a FileConfig from path. Unknown keys are an error.
func LoadConfig(path string) (*FileConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck // read only

	var cfg FileConfig
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if _, err := cfg.DiagnosticConfig(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// DiagnosticConfig returns the strictness the file selects.
func (fc *FileConfig) DiagnosticConfig() (DiagnosticConfig, error) {
	var cfg types.DiagnosticConfig
	switch fc.Strictness {
	case "", "normal":
		cfg = types.DefaultConfig()
	case "strict":
		cfg = types.StrictConfig()
	case "permissive":
		cfg = types.PermissiveConfig()
	default:
		return cfg, fmt.Errorf("unknown strictness %q", fc.Strictness)
	}
	cfg.Ignore = append(cfg.Ignore, fc.Ignore...)
	return cfg, nil
}
