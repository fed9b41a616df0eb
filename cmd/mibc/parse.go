package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/golangsnmp/mibc"
	"github.com/golangsnmp/mibc/cmd/internal/cliutil"
	"github.com/golangsnmp/mibc/internal/types"
)

const parseUsage = `mibc parse - Parse a MIB file and dump its declarations

Usage:
  mibc parse [options] FILE

Options:
  --format FMT      Dump format: json or yaml (default json)
  --strict          Use strict RFC compliance mode
  -o, --output FILE Write the dump to FILE instead of stdout
  -h, --help        Show help

Nothing is resolved: imports are listed as written and OIDs are shown
in their source form.
`

type declDump struct {
	Name string `json:"name" yaml:"name"`
	Kind string `json:"kind" yaml:"kind"`
	Oid  string `json:"oid,omitempty" yaml:"oid,omitempty"`
	Line int    `json:"line,omitempty" yaml:"line,omitempty"`
}

type importDump struct {
	Module  string   `json:"module" yaml:"module"`
	Symbols []string `json:"symbols" yaml:"symbols"`
}

type moduleDump struct {
	Name         string       `json:"name" yaml:"name"`
	Language     string       `json:"language" yaml:"language"`
	Imports      []importDump `json:"imports,omitempty" yaml:"imports,omitempty"`
	Declarations []declDump   `json:"declarations" yaml:"declarations"`
	Dependencies []string     `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

func (c *cli) cmdParse(args []string) int {
	fs := flag.NewFlagSet("parse", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(os.Stderr, parseUsage) }

	format := fs.String("format", "json", "dump format")
	strict := fs.Bool("strict", false, "use strict RFC compliance mode")
	output := fs.String("o", "", "output file")
	fs.StringVar(output, "output", "", "output file")
	help := fs.Bool("h", false, "show help")
	fs.BoolVar(help, "help", false, "show help")

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *help || c.helpFlag {
		_, _ = fmt.Fprint(os.Stdout, parseUsage)
		return exitOK
	}
	if fs.NArg() != 1 {
		cliutil.PrintError("expected exactly one file")
		fmt.Fprint(os.Stderr, parseUsage)
		return exitUsage
	}
	if *format != "json" && *format != "yaml" {
		cliutil.PrintError("unknown format %q", *format)
		return exitUsage
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		cliutil.PrintError("%v", err)
		return exitFailures
	}

	cfg := types.DefaultConfig()
	if *strict {
		cfg = types.StrictConfig()
	}
	mods, err := mibc.NewParser(c.setupLogger(), cfg).Parse(data)
	if err != nil {
		var se *mibc.SyntaxError
		if errors.As(err, &se) {
			for _, d := range se.Diagnostics {
				fmt.Fprintln(os.Stderr, d.String())
			}
		}
		cliutil.PrintError("%v", err)
		return exitFailures
	}

	dumps := make([]moduleDump, 0, len(mods))
	for _, m := range mods {
		for _, d := range m.Diagnostics {
			if cfg.ShouldReport(d.Code, d.Severity) {
				fmt.Fprintln(os.Stderr, d.String())
			}
		}
		dumps = append(dumps, dumpModule(m, data))
	}

	out, cleanup, err := cliutil.GetOutput(*output)
	if err != nil {
		cliutil.PrintError("%v", err)
		return exitFailures
	}
	defer cleanup()

	if err := writeDump(out, *format, dumps); err != nil {
		cliutil.PrintError("%v", err)
		return exitFailures
	}
	return exitOK
}

func dumpModule(m *mibc.Module, src []byte) moduleDump {
	md := moduleDump{
		Name:         m.Name,
		Language:     m.Language.String(),
		Declarations: make([]declDump, 0, len(m.Declarations)),
		Dependencies: m.Dependencies(),
	}
	for _, g := range m.Imports {
		md.Imports = append(md.Imports, importDump{Module: g.Module, Symbols: g.Symbols})
	}
	for _, d := range m.Declarations {
		dd := declDump{Name: d.DeclName(), Kind: d.Kind().String()}
		if sp := d.DeclSpan(); sp != types.Synthetic && int(sp.Start) <= len(src) {
			dd.Line = bytes.Count(src[:sp.Start], []byte{'\n'}) + 1
		}
		if oid := d.DeclOid(); oid != nil {
			dd.Oid = oid.String()
		}
		md.Declarations = append(md.Declarations, dd)
	}
	return md
}

func writeDump(w io.Writer, format string, dumps []moduleDump) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(dumps); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(dumps)
}
