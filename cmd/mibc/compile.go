package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/golangsnmp/mibc"
	"github.com/golangsnmp/mibc/cmd/internal/cliutil"
)

const compileUsage = `mibc compile - Compile MIB modules and their imports

Usage:
  mibc compile [options] MODULE...

Options:
  --config FILE     Read defaults from a YAML config file
  --dest DIR        Write artifacts to DIR (default ".")
  --format FMT      Output format: json, yaml or null (default json)
  --borrow DIR      Borrow prebuilt artifacts from DIR when compilation
                    fails (repeatable)
  --system-paths    Also search net-snmp and libsmi MIB directories
  --texts           Keep DESCRIPTION and other text clauses
  --rebuild         Regenerate artifacts even when up to date
  --dry-run         Compile but do not write anything
  --ignore-errors   Write what compiled even if some modules failed
  --no-deps         Only generate the named modules
  --strict          Use strict RFC compliance mode
  --index           Update the OID index after compiling
  --json            Print the results as JSON
  -h, --help        Show help

With no -p and no config sources, system MIB directories are searched.

Exit status is 0 when every module compiled or was up to date, 1 when
any module failed or was missing, and 2 on a usage error.
`

type stringList []string

func (s *stringList) String() string     { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error { *s = append(*s, v); return nil }

func (c *cli) cmdCompile(args []string) int {
	fs := flag.NewFlagSet("compile", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(os.Stderr, compileUsage) }

	configFile := fs.String("config", "", "YAML config file")
	dest := fs.String("dest", "", "destination directory")
	format := fs.String("format", "", "output format")
	var borrow stringList
	fs.Var(&borrow, "borrow", "borrow directory (repeatable)")
	systemPaths := fs.Bool("system-paths", false, "search system MIB directories")
	texts := fs.Bool("texts", false, "keep text clauses")
	rebuild := fs.Bool("rebuild", false, "regenerate up to date artifacts")
	dryRun := fs.Bool("dry-run", false, "do not write artifacts")
	ignoreErrors := fs.Bool("ignore-errors", false, "write partial results")
	noDeps := fs.Bool("no-deps", false, "only generate the named modules")
	strict := fs.Bool("strict", false, "use strict RFC compliance mode")
	index := fs.Bool("index", false, "update the OID index")
	jsonOut := fs.Bool("json", false, "print results as JSON")
	help := fs.Bool("h", false, "show help")
	fs.BoolVar(help, "help", false, "show help")

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *help || c.helpFlag {
		_, _ = fmt.Fprint(os.Stdout, compileUsage)
		return exitOK
	}

	modules := fs.Args()
	if len(modules) == 0 {
		cliutil.PrintError("no modules specified")
		fmt.Fprint(os.Stderr, compileUsage)
		return exitUsage
	}

	fc := &mibc.FileConfig{}
	if *configFile != "" {
		loaded, err := mibc.LoadConfig(*configFile)
		if err != nil {
			cliutil.PrintError("%v", err)
			return exitUsage
		}
		fc = loaded
	}

	// Flags given on the command line override the file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "dest":
			fc.Destination = *dest
		case "format":
			fc.Format = *format
		case "borrow":
			fc.Borrow = append(fc.Borrow, borrow...)
		case "system-paths":
			fc.SystemPaths = *systemPaths
		case "texts":
			fc.Texts = *texts
		case "rebuild":
			fc.Rebuild = *rebuild
		case "dry-run":
			fc.DryRun = *dryRun
		case "ignore-errors":
			fc.IgnoreErrors = *ignoreErrors
		case "no-deps":
			fc.SkipTransitive = *noDeps
		case "strict":
			if *strict {
				fc.Strictness = "strict"
			}
		case "index":
			fc.Index = *index
		}
	})
	fc.Sources = append(fc.Sources, c.paths...)

	opts, err := c.compileOptions(fc)
	if err != nil {
		cliutil.PrintError("%v", err)
		return exitUsage
	}

	compiler := mibc.New(opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := compiler.Compile(ctx, modules...)
	if err != nil {
		cliutil.PrintError("%v", err)
		return exitFailures
	}

	for _, d := range res.Diagnostics {
		fmt.Fprintln(os.Stderr, d.String())
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			cliutil.PrintError("encoding results: %v", err)
			return exitFailures
		}
	} else {
		printResults(res)
	}

	if fc.Index && (!res.HasFailures() || fc.IgnoreErrors) {
		file, err := compiler.BuildIndex(ctx, res)
		if err != nil {
			cliutil.PrintError("%v", err)
			return exitFailures
		}
		if file != "" && !*jsonOut {
			fmt.Printf("index: %s\n", file)
		}
	}

	if res.HasFailures() {
		return exitFailures
	}
	return exitOK
}

// compileOptions turns the merged file and flag settings into compiler
// options.
func (c *cli) compileOptions(fc *mibc.FileConfig) ([]mibc.Option, error) {
	gen, err := mibc.GeneratorFor(fc.Format)
	if err != nil {
		return nil, err
	}
	diagCfg, err := fc.DiagnosticConfig()
	if err != nil {
		return nil, err
	}

	var sources []mibc.SourceProvider
	for _, p := range fc.Sources {
		src, err := mibc.DirTree(p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: cannot access path %s: %v\n", p, err)
			continue
		}
		sources = append(sources, src)
	}
	if len(fc.Sources) > 0 && len(sources) == 0 {
		return nil, fmt.Errorf("none of the source paths are usable")
	}

	destination := fc.Destination
	if destination == "" {
		destination = "."
	}
	var sink mibc.Sink = mibc.NewMemorySink()
	if !fc.DryRun {
		ds, err := mibc.NewDirSink(destination, gen)
		if err != nil {
			return nil, err
		}
		sink = ds
	}

	var borrowers []mibc.Borrower
	for _, dir := range fc.Borrow {
		borrowers = append(borrowers, mibc.NewDirBorrower(dir, gen, fc.Texts))
	}

	opts := []mibc.Option{
		mibc.WithSources(sources...),
		mibc.WithGenerator(gen),
		mibc.WithSink(sink),
		mibc.WithCheckers(mibc.NewDirChecker(destination, gen)),
		mibc.WithBorrowers(borrowers...),
		mibc.WithDiagnosticConfig(diagCfg),
		mibc.WithTexts(fc.Texts),
		mibc.WithIgnoreErrors(fc.IgnoreErrors),
		mibc.WithSkipTransitive(fc.SkipTransitive),
		mibc.WithRebuild(fc.Rebuild),
		mibc.WithDryRun(fc.DryRun),
	}
	if fc.SystemPaths || len(sources) == 0 {
		opts = append(opts, mibc.WithSystemPaths())
	}
	if logger := c.setupLogger(); logger != nil {
		opts = append(opts, mibc.WithLogger(logger))
	}
	return opts, nil
}

func printResults(res *mibc.Results) {
	for _, o := range res.All() {
		line := o.String()
		if o.File != "" {
			line += " -> " + o.File
		}
		fmt.Println(line)
	}
	fmt.Printf("\n%d compiled, %d untouched, %d borrowed, %d failed, %d missing, %d unprocessed\n",
		res.Count(mibc.StatusCompiled),
		res.Count(mibc.StatusUntouched),
		res.Count(mibc.StatusBorrowed),
		res.Count(mibc.StatusFailed),
		res.Count(mibc.StatusMissing),
		res.Count(mibc.StatusUnprocessed))
}
