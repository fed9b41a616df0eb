package mibc

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/user"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/golangsnmp/mibc/internal/codegen"
	"github.com/golangsnmp/mibc/internal/graph"
	"github.com/golangsnmp/mibc/internal/module"
	"github.com/golangsnmp/mibc/internal/parser"
	"github.com/golangsnmp/mibc/internal/resolver"
	"github.com/golangsnmp/mibc/internal/symtab"
	"github.com/golangsnmp/mibc/internal/types"
)

// Compiler drives compilation runs. Runs are independent: each starts
// from the built-in modules and shares nothing with earlier runs.
type Compiler struct {
	cfg config
	types.Logger

	baseOnce   sync.Once
	baseTables symtab.Tables
}

// New returns a Compiler configured by opts.
func New(opts ...Option) *Compiler {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	c := &Compiler{Logger: types.Logger{L: types.Component(cfg.logger, "compiler")}}
	if cfg.systemPaths {
		cfg.sources = append(cfg.sources, discoverSystemSources(c.Logger)...)
	}
	if cfg.parser == nil {
		cfg.parser = NewParser(types.Component(cfg.logger, "parser"), cfg.diagConfig)
	}
	if cfg.sink == nil {
		cfg.sink = NewMemorySink()
	}
	c.cfg = cfg
	return c
}

// base returns the symbol tables of the embedded base modules. They are
// built once per Compiler and only read afterwards.
func (c *Compiler) base() symtab.Tables {
	c.baseOnce.Do(func() {
		c.baseTables = make(symtab.Tables)
		for _, name := range module.BaseModuleNames() {
			src, _ := module.BaseSource(name)
			for _, mod := range parser.Parse(src, nil, types.DefaultConfig()) {
				t, err := symtab.Build(mod, c.baseTables, types.DefaultConfig(), nil)
				if err != nil {
					c.Log(slog.LevelError, "base module unusable",
						slog.String("module", mod.Name), slog.Any("error", err))
					continue
				}
				c.baseTables[mod.Name] = t
			}
		}
	})
	return c.baseTables
}

// Compile compiles the named modules and everything they import.
//
// Module failures are reported in the Results, never as the returned
// error. The error is ErrNoGenerator when no generator is configured,
// or the context's error when ctx ends during the run; the partial
// results are returned with it.
func (c *Compiler) Compile(ctx context.Context, names ...string) (*Results, error) {
	if c.cfg.generator == nil {
		return nil, ErrNoGenerator
	}
	r := c.newRun(ctx, names)
	c.Log(slog.LevelInfo, "compiling", slog.Any("modules", names))

	for _, phase := range []func() error{r.resolve, r.checkFreshness, r.generate, r.borrow} {
		if err := phase(); err != nil {
			return r.results, err
		}
	}
	if r.abort() {
		return r.results, nil
	}
	if err := r.write(); err != nil {
		return r.results, err
	}
	c.Log(slog.LevelInfo, "compiled",
		slog.Int("compiled", r.results.Count(StatusCompiled)),
		slog.Int("untouched", r.results.Count(StatusUntouched)),
		slog.Int("borrowed", r.results.Count(StatusBorrowed)),
		slog.Int("failed", r.results.Count(StatusFailed)),
		slog.Int("missing", r.results.Count(StatusMissing)))
	return r.results, nil
}

// run is the state of one Compile call.
type run struct {
	*Compiler
	ctx     context.Context
	header  []string
	results *Results
	tables  symtab.Tables
	deps    *graph.Graph[string]

	queue     []string
	seen      map[string]bool
	requested map[string]bool

	// parsed holds modules with symbol tables, in discovery order;
	// pending is what is left of it after the freshness phase.
	parsed  []*parsedModule
	loaded  map[string]bool
	pending []*parsedModule

	// failed is the tentative failure set, in failure order.
	failed []string
	errs   map[string]error

	built []*builtModule
}

type parsedModule struct {
	mod   *Module
	meta  SourceMeta
	alias string
}

type builtModule struct {
	name     string
	alias    string
	meta     SourceMeta
	info     *MibInfo
	payload  []byte
	comments []string
	borrowed bool
}

func (c *Compiler) newRun(ctx context.Context, names []string) *run {
	r := &run{
		Compiler:  c,
		ctx:       ctx,
		header:    c.header(time.Now()),
		results:   newResults(),
		tables:    make(symtab.Tables),
		deps:      graph.New[string](),
		queue:     slices.Clone(names),
		seen:      make(map[string]bool),
		requested: make(map[string]bool),
		loaded:    make(map[string]bool),
		errs:      make(map[string]error),
	}
	for name, t := range c.base() {
		r.tables[name] = t
	}
	for _, name := range names {
		r.requested[name] = true
	}
	return r
}

// fail records a tentative failure. A later success for the same name
// clears it.
func (r *run) fail(name string, err error) {
	if _, ok := r.errs[name]; !ok {
		r.failed = append(r.failed, name)
	}
	r.errs[name] = err
	r.results.set(&Outcome{Name: name, Status: StatusFailed, Err: err})
	r.Log(slog.LevelDebug, "module failed", slog.String("module", name), slog.Any("error", err))
}

// clearFailure withdraws a tentative failure. The outcome keeps its
// place in the results order for the caller to overwrite.
func (r *run) clearFailure(name string) {
	if _, ok := r.errs[name]; !ok {
		return
	}
	delete(r.errs, name)
	r.failed = slices.DeleteFunc(r.failed, func(n string) bool { return n == name })
}

func (r *run) diag(code string, sev types.Severity, mod, msg string) {
	if r.cfg.diagConfig.ShouldReport(code, sev) {
		r.results.Diagnostics = append(r.results.Diagnostics, types.Diagnostic{
			Severity: sev, Code: code, Message: msg, Module: mod,
		})
	}
}

// resolve fetches, parses and builds symbol tables for the requested
// modules and their imports, breadth first.
func (r *run) resolve() error {
	for len(r.queue) > 0 {
		if err := r.ctx.Err(); err != nil {
			return err
		}
		name := r.queue[0]
		r.queue = r.queue[1:]
		if r.seen[name] {
			r.Trace("already seen", slog.String("module", name))
			continue
		}
		r.seen[name] = true

		if r.cfg.isBuiltin(name) {
			r.results.set(&Outcome{Name: name, Status: StatusUntouched})
			continue
		}
		switch r.load(name) {
		case sourceUnchanged:
			r.results.set(&Outcome{Name: name, Status: StatusUntouched})
		case sourceMissing:
			r.Log(slog.LevelDebug, "module not found", slog.String("module", name))
			r.results.set(&Outcome{Name: name, Status: StatusMissing, Err: fmt.Errorf("%s: %w", name, fs.ErrNotExist)})
		}
	}

	_, cycles := r.deps.ResolutionOrder()
	for _, cycle := range cycles {
		r.Log(slog.LevelDebug, "import cycle", slog.Any("modules", cycle))
		r.diag(types.DiagImportCycle, types.SeverityInfo, cycle[0], fmt.Sprintf("import cycle among %v", cycle))
	}
	r.Log(slog.LevelDebug, "modules analyzed",
		slog.Int("parsed", len(r.parsed)), slog.Int("failed", len(r.failed)))
	return nil
}

type loadResult int

const (
	sourceMissing loadResult = iota
	sourceUnchanged
	sourceFound
)

// load tries each source provider in turn until one yields a module
// that parses and builds.
func (r *run) load(name string) loadResult {
	result := sourceMissing
	for _, src := range r.cfg.sources {
		meta, data, err := src.Get(r.ctx, name)
		if errors.Is(err, ErrSourceUnchanged) {
			r.Trace("source unchanged", slog.String("module", name), slog.Any("source", src))
			result = max(result, sourceUnchanged)
			continue
		}
		if errors.Is(err, fs.ErrNotExist) {
			r.Trace("not in source", slog.String("module", name), slog.Any("source", src))
			continue
		}
		result = sourceFound
		if err != nil {
			r.fail(name, fmt.Errorf("reading %s: %w", name, err))
			continue
		}
		mods, err := r.cfg.parser.Parse(data)
		if err == nil {
			err = r.register(name, meta, mods)
		}
		if err != nil {
			r.fail(name, err)
			continue
		}
		r.clearFailure(name)
		if _, aliased := r.results.Aliases[name]; aliased {
			r.results.drop(name)
		}
		return sourceFound
	}
	return result
}

// register builds the tables of every module in one source and queues
// their imports. Nothing is registered if any table fails.
func (r *run) register(name string, meta SourceMeta, mods []*Module) error {
	var fresh []*Module
	var tables []*symtab.Table
	for _, mod := range mods {
		if r.loaded[mod.Name] || r.cfg.isBuiltin(mod.Name) {
			r.Log(slog.LevelDebug, "module already loaded",
				slog.String("module", mod.Name), slog.String("path", meta.Path))
			continue
		}
		t, err := symtab.Build(mod, r.tables, r.cfg.diagConfig, types.Component(r.cfg.logger, "symtab"))
		if err != nil {
			return err
		}
		fresh = append(fresh, mod)
		tables = append(tables, t)
	}

	for i, mod := range fresh {
		r.tables[mod.Name] = tables[i]
		r.results.Diagnostics = append(r.results.Diagnostics, tables[i].Diagnostics...)
		p := &parsedModule{mod: mod, meta: meta}
		if mod.Name != name {
			p.alias = name
		}
		r.parsed = append(r.parsed, p)
		r.loaded[mod.Name] = true
		r.seen[mod.Name] = true
		if r.requested[name] {
			r.requested[mod.Name] = true
		}

		deps := mod.Dependencies()
		r.deps.AddNode(mod.Name)
		for _, dep := range deps {
			r.deps.AddEdge(mod.Name, dep)
			if !r.seen[dep] {
				r.queue = append(r.queue, dep)
			}
		}
		r.Log(slog.LevelDebug, "module read",
			slog.String("module", mod.Name), slog.String("path", meta.Path), slog.Any("imports", deps))
	}
	if len(mods) > 0 && !slices.ContainsFunc(mods, func(m *Module) bool { return m.Name == name }) {
		r.results.Aliases[name] = mods[0].Name
	}
	return nil
}

// fresh asks the freshness checkers whether name needs no artifact.
func (r *run) fresh(name string, modTime time.Time) bool {
	for _, c := range r.cfg.checkers {
		err := c.Exists(r.ctx, name, modTime, r.cfg.rebuild)
		switch {
		case errors.Is(err, ErrNotModified):
			r.Log(slog.LevelDebug, "artifact up to date", slog.String("module", name), slog.Any("checker", c))
			return true
		case err == nil, errors.Is(err, fs.ErrNotExist):
			continue
		default:
			r.Log(slog.LevelWarn, "freshness check failed",
				slog.String("module", name), slog.Any("checker", c), slog.Any("error", err))
			r.diag(types.DiagFreshnessCheckerError, types.SeverityWarning, name, err.Error())
		}
	}
	return false
}

func (r *run) checkFreshness() error {
	for _, p := range r.parsed {
		if err := r.ctx.Err(); err != nil {
			return err
		}
		name := p.mod.Name
		untouched := &Outcome{Name: name, Status: StatusUntouched, Alias: p.alias, Path: p.meta.Path}
		if r.fresh(name, p.meta.ModTime) {
			r.results.set(untouched)
			continue
		}
		if r.cfg.skipTransitive && !r.requested[name] {
			r.Log(slog.LevelDebug, "dependency excluded from generation", slog.String("module", name))
			r.results.set(untouched)
			continue
		}
		r.pending = append(r.pending, p)
	}
	return nil
}

func (r *run) generate() error {
	res := resolver.New(r.tables, r.cfg.diagConfig, types.Component(r.cfg.logger, "resolver"))
	defer func() {
		r.results.Diagnostics = append(r.results.Diagnostics, res.Diagnostics()...)
	}()
	for _, p := range r.pending {
		if err := r.ctx.Err(); err != nil {
			return err
		}
		name := p.mod.Name
		comments := r.comments(p.meta)
		info, payload, err := r.cfg.generator.Generate(p.mod, r.tables, codegen.Options{
			Texts:    r.cfg.texts,
			Comments: comments,
			Resolver: res,
			Config:   r.cfg.diagConfig,
			Logger:   types.Component(r.cfg.logger, "codegen"),
		})
		if err != nil {
			r.fail(name, &CodegenError{Module: name, Err: err})
			continue
		}
		r.built = append(r.built, &builtModule{
			name: name, alias: p.alias, meta: p.meta,
			info: info, payload: payload, comments: comments,
		})
		r.Log(slog.LevelDebug, "module generated", slog.String("module", name), slog.Int("bytes", len(payload)))
	}
	r.pending = nil
	return nil
}

// borrow offers every failed module to the borrowers.
func (r *run) borrow() error {
	if len(r.cfg.borrowers) == 0 {
		return nil
	}
	for _, name := range slices.Clone(r.failed) {
		if err := r.ctx.Err(); err != nil {
			return err
		}
		if r.cfg.skipTransitive && !r.requested[name] {
			r.Log(slog.LevelDebug, "dependency excluded from borrowing", slog.String("module", name))
			continue
		}
		for _, b := range r.cfg.borrowers {
			meta, data, err := b.Borrow(r.ctx, name, BorrowOptions{Texts: r.cfg.texts})
			if err != nil {
				r.Trace("not borrowed", slog.String("module", name), slog.Any("borrower", b), slog.Any("error", err))
				continue
			}
			r.clearFailure(name)
			if r.fresh(name, meta.ModTime) {
				r.results.set(&Outcome{Name: name, Status: StatusUntouched, Path: meta.Path})
				break
			}
			r.built = append(r.built, &builtModule{
				name: name, meta: meta, info: &MibInfo{Name: name},
				payload: data, borrowed: true,
			})
			r.results.set(&Outcome{Name: name, Status: StatusBorrowed, Path: meta.Path})
			r.Log(slog.LevelDebug, "module borrowed", slog.String("module", name), slog.Any("borrower", b))
			break
		}
	}
	return nil
}

// abort marks everything built as unprocessed when failed or missing
// modules remain and errors are not ignored.
func (r *run) abort() bool {
	if r.cfg.ignoreErrors {
		return false
	}
	missing := r.results.Named(StatusMissing)
	if len(r.failed) == 0 && len(missing) == 0 {
		return false
	}
	r.Log(slog.LevelInfo, "not writing: modules failed",
		slog.Any("failed", r.failed), slog.Any("missing", missing))
	for _, b := range r.built {
		r.results.set(&Outcome{Name: b.name, Status: StatusUnprocessed, Alias: b.alias, Path: b.meta.Path, Info: b.info})
	}
	return true
}

func (r *run) write() error {
	for _, b := range r.built {
		if err := r.ctx.Err(); err != nil {
			return err
		}
		var file string
		if b.payload != nil {
			var err error
			file, err = r.cfg.sink.Write(r.ctx, b.name, b.payload, b.comments, r.cfg.dryRun)
			if err != nil {
				r.fail(b.name, &WriteError{Module: b.name, Err: err})
				continue
			}
		}
		if b.borrowed {
			r.results.Get(b.name).File = file
			continue
		}
		r.results.set(&Outcome{
			Name: b.name, Status: StatusCompiled, Alias: b.alias,
			Path: b.meta.Path, File: file, Info: b.info,
		})
	}
	r.built = nil
	return nil
}

// header describes how the artifacts of a run were produced.
func (c *Compiler) header(now time.Time) []string {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	username := "unknown"
	if u, err := user.Current(); err == nil {
		username = u.Username
	}
	out := []string{
		fmt.Sprintf("Produced by mibc-%s at %s", Version, now.Format(time.RFC1123)),
		fmt.Sprintf("On host %s platform %s/%s by user %s", host, runtime.GOOS, runtime.GOARCH, username),
		"Using Go version " + runtime.Version(),
	}
	return append(out, c.cfg.comments...)
}

func (r *run) comments(meta SourceMeta) []string {
	return append([]string{"ASN.1 source " + meta.Path}, r.header...)
}
