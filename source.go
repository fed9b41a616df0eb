package mibc

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DefaultExtensions are the file extensions recognized as MIB files.
// Empty string matches files with no extension (e.g., "IF-MIB").
var DefaultExtensions = []string{"", ".mib", ".smi", ".txt", ".my"}

// SourceOption configures a source.
type SourceOption func(*sourceConfig)

type sourceConfig struct {
	extensions  []string
	noHeuristic bool
}

func defaultSourceConfig() sourceConfig {
	return sourceConfig{
		extensions: DefaultExtensions,
	}
}

// WithExtensions sets the file extensions to recognize for this source.
func WithExtensions(exts ...string) SourceOption {
	return func(c *sourceConfig) {
		c.extensions = exts
	}
}

// WithNoHeuristic disables content validation for this source.
func WithNoHeuristic() SourceOption {
	return func(c *sourceConfig) {
		c.noHeuristic = true
	}
}

func (c sourceConfig) accept(content []byte) bool {
	return c.noHeuristic || looksLikeMIBContent(content)
}

// --- Dir Source (single directory, lazy) ---

type dirSource struct {
	path   string
	config sourceConfig
}

// Dir creates a SourceProvider that searches a single directory (no
// recursion). Files are looked up lazily on each Get call.
func Dir(path string, opts ...SourceOption) (SourceProvider, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrInvalid}
	}
	cfg := defaultSourceConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &dirSource{path: path, config: cfg}, nil
}

// MustDir is like Dir but panics on error.
func MustDir(path string, opts ...SourceOption) SourceProvider {
	src, err := Dir(path, opts...)
	if err != nil {
		panic(err)
	}
	return src
}

func (s *dirSource) Get(_ context.Context, name string) (SourceMeta, []byte, error) {
	for _, ext := range s.config.extensions {
		meta, content, err := readSourceFile(filepath.Join(s.path, name+ext), name, s.config)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return meta, content, err
	}
	return SourceMeta{}, nil, fs.ErrNotExist
}

func (s *dirSource) String() string { return "dir:" + s.path }

// --- DirTree Source (recursive directory, indexed) ---

type treeSource struct {
	root   string
	index  map[string]string // module name -> file path
	config sourceConfig
}

// DirTree creates a SourceProvider that recursively indexes a directory
// tree. It walks the tree once at construction and builds a name->path
// index. First match wins for duplicate names.
func DirTree(root string, opts ...SourceOption) (SourceProvider, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &os.PathError{Op: "open", Path: root, Err: os.ErrInvalid}
	}

	cfg := defaultSourceConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	extSet := makeExtensionSet(cfg.extensions)
	index := make(map[string]string)

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !hasValidExtension(path, extSet) {
			return nil
		}

		name := moduleNameFromPath(path)
		if _, exists := index[name]; !exists {
			index[name] = path
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &treeSource{root: root, index: index, config: cfg}, nil
}

// MustDirTree is like DirTree but panics on error.
func MustDirTree(root string, opts ...SourceOption) SourceProvider {
	src, err := DirTree(root, opts...)
	if err != nil {
		panic(err)
	}
	return src
}

func (s *treeSource) Get(_ context.Context, name string) (SourceMeta, []byte, error) {
	path, ok := s.index[name]
	if !ok {
		return SourceMeta{}, nil, fs.ErrNotExist
	}
	return readSourceFile(path, name, s.config)
}

func (s *treeSource) String() string { return "tree:" + s.root }

func readSourceFile(path, name string, cfg sourceConfig) (SourceMeta, []byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return SourceMeta{}, nil, err
	}
	if info.IsDir() {
		return SourceMeta{}, nil, fs.ErrNotExist
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return SourceMeta{}, nil, err
	}
	if !cfg.accept(content) {
		return SourceMeta{}, nil, fs.ErrNotExist
	}
	return SourceMeta{Name: name, Path: path, ModTime: info.ModTime()}, content, nil
}

// --- FS Source (for embed.FS, testing, http filesystems) ---

type fsSource struct {
	name   string
	fsys   fs.FS
	config sourceConfig

	once  sync.Once
	index map[string]string
	err   error
}

// FS creates a SourceProvider backed by an fs.FS (e.g., embed.FS).
// The name is used for path reporting. It lazily indexes the
// filesystem on the first Get call.
func FS(name string, fsys fs.FS, opts ...SourceOption) SourceProvider {
	cfg := defaultSourceConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &fsSource{
		name:   name,
		fsys:   fsys,
		config: cfg,
	}
}

func (s *fsSource) Get(_ context.Context, name string) (SourceMeta, []byte, error) {
	s.once.Do(func() {
		s.index, s.err = s.buildIndex()
	})
	if s.err != nil {
		return SourceMeta{}, nil, s.err
	}

	path, ok := s.index[name]
	if !ok {
		return SourceMeta{}, nil, fs.ErrNotExist
	}
	info, err := fs.Stat(s.fsys, path)
	if err != nil {
		return SourceMeta{}, nil, err
	}
	content, err := fs.ReadFile(s.fsys, path)
	if err != nil {
		return SourceMeta{}, nil, err
	}
	if !s.config.accept(content) {
		return SourceMeta{}, nil, fs.ErrNotExist
	}
	return SourceMeta{Name: name, Path: s.name + ":" + path, ModTime: info.ModTime()}, content, nil
}

func (s *fsSource) String() string { return "fs:" + s.name }

func (s *fsSource) buildIndex() (map[string]string, error) {
	extSet := makeExtensionSet(s.config.extensions)
	index := make(map[string]string)

	err := fs.WalkDir(s.fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !hasValidExtension(path, extSet) {
			return nil
		}

		name := moduleNameFromPath(path)
		if _, exists := index[name]; !exists {
			index[name] = path
		}
		return nil
	})
	return index, err
}

// --- Multi Source (combines multiple sources) ---

type multiSource struct {
	sources []SourceProvider
}

// Multi combines multiple sources into one. Get tries each source in
// order, returning the first match.
func Multi(sources ...SourceProvider) SourceProvider {
	return &multiSource{sources: sources}
}

func (s *multiSource) Get(ctx context.Context, name string) (SourceMeta, []byte, error) {
	for _, src := range s.sources {
		meta, content, err := src.Get(ctx, name)
		if err == nil {
			return meta, content, nil
		}
		if !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, ErrSourceUnchanged) {
			return meta, nil, err
		}
	}
	return SourceMeta{}, nil, fs.ErrNotExist
}

// --- Helpers ---

func makeExtensionSet(extensions []string) map[string]struct{} {
	set := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		set[strings.ToLower(ext)] = struct{}{}
	}
	return set
}

func hasValidExtension(path string, extSet map[string]struct{}) bool {
	ext := strings.ToLower(filepath.Ext(path))
	_, ok := extSet[ext]
	return ok
}

func moduleNameFromPath(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext)
}

var (
	sigDefinitions = []byte("DEFINITIONS")
	sigAssign      = []byte("::=")
)

const (
	binaryCheckSize = 1024
	maxProbeSize    = 128 * 1024
)

// looksLikeMIBContent rejects binary files and text without a module
// header near the start.
func looksLikeMIBContent(content []byte) bool {
	if len(content) == 0 {
		return false
	}
	if bytes.IndexByte(content[:min(binaryCheckSize, len(content))], 0) >= 0 {
		return false
	}
	probe := content[:min(maxProbeSize, len(content))]
	if bytes.IndexByte(probe, 0) >= 0 {
		return false
	}
	return bytes.Contains(probe, sigDefinitions) && bytes.Contains(probe, sigAssign)
}
