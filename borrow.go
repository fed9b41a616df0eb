package mibc

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
)

// DirBorrower supplies artifacts that were built earlier, possibly by
// another tool, from Dir. Texts records whether those artifacts carry
// free text; a request with a different setting is not served.
type DirBorrower struct {
	Dir       string
	Extension string
	Texts     bool
}

// NewDirBorrower returns a borrower of g's artifacts in dir.
func NewDirBorrower(dir string, g Generator, texts bool) *DirBorrower {
	return &DirBorrower{Dir: dir, Extension: g.Extension(), Texts: texts}
}

func (b *DirBorrower) Borrow(_ context.Context, name string, opts BorrowOptions) (SourceMeta, []byte, error) {
	if opts.Texts != b.Texts {
		return SourceMeta{}, nil, fs.ErrNotExist
	}
	path := filepath.Join(b.Dir, name+b.Extension)
	info, err := os.Stat(path)
	if err != nil {
		return SourceMeta{}, nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return SourceMeta{}, nil, err
	}
	return SourceMeta{Name: name, Path: path, ModTime: info.ModTime()}, data, nil
}

func (b *DirBorrower) String() string { return "dir:" + b.Dir }

// MemoryBorrower serves artifacts from a map.
type MemoryBorrower map[string][]byte

func (b MemoryBorrower) Borrow(_ context.Context, name string, _ BorrowOptions) (SourceMeta, []byte, error) {
	data, ok := b[name]
	if !ok {
		return SourceMeta{}, nil, fs.ErrNotExist
	}
	return SourceMeta{Name: name, Path: "memory:" + name}, data, nil
}
