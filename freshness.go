package mibc

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"
)

// DirChecker looks for artifacts named module+Extension in Dir. An
// artifact at least as new as its source is up to date.
type DirChecker struct {
	Dir       string
	Extension string
}

// NewDirChecker returns a checker over the artifacts g writes to dir.
func NewDirChecker(dir string, g Generator) *DirChecker {
	return &DirChecker{Dir: dir, Extension: g.Extension()}
}

func (c *DirChecker) Exists(_ context.Context, name string, sourceModTime time.Time, rebuild bool) error {
	info, err := os.Stat(filepath.Join(c.Dir, name+c.Extension))
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fs.ErrNotExist
	}
	if rebuild || info.ModTime().Before(sourceModTime) {
		return nil
	}
	return ErrNotModified
}

func (c *DirChecker) String() string { return "dir:" + c.Dir }

// StubChecker reports a fixed set of modules as up to date, whatever
// their sources say. It is used for modules that are provided some
// other way and must never be generated.
type StubChecker struct {
	names []string
}

func NewStubChecker(names ...string) *StubChecker {
	return &StubChecker{names: names}
}

func (c *StubChecker) Exists(_ context.Context, name string, _ time.Time, _ bool) error {
	if slices.Contains(c.names, name) {
		return ErrNotModified
	}
	return fs.ErrNotExist
}

func (c *StubChecker) String() string { return fmt.Sprintf("stub%v", c.names) }
