package mibc

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DirSink writes artifacts to Dir as module+Extension. Comments are
// written as a header when CommentPrefix is set; formats without a
// comment syntax carry them in the document instead.
type DirSink struct {
	Dir           string
	Extension     string
	CommentPrefix string
}

// NewDirSink returns a sink for g's artifacts in dir, creating dir if
// needed.
func NewDirSink(dir string, g Generator) (*DirSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	s := &DirSink{Dir: dir, Extension: g.Extension()}
	if s.Extension == ".yaml" {
		s.CommentPrefix = "# "
	}
	return s, nil
}

// MustDirSink is like NewDirSink but panics on error.
func MustDirSink(dir string, g Generator) *DirSink {
	s, err := NewDirSink(dir, g)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *DirSink) path(name string) string {
	return filepath.Join(s.Dir, name+s.Extension)
}

// Write replaces the artifact atomically through a temporary file in
// the same directory.
func (s *DirSink) Write(_ context.Context, name string, payload []byte, comments []string, dryRun bool) (string, error) {
	path := s.path(name)
	if dryRun {
		return path, nil
	}

	var buf bytes.Buffer
	if s.CommentPrefix != "" {
		for _, c := range comments {
			buf.WriteString(s.CommentPrefix)
			buf.WriteString(strings.ReplaceAll(c, "\n", " "))
			buf.WriteByte('\n')
		}
		if len(comments) > 0 {
			buf.WriteByte('\n')
		}
	}
	buf.Write(payload)

	tmp, err := os.CreateTemp(s.Dir, "."+name+".*")
	if err != nil {
		return path, err
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close() //nolint:errcheck // the write error is reported
		return path, err
	}
	if err := tmp.Close(); err != nil {
		return path, err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return path, err
	}
	return path, os.Rename(tmp.Name(), path)
}

func (s *DirSink) Read(_ context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		return nil, err
	}
	if s.CommentPrefix == "" {
		return data, nil
	}
	// Drop the comment header so the payload parses on its own.
	for bytes.HasPrefix(data, []byte(s.CommentPrefix)) {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			return nil, nil
		}
		data = data[i+1:]
	}
	return bytes.TrimLeft(data, "\n"), nil
}

func (s *DirSink) String() string { return "dir:" + s.Dir }

// MemorySink keeps artifacts in memory. Writes records every call,
// including dry runs.
type MemorySink struct {
	Artifacts map[string][]byte
	Comments  map[string][]string
	Writes    []string
}

func NewMemorySink() *MemorySink {
	return &MemorySink{
		Artifacts: make(map[string][]byte),
		Comments:  make(map[string][]string),
	}
}

func (s *MemorySink) Write(_ context.Context, name string, payload []byte, comments []string, dryRun bool) (string, error) {
	s.Writes = append(s.Writes, name)
	if !dryRun {
		s.Artifacts[name] = payload
		s.Comments[name] = comments
	}
	return "memory:" + name, nil
}

func (s *MemorySink) Read(_ context.Context, name string) ([]byte, error) {
	data, ok := s.Artifacts[name]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}
