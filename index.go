package mibc

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"
)

// IndexName is the artifact name the OID index is written under.
const IndexName = "index"

// BuildIndex merges the modules compiled in res into the index artifact
// held by the sink. The previous index is read back first, so modules
// compiled in earlier runs stay indexed. It returns where the index was
// written, or "" when the generator has no index format.
func (c *Compiler) BuildIndex(ctx context.Context, res *Results) (string, error) {
	if c.cfg.generator == nil {
		return "", ErrNoGenerator
	}
	infos := res.infos(StatusCompiled)
	if len(infos) == 0 {
		return "", nil
	}

	previous, err := c.cfg.sink.Read(ctx, IndexName)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("reading index: %w", err)
	}
	comments := []string{fmt.Sprintf("Produced by mibc-%s at %s", Version, time.Now().Format(time.RFC1123))}
	data, err := c.cfg.generator.GenerateIndex(infos, previous, comments)
	if err != nil {
		return "", fmt.Errorf("generating index: %w", err)
	}
	if data == nil {
		return "", nil
	}
	file, err := c.cfg.sink.Write(ctx, IndexName, data, comments, c.cfg.dryRun)
	if err != nil {
		return "", &WriteError{Module: IndexName, Err: err}
	}
	c.Log(slog.LevelDebug, "index written", slog.String("file", file), slog.Int("modules", len(infos)))
	return file, nil
}
