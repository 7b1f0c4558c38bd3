package collect

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/guard/internal/config"
	"github.com/dshills/guard/internal/redact"
	"go.uber.org/zap"
)

// ErrNotDirectory is returned when the root is missing or not a directory.
var ErrNotDirectory = errors.New("not a valid directory")

// progressEvery is how many scanned files separate two progress callbacks.
const progressEvery = 50

// FileEntry is a text file read from the tree.
type FileEntry struct {
	// Path is relative to the walked root.
	Path    string
	Content string
}

// Options controls which files are read.
type Options struct {
	IgnoreDirs       []string
	IgnoreExtensions []string
	IgnoreFiles      []string
	// LargeFileBytes is the size above which a file is reported. It is
	// still included.
	LargeFileBytes int64
	Redact         redact.Policy
	// OnProgress, when set, receives the running count of scanned files.
	OnProgress func(scanned int)
}

// OptionsFromConfig maps the configuration onto collector options. The
// guidance file is always ignored.
func OptionsFromConfig(cfg config.Config) Options {
	files := append([]string(nil), cfg.Ignore.Files...)
	if cfg.GuidanceFile != "" {
		files = append(files, cfg.GuidanceFile)
	}
	return Options{
		IgnoreDirs:       cfg.Ignore.Dirs,
		IgnoreExtensions: cfg.Ignore.Extensions,
		IgnoreFiles:      files,
		LargeFileBytes:   cfg.LargeFileBytes,
		Redact: redact.Policy{
			Secrets: cfg.RedactSecrets,
			Paths:   cfg.RedactPaths,
		},
	}
}

// Stats counts what happened during a walk.
type Stats struct {
	Scanned  int
	Included int
	Skipped  int
	Errors   int
	Redacted int
}

// Collector reads eligible files from a directory tree.
type Collector struct {
	opts   Options
	logger *zap.Logger

	dirs  map[string]bool
	exts  map[string]bool
	files map[string]bool

	stats Stats
}

// New creates a Collector. A nil logger discards diagnostics.
func New(opts Options, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	exts := make(map[string]bool, len(opts.IgnoreExtensions))
	for _, e := range opts.IgnoreExtensions {
		e = strings.ToLower(e)
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts[e] = true
	}
	return &Collector{
		opts:   opts,
		logger: logger,
		dirs:   toSet(opts.IgnoreDirs),
		exts:   exts,
		files:  toSet(opts.IgnoreFiles),
	}
}

// Collect is a convenience wrapper around New(opts, logger).Collect.
func Collect(ctx context.Context, root string, opts Options, logger *zap.Logger) ([]FileEntry, error) {
	return New(opts, logger).Collect(ctx, root)
}

// Stats returns the counters of the last Collect call.
func (c *Collector) Stats() Stats { return c.stats }

// Collect walks root in lexical order and returns the eligible files in
// discovery order. If root is not a directory it logs the problem and
// returns an empty result with an error wrapping ErrNotDirectory. A symlinked
// root is resolved first; links found inside the tree are never followed.
func (c *Collector) Collect(ctx context.Context, root string) ([]FileEntry, error) {
	c.stats = Stats{}

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		c.logger.Error("target is not a valid directory", zap.String("path", root), zap.Error(err))
		return []FileEntry{}, fmt.Errorf("%s: %w", root, ErrNotDirectory)
	}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	entries := []FileEntry{}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			c.stats.Errors++
			c.logger.Warn("error accessing path", zap.String("path", path), zap.Error(walkErr))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != root && c.skipDir(d.Name()) {
				c.logger.Debug("skipping ignored directory", zap.String("dir", path))
				return filepath.SkipDir
			}
			return nil
		}

		c.stats.Scanned++
		if c.opts.OnProgress != nil && c.stats.Scanned%progressEvery == 0 {
			c.opts.OnProgress(c.stats.Scanned)
		}

		entry, ok := c.readFile(root, path, d)
		if !ok {
			c.stats.Skipped++
			return nil
		}
		c.stats.Included++
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return entries, fmt.Errorf("walking %s: %w", root, err)
	}

	c.logger.Debug("collection finished",
		zap.String("root", root),
		zap.Int("scanned", c.stats.Scanned),
		zap.Int("included", c.stats.Included),
		zap.Int("skipped", c.stats.Skipped),
		zap.Int("errors", c.stats.Errors),
		zap.Int("redacted", c.stats.Redacted),
	)
	return entries, nil
}

func (c *Collector) skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || c.dirs[name]
}

func (c *Collector) skipName(name string) bool {
	if strings.HasPrefix(name, ".") || c.files[name] {
		return true
	}
	return c.exts[strings.ToLower(filepath.Ext(name))]
}

// readFile applies the per-file filters and reads the content. The boolean
// is false when the file must not be emitted.
func (c *Collector) readFile(root, path string, d fs.DirEntry) (FileEntry, bool) {
	name := d.Name()
	if c.skipName(name) {
		return FileEntry{}, false
	}
	if d.Type()&fs.ModeSymlink != 0 || !d.Type().IsRegular() {
		c.logger.Debug("skipping non-regular file", zap.String("file", path))
		return FileEntry{}, false
	}

	info, err := d.Info()
	if err != nil {
		c.stats.Errors++
		c.logger.Warn("failed to stat file", zap.String("file", path), zap.Error(err))
		return FileEntry{}, false
	}
	if c.opts.LargeFileBytes > 0 && info.Size() > c.opts.LargeFileBytes {
		c.logger.Warn("large file included",
			zap.String("file", path),
			zap.String("size", fmt.Sprintf("%.1f MiB", float64(info.Size())/(1024*1024))),
		)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		c.stats.Errors++
		c.logger.Warn("failed to read file", zap.String("file", path), zap.Error(err))
		return FileEntry{}, false
	}

	content := strings.TrimSpace(strings.ToValidUTF8(string(data), "\uFFFD"))
	if content == "" || strings.ContainsRune(content, 0) {
		return FileEntry{}, false
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		c.stats.Errors++
		c.logger.Warn("failed to relativize path", zap.String("file", path), zap.Error(err))
		return FileEntry{}, false
	}

	if redacted, changed := c.opts.Redact.Apply(rel, content); changed {
		c.stats.Redacted++
		c.logger.Debug("redacted file content", zap.String("file", rel))
		content = redacted
	}

	return FileEntry{Path: rel, Content: content}, true
}

func toSet(values []string) map[string]bool {
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}
