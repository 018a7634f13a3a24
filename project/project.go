// Package project builds throw-away directory trees, for handlers that serve
// or read files.
package project

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/xid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/thinkgos/mockhttp/pkg/izap"
)

// ErrInvalidPath file path is absolute or leaves the project root.
var ErrInvalidPath = errors.New("project: file path must be relative and stay inside the root")

type file struct {
	path string
	body string
}

// Builder describes a project tree: a root directory and the files in it.
// Nothing touches the disk until Build.
type Builder struct {
	name   string
	tmpDir string
	root   string
	files  []file
	log    *zap.Logger
}

// Option for New
type Option func(b *Builder)

// WithTempDir directory the project is created under, default os.TempDir().
func WithTempDir(dir string) Option {
	return func(b *Builder) {
		b.tmpDir = dir
	}
}

// WithLogger logger, default izap.Logger().
func WithLogger(log *zap.Logger) Option {
	return func(b *Builder) {
		b.log = log
	}
}

// New a project named name, its root is <tmp>/mockhttp-tests/<name>-<unique id>.
func New(name string, opts ...Option) *Builder {
	b := &Builder{
		name:   name,
		tmpDir: os.TempDir(),
		log:    izap.Logger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.root = filepath.Join(b.tmpDir, "mockhttp-tests", name+"-"+xid.New().String())
	return b
}

// Root the project's root directory.
func (sf *Builder) Root() string { return sf.root }

// File add a file at path, relative to the root, with body.
func (sf *Builder) File(path, body string) *Builder {
	sf.files = append(sf.files, file{path, body})
	return sf
}

// Build (re)creates the tree, any previous content of the root is removed first.
// On failure the partial tree is removed.
func (sf *Builder) Build() error {
	if err := sf.Cleanup(); err != nil {
		return err
	}
	if err := os.MkdirAll(sf.root, 0755); err != nil {
		return fmt.Errorf("project: create root, %w", err)
	}
	for _, f := range sf.files {
		if err := f.write(sf.root); err != nil {
			return multierr.Append(err, sf.Cleanup())
		}
	}
	sf.log.Debug("project built",
		zap.String("name", sf.name),
		zap.String("root", sf.root),
		zap.Int("files", len(sf.files)),
	)
	return nil
}

// MustBuild Build or fail tb, the tree is removed when tb finishes.
func (sf *Builder) MustBuild(tb testing.TB) *Builder {
	tb.Helper()
	if err := sf.Build(); err != nil {
		tb.Fatalf("build project %s: %v", sf.name, err)
	}
	tb.Cleanup(func() {
		if err := sf.Cleanup(); err != nil {
			tb.Errorf("cleanup project %s: %v", sf.name, err)
		}
	})
	return sf
}

// Cleanup removes the root and everything under it, a missing root is fine.
// Removal is retried a few times, files may still be held open briefly.
func (sf *Builder) Cleanup() error {
	err := backoff.Retry(func() error {
		return os.RemoveAll(sf.root)
	}, backoff.WithMaxRetries(backoff.NewConstantBackOff(20*time.Millisecond), 3))
	if err != nil {
		return fmt.Errorf("project: remove root, %w", err)
	}
	return nil
}

func (sf file) write(root string) error {
	p := filepath.Clean(filepath.FromSlash(sf.path))
	if filepath.IsAbs(p) || p == "." || p == ".." || strings.HasPrefix(p, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: %q", ErrInvalidPath, sf.path)
	}
	name := filepath.Join(root, p)
	if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return fmt.Errorf("project: create dir for %s, %w", sf.path, err)
	}
	if err := ioutil.WriteFile(name, []byte(sf.body), 0644); err != nil {
		return fmt.Errorf("project: write %s, %w", sf.path, err)
	}
	return nil
}
