// Package load turns YAML declaration files into a validated meta-model.
//
// Construction runs on a bounded worker pool in two phases separated by
// barriers: types and classes are registered first, in declaration order,
// then the members and relations of every class are built concurrently.
// The validation sweep runs once both phases completed.
package load

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/syssam/metagen/graph"
	"github.com/syssam/metagen/model"
)

// Extensions are the file extensions LoadDir reads.
var Extensions = []string{".yaml", ".yml"}

// Loader builds models from declarations.
type Loader struct {
	workers    int
	log        *slog.Logger
	graphOpts  []graph.Option
	modelOpts  []model.Option
	noValidate bool
}

// Option configures a Loader.
type Option func(*Loader)

// WithWorkers bounds the number of concurrent construction tasks.
func WithWorkers(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithLogger sets the logger of the loader and of the graphs it builds.
func WithLogger(log *slog.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}

// WithGraphOptions passes options to the graphs the loader builds.
func WithGraphOptions(opts ...graph.Option) Option {
	return func(l *Loader) { l.graphOpts = append(l.graphOpts, opts...) }
}

// WithModelOptions passes options to the models the loader builds.
func WithModelOptions(opts ...model.Option) Option {
	return func(l *Loader) { l.modelOpts = append(l.modelOpts, opts...) }
}

// WithoutValidation leaves the built model unvalidated.
func WithoutValidation() Option {
	return func(l *Loader) { l.noValidate = true }
}

// New returns a loader.
func New(opts ...Option) *Loader {
	l := &Loader{workers: runtime.GOMAXPROCS(0), log: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadDir loads every declaration file under dir, in lexical path order.
func (l *Loader) LoadDir(ctx context.Context, dir string) (*model.Model, error) {
	paths, err := Files(dir)
	if err != nil {
		return nil, err
	}
	return l.LoadFiles(ctx, paths...)
}

// Files returns the declaration files under dir, in lexical path order.
func Files(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && slices.Contains(Extensions, filepath.Ext(path)) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("load: no declaration files in %s", dir)
	}
	return paths, nil
}

// LoadFiles reads and parses paths concurrently and builds the model from
// their merged declarations.
func (l *Loader) LoadFiles(ctx context.Context, paths ...string) (*model.Model, error) {
	files := make([]*File, len(paths))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(l.workers)
	for i, path := range paths {
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("load: %w", err)
			}
			files[i], err = Parse(path, data)
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	decls, err := Merge(files...)
	if err != nil {
		return nil, err
	}
	return l.Build(ctx, decls)
}

// Build constructs and validates the model of decls.
func (l *Loader) Build(ctx context.Context, decls *Declarations) (*model.Model, error) {
	opts := append([]graph.Option{graph.WithLogger(l.log)}, l.graphOpts...)
	m := model.New(graph.New(opts...), l.modelOpts...)

	// Top-level declarations get their identities in declaration order.
	classes := make([]*model.Class, len(decls.Classes))
	for _, t := range decls.Types {
		if _, err := m.DefineType(t.Name, t.Syntax, t.GoType); err != nil {
			return nil, fmt.Errorf("%s: %w", t.Pos, err)
		}
	}
	for i, c := range decls.Classes {
		class, err := m.DefineClass(c.Name, c.Abstract)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.Pos, err)
		}
		classes[i] = class
	}

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(l.workers)
	for i, c := range decls.Classes {
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := members(m, classes[i], c); err != nil {
				return fmt.Errorf("%s: class %s: %w", c.Pos, c.Name, err)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	l.log.Debug("declarations constructed",
		slog.Int("types", len(decls.Types)),
		slog.Int("classes", len(decls.Classes)),
		slog.Int("vertices", m.Graph().Len()),
	)
	if l.noValidate {
		return m, nil
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func members(m *model.Model, class *model.Class, c *ClassDecl) error {
	if c.Extends != "" {
		if err := m.Extend(c.Name, c.Extends); err != nil {
			return err
		}
	}
	for _, container := range c.ContainedBy {
		if err := m.Contain(c.Name, container); err != nil {
			return err
		}
	}
	for _, p := range c.Properties {
		if _, err := m.DefineProperty(class, p.Name, p.Type); err != nil {
			return err
		}
	}
	if len(c.Naming) > 0 {
		if _, err := m.DefineNaming(class, c.Components()...); err != nil {
			return err
		}
	}
	return nil
}
