package gen

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dave/jennifer/jen"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/metagen/model"
)

// Generator renders a validated model into Go source: one file per class
// holding its struct and the key functions of its naming paths.
type Generator struct {
	m       *model.Model
	cfg     *Config
	log     *slog.Logger
	metrics *Metrics
}

// New returns a generator for m. The model must be validated.
func New(m *model.Model, cfg *Config) (*Generator, error) {
	if cfg == nil {
		return nil, NewConfigError("Config", nil, "config is required")
	}
	if !m.Graph().Validated() {
		return nil, &GenerateError{Cause: ErrNotValidated}
	}
	return &Generator{
		m:       m,
		cfg:     cfg,
		log:     m.Graph().Logger(),
		metrics: &Metrics{},
	}, nil
}

// Metrics returns the generation metrics.
func (g *Generator) Metrics() *Metrics {
	return g.metrics
}

// Generate writes the file of every class in parallel and returns their
// paths in class declaration order.
func (g *Generator) Generate(ctx context.Context) ([]string, error) {
	if err := os.MkdirAll(g.cfg.Target, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	classes := g.m.Classes()
	paths := make([]string, len(classes))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.cfg.Workers)
	for i, c := range classes {
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			name := snake(c.Name) + ".go"
			f, err := g.File(c)
			if err != nil {
				return &GenerateError{Class: c.Name, File: name, Cause: err}
			}
			if paths[i], err = g.writeFile(f, name); err != nil {
				return &GenerateError{Class: c.Name, File: name, Cause: err}
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	g.log.Info("generated",
		slog.String("target", g.cfg.Target),
		slog.Int("files", g.metrics.FilesGenerated),
		slog.Int64("bytes", g.metrics.TotalBytes),
	)
	return paths, nil
}

// File renders the file of class c.
func (g *Generator) File(c *model.Class) (*jen.File, error) {
	f := jen.NewFile(g.cfg.Package)
	if g.cfg.Header != "" {
		f.HeaderComment(g.cfg.Header)
	}
	if err := genStruct(f, c); err != nil {
		return nil, err
	}
	if err := genKeys(f, c); err != nil {
		return nil, err
	}
	return f, nil
}

func genStruct(f *jen.File, c *model.Class) error {
	name := pascal(c.Name)
	super, err := c.Superclass()
	if err != nil {
		return err
	}
	contained, err := c.ContainedClasses()
	if err != nil {
		return err
	}
	var fields []jen.Code
	if super != nil {
		fields = append(fields, jen.Id(pascal(super.Name)))
	}
	for _, p := range c.Properties() {
		typ, err := p.Type()
		if err != nil {
			return err
		}
		fields = append(fields, jen.Id(pascal(p.Name)).Add(goType(typ.GoType)).Tag(map[string]string{"json": p.Name}))
	}
	for _, k := range contained {
		fields = append(fields, jen.Id(plural(k.Name)).Index().Op("*").Id(pascal(k.Name)).
			Tag(map[string]string{"json": snake(plural(k.Name)) + ",omitempty"}))
	}
	if c.Abstract {
		f.Commentf("%s is generated from the abstract %s class. It is only embedded by its subclasses.", name, c.Name)
	} else {
		f.Commentf("%s is generated from the %s class.", name, c.Name)
	}
	f.Type().Id(name).Struct(fields...)
	return nil
}

// genKeys renders one key function per naming path of c. Keys are the
// path's class labels and naming values joined by slashes. When the class
// has several paths the functions are suffixed by the path's containers;
// when two paths share a signature the keys are also prefixed by the root
// label so that they stay distinct.
func genKeys(f *jen.File, c *model.Class) error {
	if c.Abstract || c.IsRoot() {
		return nil
	}
	np, err := c.NamingPaths()
	if err != nil {
		return err
	}
	for _, p := range np.Paths {
		name := pascal(c.Name) + "Key"
		var via []string
		for _, k := range p.Classes[:len(p.Classes)-1] {
			via = append(via, pascal(k.Name))
		}
		if len(np.Paths) > 1 {
			name += "Via" + strings.Join(via, "")
		}
		var (
			params []jen.Code
			parts  []jen.Code
		)
		if !np.Unique {
			parts = append(parts, jen.Lit(snake(p.Classes[0].Name)))
		}
		for _, e := range p.Elements {
			ps, vs, err := elementKey(e)
			if err != nil {
				return err
			}
			params = append(params, ps...)
			parts = append(parts, jen.Lit(snake(e.Class.Name)))
			parts = append(parts, vs...)
		}
		f.Commentf("%s returns the key of a %s contained in %s.", name, c.Name, strings.Join(via, "/"))
		f.Func().Id(name).Params(params...).String().Block(
			jen.Return(jen.Qual("strings", "Join").Call(
				jen.Index().String().Values(parts...),
				jen.Lit("/"),
			)),
		)
	}
	return nil
}

// elementKey returns the parameters and key parts of one naming element.
func elementKey(e model.NamingElement) (params, parts []jen.Code, err error) {
	index := func(n int) {
		id := camel(e.Class.Name + "_index")
		if n > 0 {
			id = fmt.Sprintf("%s%d", id, n+1)
		}
		params = append(params, jen.Id(id).Int())
		parts = append(parts, jen.Qual("strconv", "Itoa").Call(jen.Id(id)))
	}
	if e.Rule == nil {
		index(0)
		return params, parts, nil
	}
	props, err := e.Rule.Properties()
	if err != nil {
		return nil, nil, err
	}
	positional := 0
	for _, comp := range e.Rule.Components {
		if comp.IsPositional() {
			index(positional)
			positional++
			continue
		}
		p := props[0]
		props = props[1:]
		typ, err := p.Type()
		if err != nil {
			return nil, nil, err
		}
		id := camel(e.Class.Name + "_" + p.Name)
		params = append(params, jen.Id(id).Add(goType(typ.GoType)))
		if typ.GoType == "string" {
			parts = append(parts, jen.Id(id))
		} else {
			parts = append(parts, jen.Qual("fmt", "Sprint").Call(jen.Id(id)))
		}
	}
	return params, parts, nil
}
