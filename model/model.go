// Package model is the meta-model metagen generates code from: managed
// classes, primitive types, properties and naming rules, built on the
// model-graph engine.
//
// A model is constructed first, validated once, and only then queried:
//
//	m := model.New(graph.New())
//	m.DefineType("string", "string", "string")
//	root, _ := m.DefineClass("Root", false)
//	child, _ := m.DefineClass("Child", false)
//	m.DefineProperty(child, "id", "string")
//	m.DefineNaming(child, model.Named("id"))
//	m.Contain("Child", "Root")
//	if err := m.Validate(); err != nil {
//	    ...
//	}
//	paths, _ := child.NamingPaths()
//
// Queries are only meaningful after Validate returned nil; the model does not
// enforce this ordering.
package model

import (
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/syssam/metagen"
	"github.com/syssam/metagen/graph"
)

// Category and relation names of the meta-model.
const (
	CategoryClass    = "class"
	CategoryType     = "type"
	CategoryProperty = "property"
	CategoryNaming   = "naming"

	RelationSuperclass   = "superclass"
	RelationContainedBy  = "contained-by"
	RelationPropertyType = "property-type"
)

// namingKey is the local name of a class's naming rule vertex.
const namingKey = "naming"

// DefaultCacheSize is the number of classes whose derived paths are
// memoized by default.
const DefaultCacheSize = 1024

// Model is a meta-model held in a graph.
type Model struct {
	g *graph.Graph

	classes    *graph.Category
	types      *graph.Category
	properties *graph.Category
	namings    *graph.Category

	superclass   graph.Relation
	containedBy  graph.Relation
	propertyType graph.Relation

	containment *lru.Cache[graph.NodeID, [][]*Class]
	naming      *lru.Cache[graph.NodeID, *NamingPaths]
}

type config struct {
	cacheSize int
}

// Option configures a Model.
type Option func(*config)

// WithCacheSize sets how many classes' containment and naming paths are
// memoized once the graph is validated.
func WithCacheSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.cacheSize = n
		}
	}
}

// New registers the meta-model's categories and relations in g and marks
// the meta-model as loaded.
func New(g *graph.Graph, opts ...Option) *Model {
	cfg := config{cacheSize: DefaultCacheSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	m := &Model{
		g:            g,
		classes:      g.Category(CategoryClass),
		types:        g.Category(CategoryType),
		properties:   g.Category(CategoryProperty),
		namings:      g.Category(CategoryNaming),
		superclass:   g.Relation(RelationSuperclass, graph.Single),
		containedBy:  g.Relation(RelationContainedBy, graph.Multi),
		propertyType: g.Relation(RelationPropertyType, graph.Single),
	}
	// Errors are only returned for non-positive sizes.
	m.containment, _ = lru.New[graph.NodeID, [][]*Class](cfg.cacheSize)
	m.naming, _ = lru.New[graph.NodeID, *NamingPaths](cfg.cacheSize)
	g.MarkMetamodelLoaded()
	return m
}

// Graph returns the graph the model is held in.
func (m *Model) Graph() *graph.Graph { return m.g }

// Validate completes loading and runs the graph's validation sweep.
func (m *Model) Validate() error {
	m.g.MarkPreloadComplete()
	if err := m.g.MarkPostloadComplete(); err != nil {
		return err
	}
	m.containment.Purge()
	m.naming.Purge()
	return m.g.ValidateAll()
}

// DefineType declares a primitive type. syntax is the binding syntax used
// in naming signatures; goType is the Go type generated code uses.
func (m *Model) DefineType(name, syntax, goType string) (*PrimitiveType, error) {
	t := &PrimitiveType{Name: name, Syntax: syntax, GoType: goType}
	if _, err := m.g.Create(m.types, graph.NoNode, name, t); err != nil {
		return nil, err
	}
	return t, nil
}

// DefineClass declares a managed class.
func (m *Model) DefineClass(name string, abstract bool) (*Class, error) {
	c := &Class{m: m, Name: name, Abstract: abstract}
	if _, err := m.g.Create(m.classes, graph.NoNode, name, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Extend makes super the superclass of sub. Either class may be declared
// later; the relation is checked by the validation sweep.
func (m *Model) Extend(sub, super string) error {
	_, err := m.superclass.Create(m.classes, globalName(sub), m.classes, globalName(super))
	return err
}

// Contain declares that instances of child live inside instances of
// container.
func (m *Model) Contain(child, container string) error {
	_, err := m.containedBy.Create(m.classes, globalName(child), m.classes, globalName(container))
	return err
}

// DefineProperty declares a property of class c typed by the primitive type
// typeName.
func (m *Model) DefineProperty(c *Class, name, typeName string) (*Property, error) {
	p := &Property{m: m, Name: name, TypeName: typeName}
	id, err := m.g.Create(m.properties, c.Node(), name, p)
	if err != nil {
		return nil, err
	}
	if _, err := m.propertyType.Create(m.properties, m.g.Node(id).Global().Name, m.types, globalName(typeName)); err != nil {
		return nil, err
	}
	return p, nil
}

// DefineNaming declares how instances of c are named inside their
// container. A class has at most one naming rule.
func (m *Model) DefineNaming(c *Class, components ...Component) (*NamingRule, error) {
	r := &NamingRule{m: m, Components: slices.Clone(components)}
	if _, err := m.g.Create(m.namings, c.Node(), namingKey, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Class returns the class declared as name.
func (m *Model) Class(name string) (*Class, bool) {
	id, ok := m.classes.Lookup(globalName(name))
	if !ok {
		return nil, false
	}
	c, err := graph.EntityAs[*Class](m.g, id)
	return c, err == nil
}

// Type returns the primitive type declared as name.
func (m *Model) Type(name string) (*PrimitiveType, bool) {
	id, ok := m.types.Lookup(globalName(name))
	if !ok {
		return nil, false
	}
	t, err := graph.EntityAs[*PrimitiveType](m.g, id)
	return t, err == nil
}

// Classes returns every class in declaration order.
func (m *Model) Classes() []*Class {
	out, _ := entities[*Class](m.g, m.classes.Nodes())
	return out
}

// Types returns every primitive type in declaration order.
func (m *Model) Types() []*PrimitiveType {
	out, _ := entities[*PrimitiveType](m.g, m.types.Nodes())
	return out
}

func globalName(name string) string { return "/" + name }

// entities maps vertices to their entities, ordered by vertex id.
func entities[T graph.Entity](g *graph.Graph, ids []graph.NodeID) ([]T, error) {
	ids = slices.Clone(ids)
	slices.Sort(ids)
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		e, err := graph.EntityAs[T](g, id)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// traversal reports a corrupted or cyclic walk.
func (m *Model) traversal(c *Class, format string, args ...any) error {
	return m.g.Report(metagen.Errorf(metagen.KindTraversal, CategoryClass, c.Name, format, args...))
}
