package model

import (
	"log/slog"

	"github.com/syssam/metagen/graph"
)

// Class is a managed class of the meta-model.
type Class struct {
	graph.Base
	m *Model
	// Name of the class, unique in the model.
	Name string
	// Abstract classes have no instances of their own.
	Abstract bool
}

func (c *Class) global() string { return c.Vertex().Global().Name }

// Superclass returns the direct superclass of c, or nil.
func (c *Class) Superclass() (*Class, error) {
	id, ok, err := c.m.superclass.Target(c.global())
	if err != nil || !ok {
		return nil, err
	}
	return graph.EntityAs[*Class](c.m.g, id)
}

// Ancestors returns the superclass chain of c, nearest first. A cycle in
// the chain is a traversal violation.
func (c *Class) Ancestors() ([]*Class, error) {
	var (
		out  []*Class
		seen = map[*Class]bool{c: true}
	)
	for cur := c; ; {
		super, err := cur.Superclass()
		if err != nil {
			return nil, err
		}
		if super == nil {
			return out, nil
		}
		if seen[super] {
			return nil, c.m.traversal(c, "superclass chain cycles through %s", super.Name)
		}
		seen[super] = true
		out = append(out, super)
		cur = super
	}
}

// Subclasses returns the direct subclasses of c in declaration order.
func (c *Class) Subclasses() ([]*Class, error) {
	ids, err := c.m.superclass.Inverse().Targets(c.global())
	if err != nil {
		return nil, err
	}
	return entities[*Class](c.m.g, ids)
}

// IsConcrete reports whether c can have instances of its own.
func (c *Class) IsConcrete() bool { return !c.Abstract }

// IsInstanceOf reports whether instances of c are instances of other, that
// is whether other is c or one of its ancestors.
func (c *Class) IsInstanceOf(other *Class) (bool, error) {
	if c == other {
		return true, nil
	}
	ancestors, err := c.Ancestors()
	if err != nil {
		return false, err
	}
	for _, a := range ancestors {
		if a == other {
			return true, nil
		}
	}
	return false, nil
}

// ContainingClasses returns the classes c is declared to be contained by,
// in declaration order of the containment.
func (c *Class) ContainingClasses() ([]*Class, error) {
	ids, err := c.m.containedBy.Targets(c.global())
	if err != nil {
		return nil, err
	}
	out := make([]*Class, 0, len(ids))
	for _, id := range ids {
		k, err := graph.EntityAs[*Class](c.m.g, id)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}

// ContainedClasses returns the classes declared to be contained by c, in
// declaration order of the classes.
func (c *Class) ContainedClasses() ([]*Class, error) {
	ids, err := c.m.containedBy.Inverse().Targets(c.global())
	if err != nil {
		return nil, err
	}
	return entities[*Class](c.m.g, ids)
}

// IsRoot reports whether c has no declared container.
func (c *Class) IsRoot() bool {
	src, ok := c.m.containedBy.Source(c.global())
	return !ok || !src.HasTarget()
}

// Properties returns the properties declared on c in declaration order.
func (c *Class) Properties() []*Property {
	out, _ := entities[*Property](c.m.g, c.m.g.Children(c.Node(), c.m.properties))
	return out
}

// AllProperties returns the properties of c and its ancestors, farthest
// ancestor first. A property shadowed by a nearer declaration of the same
// name is left out.
func (c *Class) AllProperties() ([]*Property, error) {
	ancestors, err := c.Ancestors()
	if err != nil {
		return nil, err
	}
	chain := append([]*Class{c}, ancestors...)
	seen := make(map[string]bool)
	var reversed []*Property
	for _, k := range chain {
		props := k.Properties()
		for i := len(props) - 1; i >= 0; i-- {
			if p := props[i]; !seen[p.Name] {
				seen[p.Name] = true
				reversed = append(reversed, p)
			}
		}
	}
	out := make([]*Property, len(reversed))
	for i, p := range reversed {
		out[len(reversed)-1-i] = p
	}
	return out, nil
}

// FindProperty returns the property name of c, or of its nearest ancestor
// declaring one.
func (c *Class) FindProperty(name string) (*Property, bool, error) {
	ancestors, err := c.Ancestors()
	if err != nil {
		return nil, false, err
	}
	for _, k := range append([]*Class{c}, ancestors...) {
		if id, ok := c.m.g.Child(k.Node(), c.m.properties, name); ok {
			p, err := graph.EntityAs[*Property](c.m.g, id)
			return p, err == nil, err
		}
	}
	return nil, false, nil
}

// NamingRule returns the naming rule declared on c itself, or nil.
func (c *Class) NamingRule() *NamingRule {
	id, ok := c.m.g.Child(c.Node(), c.m.namings, namingKey)
	if !ok {
		return nil
	}
	r, _ := graph.EntityAs[*NamingRule](c.m.g, id)
	return r
}

// FindNamingRule returns the naming rule of c or of its nearest ancestor
// declaring one, or nil if there is none.
func (c *Class) FindNamingRule() (*NamingRule, error) {
	if r := c.NamingRule(); r != nil {
		return r, nil
	}
	ancestors, err := c.Ancestors()
	if err != nil {
		return nil, err
	}
	for _, a := range ancestors {
		if r := a.NamingRule(); r != nil {
			return r, nil
		}
	}
	return nil, nil
}

// Validate checks that the superclass chain of c terminates. A chain
// through an undeclared superclass is left to the relator naming it, which
// reports it once.
func (c *Class) Validate() error {
	seen := make(map[*Class]bool)
	for k := c; k != nil && !seen[k]; {
		if !k.superclassDeclared() {
			return nil
		}
		seen[k] = true
		super, err := k.Superclass()
		if err != nil {
			return err
		}
		k = super
	}
	_, err := c.Ancestors()
	return err
}

// superclassDeclared reports whether the superclass c extends, if any, is
// a declared class. It reports nothing to the graph.
func (c *Class) superclassDeclared() bool {
	src, ok := c.m.superclass.Source(c.global())
	if !ok {
		return true
	}
	for _, t := range src.Targets() {
		cat, name := t.Pointee()
		if _, ok := cat.Lookup(name); !ok {
			return false
		}
	}
	return true
}

// PostValidate warns about contained classes that fall back to positional
// naming.
func (c *Class) PostValidate() error {
	if c.IsRoot() || !c.IsConcrete() {
		return nil
	}
	rule, err := c.FindNamingRule()
	if err != nil {
		return err
	}
	if rule == nil {
		c.m.g.Logger().Warn("no naming rule, instances are named by position", slog.String("class", c.Name))
	}
	return nil
}
