package model

import (
	"log/slog"
	"strings"

	"github.com/syssam/metagen"
	"github.com/syssam/metagen/graph"
)

// PrimitiveType is a scalar type properties are declared with.
type PrimitiveType struct {
	graph.Base
	// Name of the type, unique in the model.
	Name string
	// Syntax is the binding syntax the type contributes to naming
	// signatures.
	Syntax string
	// GoType is the Go type generated code declares for the type.
	GoType string
}

// Validate falls back to the type name when no syntax was declared.
func (t *PrimitiveType) Validate() error {
	if t.Syntax == "" {
		t.Graph().Logger().Warn("type has no binding syntax, using its name", slog.String("type", t.Name))
		t.Syntax = t.Name
	}
	if t.GoType == "" {
		t.GoType = t.Name
	}
	return nil
}

// Property is a typed attribute declared on a class.
type Property struct {
	graph.Base
	m *Model
	// Name of the property, unique in its class.
	Name string
	// TypeName is the primitive type name as declared.
	TypeName string
	// Index is the stable position of the property in the owning class's
	// AllProperties. It is assigned once the model is validated.
	Index int
}

// Owner returns the class declaring p.
func (p *Property) Owner() *Class {
	id, ok := p.m.g.Ancestor(p.Node(), p.m.classes)
	if !ok {
		return nil
	}
	c, _ := graph.EntityAs[*Class](p.m.g, id)
	return c
}

// Type resolves the primitive type of p.
func (p *Property) Type() (*PrimitiveType, error) {
	id, ok, err := p.m.propertyType.Target(p.Vertex().Global().Name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, p.m.g.Report(metagen.Errorf(metagen.KindUnresolved, CategoryProperty, p.Vertex().Global().Name,
			"property has no type"))
	}
	return graph.EntityAs[*PrimitiveType](p.m.g, id)
}

// PostValidate assigns the stable index of p.
func (p *Property) PostValidate() error {
	owner := p.Owner()
	if owner == nil {
		return nil
	}
	all, err := owner.AllProperties()
	if err != nil {
		return err
	}
	for i, q := range all {
		if q == p {
			p.Index = i
			break
		}
	}
	return nil
}

// Component is one part of a naming rule: a property whose value names the
// instance, or an anonymous positional slot.
type Component struct {
	// Property is the name of the naming property, empty for a positional
	// component.
	Property string
}

// Named returns a component naming instances by the value of prop.
func Named(prop string) Component { return Component{Property: prop} }

// Positional returns an anonymous component naming instances by position.
func Positional() Component { return Component{} }

// IsPositional reports whether c names instances by position.
func (c Component) IsPositional() bool { return c.Property == "" }

func (c Component) String() string {
	if c.IsPositional() {
		return "-"
	}
	return c.Property
}

// NamingRule tells how instances of a class are named inside their
// container.
type NamingRule struct {
	graph.Base
	m *Model
	// Components are the parts of the name, outermost first.
	Components []Component
}

// Class returns the class declaring r.
func (r *NamingRule) Class() *Class {
	id, ok := r.m.g.Ancestor(r.Node(), r.m.classes)
	if !ok {
		return nil
	}
	c, _ := graph.EntityAs[*Class](r.m.g, id)
	return c
}

// Signature returns the signature markers r contributes to a naming path.
func (r *NamingRule) Signature() (string, error) {
	var b strings.Builder
	for _, comp := range r.Components {
		if comp.IsPositional() {
			b.WriteString(":-")
			continue
		}
		p, err := r.property(comp)
		if err != nil {
			return "", err
		}
		t, err := p.Type()
		if err != nil {
			return "", err
		}
		b.WriteString(":" + t.Syntax)
	}
	return b.String(), nil
}

// Properties resolves the named components of r, in component order.
func (r *NamingRule) Properties() ([]*Property, error) {
	var out []*Property
	for _, comp := range r.Components {
		if comp.IsPositional() {
			continue
		}
		p, err := r.property(comp)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Validate checks that every named component is a property of the class.
func (r *NamingRule) Validate() error {
	_, err := r.Properties()
	return err
}

func (r *NamingRule) property(comp Component) (*Property, error) {
	c := r.Class()
	if c == nil {
		return nil, r.m.g.Report(metagen.Errorf(metagen.KindUnresolved, CategoryNaming, r.Vertex().Global().Name,
			"naming rule has no class"))
	}
	p, ok, err := c.FindProperty(comp.Property)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, r.m.g.Report(metagen.Errorf(metagen.KindUnresolved, CategoryNaming, r.Vertex().Global().Name,
			"%s has no property %q", c.Name, comp.Property))
	}
	return p, nil
}
