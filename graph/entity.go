package graph

import "github.com/syssam/metagen"

// Entity is the domain payload bound to a vertex. Implementations embed
// Base, which carries the binding.
type Entity interface {
	// Node returns the vertex the entity is bound to, or NoNode.
	Node() NodeID
	// Graph returns the graph the entity is bound in, or nil.
	Graph() *Graph

	bind(*Graph, NodeID)
}

// Lifecycle hooks. An entity implements the ones it needs; the sweep
// detects them with a type assertion.
type (
	// Validator is called in the validate phase.
	Validator interface {
		Validate() error
	}
	// PostValidator is called in the post-validate phase, after every
	// vertex of the graph was validated.
	PostValidator interface {
		PostValidate() error
	}
	// PostLoader is called by MarkPostloadComplete.
	PostLoader interface {
		PostLoad() error
	}
)

// Base binds an entity to its vertex. The zero value is unbound.
type Base struct {
	g  *Graph
	id NodeID
}

// Node returns the vertex the entity is bound to.
func (b *Base) Node() NodeID { return b.id }

// Graph returns the graph the entity is bound in.
func (b *Base) Graph() *Graph { return b.g }

// Vertex returns the vertex record the entity is bound to.
func (b *Base) Vertex() *Node {
	if b.g == nil {
		return nil
	}
	return b.g.Node(b.id)
}

func (b *Base) bind(g *Graph, id NodeID) {
	b.g, b.id = g, id
}

// EntityAs returns the entity bound to id as a T. A vertex bound to an
// entity of another type is reported as a binding violation.
func EntityAs[T Entity](g *Graph, id NodeID) (T, error) {
	var zero T
	n := g.Node(id)
	if n == nil {
		return zero, g.fail(metagen.KindUnresolved, "", "", "vertex %d does not exist", id)
	}
	e, ok := n.entity.(T)
	if !ok {
		return zero, g.fail(metagen.KindBinding, n.cat.Name, n.global.Name, "bound to %T, not %T", n.entity, zero)
	}
	return e, nil
}
