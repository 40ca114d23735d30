package graph

import "sync"

// Phase is the validation progress of a vertex. It only moves forward.
type Phase uint8

const (
	PhaseConstructed Phase = iota
	PhaseValidated
	PhasePostValidated
)

func (p Phase) String() string {
	switch p {
	case PhaseValidated:
		return "validated"
	case PhasePostValidated:
		return "post-validated"
	default:
		return "constructed"
	}
}

// Node is a vertex: a position in the graph with a parent, a local and a
// global identity, children grouped by category and one bound entity.
type Node struct {
	id       NodeID
	local    Identity
	global   Identity
	cat      *Category
	parent   NodeID
	children Children
	entity   Entity
	phase    Phase
}

// ID returns the arena index of the vertex.
func (n *Node) ID() NodeID { return n.id }

// Local returns the identity of the vertex among its siblings of the same
// category.
func (n *Node) Local() Identity { return n.local }

// Global returns the identity of the vertex within its category.
func (n *Node) Global() Identity { return n.global }

// Category returns the category of the vertex.
func (n *Node) Category() *Category { return n.cat }

// Parent returns the parent vertex, or NoNode for a root vertex.
func (n *Node) Parent() NodeID { return n.parent }

// Entity returns the entity bound to the vertex.
func (n *Node) Entity() Entity { return n.entity }

// Phase returns the validation phase the vertex reached.
func (n *Node) Phase() Phase { return n.phase }

// ChildCategories returns the categories the vertex has children of, in the
// order they were first used.
func (n *Node) ChildCategories() []*Category { return n.children.categories() }

// Children is the lazily created set of per-category indexes of a vertex.
// It lets one vertex hold children of many categories side by side.
type Children struct {
	mu    sync.Mutex
	order []*Category
	byCat map[*Category]*Entry
}

// entry returns the index for cat, creating it on first use.
func (c *Children) entry(cat *Category) *Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.byCat[cat]; ok {
		return e
	}
	if c.byCat == nil {
		c.byCat = make(map[*Category]*Entry)
	}
	e := newEntry()
	c.byCat[cat] = e
	c.order = append(c.order, cat)
	return e
}

// lookup returns the index for cat, or nil if the vertex has no children of
// that category.
func (c *Children) lookup(cat *Category) *Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.byCat[cat]
}

func (c *Children) categories() []*Category {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Category, len(c.order))
	copy(out, c.order)
	return out
}
