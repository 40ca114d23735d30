package graph

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/syssam/metagen"
)

// Graph owns every category, vertex and relation of one model. Independent
// graphs share nothing.
type Graph struct {
	id      uuid.UUID
	log     *slog.Logger
	halt    func(error)
	collect bool

	// mu guards the category registry.
	mu        sync.RWMutex
	cats      []*Category
	catByName map[string]*Category

	// arena guards nodes. Vertex records are never removed.
	arena sync.RWMutex
	nodes []*Node

	relMu     sync.Mutex
	relations map[string]*relationKind

	stage     atomic.Uint32
	validated atomic.Bool

	diagMu sync.Mutex
	diags  []error
}

// Option configures a Graph.
type Option func(*Graph)

// WithLogger sets the logger violations and lifecycle events are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(g *Graph) {
		if l != nil {
			g.log = l
		}
	}
}

// WithHalt sets the function invoked on every violation in fail-fast mode,
// after it was logged. Processes that must stop on the first modeling
// defect pass a function that exits.
func WithHalt(fn func(error)) Option {
	return func(g *Graph) {
		g.halt = fn
	}
}

// WithDiagnostics switches the graph to collection mode: the sweep keeps
// going after a violation and ValidateAll returns all of them at once.
func WithDiagnostics() Option {
	return func(g *Graph) {
		g.collect = true
	}
}

// New returns an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{
		id:        uuid.New(),
		log:       slog.Default(),
		catByName: make(map[string]*Category),
		relations: make(map[string]*relationKind),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.log = g.log.With("graph", g.id.String())
	return g
}

// ID returns the instance id of the graph, used to correlate log records.
func (g *Graph) ID() uuid.UUID { return g.id }

// Logger returns the logger of the graph.
func (g *Graph) Logger() *slog.Logger { return g.log }

// Diagnostics returns the violations collected so far.
func (g *Graph) Diagnostics() []error {
	g.diagMu.Lock()
	defer g.diagMu.Unlock()
	out := make([]error, len(g.diags))
	copy(out, g.diags)
	return out
}

// Report sends a violation through the graph's fatal sink: it is logged
// with its full context, recorded in collection mode, and handed to the
// halt function in fail-fast mode. Report returns err.
func (g *Graph) Report(err *metagen.Error) error {
	g.log.Error("model graph violation",
		"kind", err.Kind.String(),
		"category", err.Category,
		"name", err.Name,
		"message", err.Message,
	)
	if g.collect {
		g.diagMu.Lock()
		g.diags = append(g.diags, err)
		g.diagMu.Unlock()
	} else if g.halt != nil {
		g.halt(err)
	}
	return err
}

func (g *Graph) fail(kind metagen.Kind, cat, name, format string, args ...any) error {
	return g.Report(metagen.Errorf(kind, cat, name, format, args...))
}

// Node returns the vertex record of id, or nil if there is none.
func (g *Graph) Node(id NodeID) *Node {
	g.arena.RLock()
	defer g.arena.RUnlock()
	if id < 1 || int(id) > len(g.nodes) {
		return nil
	}
	return g.nodes[id-1]
}

// Len returns the number of vertices in the graph.
func (g *Graph) Len() int {
	g.arena.RLock()
	defer g.arena.RUnlock()
	return len(g.nodes)
}

// Create builds a vertex of category cat named name under parent (NoNode
// for a root vertex) and binds e to it. The vertex is registered in the
// category's global index and in the parent's children for cat.
func (g *Graph) Create(cat *Category, parent NodeID, name string, e Entity) (NodeID, error) {
	if cat == nil || cat.g != g {
		return NoNode, g.fail(metagen.KindBinding, "", name, "category does not belong to this graph")
	}
	if e == nil {
		return NoNode, g.fail(metagen.KindBinding, cat.Name, name, "nil entity")
	}
	if bound := e.Node(); bound != NoNode {
		return NoNode, g.fail(metagen.KindBinding, cat.Name, name, "entity already bound to vertex %d", bound)
	}
	var p *Node
	if parent != NoNode {
		if p = g.Node(parent); p == nil {
			return NoNode, g.fail(metagen.KindUnresolved, cat.Name, name, "parent vertex %d does not exist", parent)
		}
	}
	scope := g.scope(cat, p)
	scope.mu.Lock()
	defer scope.mu.Unlock()
	id, _, err := g.create(cat, p, scope, name, e)
	return id, err
}

// findOrCreate returns the vertex named name under parent, creating it with
// the entity returned by newEntity if it does not exist. The scope lock is
// held across lookup and creation.
func (g *Graph) findOrCreate(cat *Category, p *Node, name string, newEntity func() Entity) (NodeID, bool, error) {
	scope := g.scope(cat, p)
	scope.mu.Lock()
	defer scope.mu.Unlock()
	key := name
	if p == nil {
		key = rootKey(name)
	}
	if id, ok := scope.lookup(key); ok {
		return id, false, nil
	}
	id, _, err := g.create(cat, p, scope, name, newEntity())
	return id, err == nil, err
}

// scope returns the entry local identities under p are allocated from.
func (g *Graph) scope(cat *Category, p *Node) *Entry {
	if p == nil {
		return cat.index
	}
	return p.children.entry(cat)
}

// create expects scope.mu to be held.
func (g *Graph) create(cat *Category, p *Node, scope *Entry, name string, e Entity) (NodeID, *Node, error) {
	n := &Node{cat: cat}
	if p == nil {
		key := rootKey(name)
		id, ok := scope.allocate(key)
		if !ok {
			return NoNode, nil, g.fail(metagen.KindDuplicate, cat.Name, key, "already registered")
		}
		n.local = Identity{ID: id, Name: name}
		n.global = Identity{ID: id, Name: key}
		g.bind(n, e)
		scope.set(id, n.id)
	} else {
		id, ok := scope.allocate(name)
		if !ok {
			return NoNode, nil, g.fail(metagen.KindDuplicate, cat.Name, childKey(p.global.Name, name), "already registered under %s", p.global.Name)
		}
		key := childKey(p.global.Name, name)
		cat.index.mu.Lock()
		gid, ok := cat.index.allocate(key)
		if !ok {
			cat.index.mu.Unlock()
			scope.release(name, id)
			return NoNode, nil, g.fail(metagen.KindDuplicate, cat.Name, key, "global name already registered")
		}
		n.parent = p.id
		n.local = Identity{ID: id, Name: name}
		n.global = Identity{ID: gid, Name: key}
		g.bind(n, e)
		cat.index.set(gid, n.id)
		cat.index.mu.Unlock()
		scope.set(id, n.id)
	}
	return n.id, n, nil
}

// bind appends n to the arena and binds e to it.
func (g *Graph) bind(n *Node, e Entity) {
	g.arena.Lock()
	defer g.arena.Unlock()
	n.id = NodeID(len(g.nodes) + 1)
	n.entity = e
	e.bind(g, n.id)
	g.nodes = append(g.nodes, n)
}

// Ancestor returns the nearest strict ancestor of id whose category is cat.
func (g *Graph) Ancestor(id NodeID, cat *Category) (NodeID, bool) {
	n := g.Node(id)
	for n != nil && n.parent != NoNode {
		n = g.Node(n.parent)
		if n != nil && n.cat == cat {
			return n.id, true
		}
	}
	return NoNode, false
}

// Children returns the children of id of category cat in local id order.
func (g *Graph) Children(id NodeID, cat *Category) []NodeID {
	n := g.Node(id)
	if n == nil {
		return nil
	}
	if e := n.children.lookup(cat); e != nil {
		return e.Nodes()
	}
	return nil
}

// Child returns the child of id of category cat with the given local name.
func (g *Graph) Child(id NodeID, cat *Category, name string) (NodeID, bool) {
	n := g.Node(id)
	if n == nil {
		return NoNode, false
	}
	if e := n.children.lookup(cat); e != nil {
		return e.Lookup(name)
	}
	return NoNode, false
}
