package graph

import "sync"

// Entry is a per-scope index from name and id to vertex, together with the
// scope's id allocator. A category's global index and every per-category
// child index of a vertex are entries.
//
// Ids are dense and start at 1. The mutex doubles as the scope lock that
// serializes creation within the scope.
type Entry struct {
	mu    sync.RWMutex
	ids   map[string]int
	nodes []NodeID // nodes[id-1]
}

func newEntry() *Entry {
	return &Entry{ids: make(map[string]int)}
}

// Lookup returns the vertex registered under name.
func (e *Entry) Lookup(name string) (NodeID, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lookup(name)
}

// LookupID returns the vertex registered under id.
func (e *Entry) LookupID(id int) (NodeID, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if id < 1 || id > len(e.nodes) || e.nodes[id-1] == NoNode {
		return NoNode, false
	}
	return e.nodes[id-1], true
}

// Len returns the number of allocated ids.
func (e *Entry) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.nodes)
}

// Nodes returns the registered vertices in ascending id order.
func (e *Entry) Nodes() []NodeID {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]NodeID, 0, len(e.nodes))
	for _, n := range e.nodes {
		if n != NoNode {
			out = append(out, n)
		}
	}
	return out
}

// Names returns the registered names, unordered.
func (e *Entry) Names() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, 0, len(e.ids))
	for name := range e.ids {
		out = append(out, name)
	}
	return out
}

// The methods below expect the caller to hold e.mu.

func (e *Entry) lookup(name string) (NodeID, bool) {
	id, ok := e.ids[name]
	if !ok || e.nodes[id-1] == NoNode {
		return NoNode, false
	}
	return e.nodes[id-1], true
}

// allocate reserves the next id for name. It reports false if the name is
// already registered in this scope.
func (e *Entry) allocate(name string) (int, bool) {
	if _, ok := e.ids[name]; ok {
		return 0, false
	}
	e.nodes = append(e.nodes, NoNode)
	id := len(e.nodes)
	e.ids[name] = id
	return id, true
}

// release undoes the most recent allocate of name.
func (e *Entry) release(name string, id int) {
	if id == len(e.nodes) && e.nodes[id-1] == NoNode {
		e.nodes = e.nodes[:id-1]
		delete(e.ids, name)
	}
}

func (e *Entry) set(id int, n NodeID) {
	e.nodes[id-1] = n
}
