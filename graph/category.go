package graph

import "strings"

// Category is a named entity type registered in a Graph. It owns the global
// index of its vertices and acts as the factory for them.
type Category struct {
	Identity
	g     *Graph
	index *Entry
	rel   *relationInfo // nil for plain categories
}

// Graph returns the graph the category is registered in.
func (c *Category) Graph() *Graph { return c.g }

// Index returns the global index of the category.
func (c *Category) Index() *Entry { return c.index }

// Lookup resolves a vertex by its global name.
func (c *Category) Lookup(globalName string) (NodeID, bool) {
	return c.index.Lookup(globalName)
}

// LookupID resolves a vertex by its global id.
func (c *Category) LookupID(id int) (NodeID, bool) {
	return c.index.LookupID(id)
}

// Nodes returns the vertices of the category in ascending global id order.
func (c *Category) Nodes() []NodeID { return c.index.Nodes() }

// Len returns the number of vertices of the category.
func (c *Category) Len() int { return c.index.Len() }

// IsRelation reports whether c is a relation category.
func (c *Category) IsRelation() bool { return c.rel != nil }

// Cardinality returns the cardinality of a relation category, and 0 for
// plain categories.
func (c *Category) Cardinality() Cardinality {
	if c.rel == nil {
		return 0
	}
	return c.rel.card
}

// Role returns the role of a relation category, and 0 for plain categories.
func (c *Category) Role() Role {
	if c.rel == nil {
		return 0
	}
	return c.rel.role
}

// Polarity returns the polarity of a relation category, and 0 for plain
// categories.
func (c *Category) Polarity() Polarity {
	if c.rel == nil {
		return 0
	}
	return c.rel.polarity
}

// rootKey is the key of a root vertex in its category's global index.
// Names that already are global names, like the pointee names relators are
// created under, keep their single leading slash.
func rootKey(name string) string { return "/" + strings.TrimPrefix(name, "/") }

// childKey is the global name of a vertex under the given parent.
func childKey(parent, name string) string {
	return strings.TrimSuffix(parent, "/") + "/" + strings.TrimPrefix(name, "/")
}

// Category returns the category registered under name, creating it if it
// does not exist. Concurrent calls with distinct names are safe.
func (g *Graph) Category(name string) *Category {
	g.mu.RLock()
	c, ok := g.catByName[name]
	g.mu.RUnlock()
	if ok {
		return c
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.category(name, nil)
}

// LookupCategory returns the category registered under name.
func (g *Graph) LookupCategory(name string) (*Category, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	c, ok := g.catByName[name]
	return c, ok
}

// Categories returns all categories in registration order.
func (g *Graph) Categories() []*Category {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Category, len(g.cats))
	copy(out, g.cats)
	return out
}

// category expects g.mu to be held for writing.
func (g *Graph) category(name string, rel *relationInfo) *Category {
	if c, ok := g.catByName[name]; ok {
		return c
	}
	c := &Category{
		Identity: Identity{ID: len(g.cats) + 1, Name: name},
		g:        g,
		index:    newEntry(),
		rel:      rel,
	}
	g.cats = append(g.cats, c)
	g.catByName[name] = c
	g.log.Debug("category registered", "category", name, "id", c.ID)
	return c
}
