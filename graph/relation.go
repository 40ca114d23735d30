package graph

import (
	"sort"

	"github.com/syssam/metagen"
)

// Cardinality is the number of targets a source relator may have.
type Cardinality uint8

const (
	Single Cardinality = iota + 1
	Multi
)

func (c Cardinality) String() string {
	switch c {
	case Single:
		return "single"
	case Multi:
		return "multi"
	}
	return "none"
}

// Role is the side of a relation a relator stands on.
type Role uint8

const (
	Source Role = iota + 1
	Target
)

func (r Role) String() string {
	switch r {
	case Source:
		return "source"
	case Target:
		return "target"
	}
	return "none"
}

// Polarity tells the declared direction of a relation from its
// automatically maintained inverse.
type Polarity uint8

const (
	Forward Polarity = iota + 1
	Inverse
)

func (p Polarity) String() string {
	switch p {
	case Forward:
		return "forward"
	case Inverse:
		return "inverse"
	}
	return "none"
}

// relationInfo is the shape of a relation category.
type relationInfo struct {
	name     string
	card     Cardinality
	role     Role
	polarity Polarity
}

// relationKind caches the four categories of one relation name, indexed by
// polarity and role.
type relationKind struct {
	name string
	cats [2][2]*Category
}

func relationCategoryName(name string, pol Polarity, role Role) string {
	if pol == Inverse {
		name += "~inverse"
	}
	if role == Target {
		name += "~target"
	}
	return name
}

// Relation is a handle on one side of a named relation kind. Handles are
// cheap values; the categories behind them are created on first use.
type Relation struct {
	g        *Graph
	name     string
	card     Cardinality // forward cardinality
	polarity Polarity
}

// Relation returns the forward handle of the relation kind name with the
// given cardinality. Using a handle whose cardinality differs from the one
// the relation was first used with is a relation mismatch.
func (g *Graph) Relation(name string, card Cardinality) Relation {
	return Relation{g: g, name: name, card: card, polarity: Forward}
}

// Relations returns the names of the relation kinds in use, sorted.
func (g *Graph) Relations() []string {
	g.relMu.Lock()
	defer g.relMu.Unlock()
	out := make([]string, 0, len(g.relations))
	for name := range g.relations {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Name returns the relation name.
func (r Relation) Name() string { return r.name }

// Polarity returns the polarity of the handle.
func (r Relation) Polarity() Polarity { return r.polarity }

// Cardinality returns the cardinality of the handle's side. Inverse sides
// are always multi.
func (r Relation) Cardinality() Cardinality {
	if r.polarity == Inverse {
		return Multi
	}
	return r.card
}

// Inverse returns the handle of the other side of the relation.
func (r Relation) Inverse() Relation {
	inv := r
	if r.polarity == Forward {
		inv.polarity = Inverse
	} else {
		inv.polarity = Forward
	}
	return inv
}

// Category returns the relation category of the given role on this side,
// creating it on first use.
func (r Relation) Category(role Role) (*Category, error) {
	return r.g.relationCategory(r.name, r.polarity, role, r.Cardinality())
}

// Create relates the vertex fromName of fromCat to the vertex toName of
// toCat. It is the only way relations come into existence, and it always
// materializes the inverse side as well: toName gets an inverse source
// relator whose target is fromName.
//
// Endpoints that already exist are reused. A single-cardinality source that
// already targets another name is a relation mismatch.
func (r Relation) Create(fromCat *Category, fromName string, toCat *Category, toName string) (*Relator, error) {
	if r.polarity != Forward {
		return nil, r.g.fail(metagen.KindRelationMismatch, relationCategoryName(r.name, r.polarity, Source), fromName,
			"relations are created from their forward side")
	}
	src, fwd, err := r.g.link(r.name, Forward, r.card, fromCat, fromName, toCat, toName)
	if err != nil {
		return nil, err
	}
	_, inv, err := r.g.link(r.name, Inverse, Multi, toCat, toName, fromCat, fromName)
	if err != nil {
		return nil, err
	}
	// Relators created after the sweep check themselves once both sides
	// exist.
	if fresh := append(fwd, inv...); r.g.validated.Load() && len(fresh) > 0 {
		r.g.log.Warn("relation created after validation", "relation", r.name, "from", fromName, "to", toName)
		var errs []error
		for _, rel := range fresh {
			errs = append(errs, r.g.validateNode(rel.Vertex()))
		}
		if err := metagen.NewAggregateError(errs...); err != nil {
			return nil, err
		}
	}
	return src, nil
}

// Source returns the source relator of this side for the vertex named name.
func (r Relation) Source(name string) (*Relator, bool) {
	cat, ok := r.g.LookupCategory(relationCategoryName(r.name, r.polarity, Source))
	if !ok {
		return nil, false
	}
	id, ok := cat.Lookup(rootKey(name))
	if !ok {
		return nil, false
	}
	rel, ok := r.g.Node(id).Entity().(*Relator)
	return rel, ok
}

// Target resolves the single target of name on this side. It reports false
// when name has no relator or no target, which distinguishes an absent
// relation from a broken one.
func (r Relation) Target(name string) (NodeID, bool, error) {
	src, ok := r.Source(name)
	if !ok || !src.HasTarget() {
		return NoNode, false, nil
	}
	id, err := src.ResolveSingle()
	if err != nil {
		return NoNode, false, err
	}
	return id, true, nil
}

// Targets resolves all targets of name on this side.
func (r Relation) Targets(name string) ([]NodeID, error) {
	src, ok := r.Source(name)
	if !ok {
		return nil, nil
	}
	return src.ResolveAll()
}

// relationCategory returns the relation category of the given shape,
// creating and caching it on first use.
func (g *Graph) relationCategory(name string, pol Polarity, role Role, card Cardinality) (*Category, error) {
	cname := relationCategoryName(name, pol, role)
	g.relMu.Lock()
	defer g.relMu.Unlock()
	kind, ok := g.relations[name]
	if !ok {
		kind = &relationKind{name: name}
		g.relations[name] = kind
	}
	if c := kind.cats[pol-1][role-1]; c != nil {
		if c.rel.card != card {
			return nil, g.fail(metagen.KindRelationMismatch, cname, "",
				"declared %s, used as %s", c.rel.card, card)
		}
		return c, nil
	}
	g.mu.Lock()
	c, exists := g.catByName[cname]
	if exists && c.rel == nil {
		g.mu.Unlock()
		return nil, g.fail(metagen.KindRelationMismatch, cname, "", "name is taken by a plain category")
	}
	if !exists {
		c = g.category(cname, &relationInfo{name: name, card: card, role: role, polarity: pol})
	}
	g.mu.Unlock()
	kind.cats[pol-1][role-1] = c
	return c, nil
}

// link find-or-creates one source relator and its target child. It also
// returns the relators it created.
func (g *Graph) link(name string, pol Polarity, card Cardinality, fromCat *Category, fromName string, toCat *Category, toName string) (*Relator, []*Relator, error) {
	srcCat, err := g.relationCategory(name, pol, Source, card)
	if err != nil {
		return nil, nil, err
	}
	tgtCat, err := g.relationCategory(name, pol, Target, card)
	if err != nil {
		return nil, nil, err
	}
	sid, srcCreated, err := g.findOrCreate(srcCat, nil, fromName, func() Entity {
		return &Relator{cat: srcCat, pointee: fromCat, pointeeName: fromName, complement: tgtCat}
	})
	if err != nil {
		return nil, nil, err
	}
	src, err := g.relator(sid, srcCat, fromCat)
	if err != nil {
		return nil, nil, err
	}

	src.mu.Lock()
	defer src.mu.Unlock()
	if card == Single {
		for _, t := range g.Children(sid, tgtCat) {
			if other := g.Node(t).local.Name; other != toName {
				return nil, nil, g.fail(metagen.KindRelationMismatch, srcCat.Name, fromName,
					"single-cardinality relation already targets %q, cannot also target %q", other, toName)
			}
		}
	}
	tid, tgtCreated, err := g.findOrCreate(tgtCat, g.Node(sid), toName, func() Entity {
		return &Relator{cat: tgtCat, pointee: toCat, pointeeName: toName, complement: srcCat}
	})
	if err != nil {
		return nil, nil, err
	}
	tgt, err := g.relator(tid, tgtCat, toCat)
	if err != nil {
		return nil, nil, err
	}

	var fresh []*Relator
	if srcCreated {
		fresh = append(fresh, src)
	}
	if tgtCreated {
		fresh = append(fresh, tgt)
	}
	return src, fresh, nil
}

// relator returns the relator bound to id and checks that it has the shape
// the caller expects.
func (g *Graph) relator(id NodeID, cat, pointee *Category) (*Relator, error) {
	r, err := EntityAs[*Relator](g, id)
	if err != nil {
		return nil, err
	}
	n := g.Node(id)
	switch {
	case r.cat != cat:
		return nil, g.fail(metagen.KindRelationMismatch, cat.Name, n.global.Name,
			"existing endpoint is a %s %s relator of %s", r.cat.Polarity(), r.cat.Role(), r.cat.Name)
	case r.pointee != pointee:
		return nil, g.fail(metagen.KindRelationMismatch, cat.Name, n.global.Name,
			"existing endpoint points into %s, not %s", r.pointee.Name, pointee.Name)
	}
	return r, nil
}
