package graph

import (
	"fmt"
	"sync"

	"github.com/agext/levenshtein"

	"github.com/syssam/metagen"
)

// Relator is one endpoint of a relation instance. A source relator is a root
// vertex of a source relation category named after the vertex it relates
// from; its target relators are its children, one per pointee.
type Relator struct {
	Base
	mu          sync.Mutex // serializes linking under this source
	cat         *Category
	pointee     *Category
	pointeeName string
	complement  *Category
}

// Category returns the relation category the relator belongs to.
func (r *Relator) Category() *Category { return r.cat }

// Role returns the role of the relator.
func (r *Relator) Role() Role { return r.cat.rel.role }

// Cardinality returns the cardinality of the relator's relation category.
func (r *Relator) Cardinality() Cardinality { return r.cat.rel.card }

// Pointee returns the category and global name of the vertex the relator
// stands for.
func (r *Relator) Pointee() (*Category, string) { return r.pointee, r.pointeeName }

// Complement returns the paired relation category: the target category for
// a source relator, the source category for a target relator.
func (r *Relator) Complement() *Category { return r.complement }

// Source returns the source relator a target relator hangs under.
func (r *Relator) Source() (*Relator, bool) {
	if r.Role() != Target {
		return nil, false
	}
	p := r.Vertex().Parent()
	src, ok := r.g.Node(p).Entity().(*Relator)
	return src, ok
}

// Targets returns the target relators of a source relator in creation
// order.
func (r *Relator) Targets() []*Relator {
	if r.Role() != Source {
		return nil
	}
	ids := r.g.Children(r.id, r.complement)
	out := make([]*Relator, 0, len(ids))
	for _, id := range ids {
		if t, ok := r.g.Node(id).Entity().(*Relator); ok {
			out = append(out, t)
		}
	}
	return out
}

// HasTarget reports whether a source relator has at least one target,
// without resolving any of them.
func (r *Relator) HasTarget() bool {
	if r.Role() != Source {
		return false
	}
	return len(r.g.Children(r.id, r.complement)) > 0
}

// Resolve returns the vertex the relator stands for.
func (r *Relator) Resolve() (NodeID, error) {
	if id, ok := r.pointee.Lookup(r.pointeeName); ok {
		return id, nil
	}
	err := metagen.Errorf(metagen.KindUnresolved, r.cat.Name, r.Vertex().Global().Name,
		"no %s named %q", r.pointee.Name, r.pointeeName)
	if s := suggest(r.pointee, r.pointeeName); s != "" {
		err.Message += fmt.Sprintf(" (did you mean %q?)", s)
	}
	return NoNode, r.g.Report(err)
}

// ResolveSingle resolves the only target of a single-cardinality source
// relator. No target is an unresolvable target; more than one is ambiguous.
func (r *Relator) ResolveSingle() (NodeID, error) {
	name := r.Vertex().Global().Name
	if r.Role() != Source || r.Cardinality() != Single {
		return NoNode, r.g.fail(metagen.KindRelationMismatch, r.cat.Name, name,
			"single resolution of a %s %s relator", r.Cardinality(), r.Role())
	}
	targets := r.Targets()
	switch len(targets) {
	case 0:
		return NoNode, r.g.fail(metagen.KindUnresolved, r.cat.Name, name, "relation has no target")
	case 1:
		return targets[0].Resolve()
	default:
		return NoNode, r.g.fail(metagen.KindAmbiguous, r.cat.Name, name, "relation has %d targets", len(targets))
	}
}

// ResolveAll resolves every target of a source relator, in creation order.
func (r *Relator) ResolveAll() ([]NodeID, error) {
	if r.Role() != Source {
		return nil, r.g.fail(metagen.KindRelationMismatch, r.cat.Name, r.Vertex().Global().Name,
			"resolution of a target relator")
	}
	targets := r.Targets()
	out := make([]NodeID, 0, len(targets))
	for _, t := range targets {
		id, err := t.Resolve()
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

// Validate checks that the relator's pointee exists.
func (r *Relator) Validate() error {
	_, err := r.Resolve()
	return err
}

// suggest returns the registered name of cat closest to name, or "" if
// nothing is close enough to be a likely typo.
func suggest(cat *Category, name string) string {
	best, bestDist := "", len(name)/3+2
	for _, cand := range cat.index.Names() {
		if d := levenshtein.Distance(name, cand, nil); d < bestDist || (d == bestDist && best != "" && cand < best) {
			best, bestDist = cand, d
		}
	}
	return best
}
