package graph

import (
	"github.com/syssam/metagen"
)

// Stage is the lifecycle stage of a graph. It only moves forward.
type Stage uint32

const (
	StageConstructing Stage = iota
	StageMetamodelLoaded
	StagePreloaded
	StagePostloaded
	StageValidated
)

func (s Stage) String() string {
	switch s {
	case StageMetamodelLoaded:
		return "metamodel-loaded"
	case StagePreloaded:
		return "preloaded"
	case StagePostloaded:
		return "postloaded"
	case StageValidated:
		return "validated"
	default:
		return "constructing"
	}
}

// Stage returns the stage the graph reached.
func (g *Graph) Stage() Stage { return Stage(g.stage.Load()) }

// Validated reports whether ValidateAll has completed.
func (g *Graph) Validated() bool { return g.validated.Load() }

func (g *Graph) advance(to Stage) bool {
	for {
		cur := g.stage.Load()
		if Stage(cur) >= to {
			g.log.Warn("stage already reached", "stage", to.String(), "current", Stage(cur).String())
			return false
		}
		if g.stage.CompareAndSwap(cur, uint32(to)) {
			g.log.Debug("stage reached", "stage", to.String())
			return true
		}
	}
}

// MarkMetamodelLoaded records that the built-in categories and relations of
// the meta-model are registered.
func (g *Graph) MarkMetamodelLoaded() { g.advance(StageMetamodelLoaded) }

// MarkPreloadComplete records that every declaration was constructed.
func (g *Graph) MarkPreloadComplete() { g.advance(StagePreloaded) }

// MarkPostloadComplete runs the PostLoad hook of every entity in sweep
// order and records the stage.
func (g *Graph) MarkPostloadComplete() error {
	if !g.advance(StagePostloaded) {
		return nil
	}
	return g.sweep(func(n *Node) error {
		if pl, ok := n.entity.(PostLoader); ok {
			return pl.PostLoad()
		}
		return nil
	})
}

// ValidateAll validates every entity, then post-validates every entity,
// both in sweep order: categories in registration order, vertices by
// ascending global id. Afterwards the graph is validated, and relators
// created from then on validate themselves at creation.
//
// In fail-fast mode the first violation is returned. In collection mode
// the sweep continues and all violations are returned together.
func (g *Graph) ValidateAll() error {
	if err := g.sweep(g.validateNode); err != nil {
		return err
	}
	if err := g.sweep(g.postValidateNode); err != nil {
		return err
	}
	g.validated.Store(true)
	g.advance(StageValidated)
	return nil
}

// sweep calls fn on every vertex in sweep order.
func (g *Graph) sweep(fn func(*Node) error) error {
	var errs []error
	for _, c := range g.Categories() {
		for _, id := range c.Nodes() {
			if err := fn(g.Node(id)); err != nil {
				if !g.collect {
					return err
				}
				errs = append(errs, err)
			}
		}
	}
	return metagen.NewAggregateError(errs...)
}

func (g *Graph) validateNode(n *Node) error {
	if v, ok := n.entity.(Validator); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	if n.phase < PhaseValidated {
		n.phase = PhaseValidated
	}
	return nil
}

func (g *Graph) postValidateNode(n *Node) error {
	if n.phase < PhaseValidated {
		return nil
	}
	if pv, ok := n.entity.(PostValidator); ok {
		if err := pv.PostValidate(); err != nil {
			return err
		}
	}
	n.phase = PhasePostValidated
	return nil
}
