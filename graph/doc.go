// Package graph is the model-graph engine of metagen: a small,
// self-describing entity-relationship store that the meta-model is built on.
//
// # Categories and vertices
//
// A Category is a named entity type. Categories are created on demand and
// never removed:
//
//	g := graph.New()
//	classes := g.Category("class")
//	props := g.Category("property")
//
// Every vertex belongs to one category, has at most one parent, and has
// exactly one Entity bound to it. Entities embed graph.Base:
//
//	type Class struct {
//	    graph.Base
//	    Abstract bool
//	}
//
//	root, err := g.Create(classes, graph.NoNode, "Root", &Class{})
//	id, err := g.Create(props, root, "id", &Property{})
//
// A vertex has a local identity, unique among the siblings of its category
// under the same parent, and a global identity, unique in its category.
// Global names are path-like: "/Root" for the root vertex above and
// "/Root/id" for its property. Ids are dense and start at 1 in every scope.
//
// # Relations
//
// Relations are typed and cardinality-aware. Create always maintains the
// inverse side:
//
//	super := g.Relation("superclass", graph.Single)
//	_, err := super.Create(classes, "/Child", classes, "/Root")
//
//	id, ok, err := super.Target("/Child")          // Root
//	subs, err := super.Inverse().Targets("/Root")  // [Child]
//
// # Lifecycle
//
// Construction may run concurrently; mutation is serialized per scope.
// Once construction is complete, ValidateAll sweeps every entity, calling
// the Validator and PostValidator hooks in a deterministic order:
// categories in registration order, vertices by ascending global id.
//
// # Errors
//
// Every violation is a *metagen.Error reported through Graph.Report, which
// logs it and, in fail-fast mode, hands it to the halt function configured
// with WithHalt. WithDiagnostics collects violations instead.
package graph
