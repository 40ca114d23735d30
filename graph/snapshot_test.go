package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/metagen/graph"
)

func buildSample(t *testing.T) *graph.Graph {
	t.Helper()
	g := newGraph()
	classes := g.Category("class")
	props := g.Category("property")
	root := mustCreate(t, g, classes, graph.NoNode, "Root")
	mustCreate(t, g, classes, graph.NoNode, "Child")
	mustCreate(t, g, props, root, "id")
	_, err := g.Relation("contained-by", graph.Multi).Create(classes, "/Child", classes, "/Root")
	require.NoError(t, err)
	require.NoError(t, g.ValidateAll())
	return g
}

func TestSnapshot(t *testing.T) {
	g := buildSample(t)
	s := g.Snapshot()

	t.Run("categories", func(t *testing.T) {
		require.Len(t, s.Categories, 6)
		assert.Equal(t, "class", s.Categories[0].Name)
		assert.Empty(t, s.Categories[0].Role)
		assert.Equal(t, "contained-by~inverse~target", s.Categories[5].Name)
		assert.Equal(t, "multi", s.Categories[5].Cardinality)
		assert.Equal(t, "target", s.Categories[5].Role)
		assert.Equal(t, "inverse", s.Categories[5].Polarity)
	})

	t.Run("nodes in sweep order", func(t *testing.T) {
		require.Len(t, s.Nodes, 7)
		assert.Equal(t, graph.NodeRecord{
			Category: "property",
			Local:    graph.Identity{ID: 1, Name: "id"},
			Global:   graph.Identity{ID: 1, Name: "/Root/id"},
			Parent:   "class:/Root",
			Phase:    "post-validated",
		}, s.Nodes[2])
		assert.Equal(t, "contained-by~target", s.Nodes[4].Category)
		assert.Equal(t, "/Root", s.Nodes[4].Local.Name)
	})
}

func TestSnapshotDeterministic(t *testing.T) {
	first, err := buildSample(t).MarshalSnapshot()
	require.NoError(t, err)
	second, err := buildSample(t).MarshalSnapshot()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	decoded, err := graph.UnmarshalSnapshot(first)
	require.NoError(t, err)
	assert.Equal(t, buildSample(t).Snapshot(), decoded)
}
