package gen

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/metagen/graph"
	"github.com/syssam/metagen/model"
)

// inventory builds a validated model where Item is reachable under Shelf
// and directly under Warehouse, and Leaf under two unnamed roots.
func inventory(t *testing.T) *model.Model {
	t.Helper()
	m := model.New(graph.New(graph.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))))
	must := func(_ any, err error) {
		t.Helper()
		require.NoError(t, err)
	}
	must(m.DefineType("string", "string", "string"))
	must(m.DefineType("int", "int", "int64"))
	must(m.DefineType("time", "time", "time.Time"))

	named, err := m.DefineClass("Named", true)
	require.NoError(t, err)
	warehouse, err := m.DefineClass("Warehouse", false)
	require.NoError(t, err)
	shelf, err := m.DefineClass("Shelf", false)
	require.NoError(t, err)
	item, err := m.DefineClass("Item", false)
	require.NoError(t, err)
	must(m.DefineClass("ParentA", false))
	must(m.DefineClass("ParentB", false))
	must(m.DefineClass("Leaf", false))

	must(m.DefineProperty(named, "name", "string"))
	must(m.DefineNaming(named, model.Named("name")))
	must(m.DefineProperty(warehouse, "opened", "time"))
	must(m.DefineProperty(item, "sku", "string"))
	must(m.DefineProperty(item, "count", "int"))
	must(m.DefineNaming(item, model.Named("sku"), model.Positional()))
	_ = shelf

	require.NoError(t, m.Extend("Warehouse", "Named"))
	require.NoError(t, m.Extend("Shelf", "Named"))
	require.NoError(t, m.Contain("Shelf", "Warehouse"))
	require.NoError(t, m.Contain("Item", "Shelf"))
	require.NoError(t, m.Contain("Item", "Warehouse"))
	require.NoError(t, m.Contain("Leaf", "ParentA"))
	require.NoError(t, m.Contain("Leaf", "ParentB"))
	require.NoError(t, m.Validate())
	return m
}

func newGenerator(t *testing.T, m *model.Model, opts ...Option) *Generator {
	t.Helper()
	opts = append([]Option{WithTarget(filepath.Join(t.TempDir(), "inventory"))}, opts...)
	cfg, err := NewConfig(opts...)
	require.NoError(t, err)
	g, err := New(m, cfg)
	require.NoError(t, err)
	return g
}

func render(t *testing.T, g *Generator, class string) string {
	t.Helper()
	c, ok := g.m.Class(class)
	require.True(t, ok)
	f, err := g.File(c)
	require.NoError(t, err)
	return f.GoString()
}

func TestGenerateStruct(t *testing.T) {
	g := newGenerator(t, inventory(t))

	t.Run("superclass embedded", func(t *testing.T) {
		src := render(t, g, "Warehouse")
		assert.Contains(t, src, "package inventory")
		assert.Contains(t, src, "// "+DefaultHeader)
		assert.Contains(t, src, "type Warehouse struct {")
		assert.Regexp(t, `(?m)^\s+Named$`, src)
		assert.Regexp(t, `Opened\s+time\.Time\s+`+"`json:\"opened\"`", src)
		assert.Contains(t, src, `import "time"`)
		assert.Regexp(t, `Shelves\s+\[\]\*Shelf`, src)
		assert.Regexp(t, `Items\s+\[\]\*Item`, src)
	})

	t.Run("abstract class", func(t *testing.T) {
		src := render(t, g, "Named")
		assert.Contains(t, src, "abstract Named class")
		assert.Regexp(t, `Name\s+string`, src)
		assert.NotContains(t, src, "func ")
	})

	t.Run("root has no key", func(t *testing.T) {
		assert.NotContains(t, render(t, g, "ParentA"), "func ")
	})
}

func TestGenerateKeys(t *testing.T) {
	g := newGenerator(t, inventory(t))

	t.Run("single path", func(t *testing.T) {
		src := render(t, g, "Shelf")
		assert.Contains(t, src, "func ShelfKey(shelfName string) string {")
		assert.Contains(t, src, `strings.Join([]string{"shelf", shelfName}, "/")`)
	})

	t.Run("several unique paths", func(t *testing.T) {
		src := render(t, g, "Item")
		assert.Contains(t, src, "func ItemKeyViaWarehouseShelf(shelfName string, itemSKU string, itemIndex int) string {")
		assert.Contains(t, src, `"shelf", shelfName, "item", itemSKU, strconv.Itoa(itemIndex)`)
		assert.Contains(t, src, "func ItemKeyViaWarehouse(itemSKU string, itemIndex int) string {")
		assert.NotContains(t, src, `"warehouse",`, "unique paths are not qualified by their root")
	})

	t.Run("colliding paths", func(t *testing.T) {
		src := render(t, g, "Leaf")
		assert.Contains(t, src, "func LeafKeyViaParentA(leafIndex int) string {")
		assert.Contains(t, src, `[]string{"parent_a", "leaf", strconv.Itoa(leafIndex)}`)
		assert.Contains(t, src, "func LeafKeyViaParentB(leafIndex int) string {")
		assert.Contains(t, src, `[]string{"parent_b", "leaf", strconv.Itoa(leafIndex)}`)
	})
}

func TestGenerate(t *testing.T) {
	m := inventory(t)
	g := newGenerator(t, m, WithWorkers(2), WithPackage("inv"))
	paths, err := g.Generate(context.Background())
	require.NoError(t, err)
	require.Len(t, paths, len(m.Classes()))
	assert.Equal(t, filepath.Join(g.cfg.Target, "parent_a.go"), paths[4])
	for _, path := range paths {
		b, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(b), "package inv")
	}
	assert.Equal(t, len(paths), g.Metrics().FilesGenerated)
	assert.Positive(t, g.Metrics().TotalBytes)

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := newGenerator(t, m).Generate(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestNewRequiresValidatedModel(t *testing.T) {
	m := model.New(graph.New(graph.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))))
	cfg, err := NewConfig(WithTarget(t.TempDir()), WithPackage("x"))
	require.NoError(t, err)
	_, err = New(m, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotValidated)
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.True(t, IsGenerateError(err))
	assert.False(t, IsConfigError(err))
	assert.NotErrorIs(t, err, ErrMissingConfig)

	_, err = New(inventory(t), nil)
	assert.True(t, IsConfigError(err))
}
