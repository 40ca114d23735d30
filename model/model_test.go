package model_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/metagen"
	"github.com/syssam/metagen/graph"
	"github.com/syssam/metagen/model"
)

func newModel(t *testing.T, opts ...graph.Option) *model.Model {
	t.Helper()
	opts = append([]graph.Option{graph.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	m := model.New(graph.New(opts...))
	_, err := m.DefineType("string", "string", "string")
	require.NoError(t, err)
	_, err = m.DefineType("int", "int", "int64")
	require.NoError(t, err)
	return m
}

func class(t *testing.T, m *model.Model, name string, abstract bool) *model.Class {
	t.Helper()
	c, err := m.DefineClass(name, abstract)
	require.NoError(t, err)
	return c
}

func names(classes []*model.Class) []string {
	out := make([]string, 0, len(classes))
	for _, c := range classes {
		out = append(out, c.Name)
	}
	return out
}

func TestNamingPathsSingleRoot(t *testing.T) {
	m := newModel(t)
	class(t, m, "Root", false)
	child := class(t, m, "Child", false)
	_, err := m.DefineProperty(child, "id", "string")
	require.NoError(t, err)
	_, err = m.DefineNaming(child, model.Named("id"))
	require.NoError(t, err)
	require.NoError(t, m.Contain("Child", "Root"))
	require.NoError(t, m.Validate())

	paths, err := child.ContainmentPaths()
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, []string{"Root", "Child"}, names(paths[0]))

	np, err := child.NamingPaths()
	require.NoError(t, err)
	assert.True(t, np.Unique)
	require.Len(t, np.Paths, 1)
	p := np.Paths[0]
	assert.Equal(t, ":string", p.Signature)
	require.Len(t, p.Elements, 1)
	assert.Same(t, child, p.Elements[0].Class)
	assert.Same(t, child.NamingRule(), p.Elements[0].Rule)
	assert.Equal(t, "Root", p.Container().Name)
}

func TestNamingPathsCollide(t *testing.T) {
	m := newModel(t)
	class(t, m, "ParentA", false)
	class(t, m, "ParentB", false)
	leaf := class(t, m, "Leaf", false)
	require.NoError(t, m.Contain("Leaf", "ParentA"))
	require.NoError(t, m.Contain("Leaf", "ParentB"))
	require.NoError(t, m.Validate())

	paths, err := leaf.ContainmentPaths()
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, []string{"ParentA", "Leaf"}, names(paths[0]))
	assert.Equal(t, []string{"ParentB", "Leaf"}, names(paths[1]))

	np, err := leaf.NamingPaths()
	require.NoError(t, err)
	assert.False(t, np.Unique)
	for _, p := range np.Paths {
		assert.Equal(t, ":-", p.Signature)
		require.Len(t, p.Elements, 1)
		assert.Nil(t, p.Elements[0].Rule)
	}
}

func TestNamingPathsDistinctDepth(t *testing.T) {
	m := newModel(t)
	class(t, m, "Root", false)
	mid := class(t, m, "Mid", false)
	leaf := class(t, m, "Leaf", false)
	_, err := m.DefineProperty(mid, "seq", "int")
	require.NoError(t, err)
	_, err = m.DefineNaming(mid, model.Named("seq"))
	require.NoError(t, err)
	_, err = m.DefineProperty(leaf, "key", "string")
	require.NoError(t, err)
	_, err = m.DefineNaming(leaf, model.Named("key"), model.Positional())
	require.NoError(t, err)
	require.NoError(t, m.Contain("Mid", "Root"))
	require.NoError(t, m.Contain("Leaf", "Root"))
	require.NoError(t, m.Contain("Leaf", "Mid"))
	require.NoError(t, m.Validate())

	np, err := leaf.NamingPaths()
	require.NoError(t, err)
	assert.True(t, np.Unique)
	var sigs []string
	for _, p := range np.Paths {
		sigs = append(sigs, p.Signature)
	}
	assert.Equal(t, []string{":string:-", ":int:string:-"}, sigs)

	again, err := leaf.NamingPaths()
	require.NoError(t, err)
	assert.Same(t, np, again, "memoized after validation")
}

func TestNamingRuleInherited(t *testing.T) {
	m := newModel(t)
	class(t, m, "Root", false)
	base := class(t, m, "Named", true)
	_, err := m.DefineProperty(base, "name", "string")
	require.NoError(t, err)
	rule, err := m.DefineNaming(base, model.Named("name"))
	require.NoError(t, err)
	class(t, m, "Thing", false)
	require.NoError(t, m.Extend("Thing", "Named"))
	require.NoError(t, m.Contain("Thing", "Root"))
	require.NoError(t, m.Validate())

	thing, ok := m.Class("Thing")
	require.True(t, ok)
	assert.Nil(t, thing.NamingRule())
	found, err := thing.FindNamingRule()
	require.NoError(t, err)
	assert.Same(t, rule, found)
	assert.Same(t, base, found.Class())

	np, err := thing.NamingPaths()
	require.NoError(t, err)
	require.Len(t, np.Paths, 1)
	assert.Equal(t, ":string", np.Paths[0].Signature)
}

func TestContainmentCycle(t *testing.T) {
	m := newModel(t)
	a := class(t, m, "A", false)
	class(t, m, "B", false)
	require.NoError(t, m.Contain("A", "B"))
	require.NoError(t, m.Contain("B", "A"))
	require.NoError(t, m.Validate())

	_, err := a.ContainmentPaths()
	require.Error(t, err)
	assert.True(t, metagen.IsTraversal(err))

	_, err = a.NamingPaths()
	assert.True(t, metagen.IsTraversal(err))
}

func TestContainmentDiamond(t *testing.T) {
	m := newModel(t)
	leaf := class(t, m, "Leaf", false)
	class(t, m, "Left", false)
	class(t, m, "Right", false)
	class(t, m, "Root", false)
	require.NoError(t, m.Contain("Leaf", "Left"))
	require.NoError(t, m.Contain("Leaf", "Right"))
	require.NoError(t, m.Contain("Left", "Root"))
	require.NoError(t, m.Contain("Right", "Root"))
	require.NoError(t, m.Validate())

	paths, err := leaf.ContainmentPaths()
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, []string{"Root", "Left", "Leaf"}, names(paths[0]))
	assert.Equal(t, []string{"Root", "Right", "Leaf"}, names(paths[1]))

	t.Run("cycle above the class", func(t *testing.T) {
		m := newModel(t)
		leaf := class(t, m, "Leaf", false)
		class(t, m, "B", false)
		class(t, m, "C", false)
		require.NoError(t, m.Contain("Leaf", "B"))
		require.NoError(t, m.Contain("B", "C"))
		require.NoError(t, m.Contain("C", "B"))
		_, err := leaf.ContainmentPaths()
		require.Error(t, err)
		assert.True(t, metagen.IsTraversal(err))
		assert.Contains(t, err.Error(), "containment cycles through B")
	})
}

func TestContainmentSelf(t *testing.T) {
	m := newModel(t)
	a := class(t, m, "A", false)
	require.NoError(t, m.Contain("A", "A"))
	_, err := a.ContainmentPaths()
	assert.True(t, metagen.IsTraversal(err))
}

func TestInheritance(t *testing.T) {
	m := newModel(t)
	entity := class(t, m, "Entity", true)
	person := class(t, m, "Person", false)
	employee := class(t, m, "Employee", false)
	robot := class(t, m, "Robot", false)
	require.NoError(t, m.Extend("Employee", "Person"))
	require.NoError(t, m.Extend("Person", "Entity"))
	require.NoError(t, m.Extend("Robot", "Entity"))

	_, err := m.DefineProperty(entity, "id", "string")
	require.NoError(t, err)
	_, err = m.DefineProperty(entity, "label", "string")
	require.NoError(t, err)
	_, err = m.DefineProperty(person, "age", "int")
	require.NoError(t, err)
	shadow, err := m.DefineProperty(employee, "label", "int")
	require.NoError(t, err)
	_, err = m.DefineProperty(employee, "badge", "int")
	require.NoError(t, err)
	require.NoError(t, m.Validate())

	t.Run("chain", func(t *testing.T) {
		super, err := employee.Superclass()
		require.NoError(t, err)
		assert.Same(t, person, super)
		none, err := entity.Superclass()
		require.NoError(t, err)
		assert.Nil(t, none)

		ancestors, err := employee.Ancestors()
		require.NoError(t, err)
		assert.Equal(t, []string{"Person", "Entity"}, names(ancestors))

		subs, err := entity.Subclasses()
		require.NoError(t, err)
		assert.Equal(t, []string{"Person", "Robot"}, names(subs))
	})

	t.Run("instance of", func(t *testing.T) {
		for _, tt := range []struct {
			c, of *model.Class
			want  bool
		}{
			{employee, employee, true},
			{employee, person, true},
			{employee, entity, true},
			{person, employee, false},
			{robot, person, false},
		} {
			got, err := tt.c.IsInstanceOf(tt.of)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got, "%s instance of %s", tt.c.Name, tt.of.Name)
		}
		assert.False(t, entity.IsConcrete())
		assert.True(t, robot.IsConcrete())
	})

	t.Run("find property", func(t *testing.T) {
		p, ok, err := employee.FindProperty("id")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Same(t, entity, p.Owner())

		p, ok, err = employee.FindProperty("label")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Same(t, shadow, p, "nearest declaration wins")

		_, ok, err = robot.FindProperty("age")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("all properties and indexes", func(t *testing.T) {
		all, err := employee.AllProperties()
		require.NoError(t, err)
		var got []string
		for _, p := range all {
			got = append(got, p.Owner().Name+"."+p.Name)
		}
		assert.Equal(t, []string{"Entity.id", "Person.age", "Employee.label", "Employee.badge"}, got)

		own := employee.Properties()
		require.Len(t, own, 2)
		assert.Equal(t, 2, own[0].Index)
		assert.Equal(t, 3, own[1].Index)
		typ, err := own[0].Type()
		require.NoError(t, err)
		assert.Equal(t, "int64", typ.GoType)
	})
}

func TestUnresolvedSuperclassReportedOnce(t *testing.T) {
	for name, extend := range map[string][][2]string{
		"direct":    {{"A", "Missing"}},
		"inherited": {{"A", "B"}, {"B", "Missing"}},
	} {
		t.Run(name, func(t *testing.T) {
			m := newModel(t, graph.WithDiagnostics())
			class(t, m, "A", false)
			class(t, m, "B", false)
			for _, e := range extend {
				require.NoError(t, m.Extend(e[0], e[1]))
			}
			err := m.Validate()
			require.Error(t, err)
			assert.True(t, metagen.IsUnresolved(err))

			seen := make(map[string]bool)
			for _, d := range m.Graph().Diagnostics() {
				var e *metagen.Error
				require.ErrorAs(t, d, &e)
				assert.NotEqual(t, model.CategoryClass, e.Category, "classes leave the report to the relator")
				assert.False(t, seen[d.Error()], "reported twice: %v", d)
				seen[d.Error()] = true
			}
			assert.True(t, seen[`metagen: unresolvable target in superclass~target "/`+extend[len(extend)-1][0]+`/Missing": no class named "/Missing"`])
		})
	}
}

func TestValidateFailures(t *testing.T) {
	t.Run("superclass cycle", func(t *testing.T) {
		m := newModel(t)
		class(t, m, "A", false)
		class(t, m, "B", false)
		require.NoError(t, m.Extend("A", "B"))
		require.NoError(t, m.Extend("B", "A"))
		err := m.Validate()
		require.Error(t, err)
		assert.True(t, metagen.IsTraversal(err))
	})

	t.Run("second superclass", func(t *testing.T) {
		m := newModel(t)
		class(t, m, "A", false)
		class(t, m, "B", false)
		class(t, m, "C", false)
		require.NoError(t, m.Extend("A", "B"))
		err := m.Extend("A", "C")
		require.Error(t, err)
		assert.True(t, metagen.IsRelationMismatch(err))
	})

	t.Run("unknown naming property", func(t *testing.T) {
		m := newModel(t)
		c := class(t, m, "A", false)
		_, err := m.DefineNaming(c, model.Named("missing"))
		require.NoError(t, err)
		err = m.Validate()
		require.Error(t, err)
		assert.True(t, metagen.IsUnresolved(err))
	})

	t.Run("unknown property type", func(t *testing.T) {
		m := newModel(t)
		c := class(t, m, "A", false)
		_, err := m.DefineProperty(c, "id", "strng")
		require.NoError(t, err)
		err = m.Validate()
		require.Error(t, err)
		assert.True(t, metagen.IsUnresolved(err))
		assert.Contains(t, err.Error(), `did you mean "/string"?`)
	})

	t.Run("unknown superclass", func(t *testing.T) {
		m := newModel(t)
		class(t, m, "A", false)
		require.NoError(t, m.Extend("A", "Missing"))
		assert.True(t, metagen.IsUnresolved(m.Validate()))
	})

	t.Run("duplicates", func(t *testing.T) {
		m := newModel(t)
		c := class(t, m, "A", false)
		_, err := m.DefineClass("A", true)
		assert.True(t, metagen.IsDuplicate(err))
		_, err = m.DefineProperty(c, "id", "string")
		require.NoError(t, err)
		_, err = m.DefineProperty(c, "id", "int")
		assert.True(t, metagen.IsDuplicate(err))
		_, err = m.DefineNaming(c, model.Positional())
		require.NoError(t, err)
		_, err = m.DefineNaming(c, model.Positional())
		assert.True(t, metagen.IsDuplicate(err))
	})

	t.Run("every violation in collection mode", func(t *testing.T) {
		m := newModel(t, graph.WithDiagnostics())
		c := class(t, m, "A", false)
		_, err := m.DefineNaming(c, model.Named("missing"))
		require.NoError(t, err)
		require.NoError(t, m.Extend("A", "Missing"))
		err = m.Validate()
		var agg *metagen.AggregateError
		require.ErrorAs(t, err, &agg)
		assert.GreaterOrEqual(t, len(agg.Errors), 2)
	})
}

func TestTypeDefaults(t *testing.T) {
	m := newModel(t)
	_, err := m.DefineType("uuid", "", "")
	require.NoError(t, err)
	require.NoError(t, m.Validate())
	typ, ok := m.Type("uuid")
	require.True(t, ok)
	assert.Equal(t, "uuid", typ.Syntax)
	assert.Equal(t, "uuid", typ.GoType)
	assert.Len(t, m.Types(), 3)
	_, ok = m.Type("missing")
	assert.False(t, ok)
}

func TestContainedClasses(t *testing.T) {
	m := newModel(t)
	root := class(t, m, "Root", false)
	class(t, m, "A", false)
	class(t, m, "B", false)
	require.NoError(t, m.Contain("B", "Root"))
	require.NoError(t, m.Contain("A", "Root"))
	require.NoError(t, m.Validate())

	contained, err := root.ContainedClasses()
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, names(contained))
	assert.True(t, root.IsRoot())

	b, _ := m.Class("B")
	containing, err := b.ContainingClasses()
	require.NoError(t, err)
	assert.Equal(t, []string{"Root"}, names(containing))
	assert.False(t, b.IsRoot())
	assert.Equal(t, []string{"Root", "A", "B"}, names(m.Classes()))
}
