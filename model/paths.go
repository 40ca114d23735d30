package model

import (
	"slices"
	"strings"
)

// ContainmentPaths returns every root-to-c sequence connected by
// contained-by relations, in the declaration order of the containers. A
// class with no container is its own root. A containment cycle is a
// traversal violation.
//
// Results are memoized once the graph is validated.
func (c *Class) ContainmentPaths() ([][]*Class, error) {
	if c.m.g.Validated() {
		if paths, ok := c.m.containment.Get(c.Node()); ok {
			return paths, nil
		}
	}
	paths, err := c.containmentPaths()
	if err != nil {
		return nil, err
	}
	if c.m.g.Validated() {
		c.m.containment.Add(c.Node(), paths)
	}
	return paths, nil
}

type frame struct {
	class      *Class
	containers []*Class
	next       int
}

// containmentPaths walks the containers of c depth first. The stack of
// frames is the current path, leaf first.
func (c *Class) containmentPaths() ([][]*Class, error) {
	var (
		paths [][]*Class
		stack []*frame
	)
	push := func(k *Class) error {
		if slices.ContainsFunc(stack, func(f *frame) bool { return f.class == k }) {
			return c.m.traversal(c, "containment cycles through %s", k.Name)
		}
		containers, err := k.ContainingClasses()
		if err != nil {
			return err
		}
		stack = append(stack, &frame{class: k, containers: containers})
		return nil
	}
	if err := push(c); err != nil {
		return nil, err
	}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		switch {
		case len(top.containers) == 0:
			path := make([]*Class, len(stack))
			for i, f := range stack {
				path[len(stack)-1-i] = f.class
			}
			paths = append(paths, path)
			stack = stack[:len(stack)-1]
		case top.next < len(top.containers):
			next := top.containers[top.next]
			top.next++
			if err := push(next); err != nil {
				return nil, err
			}
		default:
			stack = stack[:len(stack)-1]
		}
	}
	return paths, nil
}

// NamingElement is one class of a naming path with the rule it is named by.
// Rule is nil for a class named by position.
type NamingElement struct {
	Class *Class
	Rule  *NamingRule
}

// NamingPath is a containment path annotated with naming rules.
type NamingPath struct {
	// Classes is the full root-to-class containment path.
	Classes []*Class
	// Elements are the named classes of the path, the root excluded.
	Elements []NamingElement
	// Signature is the concatenated binding syntax of the path.
	Signature string
}

// Container returns the class directly containing the last class of the
// path, or nil for a root.
func (p NamingPath) Container() *Class {
	if len(p.Classes) < 2 {
		return nil
	}
	return p.Classes[len(p.Classes)-2]
}

// NamingPaths is the result of the naming analysis of a class.
type NamingPaths struct {
	Paths []NamingPath
	// Unique reports whether no two paths share a signature.
	Unique bool
}

// NamingPaths annotates every containment path of c with the naming rules of
// its classes and reports whether the paths' signatures are distinct. A
// class without a naming rule contributes ":-", like a positional component.
//
// Results are memoized once the graph is validated.
func (c *Class) NamingPaths() (*NamingPaths, error) {
	if c.m.g.Validated() {
		if np, ok := c.m.naming.Get(c.Node()); ok {
			return np, nil
		}
	}
	paths, err := c.ContainmentPaths()
	if err != nil {
		return nil, err
	}
	np := &NamingPaths{Unique: true}
	seen := make(map[string]bool, len(paths))
	for _, path := range paths {
		p := NamingPath{Classes: path}
		var sig strings.Builder
		for _, k := range path[1:] {
			rule, err := k.FindNamingRule()
			if err != nil {
				return nil, err
			}
			p.Elements = append(p.Elements, NamingElement{Class: k, Rule: rule})
			if rule == nil {
				sig.WriteString(":-")
				continue
			}
			s, err := rule.Signature()
			if err != nil {
				return nil, err
			}
			sig.WriteString(s)
		}
		p.Signature = sig.String()
		if seen[p.Signature] {
			np.Unique = false
		}
		seen[p.Signature] = true
		np.Paths = append(np.Paths, p)
	}
	if c.m.g.Validated() {
		c.m.naming.Add(c.Node(), np)
	}
	return np, nil
}
