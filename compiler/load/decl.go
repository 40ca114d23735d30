package load

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/syssam/metagen"
	"github.com/syssam/metagen/model"
)

// File is one declaration file.
type File struct {
	Name    string       `yaml:"-"`
	Types   []*TypeDecl  `yaml:"types,omitempty"`
	Classes []*ClassDecl `yaml:"classes,omitempty"`
}

// TypeDecl declares a primitive type.
type TypeDecl struct {
	Name   string `yaml:"name"`
	Syntax string `yaml:"syntax,omitempty"`
	GoType string `yaml:"go_type,omitempty"`
	Pos    string `yaml:"-"`
}

// ClassDecl declares a managed class with its members.
type ClassDecl struct {
	Name        string          `yaml:"name"`
	Abstract    bool            `yaml:"abstract,omitempty"`
	Extends     string          `yaml:"extends,omitempty"`
	ContainedBy []string        `yaml:"contained_by,omitempty"`
	Properties  []*PropertyDecl `yaml:"properties,omitempty"`
	// Naming lists the naming components; "-" is a positional component.
	Naming []string `yaml:"naming,omitempty"`
	Pos    string   `yaml:"-"`
}

// PropertyDecl declares a property of a class.
type PropertyDecl struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// Components returns the naming components of the declaration.
func (c *ClassDecl) Components() []model.Component {
	out := make([]model.Component, 0, len(c.Naming))
	for _, n := range c.Naming {
		if n == "-" {
			out = append(out, model.Positional())
		} else {
			out = append(out, model.Named(n))
		}
	}
	return out
}

// Parse decodes the declaration file name. A file may hold several YAML
// documents; their declarations are concatenated.
func Parse(name string, data []byte) (*File, error) {
	f := &File{Name: name}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	for {
		var doc File
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		f.Types = append(f.Types, doc.Types...)
		f.Classes = append(f.Classes, doc.Classes...)
	}
	for i, t := range f.Types {
		if t.Name == "" {
			return nil, fmt.Errorf("parse %s: type #%d has no name", name, i+1)
		}
		t.Pos = name
	}
	for i, c := range f.Classes {
		if c.Name == "" {
			return nil, fmt.Errorf("parse %s: class #%d has no name", name, i+1)
		}
		for _, p := range c.Properties {
			if p.Name == "" || p.Type == "" {
				return nil, fmt.Errorf("parse %s: class %s: property needs a name and a type", name, c.Name)
			}
		}
		c.Pos = name
	}
	return f, nil
}

// Declarations are the merged declarations of several files, in file
// order.
type Declarations struct {
	Types   []*TypeDecl
	Classes []*ClassDecl
}

// Merge concatenates the declarations of files. A type or class declared
// twice is a duplicate.
func Merge(files ...*File) (*Declarations, error) {
	var (
		d       = &Declarations{}
		types   = make(map[string]*TypeDecl)
		classes = make(map[string]*ClassDecl)
	)
	for _, f := range files {
		for _, t := range f.Types {
			if prev, ok := types[t.Name]; ok {
				return nil, metagen.Errorf(metagen.KindDuplicate, model.CategoryType, t.Name,
					"declared in %s and %s", prev.Pos, t.Pos)
			}
			types[t.Name] = t
			d.Types = append(d.Types, t)
		}
		for _, c := range f.Classes {
			if prev, ok := classes[c.Name]; ok {
				return nil, metagen.Errorf(metagen.KindDuplicate, model.CategoryClass, c.Name,
					"declared in %s and %s", prev.Pos, c.Pos)
			}
			classes[c.Name] = c
			d.Classes = append(d.Classes, c)
		}
	}
	return d, nil
}
