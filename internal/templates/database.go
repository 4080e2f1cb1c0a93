// Package templates holds the node and element definition database.
//
// A database is written in CUE. Each definition lives under the top-level
// node or element struct, keyed by its full name:
//
//	node: Camera: {
//		name: "Camera"
//		descriptions: Category: "Camera"
//		fields: fov: {type: "float", value: 45}
//	}
//
// Definitions are read-only once loaded. Lookups that miss report false
// and never fail.
package templates

import (
	"fmt"
	"slices"
	"sort"

	"github.com/ashrindy/dvscenetool/internal/scene"
)

// Description keys with meaning to the editor.
const (
	DescRootNode      = "rootNode"
	DescIsNodeElement = "isNodeElement"
	DescUnknown       = "Unknown"
	DescCategory      = scene.DescCategory
)

// hiddenDescriptions never show up in creation menu tooltips.
var hiddenDescriptions = []string{DescIsNodeElement, DescUnknown, DescCategory}

// Definition describes one creatable node or element kind.
type Definition struct {
	Name         string // display name
	FullName     string // stable identifier stored in scenes
	Descriptions map[string]string
	Fields       scene.Fields
	Element      bool
}

// Flag reports whether description key is "true".
func (d *Definition) Flag(key string) bool {
	return d.Descriptions[key] == "true"
}

// Category returns the creation menu category, "" for top level.
func (d *Definition) Category() string {
	return d.Descriptions[DescCategory]
}

// Tooltip lists the descriptions worth showing next to the definition, as
// "key: value" lines in key order. Empty keys and values are skipped.
func (d *Definition) Tooltip() []string {
	var out []string
	for _, k := range sortedKeys(d.Descriptions) {
		v := d.Descriptions[k]
		if k == "" || v == "" || slices.Contains(hiddenDescriptions, k) {
			continue
		}
		out = append(out, fmt.Sprintf("%s: %s", k, v))
	}
	return out
}

// Instantiate creates a node of this definition with default field values.
func (d *Definition) Instantiate() *scene.Node {
	n := scene.NewNode(d.FullName, d.Name)
	n.Fields = d.Fields.Clone()
	if n.Fields == nil {
		n.Fields = scene.Fields{}
	}
	return n
}

// InstantiateElement creates an element node: base supplies the node
// fields and def the element fields.
func InstantiateElement(base, def *Definition) *scene.Node {
	n := base.Instantiate()
	n.SetName(def.Name)
	n.Element = &scene.Element{Definition: def.FullName, Fields: def.Fields.Clone()}
	if n.Element.Fields == nil {
		n.Element.Fields = scene.Fields{}
	}
	return n
}

// Database is the set of known definitions.
type Database struct {
	Name     string
	Nodes    []*Definition
	Elements []*Definition
}

// Lookup finds a node or element definition by full name.
func (db *Database) Lookup(fullName string) (*Definition, bool) {
	if d, ok := db.Node(fullName); ok {
		return d, true
	}
	return db.Element(fullName)
}

// Node finds a node definition by full name.
func (db *Database) Node(fullName string) (*Definition, bool) {
	return find(db.Nodes, func(d *Definition) bool { return d.FullName == fullName })
}

// Element finds an element definition by full name.
func (db *Database) Element(fullName string) (*Definition, bool) {
	return find(db.Elements, func(d *Definition) bool { return d.FullName == fullName })
}

// Root returns the first node definition marked rootNode.
func (db *Database) Root() (*Definition, bool) {
	return find(db.Nodes, func(d *Definition) bool { return d.Flag(DescRootNode) })
}

// ElementBase returns the first node definition marked isNodeElement.
func (db *Database) ElementBase() (*Definition, bool) {
	return find(db.Nodes, func(d *Definition) bool { return d.Flag(DescIsNodeElement) })
}

func find(defs []*Definition, match func(*Definition) bool) (*Definition, bool) {
	for _, d := range defs {
		if match(d) {
			return d, true
		}
	}
	return nil, false
}

// New instantiates def, wrapping element definitions in the element base.
func (db *Database) New(def *Definition) (*scene.Node, error) {
	if !def.Element {
		return def.Instantiate(), nil
	}
	base, ok := db.ElementBase()
	if !ok {
		return nil, fmt.Errorf("templates: database %q has no element base definition", db.Name)
	}
	return InstantiateElement(base, def), nil
}

// Category groups definitions under one creation menu entry.
type Category struct {
	Name        string // "" for top-level items
	Definitions []*Definition
}

// Categorize groups nodes then elements by category, in first-seen order.
func (db *Database) Categorize() []Category {
	var out []Category
	index := map[string]int{}
	for _, d := range slices.Concat(db.Nodes, db.Elements) {
		c := d.Category()
		i, ok := index[c]
		if !ok {
			i = len(out)
			index[c] = i
			out = append(out, Category{Name: c})
		}
		out[i].Definitions = append(out[i].Definitions, d)
	}
	return out
}

// UnknownDefinition names a scene node whose definition is missing.
type UnknownDefinition struct {
	Node     scene.Handle
	FullName string
	Element  bool
}

// Resolve checks every attached node of s against the database and
// returns the nodes whose node or element definition is unknown.
func (db *Database) Resolve(s *scene.Scene) []UnknownDefinition {
	var out []UnknownDefinition
	for _, h := range s.Tree.Handles() {
		n := s.Tree.Node(h)
		if _, ok := db.Node(n.Category); !ok {
			out = append(out, UnknownDefinition{Node: h, FullName: n.Category})
		}
		if n.Element != nil {
			if _, ok := db.Element(n.Element.Definition); !ok {
				out = append(out, UnknownDefinition{Node: h, FullName: n.Element.Definition, Element: true})
			}
		}
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
