package scene

import (
	"fmt"

	"github.com/google/uuid"
)

// MaxNodeNameLength is the size of the node name buffer in the file format.
// Names hold at most MaxNodeNameLength-1 bytes.
const MaxNodeNameLength = 64

// Node is one element of the scene tree. Tree structure (parent and
// children) is kept by the owning Tree, not by the node.
type Node struct {
	GUID     uuid.UUID
	Name     string
	Category string // full name of the node definition
	Priority int32
	Flags    int32
	Fields   Fields

	// Element is set when the node is bound to an element definition.
	Element *Element
}

// Element is the secondary field set of an element node.
type Element struct {
	Definition string // full name of the element definition
	Fields     Fields
}

// NewNode creates a node of the given definition with a fresh identity.
func NewNode(category, name string) *Node {
	n := &Node{
		GUID:     uuid.New(),
		Category: category,
		Fields:   Fields{},
	}
	n.SetName(name)
	return n
}

// IsElement reports whether the node carries element fields.
func (n *Node) IsElement() bool {
	return n.Element != nil
}

// SetName stores name, truncated to the name buffer.
func (n *Node) SetName(name string) {
	n.Name = truncateText(name, MaxNodeNameLength-1)
}

// SetGUIDText parses s as a GUID. Invalid text leaves the current identity
// in place and reports false.
func (n *Node) SetGUIDText(s string) bool {
	id, err := uuid.Parse(s)
	if err != nil {
		return false
	}
	n.GUID = id
	return true
}

// RegenerateGUID assigns a fresh random identity.
func (n *Node) RegenerateGUID() {
	n.GUID = uuid.New()
}

// Clone deep-copies the node's own data. Children are not part of a Node;
// use Tree.CloneSubtree for a subtree.
func (n *Node) Clone() *Node {
	out := *n
	out.Fields = n.Fields.Clone()
	if n.Element != nil {
		out.Element = &Element{
			Definition: n.Element.Definition,
			Fields:     n.Element.Fields.Clone(),
		}
	}
	return &out
}

// String returns the label used in node pickers.
func (n *Node) String() string {
	return fmt.Sprintf("%s (%s)", n.Name, n.GUID)
}
