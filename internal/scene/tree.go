package scene

import (
	"errors"
	"slices"

	"github.com/google/uuid"
)

// Handle identifies a node in a Tree. Handles are stable for the life of
// the tree and are never reused.
type Handle int32

// Nil represents an invalid Handle.
const Nil Handle = 0

var (
	// ErrInvalidHandle is returned for handles the tree never issued.
	ErrInvalidHandle = errors.New("scene: invalid node handle")

	// ErrRootNode is returned when an operation would detach or move the root.
	ErrRootNode = errors.New("scene: operation not allowed on the root node")

	// ErrCycle is returned when a node would become its own ancestor.
	ErrCycle = errors.New("scene: node cannot be moved under itself or its descendants")

	// ErrDetached is returned when a node is expected to be part of the tree.
	ErrDetached = errors.New("scene: node is detached")

	// ErrAttached is returned when a node is expected to be detached.
	ErrAttached = errors.New("scene: node is already attached")
)

type entry struct {
	node     *Node
	parent   Handle
	children []Handle
}

// Tree is an arena of nodes with exactly one root. Each entry stores its
// parent handle, so Parent is O(1).
//
// Detached subtrees stay in the arena: Detach unlinks them from their
// parent and Attach links them back with the same handles.
type Tree struct {
	entries []entry // entries[0] is unused so Nil never resolves
	root    Handle
}

// NewTree creates a tree rooted at root.
func NewTree(root *Node) *Tree {
	t := &Tree{entries: make([]entry, 1, 16)}
	t.root = t.alloc(root, Nil)
	return t
}

func (t *Tree) alloc(n *Node, parent Handle) Handle {
	t.entries = append(t.entries, entry{node: n, parent: parent})
	return Handle(len(t.entries) - 1)
}

func (t *Tree) valid(h Handle) bool {
	return h > Nil && int(h) < len(t.entries)
}

// Root returns the root handle.
func (t *Tree) Root() Handle {
	return t.root
}

// Node returns the node behind h, or nil for an invalid handle.
func (t *Tree) Node(h Handle) *Node {
	if !t.valid(h) {
		return nil
	}
	return t.entries[h].node
}

// Parent returns the parent of h. The root and detached subtree tops have
// no parent and return Nil.
func (t *Tree) Parent(h Handle) Handle {
	if !t.valid(h) {
		return Nil
	}
	return t.entries[h].parent
}

// Children returns a copy of h's ordered child handles.
func (t *Tree) Children(h Handle) []Handle {
	if !t.valid(h) {
		return nil
	}
	return slices.Clone(t.entries[h].children)
}

// IndexOf returns the position of h among its siblings, or -1.
func (t *Tree) IndexOf(h Handle) int {
	p := t.Parent(h)
	if p == Nil {
		return -1
	}
	return slices.Index(t.entries[p].children, h)
}

// Attached reports whether h is reachable from the root.
func (t *Tree) Attached(h Handle) bool {
	if !t.valid(h) {
		return false
	}
	for h != Nil {
		if h == t.root {
			return true
		}
		h = t.entries[h].parent
	}
	return false
}

// IsAncestor reports whether a is a strict ancestor of b.
func (t *Tree) IsAncestor(a, b Handle) bool {
	if !t.valid(a) || !t.valid(b) {
		return false
	}
	for p := t.entries[b].parent; p != Nil; p = t.entries[p].parent {
		if p == a {
			return true
		}
	}
	return false
}

// Add appends n as the last child of parent.
func (t *Tree) Add(parent Handle, n *Node) (Handle, error) {
	return t.Insert(parent, -1, n)
}

// Insert places n among parent's children at index. An index outside
// [0, len] appends.
func (t *Tree) Insert(parent Handle, index int, n *Node) (Handle, error) {
	if !t.valid(parent) || n == nil {
		return Nil, ErrInvalidHandle
	}
	h := t.alloc(n, Nil)
	t.link(h, parent, index)
	return h, nil
}

func (t *Tree) link(h, parent Handle, index int) {
	children := t.entries[parent].children
	if index < 0 || index > len(children) {
		index = len(children)
	}
	t.entries[parent].children = slices.Insert(children, index, h)
	t.entries[h].parent = parent
}

// Detach unlinks h (with its subtree) from its parent. It returns the old
// parent and position so the caller can Attach it back.
func (t *Tree) Detach(h Handle) (parent Handle, index int, err error) {
	if !t.valid(h) {
		return Nil, -1, ErrInvalidHandle
	}
	if h == t.root {
		return Nil, -1, ErrRootNode
	}
	parent = t.entries[h].parent
	if parent == Nil {
		return Nil, -1, ErrDetached
	}
	index = slices.Index(t.entries[parent].children, h)
	t.entries[parent].children = slices.Delete(t.entries[parent].children, index, index+1)
	t.entries[h].parent = Nil
	return parent, index, nil
}

// Attach links the detached subtree h under parent at index.
func (t *Tree) Attach(h, parent Handle, index int) error {
	if !t.valid(h) || !t.valid(parent) {
		return ErrInvalidHandle
	}
	if h == t.root {
		return ErrRootNode
	}
	if t.entries[h].parent != Nil {
		return ErrAttached
	}
	if h == parent || t.IsAncestor(h, parent) {
		return ErrCycle
	}
	t.link(h, parent, index)
	return nil
}

// Remove detaches h and its subtree from the tree.
func (t *Tree) Remove(h Handle) error {
	_, _, err := t.Detach(h)
	return err
}

// Reparent moves h to the end of newParent's children. All checks happen
// before the tree is touched, so no observer sees h under two parents or
// under none after a failed call.
func (t *Tree) Reparent(h, newParent Handle) error {
	return t.Move(h, newParent, -1)
}

// Move places h at index among newParent's children.
func (t *Tree) Move(h, newParent Handle, index int) error {
	if !t.valid(h) || !t.valid(newParent) {
		return ErrInvalidHandle
	}
	if h == t.root {
		return ErrRootNode
	}
	if h == newParent || t.IsAncestor(h, newParent) {
		return ErrCycle
	}
	if t.entries[h].parent == Nil {
		return ErrDetached
	}
	if _, _, err := t.Detach(h); err != nil {
		return err
	}
	t.link(h, newParent, index)
	return nil
}

// Walk visits the attached tree in pre-order. Returning false from fn
// skips the visited node's subtree.
func (t *Tree) Walk(fn func(h Handle, depth int) bool) {
	t.walk(t.root, 0, fn)
}

func (t *Tree) walk(h Handle, depth int, fn func(Handle, int) bool) {
	if !fn(h, depth) {
		return
	}
	for _, c := range t.entries[h].children {
		t.walk(c, depth+1, fn)
	}
}

// Handles lists the attached nodes in pre-order.
func (t *Tree) Handles() []Handle {
	var out []Handle
	t.Walk(func(h Handle, _ int) bool {
		out = append(out, h)
		return true
	})
	return out
}

// Len returns the number of attached nodes.
func (t *Tree) Len() int {
	n := 0
	t.Walk(func(Handle, int) bool {
		n++
		return true
	})
	return n
}

// FindByGUID scans the attached tree in pre-order and returns the first
// node whose identity matches id.
func (t *Tree) FindByGUID(id uuid.UUID) (Handle, bool) {
	found := Nil
	t.Walk(func(h Handle, _ int) bool {
		if found != Nil {
			return false
		}
		if t.entries[h].node.GUID == id {
			found = h
			return false
		}
		return true
	})
	return found, found != Nil
}

// CloneSubtree deep-copies h and its descendants into a new tree rooted
// at the copy of h.
func (t *Tree) CloneSubtree(h Handle) (*Tree, error) {
	if !t.valid(h) {
		return nil, ErrInvalidHandle
	}
	out := NewTree(t.entries[h].node.Clone())
	t.copyChildren(h, out, out.root)
	return out, nil
}

func (t *Tree) copyChildren(src Handle, dst *Tree, dstParent Handle) {
	for _, c := range t.entries[src].children {
		nc := dst.alloc(t.entries[c].node.Clone(), Nil)
		dst.link(nc, dstParent, -1)
		t.copyChildren(c, dst, nc)
	}
}

// Graft copies every node of sub into t under parent at index and returns
// the handle of the copied sub root.
func (t *Tree) Graft(parent Handle, index int, sub *Tree) (Handle, error) {
	if !t.valid(parent) || sub == nil {
		return Nil, ErrInvalidHandle
	}
	h := t.alloc(sub.entries[sub.root].node.Clone(), Nil)
	t.link(h, parent, index)
	sub.copyChildren(sub.root, t, h)
	return h, nil
}
