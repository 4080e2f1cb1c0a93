package scene

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// Scene owns one node tree plus the scene-wide data next to it.
type Scene struct {
	Tree      *Tree
	Common    Common
	Resources []ResourceEntry
}

// New creates a scene whose tree is rooted at root.
func New(root *Node) *Scene {
	return &Scene{Tree: NewTree(root)}
}

// Common holds the scene-wide playback data.
type Common struct {
	Start        float32
	End          float32
	Cuts         []float32 // frame cuts
	ResourceCuts []float32 // resource cut frames
	Pages        []Page
}

// Page is one playback phase.
type Page struct {
	Index       int32
	Name        string
	Start       float32
	End         float32
	Transitions []Transition
}

// NoPage is the destination index of a transition that leads nowhere.
const NoPage int32 = -1

// Transition links a page to a destination page under conditions.
type Transition struct {
	DestPageIndex int32
	Conditions    []Condition
}

// Condition gates a transition. Only its kind is modelled.
type Condition struct {
	Kind int32
}

// PageLink is an edge of the page graph.
type PageLink struct {
	From       int32 // page index
	To         int32 // destination page index
	Transition int   // position of the transition on the source page
}

// FindPage returns the page with the given index.
func (c *Common) FindPage(index int32) (*Page, bool) {
	for i := range c.Pages {
		if c.Pages[i].Index == index {
			return &c.Pages[i], true
		}
	}
	return nil, false
}

// PageLinks lists page-to-page edges in page order. Transitions without a
// destination are skipped. The graph may contain cycles.
func (c *Common) PageLinks() []PageLink {
	var out []PageLink
	for _, p := range c.Pages {
		for i, tr := range p.Transitions {
			if tr.DestPageIndex == NoPage {
				continue
			}
			out = append(out, PageLink{From: p.Index, To: tr.DestPageIndex, Transition: i})
		}
	}
	return out
}

// CutList selects one of the two cut sequences.
type CutList int

const (
	CutFrames CutList = iota
	CutResources
)

func (l CutList) String() string {
	if l == CutResources {
		return "resource cuts"
	}
	return "cuts"
}

// CutSlice returns a pointer to the selected cut sequence.
func (c *Common) CutSlice(l CutList) *[]float32 {
	if l == CutResources {
		return &c.ResourceCuts
	}
	return &c.Cuts
}

// AddCut appends a cut at frame and returns its position.
func (c *Common) AddCut(l CutList, frame float32) int {
	s := c.CutSlice(l)
	*s = append(*s, frame)
	return len(*s) - 1
}

// RemoveCut deletes the cut at i.
func (c *Common) RemoveCut(l CutList, i int) bool {
	s := c.CutSlice(l)
	if i < 0 || i >= len(*s) {
		return false
	}
	*s = slices.Delete(*s, i, i+1)
	return true
}

// ResourceKind tags a resource entry.
type ResourceKind int32

const (
	ResourceCharacter ResourceKind = iota
	ResourceCameraMotion
	ResourceModelMotion
	ResourceCharacterMotion
	ResourceModel
)

var resourceKindNames = []string{
	ResourceCharacter:       "Character",
	ResourceCameraMotion:    "CameraMotion",
	ResourceModelMotion:     "ModelMotion",
	ResourceCharacterMotion: "CharacterMotion",
	ResourceModel:           "Model",
}

func (k ResourceKind) String() string {
	if k >= 0 && int(k) < len(resourceKindNames) {
		return resourceKindNames[k]
	}
	return fmt.Sprintf("ResourceKind(%d)", int32(k))
}

// ParseResourceKind resolves a kind from its name.
func ParseResourceKind(s string) (ResourceKind, error) {
	for i, n := range resourceKindNames {
		if n == s {
			return ResourceKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown resource kind %q", s)
}

// MaxResourceNameLength is the size of the resource name buffer.
const MaxResourceNameLength = 0x300

// ResourceEntry describes an external resource used by the scene. The four
// integer fields have unknown meaning and are kept for format fidelity.
type ResourceEntry struct {
	GUID    uuid.UUID
	Name    string
	Kind    ResourceKind
	Field14 int32
	Field18 int32
	Unk0    int32
	Unk1    int32
}

// NewResource returns an entry with a fresh identity.
func NewResource() ResourceEntry {
	return ResourceEntry{GUID: uuid.New(), Name: "New Resource"}
}

// SetName stores name, truncated to the resource name buffer.
func (r *ResourceEntry) SetName(name string) {
	r.Name = truncateText(name, MaxResourceNameLength-1)
}

func (r ResourceEntry) String() string {
	return fmt.Sprintf("%s - %s", r.Name, r.Kind)
}

// Nodes lists the attached nodes in pre-order.
func (s *Scene) Nodes() []Handle {
	return s.Tree.Handles()
}

// Node is shorthand for s.Tree.Node.
func (s *Scene) Node(h Handle) *Node {
	return s.Tree.Node(h)
}

// FindResource returns the position of the resource with id.
func (s *Scene) FindResource(id uuid.UUID) (int, bool) {
	for i, r := range s.Resources {
		if r.GUID == id {
			return i, true
		}
	}
	return -1, false
}

// DanglingRef is a Guid field whose target is not in the tree.
type DanglingRef struct {
	Node   Handle
	Path   string // field path, "." separated, array items as [i]
	Target uuid.UUID
}

// DanglingRefs lists every non-nil Guid field, in node and element fields,
// whose target identity is not attached to the tree.
func (s *Scene) DanglingRefs() []DanglingRef {
	known := make(map[uuid.UUID]bool)
	for _, h := range s.Tree.Handles() {
		known[s.Tree.Node(h).GUID] = true
	}

	var out []DanglingRef
	for _, h := range s.Tree.Handles() {
		n := s.Tree.Node(h)
		visit := func(path string, id uuid.UUID) {
			if id != uuid.Nil && !known[id] {
				out = append(out, DanglingRef{Node: h, Path: path, Target: id})
			}
		}
		walkGuids("", n.Fields, visit)
		if n.Element != nil {
			walkGuids("element", n.Element.Fields, visit)
		}
	}
	return out
}

func walkGuids(prefix string, fs Fields, visit func(string, uuid.UUID)) {
	for _, k := range fs.SortedKeys() {
		walkGuidValue(joinPath(prefix, k), fs[k].Value, visit)
	}
}

func walkGuidValue(path string, v Value, visit func(string, uuid.UUID)) {
	switch val := v.(type) {
	case GuidRef:
		visit(path, uuid.UUID(val))
	case Struct:
		walkGuids(path, Fields(val), visit)
	case Array:
		for i, item := range val.Items {
			walkGuidValue(fmt.Sprintf("%s[%d]", path, i), item.Value, visit)
		}
	}
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
