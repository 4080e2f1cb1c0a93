package store

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/ashrindy/dvscenetool/internal/scene"
	"github.com/ashrindy/dvscenetool/internal/templates"
)

// createTestStore creates a new store in a temp dir for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestScene builds root -> Camera -> Effect element with fixed
// identities.
func createTestScene() *scene.Scene {
	root := scene.NewNode("Root", "Root")
	root.GUID = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	sc := scene.New(root)
	sc.Common.End = 120

	cam := scene.NewNode("Camera", "Camera")
	cam.GUID = uuid.MustParse("00000000-0000-0000-0000-000000000002")
	cam.Fields["fov"] = scene.NewField(scene.Float(45))
	camH, _ := sc.Tree.Add(sc.Tree.Root(), cam)

	fx := scene.NewNode("Element", "Effect")
	fx.GUID = uuid.MustParse("00000000-0000-0000-0000-000000000003")
	fx.Element = &scene.Element{Definition: "Effect", Fields: scene.Fields{
		"Curve": scene.NewField(scene.Curve{0, 0.5, 1}),
	}}
	sc.Tree.Add(camH, fx)
	return sc
}

func createTestDatabase(t *testing.T) *templates.Database {
	t.Helper()
	db, err := templates.LoadString("test", `
node: Root: descriptions: rootNode: "true"
node: Camera: {}
node: Element: descriptions: isNodeElement: "true"
element: Effect: {}
`)
	if err != nil {
		t.Fatalf("LoadString() failed: %v", err)
	}
	return db
}
