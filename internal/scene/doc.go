// Package scene provides the data model of a DvScene: the node tree, the
// typed field values attached to nodes, pages, resources and cut lists.
//
// This package contains no editing policy. Undo history lives in
// internal/command and the editing session in internal/editor; both import
// scene, scene imports nothing internal.
//
// Key design constraints:
//   - Field payloads form a closed set. The DataType of a field is derived
//     from its payload, so a field can never carry a tag that disagrees with
//     its value.
//   - Nodes live in an arena (Tree) addressed by stable Handles. Every entry
//     stores its parent explicitly, so parent lookup is O(1).
//   - Handles are never reused. A removed subtree is detached, not freed, so
//     history entries that captured a handle stay valid across undo.
//   - Guid fields are weak references. Nothing follows them on copy or
//     removal and they may dangle.
package scene
