// Package editor ties a scene, its definition database and an undo
// history into one editing session.
//
// Every mutation a user can make goes through the session's command
// stack, so each one is undoable. The session is driven by the host frame
// loop and is not safe for concurrent use.
//
// Panels:
//   - CreateMenu lists the definitions a node can be created from
//   - TimelinePanel shows the selected node as a clip with its curve,
//     plus the cut and resource cut tracks
//
// Storage of scenes is delegated to a Storage implementation, normally
// store.Store.
package editor
