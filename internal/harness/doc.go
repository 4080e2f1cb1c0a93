// Package harness replays scripted editor frames against a fresh session.
//
// A scenario sets up a scene, feeds one pointer and keyboard state per
// frame to the timeline panel, and checks the final scene against its
// expect block. Every run also produces a text trace that golden tests
// compare byte for byte.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: move_effect_clip
//	description: "Dragging a clip body moves both ends"
//	templates: rangers        # builtin name, or a .cue file/dir next to the scenario
//	length: 100               # scene playback end
//	node: Effect              # definition added under the root and selected
//	clip: [0, 60]             # optional start/end override for the node
//	cuts: [20]
//	resource_cuts: [50]
//	origin: [100, 50]         # panel origin, default [100, 50]
//	frames:
//	  - {pointer: press, at: [130, 75]}
//	  - {pointer: hold, at: [140, 75], repeat: 2}
//	  - {pointer: release, at: [140, 75]}
//	  - {keys: ctrl+z}
//	expect:
//	  clip: [10, 70]
//	  history: 0
//
// Setup edits are not part of the history: the stack is cleared before
// the first frame.
//
// # Determinism
//
// Each run owns a new session, panel and history clock, so the same
// scenario always yields the same trace.
//
// # Usage
//
//	sc, err := harness.LoadScenario("testdata/scenarios/move_effect_clip.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(sc)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
