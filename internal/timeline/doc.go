// Package timeline is a headless immediate-mode timeline widget.
//
// The host calls Timeline.Begin once per frame with the pointer state and
// receives a Frame. Tracks, clips and events are submitted on the Frame in
// strictly nested order and the Frame is consumed by End. Widgets report
// whether the value they edit changed during the frame; the caller writes
// the change back.
//
// All geometry derives from one mapping:
//
//	screenX = trackOriginX + time*zoom
//	time    = (screenX - trackOriginX) / zoom
//
// Zoom and in-progress drags are the only state that survives between
// frames. Drags snapshot the edited time and the press position, so a drag
// computes an absolute time from the total pointer displacement.
package timeline
