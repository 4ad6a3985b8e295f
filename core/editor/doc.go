// Package editor holds the state of one content draft being optimized.
//
// A Session moves through a small state machine:
//
//	Idle ──Optimize──▶ Validating ──ok──▶ AwaitingModel ──▶ Succeeded
//	                        │                   │
//	                        └──────────▶ Failed ◀┘
//
// Succeeded and Failed go back to Idle on Reset, and both accept a new
// Optimize. Starting Optimize while a request is in flight returns ErrBusy.
// The session lock is never held during the model call, so readers such as
// a UI refresh loop can always call State or Snapshot.
package editor
