// Package orchestrator is the coordinating facade of the host. One Invoke
// handles one user query end to end: it validates the caller's identity,
// records the user turn, hands the planner its capabilities for this
// invocation and relays the planner's final text back, recording it as an
// assistant turn. Every delegated call runs through the delegate boundary,
// which absorbs per-call failures into user-readable text so one
// uncooperative child agent never aborts the whole turn.
package orchestrator
