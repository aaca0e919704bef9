// Package harness runs board scenarios written in YAML against a fresh
// in-memory board and checks what happened.
//
// # Scenario Format
//
//	name: scenario_name
//	description: "What this scenario shows"
//	now: "2024-03-20T08:00:00Z"
//	setup:
//	  - do: login
//	    args: { role: kepsek, password: Drm84 }
//	flow:
//	  - do: setLeaveStatus
//	    args: { id: 1, status: approved }
//	    expect:
//	      outcome: FORBIDDEN
//	assertions:
//	  - type: log_contains
//	    action: "User Kepala Sekolah logged in as kepsek"
//	  - type: final_state
//	    path: guruIzin.0.status
//	    equals: pending
//
// Every step names a console operation and its args; quote dates and
// times so YAML keeps them as strings.
// Setup steps must succeed. Flow steps may carry an expect clause with
// the outcome code and a subset of the JSON result.
//
// # Assertion Types
//
//   - log_contains: an activity-log entry has exactly this action text
//   - log_order: the actions appear in this order, oldest first
//   - log_count: exactly count entries have this action text
//   - final_state: the value at a dotted path of the document, read from
//     memory or, with source: stored, from what was persisted
//   - unsaved: whether the board has edits not yet saved
//
// # Deterministic Runs
//
// Scenarios run on a fake clock fixed at now (default
// 2024-03-20T08:00:00Z) with sequential session ids, so the trace of a
// run is byte-for-byte reproducible and can be compared to a golden
// file with RunWithGolden.
package harness
