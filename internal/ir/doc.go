// Package ir provides the event vocabulary shared by every other sortstep package.
//
// An algorithm run is described entirely by an ordered log of Events. Each Event
// names one primitive array operation (compare, swap, move, set, read, remove)
// or the terminal End marker, the element indices it touched, and two integer
// payload values whose meaning depends on the event type.
//
// This package contains types and pure functions only. All other internal
// packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - NO float types in the event model; values are plain ints
//   - Text names (compare, swap, ...) are the wire form in JSON, YAML and flags
//   - All JSON tags use snake_case
//   - A log replayed onto its input array reproduces the run's final array
package ir
