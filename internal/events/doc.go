// Package events carries vocabulary lifecycle notifications.
//
// The service emits an Event after each committed mutation (an entry created,
// encountered, promoted, demoted or deleted). Emission is synchronous and
// in-process; handlers must not block for long. A failing handler never undoes
// the mutation that produced the event.
package events
