// Package service implements the vocabulary lifecycle on top of the store
// interfaces.
//
// A VocabularyService owns every mutation of the vocabulary:
//
//   - recording encounters (AddWord) and manual entries (AddManual)
//   - reviews, which move HP and may promote an entry (ReviewKnown, ReviewUnknown)
//   - promotion to and demotion from the mastered registry (Promote, Demote)
//   - parent/child relationships (SetParent, Children)
//   - rename, note and delete
//
// Each mutation runs in one database transaction and mutations are serialized
// by a process-level writer lock, so concurrent callers in one process observe
// a sequential history. Lifecycle events are emitted after commit.
//
// Errors returned by the service are *Error values. Their Kind is one of the
// domain error kinds and can be tested with errors.Is; KindCode renders it as
// a stable machine-readable code.
package service
