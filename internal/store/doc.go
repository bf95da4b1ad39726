// Package store defines interfaces for vocabulary persistence.
// These interfaces abstract the underlying database from the service layer,
// which composes them inside a single transaction per mutation using
// RunInTransaction and the WithTx methods.
package store
