// Package testdb hands tests a migrated database.
//
// NewSQLite returns a private in-memory SQLite database and needs nothing from
// the environment, so unit tests of stores and services use it freely.
// NewPostgres connects to DATABASE_URL and skips the test when the variable is
// unset:
//
//	func TestSomething(t *testing.T) {
//	    db := testdb.NewSQLite(t)
//	    stores := sqlstore.NewStores(db.DB, db.Dialect, nil)
//	    ...
//	}
//
// WithTx runs a function inside a transaction that is always rolled back.
package testdb
