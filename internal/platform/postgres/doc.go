// Package postgres is the server backend. It supplies the sqlstore.Dialect for
// PostgreSQL (placeholder rebinding, SQLSTATE error mapping and the embedded
// migrations) and opens connection pools through the pgx stdlib driver.
package postgres
