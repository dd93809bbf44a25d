// Package postgres contains the PostgreSQL-backed implementations of the
// store interfaces. All queries are parameterized and scoped to the owning
// user where the contract requires it.
package postgres
