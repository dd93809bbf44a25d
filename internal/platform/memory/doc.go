// Package memory provides in-memory implementations of the store
// interfaces. They back the console variant of the application and the
// HTTP handler tests; the semantics, including user scoping, match the
// postgres implementations.
package memory
