// Package store defines the persistence contracts for the application and
// the error taxonomy shared by all implementations. Concrete backends live
// under internal/platform.
package store
