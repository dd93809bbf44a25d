// Package api contains the HTTP handlers for the service: authentication,
// user profile and task management endpoints. Handlers translate between
// the HTTP surface and the services/stores; they hold no business rules of
// their own beyond request-shape validation.
package api
