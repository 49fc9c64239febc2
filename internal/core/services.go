package core

import (
	"github.com/go-chi/chi/v5"
)

// Service is the interface that every HTTP-facing module implements so the
// edge router can mount it. Services are handed to the router explicitly
// when the server is built.
type Service interface {
	// Name returns the unique identifier for this service (e.g., "accounts").
	// The router mounts the service under "/" + Name().
	Name() string

	// RegisterRoutes sets up HTTP routes for this service on the provided router.
	// The router is a sub-router scoped to this service's path prefix.
	RegisterRoutes(router chi.Router)
}
