// Package modkit provides the building blocks API modules are assembled from
package modkit

import (
	phttp "reviewguard/internal/platform/net/http"
)

// Module is a mountable slice of the API
type Module interface {
	// MountRoutes registers the module under its prefix
	MountRoutes(r phttp.Router)
	// Ports exposes capabilities for cross-module wiring, nil when none
	Ports() any

	Name() string
}
