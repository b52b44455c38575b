// Package modkit provides module wiring and core deps
package modkit

import (
	"fmt"

	"github.com/go-chi/chi/v5"
)

// Module is the common surface for pipeline modules that expose ports and,
// optionally, ops routes. keep this tiny so modules stay decoupled
type Module interface {
	// MountRoutes mounts ops HTTP routes; modules without routes do nothing
	MountRoutes(r chi.Router)
	// Ports returns a module specific port set for cross wiring
	Ports() any
	// Name returns the module name
	Name() string
}

// MustPortsOf type asserts a module's ports and panics on wiring mistakes
func MustPortsOf[T any](m Module) T {
	if m == nil {
		panic("modkit: nil module")
	}
	p, ok := m.Ports().(T)
	if !ok {
		var zero T
		panic(fmt.Sprintf("modkit: module %s does not expose ports of type %T", m.Name(), zero))
	}
	return p
}
