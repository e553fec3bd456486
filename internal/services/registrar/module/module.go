// Package module wires the registrar service
package module

import (
	"curtaincall/internal/modkit"
	"curtaincall/internal/modkit/httpkit"
	"curtaincall/internal/services/registrar/domain"
	"curtaincall/internal/services/registrar/service"
	roster "curtaincall/internal/services/roster/domain"
)

// Ports exposed by the registrar module
type Ports struct {
	Writer domain.WriterPort
}

// Module implements the registrar service module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new registrar module. rosterPort enables related
// celebrity resolution and may be nil
func New(deps modkit.Deps, rosterPort roster.ReaderPort) *Module {
	svc := service.New(deps.PG, deps.RD, rosterPort)
	m := &Module{deps: deps}
	m.ports = Ports{Writer: svc}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "registrar" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// Prefix satisfies modkit.Module
func (m *Module) Prefix() string { return "" }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {}
