// Package module wires the roster service
package module

import (
	"curtaincall/internal/modkit"
	"curtaincall/internal/modkit/httpkit"
	"curtaincall/internal/services/roster/domain"
	"curtaincall/internal/services/roster/service"
)

// Ports exposed by the roster module
type Ports struct {
	Reader domain.ReaderPort
}

// Module implements the roster service module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new roster module
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)
	svc := service.New(deps.PG, service.Config{HardLimit: opts.HardLimit})

	m := &Module{deps: deps}
	m.ports = Ports{Reader: svc}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "roster" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// Prefix satisfies modkit.Module
func (m *Module) Prefix() string { return "" }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {}
