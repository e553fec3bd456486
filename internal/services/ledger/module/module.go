// Package module wires the ledger service
package module

import (
	"curtaincall/internal/modkit"
	"curtaincall/internal/modkit/httpkit"
	"curtaincall/internal/services/ledger/domain"
	"curtaincall/internal/services/ledger/service"
)

// Ports exposed by the ledger module
type Ports struct {
	Recorder domain.RecorderPort
	Query    domain.QueryPort
}

// Module implements the ledger service module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new ledger module
func New(deps modkit.Deps) *Module {
	svc := service.New(deps.CH)
	m := &Module{deps: deps}
	m.ports = Ports{Recorder: svc, Query: svc}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "ledger" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// Prefix satisfies modkit.Module
func (m *Module) Prefix() string { return "" }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {}
