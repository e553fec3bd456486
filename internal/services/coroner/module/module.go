// Package module wires the coroner orchestrator
package module

import (
	"curtaincall/internal/adapters/sources"
	"curtaincall/internal/modkit"
	"curtaincall/internal/modkit/httpkit"
	"curtaincall/internal/services/coroner/domain"
	"curtaincall/internal/services/coroner/service"
	ledger "curtaincall/internal/services/ledger/domain"
	obit "curtaincall/internal/services/obituarist/domain"
)

// Ports exposed by the coroner module
type Ports struct {
	Orchestrator domain.OrchestratorPort
}

// Module implements the coroner service module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new coroner module over a prepared source catalog.
// recorder may be nil when run telemetry is disabled
func New(deps modkit.Deps, srcs []sources.Source, synth obit.SynthesizerPort, recorder ledger.RecorderPort) *Module {
	opts := FromConfig(deps.Cfg)
	svc := service.New(srcs, synth, recorder, service.Config{
		EarlyStop:           opts.EarlyStop,
		MaxCostPerActor:     opts.MaxCostPerActor,
		MaxTotalCost:        opts.MaxTotalCost,
		ConfidenceThreshold: opts.ConfidenceThreshold,
		Workers:             opts.Workers,
	})

	m := &Module{deps: deps}
	m.ports = Ports{Orchestrator: svc}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "coroner" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// Prefix satisfies modkit.Module
func (m *Module) Prefix() string { return "" }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {}
