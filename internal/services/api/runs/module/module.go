// Package module wires run telemetry into the API using modkit
package module

import (
	"crypto/subtle"
	"net/http"

	modkit "curtaincall/internal/modkit"
	"curtaincall/internal/modkit/httpkit"
	perr "curtaincall/internal/platform/errors"
	"curtaincall/internal/platform/net/middleware"
	str "curtaincall/internal/platform/strings"

	runshttp "curtaincall/internal/services/api/runs/http"
	ledgersvc "curtaincall/internal/services/ledger/service"
)

// Module implements the runs module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)
}

// New constructs the runs module over the ledger read side
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("runs"),
		modkit.WithPrefix("/runs"),
	}, opts...)...)

	svc := ledgersvc.New(deps.CH)
	guard := opsGuard(deps.Cfg.Prefix("CORE_API_").MayString("OPS_TOKEN", ""))

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		subrouter: b.Subrouter,
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		httpkit.Protected(r, guard, func(gr httpkit.Router) {
			runshttp.Register(gr, svc)
		})
		if external != nil {
			external(r)
		}
	}
	return m
}

// opsGuard builds the bearer guard for the run telemetry endpoints.
// An empty token leaves them open, which is the local-dev default
func opsGuard(token string) middleware.AuthPort {
	if token == "" {
		return nil
	}
	return httpkit.NewPortFunc(func(tok string) (string, error) {
		if subtle.ConstantTimeCompare([]byte(tok), []byte(token)) != 1 {
			return "", perr.Unauthorizedf("operator token mismatch")
		}
		return "operator", nil
	})
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.name, "runs") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Middlewares returns the module middlewares
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.mws }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return nil }
