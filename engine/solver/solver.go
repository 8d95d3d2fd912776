// Package solver connects the sweep orchestrator to an FE backend. The
// orchestrator only sees the Adapter interface; the NATS adapter forwards
// jobs to remote solver daemons over JSON request/reply, and the surrogate
// estimator satisfies the same interface for local runs.
package solver

import (
	"context"

	"github.com/latticedyn/hexsweep/engine/analysis"
)

// Adapter submits one analysis job and blocks until its response arrives,
// the job fails, or ctx is done.
type Adapter interface {
	Solve(ctx context.Context, req *analysis.Request) (*analysis.Response, error)
}

// Func adapts a plain function to an Adapter.
type Func func(ctx context.Context, req *analysis.Request) (*analysis.Response, error)

func (f Func) Solve(ctx context.Context, req *analysis.Request) (*analysis.Response, error) {
	return f(ctx, req)
}
