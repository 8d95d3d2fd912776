// Package sweep runs the full-factorial design sweep: it enumerates every
// (β, θ) combination, carries each point through lattice generation, solver
// submission and metric extraction on a bounded worker pool, and collects
// one record per point. A failing point is recorded and skipped, never
// fatal; the only pre-launch failure is an empty parameter range.
package sweep

import (
	"context"
	"log/slog"
	"time"

	"github.com/latticedyn/hexsweep/engine/analysis"
	"github.com/latticedyn/hexsweep/engine/domain"
	"github.com/latticedyn/hexsweep/engine/extract"
	"github.com/latticedyn/hexsweep/engine/lattice"
	"github.com/latticedyn/hexsweep/engine/solver"
	"github.com/latticedyn/hexsweep/pkg/metrics"
	"github.com/latticedyn/hexsweep/pkg/pipe"
)

// DefaultWorkers bounds concurrent solver jobs when Opts.Workers is unset.
const DefaultWorkers = 4

// Input is one sweep invocation: the fixed lattice frame, the swept
// parameter lists and the shared load case.
type Input struct {
	SideLength float64         `json:"side_length"`
	NumCols    int             `json:"num_cols"`
	NumRows    int             `json:"num_rows"`
	Material   domain.Material `json:"material"`

	Betas  []float64 `json:"betas"`
	Thetas []float64 `json:"thetas"` // degrees

	LoadCase analysis.LoadCase     `json:"load_case"`
	Bandgap  extract.BandgapParams `json:"bandgap"` // zero value → defaults
}

// Validate rejects inputs no point of which could run.
func (in Input) Validate() error {
	if len(in.Betas) == 0 || len(in.Thetas) == 0 {
		return domain.ErrEmptySweepRange
	}
	return nil
}

// Points enumerates the design points, β as the outer axis and θ as the
// inner one. Out-of-bounds values stay in the list: they fail their own
// point with a geometry error instead of silently shrinking the sweep.
func (in Input) Points() []domain.LatticeConfig {
	out := make([]domain.LatticeConfig, 0, len(in.Betas)*len(in.Thetas))
	for _, beta := range in.Betas {
		for _, theta := range in.Thetas {
			out = append(out, domain.LatticeConfig{
				SideLength: in.SideLength,
				Beta:       beta,
				ThetaDeg:   theta,
				NumCols:    in.NumCols,
				NumRows:    in.NumRows,
				Material:   in.Material,
			})
		}
	}
	return out
}

// Record is the outcome of one design point. Feasible and Score stay zero
// until the optimizer annotates them.
type Record struct {
	Config     domain.LatticeConfig `json:"config"`
	Label      string               `json:"label"`
	Failed     bool                 `json:"failed"`
	FailReason string               `json:"fail_reason,omitempty"`
	Metrics    *extract.Metrics     `json:"metrics,omitempty"`
	Feasible   bool                 `json:"feasible"`
	Score      float64              `json:"score"`
	Duration   time.Duration        `json:"duration"`
}

// Sink receives finished records as they complete, e.g. for persistence.
type Sink interface {
	SaveRecord(ctx context.Context, rec *Record) error
}

// Opts configures an Orchestrator.
type Opts struct {
	Workers      int
	PointTimeout time.Duration // zero means no per-point bound
	Sink         Sink          // optional
	Logger       *slog.Logger
	Metrics      *metrics.Registry // optional
}

// Orchestrator fans sweep points out to the solver adapter.
type Orchestrator struct {
	adapter solver.Adapter
	opts    Opts
	log     *slog.Logger
}

// New creates an Orchestrator around a solver adapter.
func New(adapter solver.Adapter, opts Opts) *Orchestrator {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{adapter: adapter, opts: opts, log: log}
}

// Run sweeps every point and returns the records in enumeration order.
// Cancelling ctx stops new launches; points already in flight finish and
// the remainder are recorded as failed.
func (o *Orchestrator) Run(ctx context.Context, in Input) ([]Record, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	points := in.Points()
	o.log.Info("starting sweep",
		"points", len(points),
		"betas", len(in.Betas),
		"thetas", len(in.Thetas),
		"workers", o.opts.Workers)

	start := time.Now()
	records := pipe.ParMap(points, o.opts.Workers, func(cfg domain.LatticeConfig) Record {
		return o.runPoint(ctx, in, cfg)
	})

	failed := 0
	for i := range records {
		if records[i].Failed {
			failed++
		}
	}
	o.log.Info("sweep finished", "points", len(records), "failed", failed, "duration", time.Since(start))
	return records, nil
}

// runPoint carries one config through generation, solving and extraction.
func (o *Orchestrator) runPoint(ctx context.Context, in Input, cfg domain.LatticeConfig) Record {
	start := time.Now()
	rec := Record{Config: cfg, Label: cfg.Label()}

	// The sink writes on the sweep context, not the per-point one: a record
	// that failed by PointTimeout still gets persisted.
	sinkCtx := ctx
	if o.opts.PointTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.PointTimeout)
		defer cancel()
	}

	prepare := pipe.Traced("sweep.prepare", pipe.Lift(func(ctx context.Context, cfg domain.LatticeConfig) (*analysis.Request, error) {
		g, err := lattice.Generate(cfg)
		if err != nil {
			return nil, err
		}
		return analysis.BuildRequest(cfg, g, in.LoadCase)
	}))
	solve := pipe.Traced("sweep.solve", pipe.Lift(func(ctx context.Context, req *analysis.Request) (*analysis.Response, error) {
		return o.adapter.Solve(ctx, req)
	}))

	m, err := o.measure(ctx, cfg, in, prepare, solve)
	rec.Duration = time.Since(start)
	if err != nil {
		rec.Failed = true
		rec.FailReason = err.Error()
		o.log.Warn("sweep point failed", "label", rec.Label, "error", err)
	} else {
		rec.Metrics = m
	}
	o.observe(&rec)

	if o.opts.Sink != nil {
		if err := o.opts.Sink.SaveRecord(sinkCtx, &rec); err != nil {
			o.log.Error("record sink failed", "label", rec.Label, "error", err)
		}
	}
	return rec
}

func (o *Orchestrator) measure(
	ctx context.Context,
	cfg domain.LatticeConfig,
	in Input,
	prepare pipe.Stage[domain.LatticeConfig, *analysis.Request],
	solve pipe.Stage[*analysis.Request, *analysis.Response],
) (*extract.Metrics, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	req, err := prepare(ctx, cfg).Unwrap()
	if err != nil {
		return nil, err
	}
	resp, err := solve(ctx, req).Unwrap()
	if err != nil {
		return nil, err
	}
	params := in.Bandgap
	if params == (extract.BandgapParams{}) {
		params = extract.DefaultBandgapParams
	}
	return extract.FromResponse(cfg, req, resp, params)
}

func (o *Orchestrator) observe(rec *Record) {
	reg := o.opts.Metrics
	if reg == nil {
		return
	}
	status := "ok"
	if rec.Failed {
		status = "failed"
	}
	reg.Counter(metrics.WithLabels("sweep_points_total", "status", status), "sweep points by outcome").Inc()
	reg.Histogram("sweep_point_seconds", "wall time of one design point", nil).Observe(rec.Duration.Seconds())
}
