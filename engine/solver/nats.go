package solver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"golang.org/x/time/rate"

	"github.com/latticedyn/hexsweep/engine/analysis"
	"github.com/latticedyn/hexsweep/engine/domain"
	"github.com/latticedyn/hexsweep/pkg/natsutil"
	"github.com/latticedyn/hexsweep/pkg/resilience"
)

const (
	// SolveSubject is the NATS subject solver daemons answer on.
	SolveSubject = "engine.solve"
	// SolveQueue is the queue group daemons join so each job runs once.
	SolveQueue = "solvers"
)

// NATSOpts configures the remote adapter.
type NATSOpts struct {
	// Subject overrides SolveSubject.
	Subject string
	// JobTimeout bounds one solver round trip. FE jobs run minutes, so the
	// default is deliberately generous.
	JobTimeout time.Duration
	// SubmitRate caps job submissions per second; zero means unlimited.
	SubmitRate float64
	// SubmitBurst is the submission burst size when SubmitRate is set.
	SubmitBurst int
	// Breaker configures failure tripping for the backend as a whole.
	Breaker resilience.BreakerOpts
}

// DefaultJobTimeout bounds one remote solve.
const DefaultJobTimeout = 10 * time.Minute

// NATS submits jobs to remote solver daemons over request/reply. A token
// bucket paces submissions and a circuit breaker stops hammering a backend
// that is failing every job.
type NATS struct {
	nc      *nats.Conn
	subject string
	timeout time.Duration
	limiter *rate.Limiter
	breaker *resilience.Breaker
	log     *slog.Logger
}

// NewNATS creates the remote adapter.
func NewNATS(nc *nats.Conn, opts NATSOpts, log *slog.Logger) *NATS {
	if log == nil {
		log = slog.Default()
	}
	subject := opts.Subject
	if subject == "" {
		subject = SolveSubject
	}
	timeout := opts.JobTimeout
	if timeout <= 0 {
		timeout = DefaultJobTimeout
	}
	limit := rate.Inf
	burst := 1
	if opts.SubmitRate > 0 {
		limit = rate.Limit(opts.SubmitRate)
		if opts.SubmitBurst > 0 {
			burst = opts.SubmitBurst
		}
	}
	return &NATS{
		nc:      nc,
		subject: subject,
		timeout: timeout,
		limiter: rate.NewLimiter(limit, burst),
		breaker: resilience.NewBreaker(opts.Breaker),
		log:     log,
	}
}

// Solve forwards the request and waits for the daemon's response.
func (a *NATS) Solve(ctx context.Context, req *analysis.Request) (*analysis.Response, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var resp analysis.Response
	err := a.breaker.Call(ctx, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, a.timeout)
		defer cancel()

		a.log.Debug("submitting solver job", "job_id", req.JobID, "label", req.Label, "subject", a.subject)
		r, err := natsutil.Request[analysis.Request, analysis.Response](ctx, a.nc, a.subject, *req)
		if err != nil {
			return &domain.SolverError{Step: "submit", Wrapped: err}
		}
		if r.JobID != req.JobID {
			return &domain.SolverError{Step: "submit", Wrapped: fmt.Errorf("response for job %q, requested %q", r.JobID, req.JobID)}
		}
		if msg, failed := r.Failed(analysis.StepInvocation); failed {
			return &domain.SolverError{Step: analysis.StepInvocation, Wrapped: fmt.Errorf("%s", msg)}
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Listen registers a queue-group responder that answers solve requests with
// the given adapter. Solver daemons call this once and block on their signal
// context; the returned subscription is drained by the caller on shutdown.
// A backend failure still gets a reply, with the diagnostic carried in
// StepErrors, so the submitter sees the reason instead of stalling until its
// job timeout.
func Listen(nc *nats.Conn, subject string, backend Adapter, log *slog.Logger) (*nats.Subscription, error) {
	if log == nil {
		log = slog.Default()
	}
	if subject == "" {
		subject = SolveSubject
	}
	return natsutil.Respond(nc, subject, SolveQueue, func(ctx context.Context, req analysis.Request) (analysis.Response, error) {
		start := time.Now()
		resp, err := backend.Solve(ctx, &req)
		if err != nil {
			log.Error("solver job failed", "job_id", req.JobID, "label", req.Label, "error", err)
			return analysis.Response{
				JobID:      req.JobID,
				StepErrors: map[string]string{analysis.StepInvocation: err.Error()},
			}, nil
		}
		log.Info("solver job done", "job_id", req.JobID, "label", req.Label, "duration", time.Since(start))
		return *resp, nil
	})
}
