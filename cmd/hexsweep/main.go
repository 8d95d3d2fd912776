// Command hexsweep runs a full-factorial honeycomb design sweep: it
// enumerates the (beta, theta) grid, solves every point through the
// configured solver backend, ranks the feasible designs and writes the
// results tables and summary report.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/latticedyn/hexsweep/engine/analysis"
	"github.com/latticedyn/hexsweep/engine/domain"
	"github.com/latticedyn/hexsweep/engine/extract"
	"github.com/latticedyn/hexsweep/engine/lattice"
	"github.com/latticedyn/hexsweep/engine/optimize"
	"github.com/latticedyn/hexsweep/engine/report"
	"github.com/latticedyn/hexsweep/engine/solver"
	"github.com/latticedyn/hexsweep/engine/store"
	"github.com/latticedyn/hexsweep/engine/surrogate"
	"github.com/latticedyn/hexsweep/engine/sweep"
	"github.com/latticedyn/hexsweep/pkg/metrics"
)

var met = metrics.New()

var (
	mSweeps         = met.Counter("hexsweep_sweeps_total", "Completed sweep invocations")
	mReportsWritten = func(format string) *metrics.Counter {
		return met.Counter(metrics.WithLabels("hexsweep_reports_written_total", "format", format), "Report files written")
	}
)

func main() {
	var (
		betasArg  = flag.String("betas", "0.05:0.2:0.01", "beta values: comma list or min:max:step")
		thetasArg = flag.String("thetas", "10:30:5", "theta values in degrees: comma list or min:max:step")
		side      = flag.Float64("side", 0.3, "hexagon side length L, cm")
		cols      = flag.Int("cols", 5, "hexagonal cells per row")
		rows      = flag.Int("rows", 4, "hexagonal cell rows")

		workers      = flag.Int("workers", sweep.DefaultWorkers, "concurrent solver jobs")
		pointTimeout = flag.Duration("point-timeout", 15*time.Minute, "per-point time bound, 0 for none")

		backend    = flag.String("backend", "local", "solver backend: local or nats")
		natsURL    = flag.String("nats", nats.DefaultURL, "NATS server URL")
		subject    = flag.String("subject", solver.SolveSubject, "NATS solve subject")
		jobTimeout = flag.Duration("job-timeout", solver.DefaultJobTimeout, "remote solver job timeout")
		submitRate = flag.Float64("submit-rate", 0, "solver submissions per second, 0 for unlimited")

		neo4jURL  = flag.String("neo4j", "", "Neo4j bolt URL, empty to skip persistence")
		neo4jUser = flag.String("neo4j-user", envOr("NEO4J_USER", "neo4j"), "Neo4j username")
		neo4jPass = flag.String("neo4j-pass", envOr("NEO4J_PASS", ""), "Neo4j password")

		outDir  = flag.String("out", "out", "output directory for report files")
		formats = flag.String("formats", "csv,xlsx,pdf,json", "report formats to write")

		weightOnset = flag.Float64("weight-onset", optimize.DefaultWeights.Onset, "scoring weight for low bandgap onset")
		weightWidth = flag.Float64("weight-width", optimize.DefaultWeights.Width, "scoring weight for bandgap width")

		gapThreshold = flag.Float64("gap-threshold", extract.DefaultBandgapParams.ThresholdFraction, "bandgap threshold as fraction of peak response")
		gapMinWidth  = flag.Float64("gap-min-width", extract.DefaultBandgapParams.MinWidthHz, "minimum bandgap width, Hz")

		staticLoad = flag.Float64("static-load", analysis.DefaultStaticLoad, "aggregate compressive load, N")
		forcing    = flag.Float64("forcing", analysis.DefaultForcingAmplitude, "harmonic forcing amplitude, N")
		freqMax    = flag.Float64("freq-max", analysis.DefaultFreqMax, "sweep frequency upper bound, Hz")
		intervals  = flag.Int("intervals", analysis.DefaultSSDIntervals, "frequency sweep intervals")
		damping    = flag.Float64("damping", analysis.DefaultDamping, "structural damping ratio")

		metricsPort = flag.Int("metrics-port", 9091, "metrics HTTP port")
	)
	godotenv.Load()
	flag.Parse()

	met.CollectRuntime("hexsweep", 15*time.Second)
	met.ServeAsync(*metricsPort)

	log := slog.Default()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	betas, err := parseFloats(*betasArg)
	if err != nil {
		log.Error("bad -betas", "error", err)
		os.Exit(1)
	}
	thetas, err := parseFloats(*thetasArg)
	if err != nil {
		log.Error("bad -thetas", "error", err)
		os.Exit(1)
	}

	var adapter solver.Adapter
	switch *backend {
	case "local":
		adapter = surrogate.New()
		log.Info("using in-process surrogate solver")
	case "nats":
		nc, err := nats.Connect(*natsURL, nats.Name("hexsweep"))
		if err != nil {
			log.Error("nats connect failed", "url", *natsURL, "error", err)
			os.Exit(1)
		}
		defer nc.Close()
		adapter = solver.NewNATS(nc, solver.NATSOpts{
			Subject:    *subject,
			JobTimeout: *jobTimeout,
			SubmitRate: *submitRate,
		}, log)
		log.Info("using remote solver backend", "url", *natsURL, "subject", *subject)
	default:
		log.Error("unknown backend", "backend", *backend)
		os.Exit(1)
	}

	var st *store.Store
	if *neo4jURL != "" {
		driver, err := neo4j.NewDriverWithContext(*neo4jURL, neo4j.BasicAuth(*neo4jUser, *neo4jPass, ""))
		if err != nil {
			log.Error("neo4j connect failed", "error", err)
			os.Exit(1)
		}
		defer driver.Close(ctx)
		if err := driver.VerifyConnectivity(ctx); err != nil {
			log.Error("neo4j verify failed", "error", err)
			os.Exit(1)
		}
		st = store.New(driver, log)
		log.Info("connected to Neo4j", "url", *neo4jURL)
	}

	in := sweep.Input{
		SideLength: *side,
		NumCols:    *cols,
		NumRows:    *rows,
		Material:   domain.AluminumB4C,
		Betas:      betas,
		Thetas:     thetas,
		LoadCase: analysis.LoadCase{
			StaticLoad:       *staticLoad,
			ForcingAmplitude: *forcing,
			FreqMax:          *freqMax,
			SSDIntervals:     *intervals,
			Damping:          *damping,
		},
		Bandgap: extract.BandgapParams{
			ThresholdFraction: *gapThreshold,
			MinWidthHz:        *gapMinWidth,
		},
	}

	opts := sweep.Opts{
		Workers:      *workers,
		PointTimeout: *pointTimeout,
		Logger:       log,
		Metrics:      met,
	}
	if st != nil {
		opts.Sink = st
	}

	records, err := sweep.New(adapter, opts).Run(ctx, in)
	if err != nil {
		log.Error("sweep failed", "error", err)
		os.Exit(1)
	}
	mSweeps.Inc()

	out := optimize.Evaluate(records, optimize.Weights{Onset: *weightOnset, Width: *weightWidth})
	if best := out.Best; best != nil {
		log.Info("best design",
			"label", best.Label,
			"beta", best.Config.Beta,
			"theta_deg", best.Config.ThetaDeg,
			"score", best.Score)
		if best.Metrics != nil && best.Metrics.Bandgap != nil {
			g := best.Metrics.Bandgap
			log.Info("best bandgap", "onset_hz", g.OnsetHz, "end_hz", g.EndHz, "width_hz", g.WidthHz)
		}
		if st != nil {
			if g, err := lattice.Generate(best.Config); err == nil {
				if err := st.SaveLattice(ctx, best.Label, g); err != nil {
					log.Error("save best lattice failed", "error", err)
				}
			}
		}
	} else {
		log.Warn("no feasible design in the swept range")
	}

	if err := writeReports(*outDir, *formats, out, log); err != nil {
		log.Error("report output failed", "error", err)
		os.Exit(1)
	}
}

// writeReports emits one file per requested format into dir.
func writeReports(dir, formats string, out optimize.Outcome, log *slog.Logger) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, format := range strings.Split(formats, ",") {
		format = strings.TrimSpace(format)
		if format == "" {
			continue
		}
		var (
			name  string
			write func(f *os.File) error
		)
		switch format {
		case "csv":
			name = "results.csv"
			write = func(f *os.File) error { return report.WriteCSV(f, out) }
		case "json":
			name = "results.json"
			write = func(f *os.File) error { return report.WriteJSON(f, out) }
		case "xlsx":
			name = "results.xlsx"
			write = func(f *os.File) error { return report.WriteXLSX(f, out) }
		case "pdf":
			name = "summary.pdf"
			write = func(f *os.File) error { return report.WritePDF(f, out) }
		default:
			return fmt.Errorf("unknown report format %q", format)
		}

		path := filepath.Join(dir, name)
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := write(f); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		mReportsWritten(format).Inc()
		log.Info("report written", "path", path)
	}
	return nil
}

// parseFloats accepts either a comma list ("0.05,0.0667,0.1") or an
// inclusive min:max:step range ("10:30:5").
func parseFloats(s string) ([]float64, error) {
	if parts := strings.Split(s, ":"); len(parts) == 3 {
		lo, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, err
		}
		hi, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, err
		}
		step, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return nil, err
		}
		if step <= 0 || hi < lo {
			return nil, fmt.Errorf("bad range %q", s)
		}
		// Index-based generation avoids accumulation drift; the half-step
		// tolerance keeps the upper bound in, clamped so a value like
		// 0.20000000000000004 never leaks past the bound the user asked for.
		var out []float64
		for i := 0; ; i++ {
			v := lo + float64(i)*step
			if v > hi+step/2 {
				break
			}
			if v > hi {
				v = hi
			}
			out = append(out, v)
		}
		return out, nil
	}

	var out []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty list %q", s)
	}
	return out, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
