// Command solverd is a solver worker: it joins the solver queue group on
// NATS and answers solve requests with the in-process surrogate backend.
// Run several instances to scale a sweep out horizontally.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"github.com/latticedyn/hexsweep/engine/solver"
	"github.com/latticedyn/hexsweep/engine/surrogate"
	"github.com/latticedyn/hexsweep/pkg/metrics"
)

var met = metrics.New()

func main() {
	var (
		natsURL     = flag.String("nats", nats.DefaultURL, "NATS server URL")
		subject     = flag.String("subject", solver.SolveSubject, "NATS solve subject")
		metricsPort = flag.Int("metrics-port", 9092, "metrics HTTP port")
	)
	godotenv.Load()
	flag.Parse()

	met.CollectRuntime("hexsweep_solverd", 15*time.Second)
	met.ServeAsync(*metricsPort)

	log := slog.Default()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	nc, err := nats.Connect(*natsURL, nats.Name("hexsweep-solverd"))
	if err != nil {
		log.Error("nats connect failed", "url", *natsURL, "error", err)
		os.Exit(1)
	}
	defer nc.Close()

	sub, err := solver.Listen(nc, *subject, surrogate.New(), log)
	if err != nil {
		log.Error("subscribe failed", "subject", *subject, "error", err)
		os.Exit(1)
	}
	log.Info("solver worker ready", "subject", *subject, "queue", solver.SolveQueue)

	<-ctx.Done()
	log.Info("shutting down")
	sub.Drain()
	nc.Drain()
}
