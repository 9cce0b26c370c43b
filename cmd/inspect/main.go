package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/etki/mvno-api-client/internal/inspect"
	"github.com/etki/mvno-api-client/pkg/config"
	"github.com/etki/mvno-api-client/pkg/env"
	"github.com/etki/mvno-api-client/pkg/instance"
	"github.com/etki/mvno-api-client/pkg/logger"
	"github.com/etki/mvno-api-client/pkg/metrics"
)

func main() {
	ctx := context.Background()
	// bootstrap logger early (then re-init after config load)
	logg := logger.New(logger.Options{ServiceName: "inspect"})

	_ = godotenv.Load(env.Get(config.EnvEnvFile, ".env"))

	// Flags
	stdin := flag.Bool("stdin", false, "read a single response body from stdin")
	metricsOut := flag.String("metrics-out", "", "write gathered metrics to this file in text format")
	failFast := flag.Bool("fail-fast", false, "stop the batch at the first rejected body")
	pretty := flag.Bool("pretty", false, "indent the JSON output")

	flag.Parse()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "inspect",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx = logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"instance": instance.GetID(),
		"files":    flag.NArg(),
	})

	metricsTarget := *metricsOut
	if metricsTarget == "" {
		metricsTarget = cfg.Inspect.MetricsFile
	}

	reg := prometheus.NewRegistry()
	parseMetrics := metrics.NewParseMetrics(reg)

	svc, err := inspect.New(inspect.Params{
		Logger:       logg,
		Metrics:      parseMetrics,
		FailFast:     *failFast || cfg.Inspect.FailFast,
		MaxBodyBytes: cfg.Inspect.MaxBodyBytes,
	})
	requireResource(ctx, logg, "inspector", err)

	logg.Info(ctx, "inspect ready")

	if *stdin {
		verdict, runErr := svc.InspectStream(ctx, "stdin", os.Stdin)
		printJSON(verdict, *pretty)
		writeMetrics(ctx, logg, reg, metricsTarget)
		if runErr != nil {
			os.Exit(1)
		}
		return
	}

	paths := flag.Args()
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "no input files; pass file paths or -stdin")
		os.Exit(1)
	}

	report, runErr := svc.InspectAll(ctx, paths)
	printJSON(report, *pretty)
	writeMetrics(ctx, logg, reg, metricsTarget)
	if runErr != nil {
		os.Exit(1)
	}
}

func printJSON(v any, pretty bool) {
	enc := json.NewEncoder(os.Stdout)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode output: %v\n", err)
		os.Exit(1)
	}
}

func writeMetrics(ctx context.Context, logg *logger.Logger, reg *prometheus.Registry, path string) {
	if path == "" {
		return
	}
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		logg.Error(ctx, "failed to write metrics file", err)
		os.Exit(1)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
