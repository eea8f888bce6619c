// Package main provides the opref CLI: it checks an operator implementation
// against the reference outputs of the built-in scenarios.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"regexp"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"

	"github.com/born-ml/opref/internal/opcheck"
)

const version = "v0.1.0"

var (
	runPattern = flag.String("run", "", "Only run scenarios whose name matches this regexp")
	seed       = flag.Int64("seed", 2021, "Seed for scenario inputs")
	withRank8  = flag.Bool("rank8", false, "Include the 8-D reduction scenarios")
	goldenDir  = flag.String("golden", "", "Compare against fixture files <dir>/<scenario>.cbor instead of the reference kernel")
	recordDir  = flag.String("record", "", "Write reference outputs as fixture files into dir")
	enableOTel = flag.Bool("otel", false, "Enable OpenTelemetry tracing (stdout)")
	metricsOut = flag.String("metrics-out", "", "Write Prometheus metrics in text format to file")
	verbose    = flag.Bool("v", false, "Debug logging")
	listOnly   = flag.Bool("list", false, "List scenarios and exit")
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("opref %s\n", version)
		return
	}

	// Initialize logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Caller().Logger()

	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *enableOTel {
		shutdown, err := initTracer()
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize tracer")
			return 1
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Warn().Err(err).Msg("Failed to flush traces")
			}
		}()
	}

	scenarios := opcheck.DefaultScenarios()
	if *listOnly {
		for _, sc := range scenarios {
			fmt.Printf("%-32s %-12s %v\n", sc.Name, sc.Op, sc.Tags)
		}
		return 0
	}

	runner := &opcheck.Runner{
		Kernel:    opcheck.ReferenceKernel{},
		Seed:      *seed,
		Logger:    log.Logger,
		RecordDir: *recordDir,
	}
	if *goldenDir != "" {
		runner.Kernel = opcheck.GoldenKernel{Dir: *goldenDir}
	}
	if *withRank8 {
		runner.Tags = append(runner.Tags, opcheck.TagRank8)
	}
	if *runPattern != "" {
		re, err := regexp.Compile(*runPattern)
		if err != nil {
			log.Error().Err(err).Str("run", *runPattern).Msg("Invalid -run pattern")
			return 2
		}
		runner.Filter = re
	}

	log.Info().Str("kernel", runner.Kernel.Name()).Int64("seed", *seed).Msg("Checking scenarios")

	start := time.Now()
	report, err := runner.Run(ctx, scenarios)
	if err != nil {
		log.Error().Err(err).Msg("Run aborted")
		return 1
	}

	if *metricsOut != "" {
		if err := prometheus.WriteToTextfile(*metricsOut, prometheus.DefaultGatherer); err != nil {
			log.Warn().Err(err).Str("path", *metricsOut).Msg("Failed to write metrics")
		}
	}

	passed := report.Count("pass")
	log.Info().
		Int("passed", passed).
		Int("failed", len(report.Results)-passed).
		Int("skipped", len(report.Skipped)).
		Dur("elapsed", time.Since(start)).
		Msg("Done")

	if !report.OK() {
		for _, f := range report.Failures() {
			fmt.Fprintf(os.Stderr, "FAIL %s (%s): %v\n", f.Scenario, f.Op, f.Err)
		}
		return 1
	}
	return 0
}

func initTracer() (func(context.Context) error, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String("opref"),
		)),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}
