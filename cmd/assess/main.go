// Command assess runs a single wildfire risk assessment and prints the result
// as JSON. It uses the same configuration as the server.
//
// Usage:
//
//	go run ./cmd/assess -location "Paradise, CA"
//	go run ./cmd/assess -full Boulder
//
// Exit codes: 0 success, 1 usage or config error, 2 location not found,
// 3 upstream failure, 4 any other error.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/couchcryptid/wildfire-risk-service/internal/app"
	"github.com/couchcryptid/wildfire-risk-service/internal/config"
	"github.com/couchcryptid/wildfire-risk-service/internal/domain"
	"github.com/couchcryptid/wildfire-risk-service/internal/observability"
	"github.com/joho/godotenv"
)

func main() {
	location := flag.String("location", "", "location to assess (defaults to the remaining arguments)")
	full := flag.Bool("full", false, "print the full report instead of the assessment")
	flag.Parse()

	query := *location
	if query == "" {
		query = strings.Join(flag.Args(), " ")
	}
	if strings.TrimSpace(query) == "" {
		flag.Usage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, query, *full, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, query string, full bool, stdout, stderr io.Writer) int {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}

	logger := observability.NewLogger(cfg)
	assessor := app.NewAssessor(cfg, logger, observability.NewMetrics())

	report, err := assessor.Assess(ctx, query)
	if err != nil {
		fmt.Fprintf(stderr, "assess %q: %v\n", query, err)
		return exitCode(err)
	}

	var out any = report.Assessment.Response()
	if full {
		out = report
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(stderr, "encode: %v\n", err)
		return 4
	}
	return 0
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return 2
	case errors.Is(err, domain.ErrUpstreamUnavailable),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, context.DeadlineExceeded):
		return 3
	default:
		return 4
	}
}
