// Package cmd holds shared entrypoint behavior for registry commands.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/louisbranch/cadastro/internal/platform/config"
	"github.com/louisbranch/cadastro/internal/platform/otel"
	"github.com/louisbranch/cadastro/internal/platform/timeouts"
)

// ServiceCadastro names the interactive registry command in logs and traces.
const ServiceCadastro = "cadastro"

// RunOptions controls shared entrypoint behavior.
type RunOptions struct {
	// ShutdownTimeout sets the timeout used when stopping telemetry.
	ShutdownTimeout time.Duration
	// Setup replaces otel.Setup, mainly for tests.
	Setup func(context.Context, string) (otel.ShutdownFunc, error)
}

// ConfigureLogging points the standard logger at w with a service prefix.
// Prompts own stdout, so w is normally stderr.
func ConfigureLogging(service string, w io.Writer) {
	if w != nil {
		log.SetOutput(w)
	}
	log.SetPrefix("[" + strings.ToUpper(strings.TrimSpace(service)) + "] ")
	log.SetFlags(log.LstdFlags | log.Lmsgprefix)
}

// ParseConfig loads environment defaults into cfg.
func ParseConfig[T any](cfg *T) error {
	if cfg == nil {
		return errors.New("config target is required")
	}
	return config.ParseEnv(cfg)
}

// ParseArgs parses command-line flags.
func ParseArgs(fs *flag.FlagSet, args []string) error {
	if fs == nil {
		return errors.New("flag parser is required")
	}
	if args == nil {
		args = []string{}
	}
	return fs.Parse(args)
}

// RunWithTelemetry configures observability and executes run.
func RunWithTelemetry(ctx context.Context, service string, run func(context.Context) error) error {
	return RunWithTelemetryAndOptions(ctx, service, RunOptions{}, run)
}

// RunWithTelemetryAndOptions configures observability and executes run.
func RunWithTelemetryAndOptions(ctx context.Context, service string, options RunOptions, run func(context.Context) error) error {
	service = strings.TrimSpace(service)
	if service == "" {
		return fmt.Errorf("service name is required")
	}
	if run == nil {
		return fmt.Errorf("run function is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	setup := options.Setup
	if setup == nil {
		setup = otel.Setup
	}
	shutdown, err := setup(ctx, service)
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	defer func() {
		shutdownTimeout := options.ShutdownTimeout
		if shutdownTimeout <= 0 {
			shutdownTimeout = timeouts.TelemetryShutdown
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Printf("%s otel shutdown: %v", service, err)
		}
	}()
	return run(ctx)
}
