// Package cadastro parses registry command flags and runs the prompt or listing.
package cadastro

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	entrypoint "github.com/louisbranch/cadastro/internal/platform/cmd"
	"github.com/louisbranch/cadastro/internal/platform/config"
	"github.com/louisbranch/cadastro/internal/platform/id"
	registryapp "github.com/louisbranch/cadastro/internal/services/registry/app"
)

// Config holds cadastro command configuration.
type Config struct {
	DBPath    string `env:"CADASTRO_DB_PATH" envDefault:"clientes.db"`
	Locale    string `env:"CADASTRO_LOCALE" envDefault:"pt-BR"`
	StrictCPF bool   `env:"CADASTRO_STRICT_CPF" envDefault:"false"`
	List      bool
	JSON      bool
}

// ParseConfig parses the process environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	return parseFlags(fs, args, cfg)
}

// ParseConfigFrom behaves like ParseConfig over an explicit environment.
func ParseConfigFrom(fs *flag.FlagSet, args []string, environ map[string]string) (Config, error) {
	var cfg Config
	if err := config.ParseEnvFrom(&cfg, environ); err != nil {
		return Config{}, err
	}
	return parseFlags(fs, args, cfg)
}

func parseFlags(fs *flag.FlagSet, args []string, cfg Config) (Config, error) {
	if fs == nil {
		return Config{}, errors.New("flag parser is required")
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database file")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "Message locale (pt-BR or en-US)")
	fs.BoolVar(&cfg.StrictCPF, "strict-cpf", cfg.StrictCPF, "Require valid CPF check digits")
	fs.BoolVar(&cfg.List, "list", cfg.List, "Print registered customers and exit")
	fs.BoolVar(&cfg.JSON, "json", cfg.JSON, "With -list, print one JSON object per line")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if cfg.JSON && !cfg.List {
		return Config{}, errors.New("-json requires -list")
	}
	return cfg, nil
}

// Run executes the registry command with telemetry. A cancelled context is a
// normal exit.
func Run(ctx context.Context, cfg Config, in io.Reader, out io.Writer) error {
	return RunWithOptions(ctx, cfg, in, out, entrypoint.RunOptions{})
}

// RunWithOptions behaves like Run with explicit entrypoint options.
func RunWithOptions(ctx context.Context, cfg Config, in io.Reader, out io.Writer, options entrypoint.RunOptions) error {
	sessionID, err := id.NewID()
	if err != nil {
		return fmt.Errorf("create session id: %w", err)
	}
	err = entrypoint.RunWithTelemetryAndOptions(ctx, entrypoint.ServiceCadastro, options, func(ctx context.Context) error {
		return registryapp.Run(ctx, registryapp.Options{
			DBPath:    cfg.DBPath,
			Locale:    cfg.Locale,
			StrictCPF: cfg.StrictCPF,
			List:      cfg.List,
			JSON:      cfg.JSON,
			SessionID: sessionID,
			Input:     in,
			Output:    out,
		})
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
