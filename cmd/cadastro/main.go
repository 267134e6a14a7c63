// Package main runs the interactive customer registry.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	cadastrocmd "github.com/louisbranch/cadastro/internal/cmd/cadastro"
	entrypoint "github.com/louisbranch/cadastro/internal/platform/cmd"
	"github.com/louisbranch/cadastro/internal/platform/config"
)

func main() {
	entrypoint.ConfigureLogging(entrypoint.ServiceCadastro, os.Stderr)
	cfg, err := cadastrocmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cadastrocmd.Run(ctx, cfg, os.Stdin, os.Stdout); err != nil {
		stop()
		config.Exitf("cadastro: %v", err)
	}
}
