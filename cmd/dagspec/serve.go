package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/mattjoyce/dagspec/internal/api"
	"github.com/mattjoyce/dagspec/internal/auth"
	"github.com/mattjoyce/dagspec/internal/log"
	"github.com/mattjoyce/dagspec/internal/workflow"
)

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	listen := fs.String("listen", "", "Listen address (default from api.listen)")
	if err := parseFlags(fs, args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	logger := log.WithComponent("api")
	logger.Info("dagspec starting", "version", version, "config", cfg.SourceFile)

	// Lint needs an Argo Server; compile does not.
	var svc workflow.Service
	if cfg.Server.URL != "" {
		svc, err = newService(cfg, log.WithComponent("service"))
		if err != nil {
			logger.Error("failed to create service client", "error", err)
			return 1
		}
	} else {
		logger.Info("server.url not set; /lint is disabled")
	}

	tokens := make([]auth.TokenConfig, 0, len(cfg.API.Tokens))
	for _, t := range cfg.API.Tokens {
		tokens = append(tokens, auth.TokenConfig{Token: t.Token, Scopes: t.Scopes})
	}
	addr := cfg.API.Listen
	if *listen != "" {
		addr = *listen
	}

	server := api.New(api.Config{
		Listen:   addr,
		Tokens:   tokens,
		Defaults: cfg.WorkflowDefaults(),
		Version:  currentVersionInfo().Version,
	}, svc, logger)

	ctx, cancel := signalContext()
	defer cancel()

	if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("API server stopped", "error", err)
		return 1
	}
	logger.Info("dagspec stopped")
	return 0
}
