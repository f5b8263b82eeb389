package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tjfontaine/rollcall-gateway/internal/config"
	"github.com/tjfontaine/rollcall-gateway/pkg/gateway"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type rootOptions struct {
	configPath string
	baseURL    string
	logLevel   string
	port       int
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "rollcall",
		Short: "Resolve parliamentary roll-call votes and list how each legislator voted",
		Long: `rollcall turns a public portal link to a legislative vote into the
vote's canonical id and its per-legislator table, using the open-data API.`,
		SilenceUsage: true,
		Version:      version,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultFile, "Configuration file (ignored when missing)")
	cmd.PersistentFlags().StringVar(&opts.baseURL, "base-url", "", "Open-data API root, overriding upstream.base_url")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level, overriding log.level")

	cmd.AddCommand(
		newResolveCmd(opts),
		newListCmd(opts),
		newMCPCmd(opts),
		newServeCmd(opts),
	)
	return cmd
}

// load reads configuration and applies flag overrides.
func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.LoadFile(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.baseURL != "" {
		cfg.Upstream.BaseURL = o.baseURL
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.port != 0 {
		cfg.Server.Port = o.port
	}
	return cfg, nil
}

// gateway builds a gateway logging as text to stderr, keeping stdout for
// command output.
func (o *rootOptions) gateway() (*gateway.Gateway, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: config.ParseLevel(cfg.Log.Level),
	}))
	return gateway.New(gateway.WithConfig(cfg), gateway.WithLogger(logger))
}
