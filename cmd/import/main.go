package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/fortuna/goaliestats/internal/app"
	"github.com/fortuna/goaliestats/internal/config"
	"github.com/fortuna/goaliestats/internal/ingest"
	"github.com/fortuna/goaliestats/internal/logging"
)

const appName = "goaliestats-import"

type flags struct {
	season   string
	category string
	debugDir string
	browser  bool
	persist  bool
	compact  bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:          appName,
		Short:        "Run one match and standings import and print the result as JSON",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, cmd, f)
		},
	}

	cmd.Flags().StringVar(&f.season, "season", "", "season as YYYY-YYYY (default: current season)")
	cmd.Flags().StringVar(&f.category, "category", "", "category code, e.g. starsi-zaci-a (default: all)")
	cmd.Flags().StringVar(&f.debugDir, "debug-dir", "", "directory for HTML dumps of pages that yield no rows")
	cmd.Flags().BoolVar(&f.browser, "browser", false, "fetch pages with headless Chrome")
	cmd.Flags().BoolVar(&f.persist, "persist", false, "use REDIS_URL and DATABASE_URL when set")
	cmd.Flags().BoolVar(&f.compact, "compact", false, "print compact JSON")

	return cmd
}

func run(ctx context.Context, cmd *cobra.Command, f flags) error {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if f.debugDir != "" {
		cfg.DebugDir = f.debugDir
	}
	if f.browser {
		cfg.FetchMode = config.FetchModeBrowser
	}

	// stdout carries the result, so logs go to stderr.
	logger := logging.NewJSONTo(os.Stderr, cfg.LogLevel).With("service", appName)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	a, err := app.New(ctx, cfg, logger, app.Options{DisableBackends: !f.persist})
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.Service.Import(ctx, ingest.Request{Season: f.season, Category: f.category})
	if err != nil {
		return err
	}

	var out []byte
	if f.compact {
		out, err = sonic.Marshal(result)
	} else {
		out, err = sonic.MarshalIndent(result, "", "  ")
	}
	if err != nil {
		return errors.Wrap(err, "encode result")
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}
