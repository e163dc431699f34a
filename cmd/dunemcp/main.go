package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"dunemcp/internal/app"
	"dunemcp/internal/buildinfo"
	"dunemcp/internal/domain"
)

type serveOptions struct {
	configPath  string
	logLevel    string
	http        bool
	host        string
	port        int
	path        string
	metricsAddr string
	logger      *zap.Logger
}

func main() {
	root := newRootCmd(os.Stdout)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &serveOptions{
		host:   domain.DefaultHTTPHost,
		port:   domain.DefaultHTTPPort,
		path:   domain.DefaultHTTPPath,
		logger: zap.NewNop(),
	}

	root := &cobra.Command{
		Use:           "dunemcp",
		Short:         "MCP server exposing the Dune Analytics API as tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			logger, err := app.NewProductionLogger(opts.logLevel)
			if err != nil {
				return err
			}
			opts.logger = logger
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = opts.logger.Sync()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to optional YAML config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	addServeFlags(root.Flags(), opts)

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}
	addServeFlags(serve.Flags(), opts)

	root.AddCommand(
		serve,
		newToolsCmd(out),
		newValidateCmd(opts),
		newVersionCmd(out),
	)
	return root
}

func addServeFlags(flags *pflag.FlagSet, opts *serveOptions) {
	flags.BoolVar(&opts.http, "http", false, "serve streamable HTTP instead of stdio")
	flags.StringVar(&opts.host, "host", opts.host, "streamable HTTP listen host")
	flags.IntVar(&opts.port, "port", opts.port, "streamable HTTP listen port")
	flags.StringVar(&opts.path, "path", opts.path, "streamable HTTP endpoint path")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve /metrics and /healthz on this address")
}

func runServe(cmd *cobra.Command, opts *serveOptions) error {
	ctx, cancel := signalAwareContext(cmd.Context())
	defer cancel()

	return app.New(opts.logger).Serve(ctx, app.ServeConfig{
		ConfigPath: opts.configPath,
		Overrides:  flagOverrides(cmd.Flags(), opts),
	})
}

// flagOverrides returns overrides for the flags set on the command line only,
// so unset flags never mask file or environment values.
func flagOverrides(flags *pflag.FlagSet, opts *serveOptions) []app.ConfigOverride {
	var overrides []app.ConfigOverride
	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "http":
			overrides = append(overrides, app.WithHTTP(opts.http))
		case "host":
			overrides = append(overrides, app.WithHost(opts.host))
		case "port":
			overrides = append(overrides, app.WithPort(opts.port))
		case "path":
			overrides = append(overrides, app.WithPath(opts.path))
		case "metrics-addr":
			overrides = append(overrides, app.WithMetricsAddress(opts.metricsAddr))
		}
	})
	return overrides
}

func newToolsCmd(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Print the tool catalog as JSON",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			tools, err := app.DescribeTools()
			if err != nil {
				return err
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(tools)
		},
	}
}

func newValidateCmd(opts *serveOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and the tool catalog without serving",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.New(opts.logger).ValidateConfig(cmd.Context(), app.ValidateConfig{
				ConfigPath: opts.configPath,
			})
		},
	}
}

func newVersionCmd(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(out, "%s (build %s)\n", buildinfo.ServerVersion(), buildinfo.Build)
			return err
		},
	}
}

func signalAwareContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
