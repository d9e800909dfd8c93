package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp"
	"github.com/conneroisu/pubnub-mcp/pkg/pnmcp/options"
)

type flags struct {
	configFile string
	envFile    string
	transport  string
	addr       string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	f := &flags{}

	root := &cobra.Command{
		Use:           "pubnub-mcp",
		Short:         "PubNub tools for MCP clients",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, f)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.configFile, "config", "", "YAML config file")
	pf.StringVar(&f.envFile, "env-file", "", ".env file with PubNub credentials")
	pf.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the MCP tools",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, f)
		},
	}
	for _, c := range []*cobra.Command{root, serve} {
		c.Flags().StringVar(&f.transport, "transport", "", "stdio, http or sse")
		c.Flags().StringVar(&f.addr, "addr", "", "listen address for http and sse")
	}

	root.AddCommand(serve, newToolsCmd(f), newVersionCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), pnmcp.Name, pnmcp.Version)
		},
	}
}

func newToolsCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Print the tool schemas for the current environment",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := loadOptions(cmd, f)
			if err != nil {
				return err
			}

			srv, err := pnmcp.New(opts, pnmcp.WithLogger(newLogger(opts.LogLevel)))
			if err != nil {
				return err
			}
			defer srv.Close()

			type toolInfo struct {
				Name        string `json:"name"`
				Description string `json:"description"`
				InputSchema any    `json:"inputSchema"`
			}
			out := []toolInfo{}
			for _, t := range srv.Registry().Tools() {
				out = append(out, toolInfo{Name: t.Name, Description: t.Description, InputSchema: t.Schema.JSON()})
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			return enc.Encode(out)
		},
	}
}

func loadOptions(cmd *cobra.Command, f *flags) (*options.ServerOptions, error) {
	opts, err := options.Load(options.LoadOptions{
		ConfigFile: f.configFile,
		EnvFile:    f.envFile,
	})
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("transport") {
		opts.Transport = options.Transport(f.transport)
	}
	if cmd.Flags().Changed("addr") {
		opts.Addr = f.addr
	}
	if f.logLevel != "" {
		opts.LogLevel = f.logLevel
	}

	return opts, opts.Validate()
}

func runServe(cmd *cobra.Command, f *flags) error {
	opts, err := loadOptions(cmd, f)
	if err != nil {
		return err
	}

	logger := newLogger(opts.LogLevel)
	slog.SetDefault(logger)

	srv, err := pnmcp.New(opts, pnmcp.WithLogger(logger))
	if err != nil {
		return err
	}
	defer func() {
		if err := srv.Close(); err != nil {
			logger.Warn("close", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Serve(ctx)
}

// newLogger writes to stderr; stdout belongs to the stdio transport.
func newLogger(level string) *slog.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}

	return slog.New(log.NewWithOptions(os.Stderr, log.Options{
		Level:           lvl,
		Prefix:          pnmcp.Name,
		ReportTimestamp: true,
	}))
}
