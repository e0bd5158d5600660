// Package cmd implements the flicker command line.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"go.aimuz.me/flicker/config"
	"go.aimuz.me/flicker/internal/app"
	"go.aimuz.me/flicker/internal/logging"
)

// BuildInfo is stamped by the linker.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// cli carries state shared by subcommands after the root pre-run.
type cli struct {
	build BuildInfo
	cfg   *config.Config
}

// NewRootCommand builds the command tree. Running it without a subcommand
// starts the tray service.
func NewRootCommand(build BuildInfo) *cobra.Command {
	c := &cli{build: build}

	root := &cobra.Command{
		Use:               "flicker",
		Short:             "Screenshot utility with global hotkeys",
		Long:              "Flicker captures the full desktop, a monitor, the focused window or a dragged selection and saves it as a PNG.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		RunE:              c.runServe,
	}
	root.PersistentFlags().String("config", "", "Config file (default: <user config dir>/flicker/config.json)")
	root.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	root.PersistentFlags().String("log-format", "", "Log format: console, json")

	root.AddCommand(
		c.serveCommand(),
		c.grabCommand(),
		c.historyCommand(),
		c.configCommand(),
		c.versionCommand(),
	)
	return root
}

// setup loads the config and installs the default logger.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("config")
	level, _ := cmd.Flags().GetString("log-level")
	format, _ := cmd.Flags().GetString("log-format")

	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if level != "" {
		cfg.Log.Level = level
	}
	if format != "" {
		cfg.Log.Format = format
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	c.cfg = cfg
	return nil
}

func (c *cli) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the tray service and listen for hotkeys",
		Args:  cobra.NoArgs,
		RunE:  c.runServe,
	}
}

func (c *cli) runServe(*cobra.Command, []string) error {
	slog.Info("starting flicker", "version", c.build.Version, "commit", c.build.Commit, "date", c.build.Date)
	return app.Run(c.cfg, c.build.Version)
}

func (c *cli) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// The version is printed without touching config or logging.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "flicker %s (commit %s, built %s)\n",
				c.build.Version, c.build.Commit, c.build.Date)
		},
	}
}

// Execute runs the command line and exits non-zero on failure.
func Execute(build BuildInfo) {
	if err := NewRootCommand(build).Execute(); err != nil {
		slog.Error("flicker", "error", err)
		os.Exit(1)
	}
}
