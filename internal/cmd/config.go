package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"go.aimuz.me/flicker/config"
	"go.aimuz.me/flicker/internal/app"
	"go.aimuz.me/flicker/internal/types"
)

func (c *cli) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the config file and active hotkeys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showConfig(cmd.OutOrStdout(), c.cfg)
		},
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the config file",
		Args:  cobra.NoArgs,
		RunE:  c.runConfigInit,
	}
	initCmd.Flags().Bool("force", false, "Overwrite an existing config file")
	cmd.AddCommand(initCmd)
	return cmd
}

func (c *cli) runConfigInit(cmd *cobra.Command, _ []string) error {
	force, _ := cmd.Flags().GetBool("force")
	path := c.cfg.Path()

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}

	if err := c.cfg.Save(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote config to %s\n", path)
	return nil
}

func showConfig(w io.Writer, cfg *config.Config) error {
	bindings, err := app.Bindings(cfg.Hotkeys)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Config: %s\n", cfg.Path())
	fmt.Fprintln(w, "Hotkeys:")
	for _, b := range bindings {
		action := b.Mode.String()
		if b.Mode == types.ModeMonitor {
			action = fmt.Sprintf("monitor %d", b.Monitor)
		}
		fmt.Fprintf(w, "  %-14s %s\n", b.Chord, action)
	}
	return nil
}
