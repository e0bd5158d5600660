package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"go.aimuz.me/flicker/internal/app"
	"go.aimuz.me/flicker/internal/types"
)

func (c *cli) historyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent screenshots",
		Long: `List recent screenshots, newest first.

The history database is held open by a running "flicker serve", so this
command fails while the tray service runs. Captures taken with "flicker grab"
in the meantime are queued and imported the next time the database opens.`,
		Args:  cobra.NoArgs,
		RunE:  c.runHistory,
	}
	cmd.Flags().IntP("limit", "n", 10, "Number of entries to show (0 for all)")
	return cmd
}

func (c *cli) runHistory(cmd *cobra.Command, _ []string) error {
	if !c.cfg.History.Enabled {
		return errors.New("history is disabled in config")
	}
	n, _ := cmd.Flags().GetInt("limit")

	store, err := app.OpenHistory(c.cfg)
	if err != nil {
		return fmt.Errorf("%w (is \"flicker serve\" running?)", err)
	}
	defer store.Close()

	results, err := store.Recent(n)
	if err != nil {
		return err
	}
	printHistory(cmd.OutOrStdout(), results)
	return nil
}

func printHistory(w io.Writer, results []types.Result) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No screenshots recorded.")
		return
	}
	for _, r := range results {
		fmt.Fprintf(w, "%s  %-9s  %-13s  %s\n",
			r.CreatedAt.Local().Format(time.DateTime), r.Request.Mode, r.Backend, r.Path)
	}
}
