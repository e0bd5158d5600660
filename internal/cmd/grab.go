package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"go.aimuz.me/flicker/config"
	"go.aimuz.me/flicker/internal/app"
	"go.aimuz.me/flicker/internal/types"
	"go.aimuz.me/flicker/overlay"
	"go.aimuz.me/flicker/screenshot"
)

func (c *cli) grabCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grab",
		Short: "Take a single screenshot",
		Long:  "Take a single screenshot. Without a mode flag an interactive selection is started.",
		Args:  cobra.NoArgs,
		RunE:  c.runGrab,
	}
	cmd.Flags().BoolP("full", "f", false, "Capture the whole desktop")
	cmd.Flags().BoolP("screen", "c", false, "Capture the monitor under the pointer")
	cmd.Flags().BoolP("window", "w", false, "Capture the focused window")
	cmd.Flags().BoolP("selection", "s", false, "Drag a rectangle to capture (default)")
	cmd.Flags().IntP("monitor", "m", 0, "Capture monitor N (1-based, see --list-monitors)")
	cmd.Flags().BoolP("list-monitors", "l", false, "List monitors and exit")
	cmd.Flags().Bool("no-post", false, "Skip opening, copying and notifying")
	cmd.MarkFlagsMutuallyExclusive("full", "screen", "window", "selection", "monitor", "list-monitors")
	return cmd
}

// requestFromFlags maps the mutually exclusive mode flags to a request.
func requestFromFlags(cmd *cobra.Command) types.Request {
	switch {
	case cmd.Flags().Changed("monitor"):
		n, _ := cmd.Flags().GetInt("monitor")
		return types.Request{Mode: types.ModeMonitor, Monitor: n}
	case flagSet(cmd, "full"):
		return types.Request{Mode: types.ModeFullScreen}
	case flagSet(cmd, "screen"):
		return types.Request{Mode: types.ModeCurrentScreen}
	case flagSet(cmd, "window"):
		return types.Request{Mode: types.ModeWindow}
	default:
		return types.Request{Mode: types.ModeSelection}
	}
}

func flagSet(cmd *cobra.Command, name string) bool {
	v, _ := cmd.Flags().GetBool(name)
	return v
}

func (c *cli) runGrab(cmd *cobra.Command, _ []string) error {
	d, err := app.NewDispatcher(c.cfg)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if flagSet(cmd, "list-monitors") {
		return listMonitors(out, d)
	}

	post := c.cfg.Post
	if flagSet(cmd, "no-post") {
		post = config.PostConfig{}
	}

	var rec app.Recorder
	if c.cfg.History.Enabled {
		r, closeHistory, err := app.OpenRecorder(c.cfg)
		if err != nil {
			slog.Warn("open history", "error", err)
		}
		defer closeHistory()
		rec = r
	}
	pipeline := app.NewPipeline(d, rec, post)
	req := requestFromFlags(cmd)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	var res types.Result
	if d.NeedsOverlay(req.Mode) {
		err = overlay.Run("Flicker", d.Monitors, func(_ context.Context, sel *overlay.Selector) error {
			d.SetSelector(sel)
			var perr error
			res, perr = pipeline.Process(ctx, req)
			return perr
		})
	} else {
		res, err = pipeline.Process(ctx, req)
	}
	return report(out, res, err)
}

// report prints the outcome of a grab. A cancelled selection is not an
// error.
func report(w io.Writer, res types.Result, err error) error {
	switch {
	case err == nil:
		fmt.Fprintf(w, "Screenshot saved as %s\n", res.Path)
		return nil
	case errors.Is(err, screenshot.ErrSelectionCancelled):
		fmt.Fprintln(w, "Selection cancelled.")
		return nil
	default:
		return err
	}
}

// MonitorLister enumerates displays. *screenshot.Dispatcher implements it.
type MonitorLister interface {
	Monitors() ([]types.Monitor, error)
}

func listMonitors(w io.Writer, l MonitorLister) error {
	monitors, err := l.Monitors()
	if err != nil {
		return fmt.Errorf("list monitors: %w", err)
	}
	if len(monitors) == 0 {
		return errors.New("no monitors found")
	}
	for _, m := range monitors {
		fmt.Fprintln(w, m.String())
	}
	return nil
}
