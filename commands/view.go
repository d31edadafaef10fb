package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/keepsake-labs/chronoline/internal/application/view"
	"github.com/keepsake-labs/chronoline/internal/core/model"
	"github.com/keepsake-labs/chronoline/internal/data/store"
	"github.com/keepsake-labs/chronoline/internal/util"
)

var viewCmd = &cobra.Command{
	Use:   "view <timeline.json>",
	Short: "Browse a timeline interactively",
	Long: `Opens a full-screen terminal view of the timeline with a pannable,
zoomable time axis.

Keys:
  h/l        Pan left/right
  +/-        Zoom in/out (0.4x to 8x)
  arrows     Move event focus
  enter      Activate the focused event
  0          Reset zoom and position
  g/G        Jump to start/end
  r          Reload from disk
  q/Esc      Quit

The view reloads automatically when the timeline file changes on disk.`,
	Args: cobra.ExactArgs(1),
	RunE: runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, args []string) error {
	look, err := setup()
	if err != nil {
		return err
	}

	timelinePath := expandPath(args[0])
	st := store.NewFileStore(timelinePath, expandPath(mediaRoot))

	orchestrator := view.NewOrchestrator(&view.Config{
		TimelinePath: timelinePath,
		Appearance:   look,
		OnEventActivated: func(ev model.Event) {
			util.LogInfof("Event activated: %s (%s)", ev.Title, ev.ID)
		},
		OnRequestCreateEvent: func() {
			util.LogInfo("Create-event requested from empty state")
		},
	}, st)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := orchestrator.Run(ctx); err != nil {
		return fmt.Errorf("view failed: %w", err)
	}
	return nil
}
