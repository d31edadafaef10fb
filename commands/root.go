package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/keepsake-labs/chronoline/internal/config"
	"github.com/keepsake-labs/chronoline/internal/core/granularity"
	"github.com/keepsake-labs/chronoline/internal/core/timescale"
	"github.com/keepsake-labs/chronoline/internal/data/store"
	"github.com/keepsake-labs/chronoline/internal/export/pdf"
	"github.com/keepsake-labs/chronoline/internal/util"
)

var (
	// Logging related
	debug bool

	// Shared configuration
	configPath string
	mediaRoot  string

	rootCmd = &cobra.Command{
		Use:   "chronoline <timeline.json>",
		Short: "Timeline layout and export engine",
		Long: `chronoline lays out dated events along a horizontal time axis and renders
them to an interactive terminal view or a paginated PDF document.

Examples:
  chronoline family.json                   # Summarize a timeline
  chronoline view family.json              # Interactive pan/zoom view
  chronoline export family.json -o out.pdf # Paginated PDF export`,
		Args: cobra.ExactArgs(1),
		RunE: runSummary,
	}
)

const defaultLogFile = "~/.chronoline/logs/app.log"

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug mode")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Appearance config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&mediaRoot, "media-root", "",
		"Directory relative media paths are anchored at")
}

// runSummary prints a one-shot layout summary without entering the TUI
func runSummary(cmd *cobra.Command, args []string) error {
	look, err := setup()
	if err != nil {
		return err
	}

	st := store.NewFileStore(expandPath(args[0]), expandPath(mediaRoot))
	tl, err := st.Timeline(cmd.Context())
	if err != nil {
		return fmt.Errorf("load timeline: %w", err)
	}

	padding := time.Duration(look.Layout.DomainPaddingDays) * 24 * time.Hour
	start, end := timescale.DomainFor(tl.Events, padding)
	spanDays := end.Sub(start).Hours() / 24

	pages, err := pdf.PageCountFor(look, tl.Events)
	if err != nil {
		return fmt.Errorf("layout failed: %w", err)
	}

	fmt.Printf("Timeline:    %s\n", tl.Title)
	fmt.Printf("Events:      %d\n", len(tl.Events))
	fmt.Printf("Domain:      %s — %s (%.0f days)\n",
		start.Format("2006-01-02"), end.Format("2006-01-02"), spanDays)
	fmt.Printf("Granularity: %s\n", granularity.Classify(spanDays, len(tl.Events)))
	fmt.Printf("Export:      %d page(s) as %s\n", pages, pdf.SuggestedFilename(tl.Title))
	return nil
}

func Execute() error {
	return rootCmd.Execute()
}

// setup initializes logging and loads the appearance config; every
// subcommand goes through it
func setup() (*config.Config, error) {
	logLevel := "info"
	if debug {
		logLevel = "debug"
	}

	logFile := expandPath(defaultLogFile)
	if err := ensureDir(filepath.Dir(logFile)); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	util.InitLogger(logLevel, logFile, debug)

	look, err := config.Load(expandPath(configPath))
	if err != nil {
		return nil, err
	}
	return look, nil
}

// Helper functions

func expandPath(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
