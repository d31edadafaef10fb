package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/keepsake-labs/chronoline/internal/core/thumbnail"
	"github.com/keepsake-labs/chronoline/internal/data/store"
	"github.com/keepsake-labs/chronoline/internal/export/pdf"
	"github.com/keepsake-labs/chronoline/internal/util"
)

var (
	exportOutput    string
	exportWatermark string
	exportTimeout   time.Duration
)

var exportCmd = &cobra.Command{
	Use:   "export <timeline.json>",
	Short: "Export a timeline as a paginated PDF",
	Long: `Renders the timeline into a fixed-page-size PDF document. Thumbnails
are fetched up front and identical images are embedded only once.

The export is all-or-nothing: a failure to load event or media data fails
the whole operation. A single unreachable thumbnail only costs that card
its image.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "",
		"Output file (default: derived from the timeline title)")
	exportCmd.Flags().StringVar(&exportWatermark, "watermark", "",
		"Override the watermark text")
	exportCmd.Flags().DurationVar(&exportTimeout, "timeout", 2*time.Minute,
		"Fail the whole export after this long")
}

func runExport(cmd *cobra.Command, args []string) error {
	look, err := setup()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("watermark") {
		look.Export.Watermark = exportWatermark
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), exportTimeout)
	defer cancel()

	st := store.NewFileStore(expandPath(args[0]), expandPath(mediaRoot))
	tl, err := st.Timeline(ctx)
	if err != nil {
		return fmt.Errorf("load timeline: %w", err)
	}

	resolver := thumbnail.NewResolver(st, nil)
	if err := resolver.PrefetchAll(ctx, tl.Events, look.Export.ThumbFetches); err != nil {
		return fmt.Errorf("prefetch thumbnails: %w", err)
	}

	fetcher := store.NewMediaFetcher(30 * time.Second)
	paginator := pdf.NewPaginator(look, fetcher)

	start := time.Now()
	data, err := paginator.Export(ctx, tl, resolver)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	output := exportOutput
	if output == "" {
		output = pdf.SuggestedFilename(tl.Title)
	}
	output = expandPath(output)

	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	util.LogInfof("Export finished in %v", time.Since(start))
	fmt.Printf("Wrote %s (%d bytes)\n", output, len(data))
	return nil
}
