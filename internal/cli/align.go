package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gridsnap/gridsnap/pkg/align"
	"github.com/gridsnap/gridsnap/pkg/config"
	"github.com/gridsnap/gridsnap/pkg/render"
)

// layoutFlags holds the alignment flags shared by align and import.
type layoutFlags struct {
	columns  int
	hgap     float64
	vgap     float64
	sort     string
	strict   bool
	anchor   string
	sizeMode string
	rowMode  string
}

// addLayoutFlags registers the shared alignment flags on cmd. Flag defaults
// come from the built-in config; values from the config file are layered in
// by mergeOptions only for flags the user did not set, so file and flag
// precedence stays correct regardless of load order.
func addLayoutFlags(cmd *cobra.Command, f *layoutFlags) {
	def := config.Default().Align
	cmd.Flags().IntVarP(&f.columns, "columns", "c", def.Columns, "number of grid columns")
	cmd.Flags().Float64Var(&f.hgap, "hgap", def.HGap, "horizontal gap between cells")
	cmd.Flags().Float64Var(&f.vgap, "vgap", def.VGap, "vertical gap between cells")
	cmd.Flags().StringVarP(&f.sort, "sort", "s", def.Sort, "sort strategy: number, alphabetical, geometry, color")
	cmd.Flags().BoolVar(&f.strict, "strict", def.Strict, "fail when a title has no number (number sort only)")
	cmd.Flags().StringVarP(&f.anchor, "anchor", "a", def.Anchor, "grid anchor: top-left, top-right, bottom-left, bottom-right")
	cmd.Flags().StringVar(&f.sizeMode, "size-mode", def.SizeMode, "resize mode: none, match-width, match-height")
	cmd.Flags().StringVar(&f.rowMode, "row-mode", def.RowMode, "cell sizing: uniform, packed")
}

// mergeOptions resolves the final alignment options: a flag the user set
// wins, otherwise the config file value applies. changed reports whether the
// named flag was set explicitly.
func mergeOptions(cfg config.AlignConfig, f *layoutFlags, changed func(string) bool) (align.Options, error) {
	pick := func(name, flagVal, cfgVal string) string {
		if changed(name) || cfgVal == "" {
			return flagVal
		}
		return cfgVal
	}

	columns := cfg.Columns
	if changed("columns") || columns == 0 {
		columns = f.columns
	}
	hgap := cfg.HGap
	if changed("hgap") {
		hgap = f.hgap
	}
	vgap := cfg.VGap
	if changed("vgap") {
		vgap = f.vgap
	}
	strict := cfg.Strict
	if changed("strict") {
		strict = f.strict
	}

	strategy, err := align.ParseStrategy(pick("sort", f.sort, cfg.Sort))
	if err != nil {
		return align.Options{}, err
	}

	opts := align.Options{
		Strategy: strategy,
		Strict:   strict,
		Grid: align.Config{
			Columns:  columns,
			HGap:     hgap,
			VGap:     vgap,
			SizeMode: align.SizeMode(pick("size-mode", f.sizeMode, cfg.SizeMode)),
			Anchor:   align.Anchor(pick("anchor", f.anchor, cfg.Anchor)),
			RowMode:  align.RowMode(pick("row-mode", f.rowMode, cfg.RowMode)),
		},
	}
	if err := opts.Grid.Validate(); err != nil {
		return align.Options{}, err
	}
	return opts, nil
}

// alignCommand creates the align command.
func (c *CLI) alignCommand() *cobra.Command {
	var (
		f           layoutFlags
		previewPath string
		noCache     bool
	)

	cmd := &cobra.Command{
		Use:   "align",
		Short: "Arrange the selected board images into a grid",
		Long: `Arrange the selected board images into a grid.

The selection is ordered by the chosen sort strategy, optionally resized to
a common width or height, and repositioned into a grid whose chosen corner
stays fixed at the selection's original bounding box corner.

With --preview, the computed layout is rendered to a PNG instead of being
committed to the board.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := mergeOptions(c.Config.Align, &f, cmd.Flags().Changed)
			if err != nil {
				return err
			}
			return c.runAlign(cmd, opts, previewPath, noCache)
		},
	}

	addLayoutFlags(cmd, &f)
	cmd.Flags().StringVarP(&previewPath, "preview", "p", "", "render the planned layout to a PNG instead of committing")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable luminance caching")

	return cmd
}

// runAlign executes the alignment, or renders a preview when previewPath is set.
func (c *CLI) runAlign(cmd *cobra.Command, opts align.Options, previewPath string, noCache bool) error {
	ctx := cmd.Context()

	b, closeBoard, err := c.newBoard(ctx)
	if err != nil {
		return fmt.Errorf("connect to board: %w", err)
	}
	defer closeBoard()

	aligner := align.NewAligner(b, c.newSampler(ctx, noCache), c.Logger)

	if previewPath != "" {
		plan, err := aligner.BuildPlan(ctx, opts)
		if err != nil {
			return err
		}
		if plan.Empty() {
			printInfo("Nothing selected")
			return nil
		}
		preview := &render.Preview{
			Ordered:    plan.Ordered,
			Placements: plan.Placements,
			Bounds:     align.BoundsOf(plan.Ordered),
		}
		if err := preview.WritePNG(previewPath); err != nil {
			return err
		}
		printSuccess("Previewed %d images", len(plan.Ordered))
		printFile(previewPath)
		return nil
	}

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Aligning selection...")
	spinner.Start()

	if err := aligner.Run(ctx, opts); err != nil {
		spinner.StopWithError("Alignment failed")
		return err
	}
	spinner.StopWithSuccess("Selection aligned")
	prog.done("Alignment committed")
	return nil
}
