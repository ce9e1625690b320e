package cli

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gridsnap/gridsnap/pkg/align"
	"github.com/gridsnap/gridsnap/pkg/board"
)

// stagingGap is the horizontal spacing between freshly imported items
// before the layout pass repositions them.
const stagingGap = 40.0

// importCommand creates the import command.
func (c *CLI) importCommand() *cobra.Command {
	var (
		f           layoutFlags
		dir         string
		interactive bool
		noCache     bool
	)

	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import image files onto the board and align them",
		Long: `Import image files onto the board and align them.

Each file becomes a new image widget titled after its filename. The average
brightness of every image is sampled and stored on the widget, so later
color sorts need no re-decoding. The imported set is then ordered and laid
out with the same options as 'align'.

With --dir and --interactive, files are picked from a directory listing
instead of being named on the command line.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := args
			if interactive {
				if dir == "" {
					dir = "."
				}
				picked, err := pickImages(dir)
				if err != nil {
					return err
				}
				paths = picked
			}
			if len(paths) == 0 {
				printInfo("No files to import")
				return nil
			}
			opts, err := mergeOptions(c.Config.Align, &f, cmd.Flags().Changed)
			if err != nil {
				return err
			}
			return c.runImport(cmd, paths, opts, noCache)
		},
	}

	addLayoutFlags(cmd, &f)
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "directory to pick files from (with --interactive)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "pick files interactively")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable luminance caching")

	return cmd
}

// runImport creates one widget per file, tags each with its sampled
// brightness, and aligns the new widgets.
func (c *CLI) runImport(cmd *cobra.Command, paths []string, opts align.Options, noCache bool) error {
	ctx := cmd.Context()

	b, closeBoard, err := c.newBoard(ctx)
	if err != nil {
		return fmt.Errorf("connect to board: %w", err)
	}
	defer closeBoard()

	sampler := c.newSampler(ctx, noCache)
	prog := newProgress(c.Logger)

	var created []*board.Item
	cursorX := 0.0
	for _, path := range paths {
		it, err := c.importOne(cmd, b, sampler, path, cursorX)
		if err != nil {
			printWarning("Skipping %s: %v", path, err)
			continue
		}
		created = append(created, it)
		cursorX += it.W + stagingGap
	}
	if len(created) == 0 {
		return fmt.Errorf("no file could be imported")
	}
	prog.done(fmt.Sprintf("Imported %d of %d files", len(created), len(paths)))

	aligner := align.NewAligner(b, sampler, c.Logger)
	if err := aligner.RunItems(ctx, created, opts); err != nil {
		return err
	}
	printSuccess("Imported and aligned %d images", len(created))
	return nil
}

// importOne decodes one file's dimensions, creates the widget, and stores
// its sampled brightness in the widget metadata.
func (c *CLI) importOne(cmd *cobra.Command, b board.Board, sampler align.Sampler, path string, x float64) (*board.Item, error) {
	ctx := cmd.Context()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	w, h := float64(cfg.Width), float64(cfg.Height)

	it, err := b.CreateImage(ctx, board.CreateImageRequest{
		Title:  strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		X:      x + w/2,
		Y:      h / 2,
		W:      w,
		H:      h,
		Source: board.FileSource(path),
	})
	if err != nil {
		return nil, err
	}

	v, err := sampler.Sample(ctx, it.Source)
	if err != nil {
		c.Logger.Debug("brightness sampling failed", "path", path, "err", err)
		return it, nil
	}
	luma := board.FormatLuma(v)
	if err := b.Apply(ctx, board.Mutation{ID: it.ID, Meta: map[string]string{board.MetaLuma: luma}}); err != nil {
		c.Logger.Debug("storing brightness failed", "item", it.ID, "err", err)
		return it, nil
	}
	if it.Meta == nil {
		it.Meta = map[string]string{}
	}
	it.Meta[board.MetaLuma] = luma
	return it, nil
}
