package cli

import (
	"testing"

	"github.com/gridsnap/gridsnap/pkg/align"
	"github.com/gridsnap/gridsnap/pkg/config"
	"github.com/gridsnap/gridsnap/pkg/errors"
)

func noFlagsChanged(string) bool { return false }

func changedSet(names ...string) func(string) bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(name string) bool { return set[name] }
}

func defaultFlags() layoutFlags {
	def := config.Default().Align
	return layoutFlags{
		columns:  def.Columns,
		hgap:     def.HGap,
		vgap:     def.VGap,
		sort:     def.Sort,
		strict:   def.Strict,
		anchor:   def.Anchor,
		sizeMode: def.SizeMode,
		rowMode:  def.RowMode,
	}
}

func TestMergeOptionsConfigWins(t *testing.T) {
	cfg := config.Default().Align
	cfg.Columns = 7
	cfg.Sort = "geometry"
	cfg.Anchor = "bottom-right"
	f := defaultFlags()

	opts, err := mergeOptions(cfg, &f, noFlagsChanged)
	if err != nil {
		t.Fatalf("mergeOptions: %v", err)
	}
	if opts.Grid.Columns != 7 {
		t.Errorf("columns = %d, want config value 7", opts.Grid.Columns)
	}
	if opts.Strategy != align.StrategyGeometry {
		t.Errorf("strategy = %s, want geometry", opts.Strategy)
	}
	if opts.Grid.Anchor != align.AnchorBottomRight {
		t.Errorf("anchor = %s, want bottom-right", opts.Grid.Anchor)
	}
}

func TestMergeOptionsFlagWins(t *testing.T) {
	cfg := config.Default().Align
	cfg.Columns = 7
	cfg.Sort = "geometry"

	f := defaultFlags()
	f.columns = 2
	f.sort = "color"

	opts, err := mergeOptions(cfg, &f, changedSet("columns", "sort"))
	if err != nil {
		t.Fatalf("mergeOptions: %v", err)
	}
	if opts.Grid.Columns != 2 {
		t.Errorf("columns = %d, want flag value 2", opts.Grid.Columns)
	}
	if opts.Strategy != align.StrategyColor {
		t.Errorf("strategy = %s, want color", opts.Strategy)
	}
}

func TestMergeOptionsRejectsBadStrategy(t *testing.T) {
	f := defaultFlags()
	f.sort = "chronological"

	_, err := mergeOptions(config.Default().Align, &f, changedSet("sort"))
	if errors.GetCode(err) != errors.ErrCodeInvalidSort {
		t.Errorf("code = %v, want INVALID_SORT", errors.GetCode(err))
	}
}

func TestMergeOptionsRejectsBadColumns(t *testing.T) {
	f := defaultFlags()
	f.columns = 0

	_, err := mergeOptions(config.Default().Align, &f, changedSet("columns"))
	if errors.GetCode(err) != errors.ErrCodeInvalidColumns {
		t.Errorf("code = %v, want INVALID_COLUMNS", errors.GetCode(err))
	}
}
