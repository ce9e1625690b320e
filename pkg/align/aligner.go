package align

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/gridsnap/gridsnap/pkg/board"
	"github.com/gridsnap/gridsnap/pkg/errors"
)

// Options parameterizes one alignment operation.
type Options struct {
	Strategy Strategy
	Strict   bool
	Grid     Config
}

// Plan is the fully computed result of an alignment before anything is
// written back: the ordered items, their target placements, and the
// mutation batches Run will commit in order.
type Plan struct {
	Ordered    []*board.Item
	Placements []Placement
	TitleMuts  []board.Mutation // numbering of untitled items
	ResizeMuts []board.Mutation
}

// Empty reports whether there was nothing selected to align.
func (p *Plan) Empty() bool { return len(p.Ordered) == 0 }

// PositionMuts builds the final mutation batch from the placements.
func (p *Plan) PositionMuts() []board.Mutation {
	muts := make([]board.Mutation, 0, len(p.Placements))
	for _, pl := range p.Placements {
		x, y := pl.X, pl.Y
		muts = append(muts, board.Mutation{ID: pl.ID, X: &x, Y: &y})
	}
	return muts
}

// Aligner runs the end-to-end operation: read the selection, order it,
// optionally resize, lay it out, and commit the results back to the board.
type Aligner struct {
	Board   board.Board
	Sampler Sampler
	Logger  *log.Logger

	inFlight atomic.Bool
}

// NewAligner constructs an Aligner. Sampler may be nil when the color
// strategy is never used.
func NewAligner(b board.Board, sampler Sampler, logger *log.Logger) *Aligner {
	if logger == nil {
		logger = log.Default()
	}
	return &Aligner{Board: b, Sampler: sampler, Logger: logger}
}

// BuildPlan computes the ordered selection and its grid placements without
// writing anything to the board. Resize mutations are applied to the
// in-memory copies only. Used for previews and by Run.
func (a *Aligner) BuildPlan(ctx context.Context, opts Options) (*Plan, error) {
	if err := opts.Grid.Validate(); err != nil {
		return nil, err
	}
	if _, err := ParseStrategy(string(opts.Strategy)); err != nil {
		return nil, err
	}

	items, err := a.Board.Selection(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "reading selection")
	}
	return a.planItems(ctx, items, opts)
}

func (a *Aligner) planItems(ctx context.Context, items []*board.Item, opts Options) (*Plan, error) {
	if len(items) == 0 {
		return &Plan{}, nil
	}

	var titleMuts []board.Mutation
	if opts.Strategy == StrategyNumber || opts.Strategy == StrategyColor {
		titleMuts = NumberUntitled(items)
	}

	ordered, err := Order(ctx, items, opts.Strategy, opts.Strict, a.Sampler, a.Logger)
	if err != nil {
		return nil, err
	}

	resizeMuts := Resize(ordered, opts.Grid.SizeMode)
	placements := Layout(ordered, opts.Grid)
	return &Plan{
		Ordered:    ordered,
		Placements: placements,
		TitleMuts:  titleMuts,
		ResizeMuts: resizeMuts,
	}, nil
}

// Run executes one alignment operation against the board. Only one run may
// be in flight per Aligner; concurrent calls fail fast with a BUSY error
// instead of queueing.
//
// An empty selection is not an error: the user is told via Notify and the
// operation ends without touching the board. Validation and ordering
// failures (including strict-mode missing numbers) happen before any
// mutation is committed, so the board is untouched on those paths too.
func (a *Aligner) Run(ctx context.Context, opts Options) error {
	if !a.inFlight.CompareAndSwap(false, true) {
		return errors.New(errors.ErrCodeBusy, "an alignment is already running")
	}
	defer a.inFlight.Store(false)

	plan, err := a.BuildPlan(ctx, opts)
	if err != nil {
		a.notifyError(ctx, err)
		return err
	}
	return a.runPlan(ctx, plan, opts)
}

// RunItems aligns an explicit item list instead of the board selection.
// The import pipeline uses this for widgets it just created, which the host
// does not necessarily report as selected yet.
func (a *Aligner) RunItems(ctx context.Context, items []*board.Item, opts Options) error {
	if !a.inFlight.CompareAndSwap(false, true) {
		return errors.New(errors.ErrCodeBusy, "an alignment is already running")
	}
	defer a.inFlight.Store(false)

	if err := opts.Grid.Validate(); err != nil {
		a.notifyError(ctx, err)
		return err
	}
	if _, err := ParseStrategy(string(opts.Strategy)); err != nil {
		a.notifyError(ctx, err)
		return err
	}

	plan, err := a.planItems(ctx, items, opts)
	if err != nil {
		a.notifyError(ctx, err)
		return err
	}
	return a.runPlan(ctx, plan, opts)
}

func (a *Aligner) runPlan(ctx context.Context, plan *Plan, opts Options) error {
	if plan.Empty() {
		a.Logger.Info("nothing selected, nothing to do")
		a.Board.Notify(ctx, board.NotifyInfo, "Select some images first")
		return nil
	}

	for _, batch := range []struct {
		muts  []board.Mutation
		stage string
	}{
		{plan.TitleMuts, "numbering untitled items"},
		{plan.ResizeMuts, "resizing"},
		{plan.PositionMuts(), "positioning"},
	} {
		if err := a.commit(ctx, batch.muts, batch.stage); err != nil {
			a.notifyError(ctx, err)
			return err
		}
	}

	a.Logger.Info("alignment committed", "items", len(plan.Ordered), "strategy", string(opts.Strategy))
	a.Board.Notify(ctx, board.NotifyInfo, fmt.Sprintf("Aligned %d images", len(plan.Ordered)))
	return nil
}

// commit applies a mutation batch and folds per-item failures into a single
// error. Partial application is reported, never rolled back.
func (a *Aligner) commit(ctx context.Context, muts []board.Mutation, stage string) error {
	if len(muts) == 0 {
		return nil
	}
	results := board.Commit(ctx, a.Board, muts)
	failed := board.FailedIDs(results)
	if len(failed) == 0 {
		return nil
	}
	a.Logger.Error("mutations failed", "stage", stage, "failed", len(failed), "total", len(muts))
	return errors.New(errors.ErrCodeCommitFailed,
		"%s: %d of %d mutations failed (items: %s)",
		stage, len(failed), len(muts), strings.Join(failed, ", "))
}

func (a *Aligner) notifyError(ctx context.Context, err error) {
	a.Board.Notify(ctx, board.NotifyError, errors.UserMessage(err))
}
