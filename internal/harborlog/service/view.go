package service

import (
	"context"
	"sync"

	"github.com/harborlog/server/internal/harborlog/report"
	"github.com/harborlog/server/internal/harborlog/types"
)

// Fetcher loads the committed record set for a range.
type Fetcher interface {
	Snapshot(ctx context.Context, variant types.Variant, r report.DateRange) ([]types.Record, error)
}

// ViewState is what a viewer currently sees.
type ViewState struct {
	Generation uint64
	Range      report.DateRange
	Records    []types.Record
	Loading    bool
	Err        string
}

// View holds one viewer's range selection. Each selection fetches in the
// background; only the result for the latest selection is ever committed,
// so a slow response for an older range never replaces a newer one.
type View struct {
	fetch    Fetcher
	variant  types.Variant
	onCommit func(ViewState)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.Mutex
	gen   uint64
	state ViewState
}

// NewView returns a view with no selection. onCommit, when non-nil, is
// called with every committed state while the view's lock is held; it must
// not call back into the view.
func NewView(ctx context.Context, fetch Fetcher, variant types.Variant, onCommit func(ViewState)) *View {
	ctx, cancel := context.WithCancel(ctx)
	return &View{
		fetch:    fetch,
		variant:  variant,
		onCommit: onCommit,
		ctx:      ctx,
		cancel:   cancel,
		state:    ViewState{Records: []types.Record{}},
	}
}

// SetRange selects r and starts fetching it. It returns the generation
// token tagging the fetch.
func (v *View) SetRange(r report.DateRange) uint64 {
	v.mu.Lock()
	v.gen++
	token := v.gen
	v.state.Generation = token
	v.state.Range = r
	v.state.Loading = true
	v.state.Err = ""
	v.mu.Unlock()

	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		recs, err := v.fetch.Snapshot(v.ctx, v.variant, r)
		v.commit(token, recs, err)
	}()
	return token
}

func (v *View) commit(token uint64, recs []types.Record, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if token != v.gen || v.ctx.Err() != nil {
		return
	}

	v.state.Loading = false
	if err != nil {
		v.state.Records = []types.Record{}
		v.state.Err = err.Error()
	} else {
		if recs == nil {
			recs = []types.Record{}
		}
		v.state.Records = recs
		v.state.Err = ""
	}

	if v.onCommit != nil {
		v.onCommit(v.snapshot())
	}
}

// State returns a copy of the current state.
func (v *View) State() ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshot()
}

func (v *View) snapshot() ViewState {
	st := v.state
	st.Records = append([]types.Record(nil), v.state.Records...)
	if st.Records == nil {
		st.Records = []types.Record{}
	}
	return st
}

// Close abandons any in-flight fetch and waits for its goroutine.
func (v *View) Close() {
	v.cancel()
	v.wg.Wait()
}
