package taskclient

import (
	"context"
	"sync"
)

// toggleController keeps at most one toggle in flight per task id. Starting
// a toggle cancels the pending one for the same task; toggles on different
// tasks do not interfere.
type toggleController struct {
	mu       sync.Mutex
	inflight map[string]*toggleHandle
}

type toggleHandle struct {
	cancel context.CancelFunc
}

func newToggleController() *toggleController {
	return &toggleController{inflight: map[string]*toggleHandle{}}
}

// begin cancels any pending toggle for id and registers a new one. The
// returned finish func must be called when the request completes; it only
// clears the slot if it still belongs to this toggle.
func (tc *toggleController) begin(ctx context.Context, id string) (context.Context, func()) {
	tctx, cancel := context.WithCancel(ctx)
	handle := &toggleHandle{cancel: cancel}

	tc.mu.Lock()
	if prev, ok := tc.inflight[id]; ok {
		prev.cancel()
	}
	tc.inflight[id] = handle
	tc.mu.Unlock()

	finish := func() {
		tc.mu.Lock()
		if tc.inflight[id] == handle {
			delete(tc.inflight, id)
		}
		tc.mu.Unlock()
		cancel()
	}
	return tctx, finish
}
