// Package lifecycle runs a set of long-lived jobs and tears them down
// together: the first job failure or a parent context cancellation stops
// every job, then shutdown hooks run in order.
package lifecycle

import (
	"context"
	"errors"
	"sync"
)

type job struct {
	name string
	run  func(context.Context) error
}

type Manager struct {
	mu        sync.Mutex
	runs      []job
	shutdowns []job
}

func NewManager() *Manager {
	return &Manager{}
}

// AddRun registers a job that runs for the lifetime of the manager. The job
// should return when its context is cancelled.
func (m *Manager) AddRun(name string, fn func(context.Context) error) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	m.runs = append(m.runs, job{name: name, run: fn})
	m.mu.Unlock()
}

// AddShutdown registers a hook that runs after all run jobs have stopped.
// Hooks run in registration order with a fresh context.
func (m *Manager) AddShutdown(name string, fn func(context.Context) error) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	m.shutdowns = append(m.shutdowns, job{name: name, run: fn})
	m.mu.Unlock()
}

// StartAndWait runs every registered job and blocks until all of them have
// returned, then runs the shutdown hooks. The returned error joins the first
// run failure with any shutdown failures; context.Canceled is not an error.
func (m *Manager) StartAndWait(parent context.Context) error {
	runCtx, cancelRuns := context.WithCancel(parent)
	defer cancelRuns()

	m.mu.Lock()
	runs := append([]job(nil), m.runs...)
	shutdowns := append([]job(nil), m.shutdowns...)
	m.mu.Unlock()

	errCh := make(chan error, len(runs))
	var wg sync.WaitGroup
	for _, j := range runs {
		j := j
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := j.run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				errCh <- err
				cancelRuns()
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	var runErr error
	select {
	case <-parent.Done():
		cancelRuns()
	case err := <-errCh:
		runErr = err
		cancelRuns()
	case <-done:
	}
	<-done

	var shutdownErr error
	for _, j := range shutdowns {
		if err := j.run(context.Background()); err != nil && !errors.Is(err, context.Canceled) {
			shutdownErr = errors.Join(shutdownErr, err)
		}
	}
	return errors.Join(runErr, shutdownErr)
}
