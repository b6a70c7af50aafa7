package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestStartAndWait_RunFailureStopsSiblings(t *testing.T) {
	mgr := NewManager()
	boom := errors.New("boom")
	siblingStopped := make(chan struct{})
	mgr.AddRun("failing", func(context.Context) error {
		return boom
	})
	mgr.AddRun("sibling", func(ctx context.Context) error {
		<-ctx.Done()
		close(siblingStopped)
		return ctx.Err()
	})

	err := mgr.StartAndWait(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected run failure, got %v", err)
	}
	select {
	case <-siblingStopped:
	case <-time.After(2 * time.Second):
		t.Fatal("sibling job was not cancelled")
	}
}

func TestStartAndWait_ParentCancellationIsClean(t *testing.T) {
	mgr := NewManager()
	mgr.AddRun("waiter", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	if err := mgr.StartAndWait(ctx); err != nil {
		t.Fatalf("expected clean stop, got %v", err)
	}
}

func TestStartAndWait_ShutdownHooksRunInOrder(t *testing.T) {
	mgr := NewManager()
	mgr.AddRun("noop", func(context.Context) error { return nil })
	var order []string
	mgr.AddShutdown("first", func(context.Context) error {
		order = append(order, "first")
		return nil
	})
	mgr.AddShutdown("second", func(context.Context) error {
		order = append(order, "second")
		return errors.New("shutdown failed")
	})

	err := mgr.StartAndWait(context.Background())
	if err == nil {
		t.Fatal("expected shutdown error to surface")
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("unexpected shutdown order: %v", order)
	}
}
