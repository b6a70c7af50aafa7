package taskclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"taskchat/internal/db"
	"taskchat/internal/taskstore"
	"taskchat/internal/webapi"
)

func newBackedClient(t *testing.T) *Client {
	t.Helper()
	gdb, err := db.OpenSQLiteWithMigrations(filepath.Join(t.TempDir(), "taskchat.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	store, err := taskstore.NewStore(gdb)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ts := httptest.NewServer(webapi.NewServer(webapi.Deps{TaskStore: store}).Handler())
	t.Cleanup(ts.Close)
	return New(ts.URL, ts.Client(), 5*time.Second)
}

func TestClient_CRUDRoundTrip(t *testing.T) {
	client := newBackedClient(t)
	ctx := context.Background()

	created, err := client.Create(ctx, taskstore.Draft{Title: "Drink water", Recurring: true, RecurringInterval: "every 2 hours"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected server-assigned id")
	}

	tasks, err := client.Tasks(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != created.ID {
		t.Fatalf("unexpected list %+v", tasks)
	}

	toggled, err := client.Toggle(ctx, created.ID, true)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !toggled.Completed {
		t.Fatal("expected completed = true")
	}

	count, err := client.PendingCount(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 pending, got %d", count)
	}

	updated, err := client.Update(ctx, created.ID, taskstore.Draft{Title: "Drink more water", Priority: "high"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Drink more water" || updated.ID != created.ID {
		t.Fatalf("unexpected updated %+v", updated)
	}

	deleted, err := client.Delete(ctx, created.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted.ID != created.ID || deleted.Title != "Drink more water" {
		t.Fatalf("unexpected deleted snapshot %+v", deleted)
	}
}

func TestClient_NotFoundSurfacesAPIError(t *testing.T) {
	client := newBackedClient(t)

	_, err := client.Delete(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsNotFound(err) {
		t.Fatalf("expected TASK_NOT_FOUND, got %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
		t.Fatalf("expected 404 APIError, got %v", err)
	}
}

// slowToggleServer blocks every PATCH until released, then answers with the
// toggled task.
type slowToggleServer struct {
	mu      sync.Mutex
	started chan struct{}
	release chan struct{}
	served  int
}

func (s *slowToggleServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID        string `json:"id"`
		Completed bool   `json:"completed"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	s.mu.Lock()
	first := s.served == 0
	s.served++
	s.mu.Unlock()

	if first {
		close(s.started)
		select {
		case <-s.release:
		case <-r.Context().Done():
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"ok":   true,
		"data": map[string]any{"id": req.ID, "title": "t", "priority": "medium", "completed": req.Completed, "recurring": false, "createdAt": time.Now().UTC()},
	})
}

func TestToggle_SameTaskSupersedes(t *testing.T) {
	backend := &slowToggleServer{started: make(chan struct{}), release: make(chan struct{})}
	ts := httptest.NewServer(backend)
	t.Cleanup(ts.Close)
	client := New(ts.URL, ts.Client(), 5*time.Second)

	type result struct {
		task taskstore.Task
		err  error
	}
	firstDone := make(chan result, 1)
	go func() {
		task, err := client.Toggle(context.Background(), "42", true)
		firstDone <- result{task, err}
	}()
	<-backend.started

	// Second toggle on the same task cancels the first.
	task, err := client.Toggle(context.Background(), "42", false)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if task.Completed {
		t.Fatal("second toggle should have won with completed=false")
	}

	first := <-firstDone
	if !errors.Is(first.err, ErrCancelled) {
		t.Fatalf("expected first toggle cancelled, got %v (task %+v)", first.err, first.task)
	}
	close(backend.release)
}

func TestToggle_DifferentTasksRunIndependently(t *testing.T) {
	backend := &slowToggleServer{started: make(chan struct{}), release: make(chan struct{})}
	ts := httptest.NewServer(backend)
	t.Cleanup(ts.Close)
	client := New(ts.URL, ts.Client(), 5*time.Second)

	firstDone := make(chan error, 1)
	go func() {
		_, err := client.Toggle(context.Background(), "42", true)
		firstDone <- err
	}()
	<-backend.started

	// A toggle on another task must not cancel the pending one.
	if _, err := client.Toggle(context.Background(), "43", true); err != nil {
		t.Fatalf("toggle on other task: %v", err)
	}
	select {
	case err := <-firstDone:
		t.Fatalf("first toggle finished early: %v", err)
	default:
	}

	close(backend.release)
	if err := <-firstDone; err != nil {
		t.Fatalf("first toggle should complete once released: %v", err)
	}
}

func TestToggle_CallerCancellationIsNotSupersession(t *testing.T) {
	backend := &slowToggleServer{started: make(chan struct{}), release: make(chan struct{})}
	ts := httptest.NewServer(backend)
	t.Cleanup(ts.Close)
	client := New(ts.URL, ts.Client(), 5*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := client.Toggle(ctx, "42", true)
		done <- err
	}()
	<-backend.started
	cancel()

	err := <-done
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrCancelled) {
		t.Fatalf("caller cancellation must not masquerade as supersession: %v", err)
	}
	close(backend.release)
}
