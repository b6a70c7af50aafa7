package taskstore

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"taskchat/internal/db"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	gdb, err := db.OpenSQLiteWithMigrations(filepath.Join(t.TempDir(), "taskchat.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	store, err := NewStore(gdb)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func TestCreate_AssignsIDAndDefaults(t *testing.T) {
	store := openTestStore(t)

	task, err := store.Create(Draft{Title: "  Drink water  ", Recurring: true, RecurringInterval: "every 2 hours"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.ID == "" {
		t.Fatal("expected server-assigned id")
	}
	if task.Title != "Drink water" {
		t.Fatalf("expected trimmed title, got %q", task.Title)
	}
	if task.Priority != PriorityMedium {
		t.Fatalf("expected default priority medium, got %q", task.Priority)
	}
	if task.Completed {
		t.Fatal("new task must start incomplete")
	}
	if task.CreatedAt.IsZero() {
		t.Fatal("expected createdAt to be set")
	}
}

func TestCreate_RejectsEmptyTitleAndBadPriority(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.Create(Draft{Title: "   "}); !errors.Is(err, ErrTitleRequired) {
		t.Fatalf("expected ErrTitleRequired, got %v", err)
	}
	if _, err := store.Create(Draft{Title: "x", Priority: "urgent"}); !errors.Is(err, ErrInvalidPriority) {
		t.Fatalf("expected ErrInvalidPriority, got %v", err)
	}
}

func TestList_OrdersPendingFirst(t *testing.T) {
	store := openTestStore(t)

	a, err := store.Create(Draft{Title: "done one"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.SetCompleted(a.ID, true); err != nil {
		t.Fatal(err)
	}
	b, err := store.Create(Draft{Title: "pending one"})
	if err != nil {
		t.Fatal(err)
	}

	tasks, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].ID != b.ID {
		t.Fatalf("expected pending task first, got %q", tasks[0].Title)
	}
}

func TestUpdate_ReplacesFieldsAndKeepsIdentity(t *testing.T) {
	store := openTestStore(t)

	due := time.Date(2026, 9, 12, 15, 0, 0, 0, time.UTC)
	task, err := store.Create(Draft{Title: "Call mom"})
	if err != nil {
		t.Fatal(err)
	}

	updated, err := store.Update(task.ID, Draft{
		Title:    "Call mom tomorrow",
		Priority: PriorityHigh,
		DueDate:  &due,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != task.ID {
		t.Fatal("update must not change the id")
	}
	if updated.Title != "Call mom tomorrow" || updated.Priority != PriorityHigh {
		t.Fatalf("unexpected updated task: %+v", updated)
	}
	if updated.DueDate == nil || !updated.DueDate.Equal(due) {
		t.Fatalf("expected due date %v, got %v", due, updated.DueDate)
	}
	if !updated.CreatedAt.Equal(task.CreatedAt) {
		t.Fatal("update must not change createdAt")
	}

	if _, err := store.Update("missing", Draft{Title: "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetCompleted_TogglesAndCounts(t *testing.T) {
	store := openTestStore(t)

	task, err := store.Create(Draft{Title: "Review proposal"})
	if err != nil {
		t.Fatal(err)
	}

	toggled, err := store.SetCompleted(task.ID, true)
	if err != nil {
		t.Fatal(err)
	}
	if !toggled.Completed {
		t.Fatal("expected completed = true")
	}

	count, err := store.CountPending()
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Fatalf("expected 0 pending, got %d", count)
	}

	if _, err := store.SetCompleted(task.ID, false); err != nil {
		t.Fatal(err)
	}
	count, err = store.CountPending()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("expected 1 pending, got %d", count)
	}
}

func TestDelete_ReturnsPriorSnapshot(t *testing.T) {
	store := openTestStore(t)

	task, err := store.Create(Draft{Title: "Throwaway", Description: "temp"})
	if err != nil {
		t.Fatal(err)
	}

	deleted, err := store.Delete(task.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted.ID != task.ID || deleted.Title != "Throwaway" || deleted.Description != "temp" {
		t.Fatalf("unexpected deleted snapshot: %+v", deleted)
	}

	if _, err := store.Delete(task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	tasks, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected empty list, got %d tasks", len(tasks))
	}
}
