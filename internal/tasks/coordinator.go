package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"taskchat/internal/taskclient"
	"taskchat/internal/taskstore"
)

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a notification request. Reversal is set when the mutation can
// be undone while the notification is visible.
type Notice struct {
	Message  string
	Kind     NoticeKind
	Reversal *Reversal
}

type Notifier interface {
	Notify(Notice)
}

// StoreAPI is the remote task store as the coordinator consumes it.
type StoreAPI interface {
	Tasks(ctx context.Context) ([]taskstore.Task, error)
	Create(ctx context.Context, draft taskstore.Draft) (taskstore.Task, error)
	Toggle(ctx context.Context, id string, completed bool) (taskstore.Task, error)
	Update(ctx context.Context, id string, draft taskstore.Draft) (taskstore.Task, error)
	Delete(ctx context.Context, id string) (taskstore.Task, error)
}

// Coordinator owns the in-memory task collection and reconciles it with the
// store's authoritative responses. Local state changes only after the server
// confirms; collection updates are keyed by task id, so responses arriving
// out of issuance order finalize last-response-wins per id.
type Coordinator struct {
	api      StoreAPI
	notifier Notifier

	mu    sync.Mutex
	tasks []taskstore.Task
}

func NewCoordinator(api StoreAPI, notifier Notifier) *Coordinator {
	return &Coordinator{api: api, notifier: notifier}
}

// List returns a copy of the current collection.
func (c *Coordinator) List() []taskstore.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]taskstore.Task, len(c.tasks))
	copy(out, c.tasks)
	return out
}

// Refresh replaces the collection with the store's current task list.
func (c *Coordinator) Refresh(ctx context.Context) error {
	tasks, err := c.api.Tasks(ctx)
	if err != nil {
		c.notify(Notice{Message: fmt.Sprintf("Failed to fetch tasks: %v", err), Kind: NoticeError})
		return err
	}
	c.mu.Lock()
	c.tasks = tasks
	c.mu.Unlock()
	return nil
}

// Create sends the draft and inserts the authoritative task on success.
func (c *Coordinator) Create(ctx context.Context, draft taskstore.Draft) (taskstore.Task, error) {
	task, err := c.api.Create(ctx, draft)
	if err != nil {
		c.notify(Notice{Message: fmt.Sprintf("Failed to create task: %v", err), Kind: NoticeError})
		return taskstore.Task{}, err
	}
	c.appendTask(task)
	c.notify(Notice{Message: "Task Created Successfully!", Kind: NoticeSuccess})
	return task, nil
}

// Toggle flips completion for the task with the given id. A stale id is a
// silent no-op, and a superseded request is absorbed without notifying.
func (c *Coordinator) Toggle(ctx context.Context, id string) error {
	task, ok := c.find(id)
	if !ok {
		return nil
	}
	updated, err := c.api.Toggle(ctx, task.ID, !task.Completed)
	if err != nil {
		if errors.Is(err, taskclient.ErrCancelled) {
			return nil
		}
		c.notify(Notice{Message: fmt.Sprintf("Failed to toggle task: %v", err), Kind: NoticeError})
		return err
	}
	c.replaceTask(updated)
	if updated.Completed {
		c.notify(Notice{Message: "Task Complete!", Kind: NoticeSuccess})
	} else {
		c.notify(Notice{Message: "Task complete undone", Kind: NoticeSuccess})
	}
	return nil
}

// Update sends the full patch and, on success, offers an undo that re-sends
// the pre-patch snapshot.
func (c *Coordinator) Update(ctx context.Context, id string, draft taskstore.Draft) error {
	original, ok := c.find(id)
	if !ok {
		return nil
	}
	updated, err := c.api.Update(ctx, id, draft)
	if err != nil {
		if errors.Is(err, taskclient.ErrEmptyResult) {
			c.notify(Notice{Message: "Update returned empty result", Kind: NoticeError})
		} else {
			c.notify(Notice{Message: fmt.Sprintf("Failed to update task: %v", err), Kind: NoticeError})
		}
		return err
	}
	c.replaceTask(updated)
	c.notify(Notice{
		Message:  "Task Updated!",
		Kind:     NoticeSuccess,
		Reversal: &Reversal{Kind: ReversalUpdate, Snapshot: original, OriginalID: original.ID},
	})
	return nil
}

// Delete removes the task locally only after the remote delete succeeds and
// offers an undo that re-creates it (with a new id).
func (c *Coordinator) Delete(ctx context.Context, id string) error {
	task, ok := c.find(id)
	if !ok {
		return nil
	}
	deleted, err := c.api.Delete(ctx, task.ID)
	if err != nil {
		c.notify(Notice{Message: fmt.Sprintf("Failed to delete task: %v", err), Kind: NoticeError})
		return err
	}
	c.removeTask(task.ID)
	snapshot := deleted
	snapshot.ID = ""
	c.notify(Notice{
		Message:  "Task Deleted Successfully!",
		Kind:     NoticeSuccess,
		Reversal: &Reversal{Kind: ReversalDelete, Snapshot: snapshot},
	})
	return nil
}

// ApplyReversal replays a pending undo. Failures here are terminal for the
// attempt, like every other mutation.
func (c *Coordinator) ApplyReversal(ctx context.Context, r Reversal) error {
	switch r.Kind {
	case ReversalDelete:
		restored, err := c.api.Create(ctx, draftFromTask(r.Snapshot))
		if err != nil {
			c.notify(Notice{Message: fmt.Sprintf("Failed to restore task: %v", err), Kind: NoticeError})
			return err
		}
		c.appendTask(restored)
		c.notify(Notice{Message: "Task Restored!", Kind: NoticeSuccess})
		return nil
	case ReversalUpdate:
		restored, err := c.api.Update(ctx, r.OriginalID, draftFromTask(r.Snapshot))
		if err != nil {
			c.notify(Notice{Message: fmt.Sprintf("Failed to restore task: %v", err), Kind: NoticeError})
			return err
		}
		c.replaceTask(restored)
		c.notify(Notice{Message: "Task Restored!", Kind: NoticeSuccess})
		return nil
	default:
		return fmt.Errorf("unknown reversal kind %q", r.Kind)
	}
}

func (c *Coordinator) notify(n Notice) {
	if c.notifier != nil {
		c.notifier.Notify(n)
	}
}

func (c *Coordinator) find(id string) (taskstore.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range c.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return taskstore.Task{}, false
}

func (c *Coordinator) appendTask(task taskstore.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks = append(c.tasks, task)
}

func (c *Coordinator) replaceTask(task taskstore.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, t := range c.tasks {
		if t.ID == task.ID {
			c.tasks[i] = task
			return
		}
	}
}

func (c *Coordinator) removeTask(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.tasks[:0]
	for _, t := range c.tasks {
		if t.ID != id {
			out = append(out, t)
		}
	}
	c.tasks = out
}
