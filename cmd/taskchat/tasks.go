package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"taskchat/internal/config"
	"taskchat/internal/taskclient"
	"taskchat/internal/tasks"
	"taskchat/internal/taskstore"
)

// printNotifier writes notices to stdout as they arrive. One-shot commands
// have no notification area to manage, so every notice prints immediately.
type printNotifier struct{}

func (printNotifier) Notify(n tasks.Notice) {
	prefix := "+"
	if n.Kind == tasks.NoticeError {
		prefix = "!"
	}
	fmt.Printf("%s %s\n", prefix, n.Message)
}

func newCoordinator(cfg config.Config, notifier tasks.Notifier) *tasks.Coordinator {
	client := taskclient.New(cfg.ServerURL, nil, cfg.RequestTimeout)
	return tasks.NewCoordinator(client, notifier)
}

func runTaskList(ctx context.Context, cfg config.Config) error {
	coord := newCoordinator(cfg, printNotifier{})
	if err := coord.Refresh(ctx); err != nil {
		return err
	}
	printTaskList(os.Stdout, coord.List(), time.Now())
	return nil
}

func runTaskAdd(ctx context.Context, cfg config.Config, draft taskstore.Draft) error {
	coord := newCoordinator(cfg, printNotifier{})
	if _, err := coord.Create(ctx, draft); err != nil {
		return err
	}
	return nil
}

func runTaskDone(ctx context.Context, cfg config.Config, ref string) error {
	coord := newCoordinator(cfg, printNotifier{})
	id, err := resolveTaskRef(ctx, coord, ref)
	if err != nil {
		return err
	}
	return coord.Toggle(ctx, id)
}

func runTaskRemove(ctx context.Context, cfg config.Config, ref string) error {
	coord := newCoordinator(cfg, printNotifier{})
	id, err := resolveTaskRef(ctx, coord, ref)
	if err != nil {
		return err
	}
	return coord.Delete(ctx, id)
}

func runTaskEdit(ctx context.Context, cfg config.Config, ref string, draft taskstore.Draft) error {
	coord := newCoordinator(cfg, printNotifier{})
	id, err := resolveTaskRef(ctx, coord, ref)
	if err != nil {
		return err
	}
	return coord.Update(ctx, id, draft)
}

func runTaskCount(ctx context.Context, cfg config.Config) error {
	client := taskclient.New(cfg.ServerURL, nil, cfg.RequestTimeout)
	count, err := client.PendingCount(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%d pending task(s)\n", count)
	return nil
}

// resolveTaskRef accepts either a task id or a 1-based position in the
// current listing.
func resolveTaskRef(ctx context.Context, coord *tasks.Coordinator, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if err := coord.Refresh(ctx); err != nil {
		return "", err
	}
	list := coord.List()
	for _, t := range list {
		if t.ID == ref {
			return t.ID, nil
		}
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(list) {
			return "", fmt.Errorf("no task at position %d (have %d)", n, len(list))
		}
		return list[n-1].ID, nil
	}
	return "", fmt.Errorf("unknown task %q", ref)
}
