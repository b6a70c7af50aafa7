package tasks

import "taskchat/internal/taskstore"

type ReversalKind string

const (
	ReversalDelete ReversalKind = "delete"
	ReversalUpdate ReversalKind = "update"
)

// Reversal is the pending undo action as an explicit value rather than a
// captured closure: the pre-mutation snapshot plus enough context to replay
// it. Delete reversals re-create (the snapshot's id is stale and a new one
// is assigned); update reversals re-send the original fields to OriginalID.
type Reversal struct {
	Kind       ReversalKind
	Snapshot   taskstore.Task
	OriginalID string
}

func draftFromTask(t taskstore.Task) taskstore.Draft {
	return taskstore.Draft{
		Title:             t.Title,
		Description:       t.Description,
		Priority:          t.Priority,
		Recurring:         t.Recurring,
		RecurringInterval: t.RecurringInterval,
		DueDate:           t.DueDate,
	}
}
