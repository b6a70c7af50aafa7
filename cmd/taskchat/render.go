package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"taskchat/internal/taskstore"
)

func printTaskList(w io.Writer, list []taskstore.Task, now time.Time) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No tasks yet.")
		return
	}
	for i, t := range list {
		fmt.Fprintln(w, formatTaskLine(i+1, t, now))
	}
}

func formatTaskLine(pos int, t taskstore.Task, now time.Time) string {
	var b strings.Builder
	mark := " "
	if t.Completed {
		mark = "x"
	}
	fmt.Fprintf(&b, "%2d. [%s] %s (%s)", pos, mark, t.Title, t.Priority)
	if t.DueDate != nil {
		fmt.Fprintf(&b, " due %s", t.DueDate.Format("2006-01-02"))
		if isOverdue(t, now) {
			b.WriteString(" OVERDUE")
		}
	}
	if badge := recurringBadge(t); badge != "" {
		fmt.Fprintf(&b, " [%s]", badge)
	}
	return b.String()
}

func isOverdue(t taskstore.Task, now time.Time) bool {
	return t.DueDate != nil && !t.Completed && t.DueDate.Before(now)
}

// recurringBadge is empty for non-recurring tasks even when a stale interval
// string is still present on the record.
func recurringBadge(t taskstore.Task) string {
	if !t.Recurring {
		return ""
	}
	if interval := strings.TrimSpace(t.RecurringInterval); interval != "" {
		return interval
	}
	return "recurring"
}
