package assistant

import (
	"errors"
	"testing"
)

func TestParseIntent_CreateTask(t *testing.T) {
	raw := `{"action":"create_task","task":{"title":"Drink water","recurring":true,"recurringInterval":"every 2 hours","priority":"medium"},"message":"Added a recurring reminder to drink water."}`

	intent, err := ParseIntent(raw)
	if err != nil {
		t.Fatalf("ParseIntent: %v", err)
	}
	if intent.Action != ActionCreateTask {
		t.Fatalf("expected create_task, got %q", intent.Action)
	}
	if intent.Task == nil || intent.Task.Title != "Drink water" {
		t.Fatalf("unexpected task payload: %+v", intent.Task)
	}
	if !intent.Task.Recurring || intent.Task.RecurringInterval != "every 2 hours" {
		t.Fatalf("recurring fields lost: %+v", intent.Task)
	}
	if intent.Message == "" {
		t.Fatal("expected a user-facing message")
	}
}

func TestParseIntent_ConversationalActions(t *testing.T) {
	for _, action := range []string{ActionClarify, ActionConversation, ActionList} {
		intent, err := ParseIntent(`{"action":"` + action + `","message":"hi"}`)
		if err != nil {
			t.Fatalf("ParseIntent(%s): %v", action, err)
		}
		if intent.Action != action {
			t.Fatalf("expected %q, got %q", action, intent.Action)
		}
	}
}

func TestParseIntent_MalformedReplies(t *testing.T) {
	cases := []string{
		"Invalid JSON",
		"",
		"   ",
		`{"action":"create_task","message":"missing task"}`,
		`{"action":"destroy_everything","message":"nope"}`,
		`{"action":"create_task","task":{"title":"x","dueDate":"next tuesday"},"message":"bad date"}`,
	}
	for _, raw := range cases {
		if _, err := ParseIntent(raw); !errors.Is(err, ErrMalformedReply) {
			t.Fatalf("ParseIntent(%q): expected ErrMalformedReply, got %v", raw, err)
		}
	}
}
