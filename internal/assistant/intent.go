package assistant

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"taskchat/internal/taskstore"
)

const (
	ActionCreateTask   = "create_task"
	ActionClarify      = "clarify"
	ActionConversation = "conversation"
	ActionList         = "list"
)

// ErrMalformedReply marks replies that are not valid structured intents.
// Distinct from transport failures: the request succeeded but the model
// did not follow the contract.
var ErrMalformedReply = errors.New("malformed assistant reply")

// Intent is the structured payload the model is instructed to produce.
type Intent struct {
	Action  string           `json:"action"`
	Task    *taskstore.Draft `json:"task,omitempty"`
	Message string           `json:"message"`
}

const systemPrompt = `You are a task management assistant. The user describes
things they need to do in natural language. Reply with a single JSON object
and nothing else, in one of these shapes:

{"action":"create_task","task":{"title":"...","description":"...","priority":"low|medium|high","recurring":true|false,"recurringInterval":"...","dueDate":"RFC3339 timestamp"},"message":"confirmation for the user"}
{"action":"clarify","message":"question for the user"}
{"action":"conversation","message":"conversational reply"}
{"action":"list","message":"reply telling the user to check their task list"}

Rules: title is at most 50 characters and required for create_task.
description is at most 200 characters. recurringInterval is free-form text of
at most 20 characters and only meaningful when recurring is true. Omit
dueDate when the user gave no deadline. priority defaults to "medium".
Use "clarify" when you cannot extract a concrete task yet.`

// ParseIntent decodes the model's reply into an Intent. Any reply that does
// not decode to one of the known action shapes is reported as
// ErrMalformedReply.
func ParseIntent(raw string) (Intent, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Intent{}, fmt.Errorf("%w: empty reply", ErrMalformedReply)
	}
	var intent Intent
	if err := json.Unmarshal([]byte(trimmed), &intent); err != nil {
		return Intent{}, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	switch intent.Action {
	case ActionCreateTask:
		if intent.Task == nil {
			return Intent{}, fmt.Errorf("%w: create_task without task payload", ErrMalformedReply)
		}
	case ActionClarify, ActionConversation, ActionList:
	default:
		return Intent{}, fmt.Errorf("%w: unknown action %q", ErrMalformedReply, intent.Action)
	}
	return intent, nil
}
