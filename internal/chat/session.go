package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"taskchat/internal/assistant"
	"taskchat/internal/taskstore"
	"taskchat/internal/tasks"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

const greeting = `Hi! I can help you create and manage tasks. Just tell me what you need to do, and I'll help you organize it. Try saying something like "I need to drink water every 2 hours" or "Review project proposal by Friday".`

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AIClient forwards free text through the AI proxy and returns the raw
// model reply.
type AIClient interface {
	Prompt(ctx context.Context, input string) (string, error)
}

// TaskCreator persists a chat-extracted task draft.
type TaskCreator interface {
	Create(ctx context.Context, draft taskstore.Draft) (taskstore.Task, error)
}

// Session is one chat transcript. Processing a prompt distinguishes three
// failure kinds: the AI request failing, the AI reply not parsing as an
// intent, and the store rejecting the extracted task. Each is surfaced once
// in both the transcript and a notification; none is retried.
type Session struct {
	ai       AIClient
	creator  TaskCreator
	notifier tasks.Notifier

	mu       sync.Mutex
	messages []Message
}

func NewSession(ai AIClient, creator TaskCreator, notifier tasks.Notifier) *Session {
	return &Session{
		ai:       ai,
		creator:  creator,
		notifier: notifier,
		messages: []Message{{Role: RoleAssistant, Content: greeting}},
	}
}

// Messages returns a copy of the transcript.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Process handles one user prompt and returns the assistant's transcript
// reply.
func (s *Session) Process(ctx context.Context, input string) (Message, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Message{}, errors.New("input is required")
	}
	s.append(Message{Role: RoleUser, Content: input})

	raw, err := s.ai.Prompt(ctx, input)
	if err != nil {
		return s.fail(fmt.Sprintf("Sorry, I encountered an error: %v", err)), err
	}

	intent, err := assistant.ParseIntent(raw)
	if err != nil {
		return s.fail(fmt.Sprintf("There was an error with the response: %v", err)), err
	}

	if intent.Action != assistant.ActionCreateTask {
		return s.reply(intent.Message), nil
	}

	if _, err := s.creator.Create(ctx, *intent.Task); err != nil {
		// The creator already notified the store failure; the transcript
		// still records it.
		return s.reply(fmt.Sprintf("There was an error creating the task in the database: %v", err)), err
	}
	return s.reply(intent.Message), nil
}

func (s *Session) reply(content string) Message {
	msg := Message{Role: RoleAssistant, Content: content}
	s.append(msg)
	return msg
}

func (s *Session) fail(content string) Message {
	if s.notifier != nil {
		s.notifier.Notify(tasks.Notice{Message: content, Kind: tasks.NoticeError})
	}
	return s.reply(content)
}

func (s *Session) append(msg Message) {
	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()
}
