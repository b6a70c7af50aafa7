package taskclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"taskchat/internal/taskstore"
)

var (
	// ErrCancelled marks a toggle superseded by a newer one. Rapid tapping
	// is expected user behavior, not a fault; callers absorb it silently.
	ErrCancelled = errors.New("request cancelled")
	// ErrEmptyResult marks a nominally successful call whose body carried
	// no usable task.
	ErrEmptyResult = errors.New("update returned empty result")
)

// APIError carries the server's error taxonomy (VALIDATION_FAILED,
// TASK_NOT_FOUND, ...).
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == "TASK_NOT_FOUND"
}

// Client talks to the remote task store over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration

	toggles *toggleController
}

func New(baseURL string, httpClient *http.Client, timeout time.Duration) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		timeout: timeout,
		toggles: newToggleController(),
	}
}

func (c *Client) Tasks(ctx context.Context) ([]taskstore.Task, error) {
	var tasks []taskstore.Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) Create(ctx context.Context, draft taskstore.Draft) (taskstore.Task, error) {
	var task *taskstore.Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks", draft, &task); err != nil {
		return taskstore.Task{}, err
	}
	if task == nil {
		return taskstore.Task{}, ErrEmptyResult
	}
	return *task, nil
}

// Toggle issues the completion flip for one task. A pending toggle on the
// same task is cancelled first; toggles on other tasks run independently.
func (c *Client) Toggle(ctx context.Context, id string, completed bool) (taskstore.Task, error) {
	tctx, finish := c.toggles.begin(ctx, id)
	defer finish()

	var task *taskstore.Task
	err := c.do(tctx, http.MethodPatch, "/api/tasks", map[string]any{"id": id, "completed": completed}, &task)
	if err != nil {
		if tctx.Err() != nil && ctx.Err() == nil {
			return taskstore.Task{}, fmt.Errorf("%w: toggle superseded for task %s", ErrCancelled, id)
		}
		return taskstore.Task{}, err
	}
	if task == nil {
		return taskstore.Task{}, ErrEmptyResult
	}
	return *task, nil
}

func (c *Client) Update(ctx context.Context, id string, draft taskstore.Draft) (taskstore.Task, error) {
	body := map[string]any{"id": id, "formData": draft}
	var task *taskstore.Task
	if err := c.do(ctx, http.MethodPut, "/api/tasks/"+id, body, &task); err != nil {
		return taskstore.Task{}, err
	}
	if task == nil {
		return taskstore.Task{}, ErrEmptyResult
	}
	return *task, nil
}

func (c *Client) Delete(ctx context.Context, id string) (taskstore.Task, error) {
	var task *taskstore.Task
	if err := c.do(ctx, http.MethodDelete, "/api/tasks", map[string]any{"id": id}, &task); err != nil {
		return taskstore.Task{}, err
	}
	if task == nil {
		return taskstore.Task{}, ErrEmptyResult
	}
	return *task, nil
}

func (c *Client) PendingCount(ctx context.Context) (int64, error) {
	var out struct {
		Count int64 `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/tasks/count", nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// Prompt forwards free text to the AI proxy and returns the raw model reply.
func (c *Client) Prompt(ctx context.Context, input string) (string, error) {
	var out struct {
		Response string `json:"response"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/ai", map[string]any{"input": input}, &out); err != nil {
		return "", err
	}
	return out.Response, nil
}

type envelope struct {
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(reqCtx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	defer res.Body.Close()

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response for %s %s: %w", method, path, err)
	}
	if !env.OK {
		apiErr := &APIError{Status: res.StatusCode, Code: "UNKNOWN", Message: "request failed"}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}
