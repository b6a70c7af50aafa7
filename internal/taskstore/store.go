package taskstore

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbmodel "taskchat/internal/db"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

var (
	ErrNotFound        = errors.New("task not found")
	ErrTitleRequired   = errors.New("title is required")
	ErrInvalidPriority = errors.New("invalid priority value")
)

// Task is the persisted entity as exposed over the API. Field names follow
// the wire format.
type Task struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Description       string     `json:"description,omitempty"`
	Priority          string     `json:"priority"`
	Completed         bool       `json:"completed"`
	Recurring         bool       `json:"recurring"`
	RecurringInterval string     `json:"recurringInterval,omitempty"`
	DueDate           *time.Time `json:"dueDate,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// Draft carries every caller-settable field. ID and CreatedAt are assigned
// by the store on create.
type Draft struct {
	Title             string     `json:"title"`
	Description       string     `json:"description,omitempty"`
	Priority          string     `json:"priority,omitempty"`
	Recurring         bool       `json:"recurring"`
	RecurringInterval string     `json:"recurringInterval,omitempty"`
	DueDate           *time.Time `json:"dueDate,omitempty"`
}

type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// NewStore uses the shared global DB. Caller must not close the db.
func NewStore(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, errors.New("db is required")
	}
	return &Store{db: db, now: time.Now}, nil
}

// List returns all tasks, pending first, then by due date.
func (s *Store) List() ([]Task, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("task store is not initialized")
	}
	var rows []dbmodel.Task
	if err := s.db.Order("completed ASC").Order("due_date ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	tasks := make([]Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, fromRow(row))
	}
	return tasks, nil
}

func (s *Store) Create(draft Draft) (Task, error) {
	if s == nil || s.db == nil {
		return Task{}, errors.New("task store is not initialized")
	}
	draft.Title = strings.TrimSpace(draft.Title)
	if draft.Title == "" {
		return Task{}, ErrTitleRequired
	}
	priority, err := normalizePriority(draft.Priority)
	if err != nil {
		return Task{}, err
	}
	row := dbmodel.Task{
		TaskID:            uuid.NewString(),
		Title:             draft.Title,
		Description:       draft.Description,
		Priority:          priority,
		Completed:         false,
		Recurring:         draft.Recurring,
		RecurringInterval: draft.RecurringInterval,
		DueDate:           draft.DueDate,
		CreatedAt:         s.now().UTC(),
	}
	if err := s.db.Create(&row).Error; err != nil {
		return Task{}, err
	}
	return fromRow(row), nil
}

// Update replaces every caller-settable field of the task; the id and
// creation timestamp are immutable.
func (s *Store) Update(id string, draft Draft) (Task, error) {
	if s == nil || s.db == nil {
		return Task{}, errors.New("task store is not initialized")
	}
	draft.Title = strings.TrimSpace(draft.Title)
	if draft.Title == "" {
		return Task{}, ErrTitleRequired
	}
	priority, err := normalizePriority(draft.Priority)
	if err != nil {
		return Task{}, err
	}
	row, err := s.take(id)
	if err != nil {
		return Task{}, err
	}
	updates := map[string]any{
		"title":              draft.Title,
		"description":        draft.Description,
		"priority":           priority,
		"recurring":          draft.Recurring,
		"recurring_interval": draft.RecurringInterval,
		"due_date":           draft.DueDate,
	}
	if err := s.db.Model(&dbmodel.Task{}).Where("task_id = ?", row.TaskID).Updates(updates).Error; err != nil {
		return Task{}, err
	}
	row, err = s.take(id)
	if err != nil {
		return Task{}, err
	}
	return fromRow(row), nil
}

// SetCompleted flips the completion flag and returns the updated snapshot.
func (s *Store) SetCompleted(id string, completed bool) (Task, error) {
	if s == nil || s.db == nil {
		return Task{}, errors.New("task store is not initialized")
	}
	row, err := s.take(id)
	if err != nil {
		return Task{}, err
	}
	if err := s.db.Model(&dbmodel.Task{}).Where("task_id = ?", row.TaskID).Update("completed", completed).Error; err != nil {
		return Task{}, err
	}
	row.Completed = completed
	return fromRow(row), nil
}

// Delete removes the task and returns it as it existed immediately before
// deletion.
func (s *Store) Delete(id string) (Task, error) {
	if s == nil || s.db == nil {
		return Task{}, errors.New("task store is not initialized")
	}
	row, err := s.take(id)
	if err != nil {
		return Task{}, err
	}
	if err := s.db.Where("task_id = ?", row.TaskID).Delete(&dbmodel.Task{}).Error; err != nil {
		return Task{}, err
	}
	return fromRow(row), nil
}

// CountPending returns the number of tasks with completed = false.
func (s *Store) CountPending() (int64, error) {
	if s == nil || s.db == nil {
		return 0, errors.New("task store is not initialized")
	}
	var count int64
	if err := s.db.Model(&dbmodel.Task{}).Where("completed = ?", false).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) take(id string) (dbmodel.Task, error) {
	var row dbmodel.Task
	err := s.db.Where("task_id = ?", strings.TrimSpace(id)).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dbmodel.Task{}, ErrNotFound
	}
	if err != nil {
		return dbmodel.Task{}, err
	}
	return row, nil
}

func normalizePriority(p string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case "":
		return PriorityMedium, nil
	case PriorityLow:
		return PriorityLow, nil
	case PriorityMedium:
		return PriorityMedium, nil
	case PriorityHigh:
		return PriorityHigh, nil
	default:
		return "", ErrInvalidPriority
	}
}

func fromRow(row dbmodel.Task) Task {
	return Task{
		ID:                row.TaskID,
		Title:             row.Title,
		Description:       row.Description,
		Priority:          row.Priority,
		Completed:         row.Completed,
		Recurring:         row.Recurring,
		RecurringInterval: row.RecurringInterval,
		DueDate:           row.DueDate,
		CreatedAt:         row.CreatedAt,
	}
}
