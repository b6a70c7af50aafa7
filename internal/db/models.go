package db

import "time"

type Task struct {
	TaskID            string     `gorm:"column:task_id;primaryKey"`
	Title             string     `gorm:"column:title;not null;default:''"`
	Description       string     `gorm:"column:description;not null;default:''"`
	Priority          string     `gorm:"column:priority;not null;default:'medium'"`
	Completed         bool       `gorm:"column:completed;not null;default:false"`
	Recurring         bool       `gorm:"column:recurring;not null;default:false"`
	RecurringInterval string     `gorm:"column:recurring_interval;not null;default:''"`
	DueDate           *time.Time `gorm:"column:due_date"`
	CreatedAt         time.Time  `gorm:"column:created_at;not null"`
}

func (Task) TableName() string { return "tasks" }

type Config struct {
	Key       string `gorm:"column:key;primaryKey"`
	Value     string `gorm:"column:value;not null;default:''"`
	UpdatedAt int64  `gorm:"column:updated_at;not null;default:0"`
}

func (Config) TableName() string { return "config" }
