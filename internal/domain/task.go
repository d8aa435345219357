package domain

import "time"

// Priority levels accepted for a task.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Task is a single to-do item. OwnerID is never serialized: a task is only
// reachable through its owner's session, so the owner is implied.
type Task struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"-"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Assignee    string    `json:"assignee"`
	Priority    string    `json:"priority"`
	Category    string    `json:"category"`
	Deadline    string    `json:"deadline"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
