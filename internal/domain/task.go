package domain

import "time"

// Task status values.
const (
	TaskPending    = "pending"
	TaskScheduled  = "scheduled"
	TaskInProgress = "in_progress"
	TaskCompleted  = "completed"
	TaskCancelled  = "cancelled"
)

// Task urgency values.
const (
	UrgencyLow    = "low"
	UrgencyNormal = "normal"
	UrgencyHigh   = "high"
	UrgencyUrgent = "urgent"
)

// Task is a unit of maintenance work, optionally tied to a site and an
// assignee (a staff user managed by the identity provider).
type Task struct {
	ID             string     `json:"id"`
	SiteID         *string    `json:"siteId"`
	Title          string     `json:"title"`
	Description    *string    `json:"description"`
	Status         string     `json:"status"`
	Urgency        string     `json:"urgency"`
	TaskType       *string    `json:"taskType"`
	AssigneeID     *string    `json:"assigneeId"`
	ScheduledStart *time.Time `json:"scheduledStart"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// CreateTaskRequest is the input for creating a task.
type CreateTaskRequest struct {
	SiteID         *string    `json:"siteId"`
	Title          string     `json:"title" validate:"required"`
	Description    *string    `json:"description"`
	Status         string     `json:"status" validate:"omitempty,oneof=pending scheduled in_progress completed cancelled"`
	Urgency        string     `json:"urgency" validate:"omitempty,oneof=low normal high urgent"`
	TaskType       *string    `json:"taskType"`
	AssigneeID     *string    `json:"assigneeId"`
	ScheduledStart *time.Time `json:"scheduledStart"`
}

// UpdateTaskRequest is the input for updating a task. Nil fields are left
// untouched.
type UpdateTaskRequest struct {
	SiteID         *string    `json:"siteId"`
	Title          *string    `json:"title"`
	Description    *string    `json:"description"`
	Status         *string    `json:"status" validate:"omitempty,oneof=pending scheduled in_progress completed cancelled"`
	Urgency        *string    `json:"urgency" validate:"omitempty,oneof=low normal high urgent"`
	TaskType       *string    `json:"taskType"`
	AssigneeID     *string    `json:"assigneeId"`
	ScheduledStart *time.Time `json:"scheduledStart"`
}
