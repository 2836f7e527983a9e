package task

import "time"

// Task statuses. Stored as plain strings; the handler validates input.
const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

type Task struct {
	ID          int64     `gorm:"primaryKey;column:id" json:"id"`
	ProjectID   int64     `gorm:"column:project_id;index" json:"projectId"`
	Title       string    `gorm:"column:title" json:"title"`
	Description string    `gorm:"column:description" json:"description"`
	Status      string    `gorm:"column:status" json:"status"`
	AssigneeID  *int64    `gorm:"column:assignee_id;index" json:"assigneeId,omitempty"`
	CreatorID   int64     `gorm:"column:creator_id" json:"creatorId"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (Task) TableName() string {
	return "tasks"
}
