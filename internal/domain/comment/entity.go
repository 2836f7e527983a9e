package comment

import "time"

type Comment struct {
	ID        int64     `gorm:"primaryKey;column:id" json:"id"`
	TaskID    int64     `gorm:"column:task_id;index" json:"taskId"`
	AuthorID  int64     `gorm:"column:author_id" json:"authorId"`
	Body      string    `gorm:"column:body" json:"body"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (Comment) TableName() string {
	return "comments"
}
