package project

import "time"

type Project struct {
	ID          int64     `gorm:"primaryKey;column:id" json:"id"`
	Name        string    `gorm:"column:name" json:"name"`
	Description string    `gorm:"column:description" json:"description"`
	OwnerID     int64     `gorm:"column:owner_id;index" json:"ownerId"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (Project) TableName() string {
	return "projects"
}

// Member links a user to a project.
type Member struct {
	ID        int64     `gorm:"primaryKey;column:id" json:"id"`
	ProjectID int64     `gorm:"column:project_id;uniqueIndex:idx_project_member" json:"projectId"`
	UserID    int64     `gorm:"column:user_id;uniqueIndex:idx_project_member" json:"userId"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
}

func (Member) TableName() string {
	return "project_members"
}
