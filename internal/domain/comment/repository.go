package comment

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, cm *Comment) error {
	return r.db.WithContext(ctx).Create(cm).Error
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Comment, error) {
	var cm Comment
	err := r.db.WithContext(ctx).First(&cm, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cm, nil
}

func (r *Repository) ListByTask(ctx context.Context, taskID int64) ([]Comment, error) {
	var out []Comment
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

func (r *Repository) Update(ctx context.Context, cm *Comment) error {
	return r.db.WithContext(ctx).Save(cm).Error
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&Comment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
