package project

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

func (r *Repository) Create(ctx context.Context, p *Project) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Project, error) {
	var p Project
	err := r.db.WithContext(ctx).First(&p, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListForUser returns projects the user owns or is a member of.
func (r *Repository) ListForUser(ctx context.Context, userID int64) ([]Project, error) {
	var out []Project
	err := r.db.WithContext(ctx).
		Where("owner_id = ? OR id IN (?)",
			userID,
			r.db.Model(&Member{}).Select("project_id").Where("user_id = ?", userID),
		).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *Repository) Update(ctx context.Context, p *Project) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&Member{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&Project{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *Repository) AddMember(ctx context.Context, projectID, userID int64) error {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&Member{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrAlreadyMember
	}
	return r.db.WithContext(ctx).Create(&Member{ProjectID: projectID, UserID: userID}).Error
}

func (r *Repository) RemoveMember(ctx context.Context, projectID, userID int64) error {
	res := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&Member{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotMember
	}
	return nil
}

func (r *Repository) ListMembers(ctx context.Context, projectID int64) ([]Member, error) {
	var out []Member
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Find(&out).Error
	return out, err
}
