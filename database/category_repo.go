package database

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rpupo63/words-blog/models"
)

type CategoryRepo struct {
	db *gorm.DB
}

func NewCategoryRepo(db *gorm.DB) *CategoryRepo {
	return &CategoryRepo{db}
}

func (r *CategoryRepo) FindAll(ctx context.Context) ([]*models.Category, error) {
	var categories []*models.Category
	err := r.db.WithContext(ctx).Order("name").Find(&categories).Error
	return categories, err
}

// FindByName returns nil, nil when no category has that name.
func (r *CategoryRepo) FindByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// Upsert returns the category called name, creating it if needed. Two
// concurrent callers with the same name both end up with the same row.
func (r *CategoryRepo) Upsert(ctx context.Context, name string) (*models.Category, error) {
	if category, err := r.FindByName(ctx, name); err != nil || category != nil {
		return category, err
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&models.Category{Name: name}).Error
	if err != nil {
		return nil, err
	}

	category, err := r.FindByName(ctx, name)
	if err == nil && category == nil {
		err = gorm.ErrRecordNotFound
	}
	return category, err
}
