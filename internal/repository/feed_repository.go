package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/austinpray/feed-baby/internal/model"
)

// FeedRepository defines feed persistence operations.
type FeedRepository interface {
	Create(ctx context.Context, feed *model.Feed) error
	FindByID(ctx context.Context, id uint) (*model.Feed, error)
	List(ctx context.Context, offset, limit int) ([]model.Feed, error)
	ListAll(ctx context.Context) ([]model.Feed, error)
	Count(ctx context.Context) (int64, error)
	// Delete removes a feed and reports how many rows were affected, so the
	// caller can distinguish "deleted" from "was never there".
	Delete(ctx context.Context, id uint) (int64, error)
}

type feedRepository struct {
	db *gorm.DB
}

// NewFeedRepository builds a GORM-backed repository.
func NewFeedRepository(db *gorm.DB) FeedRepository {
	return &feedRepository{db: db}
}

func (r *feedRepository) Create(ctx context.Context, feed *model.Feed) error {
	return r.db.WithContext(ctx).Create(feed).Error
}

func (r *feedRepository) FindByID(ctx context.Context, id uint) (*model.Feed, error) {
	var feed model.Feed
	if err := r.db.WithContext(ctx).First(&feed, id).Error; err != nil {
		return nil, err
	}
	return &feed, nil
}

func (r *feedRepository) List(ctx context.Context, offset, limit int) ([]model.Feed, error) {
	var feeds []model.Feed
	if err := r.db.WithContext(ctx).Order("fed_at DESC").Offset(offset).Limit(limit).Find(&feeds).Error; err != nil {
		return nil, err
	}
	return feeds, nil
}

func (r *feedRepository) ListAll(ctx context.Context) ([]model.Feed, error) {
	var feeds []model.Feed
	if err := r.db.WithContext(ctx).Order("fed_at DESC").Find(&feeds).Error; err != nil {
		return nil, err
	}
	return feeds, nil
}

func (r *feedRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Feed{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *feedRepository) Delete(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&model.Feed{}, id)
	return res.RowsAffected, res.Error
}
