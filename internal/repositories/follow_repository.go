package repositories

import (
	"context"

	"github.com/anonto42/foodgram/backend/internal/models"
	"gorm.io/gorm"
)

// FollowRepository defines the interface for follow data operations
type FollowRepository interface {
	CreateFollow(ctx context.Context, follow *models.Follow) error
	DeleteFollow(ctx context.Context, followerID, authorID uint) error
	IsFollowing(ctx context.Context, followerID, authorID uint) (bool, error)
	FollowedAuthorIDs(ctx context.Context, followerID uint, authorIDs []uint) (map[uint]bool, error)
	ListFollowing(ctx context.Context, followerID uint, offset, limit int) ([]models.User, int64, error)
}

// PostgresFollowRepository implements FollowRepository for PostgreSQL
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

// CreateFollow inserts the pair. An existing pair yields ErrDuplicate and a
// self-follow yields models.ErrSelfFollow.
func (r *PostgresFollowRepository) CreateFollow(ctx context.Context, follow *models.Follow) error {
	return translateError(r.db.WithContext(ctx).Create(follow).Error)
}

// DeleteFollow removes the pair if present. Removing a missing pair is not an
// error.
func (r *PostgresFollowRepository) DeleteFollow(ctx context.Context, followerID, authorID uint) error {
	return r.db.WithContext(ctx).
		Where("follower_id = ? AND author_id = ?", followerID, authorID).
		Delete(&models.Follow{}).Error
}

func (r *PostgresFollowRepository) IsFollowing(ctx context.Context, followerID, authorID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND author_id = ?", followerID, authorID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FollowedAuthorIDs reports which of authorIDs the follower is subscribed to.
func (r *PostgresFollowRepository) FollowedAuthorIDs(ctx context.Context, followerID uint, authorIDs []uint) (map[uint]bool, error) {
	result := make(map[uint]bool)
	if len(authorIDs) == 0 {
		return result, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND author_id IN ?", followerID, authorIDs).
		Pluck("author_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}

// ListFollowing returns one page of the authors the follower subscribes to,
// most recent subscription first.
func (r *PostgresFollowRepository) ListFollowing(ctx context.Context, followerID uint, offset, limit int) ([]models.User, int64, error) {
	db := r.db.WithContext(ctx)
	var total int64
	if err := db.Model(&models.Follow{}).Where("follower_id = ?", followerID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	err := db.Model(&models.User{}).
		Joins("JOIN follows ON follows.author_id = users.id").
		Where("follows.follower_id = ?", followerID).
		Order("follows.id DESC").
		Offset(offset).Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
