package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrSelfFollow is returned when a user tries to follow themselves.
var ErrSelfFollow = errors.New("users cannot subscribe to themselves")

// Follow is a subscription of FollowerID to the recipes of AuthorID.
type Follow struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	FollowerID uint      `json:"follower_id" gorm:"not null;index;uniqueIndex:idx_follower_author"`
	AuthorID   uint      `json:"author_id" gorm:"not null;index;uniqueIndex:idx_follower_author;check:chk_follow_not_self,follower_id <> author_id"`
	Follower   *User     `json:"-" gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
	Author     *User     `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time `json:"created_at"`
}

// BeforeCreate rejects self-subscriptions before they reach the database;
// the check constraint above covers writes that bypass the model.
func (f *Follow) BeforeCreate(tx *gorm.DB) error {
	if f.FollowerID == f.AuthorID {
		return ErrSelfFollow
	}
	return nil
}
