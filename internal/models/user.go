package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type User struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	Email     string `json:"email" gorm:"size:254;not null;uniqueIndex"`
	Username  string `json:"username" gorm:"size:150;not null;uniqueIndex"`
	FirstName string `json:"first_name" gorm:"size:150;not null"`
	LastName  string `json:"last_name" gorm:"size:150;not null"`
	Password  string `json:"-"` // bcrypt hash
	// FirebaseUID links the account to a Firebase identity; nil for local accounts.
	FirebaseUID *string `json:"-" gorm:"size:128;uniqueIndex"`
	// TokenVersion is embedded in issued tokens; bumping it revokes them all.
	TokenVersion int       `json:"-" gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

type CreateUserRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,max=150,username"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SetPasswordRequest struct {
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
	CurrentPassword string `json:"current_password" validate:"required"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID       uint   `json:"user_id"`
	Email        string `json:"email"`
	TokenVersion int    `json:"token_version"`
	jwt.RegisteredClaims
}
