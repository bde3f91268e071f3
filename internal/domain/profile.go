package domain

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the public profile row the auth provider keeps per user
type Profile struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Username  *string    `json:"username" db:"username"`
	FullName  *string    `json:"full_name" db:"full_name"`
	AvatarURL *string    `json:"avatar_url" db:"avatar_url"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}
