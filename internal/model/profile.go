package model

import (
	"time"

	"github.com/google/uuid"
)

// Profile id 與登入身分 (JWT sub) 相同
type Profile struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	FullName  *string   `json:"full_name" db:"full_name"`
	AvatarURL *string   `json:"avatar_url" db:"avatar_url"`
	Bio       *string   `json:"bio" db:"bio"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type UpdateProfileParams struct {
	FullName  *string
	AvatarURL *string
	Bio       *string
}

func (p UpdateProfileParams) IsEmpty() bool {
	return p.FullName == nil && p.AvatarURL == nil && p.Bio == nil
}
