package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an admin identity created on first Google sign-in. Only emails on
// the allow-list ever reach this table.
type User struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Email  string  `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Name   string  `gorm:"type:varchar(255)" json:"name"`
	Avatar *string `gorm:"type:varchar(1024)" json:"avatar,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
