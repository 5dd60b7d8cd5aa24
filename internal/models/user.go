package models

import (
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Username         string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email            string    `gorm:"size:254;uniqueIndex;not null" json:"email"`
	FirstName        string    `gorm:"size:150" json:"first_name"`
	LastName         string    `gorm:"size:150" json:"last_name"`
	Bio              string    `gorm:"type:text" json:"bio"`
	Role             Role      `gorm:"size:20;default:'user';not null" json:"role"`
	IsSuperuser      bool      `gorm:"default:false" json:"-"`
	Password         string    `gorm:"size:128;not null" json:"-"` // never usable, see services.UnusablePassword
	ConfirmationCode *string   `gorm:"size:10" json:"-"`
	IsConfirmed      bool      `gorm:"default:false" json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
