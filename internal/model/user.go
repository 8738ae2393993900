package model

import (
	"time"

	"github.com/google/uuid"
)

// Roles for the operations dashboard.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleTeller  = "teller"
)

// User statuses. Deactivation is the common removal path; hard delete exists
// only as an explicit admin operation.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// User stores registered identities with role-based access.
// Email is the login key — unique, exact-match, case-sensitive.
// PasswordHash is set only through the credential hasher and never appears in
// any outward-facing representation.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         string    `gorm:"type:varchar(20);not null" json:"role"`
	Status       string    `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsActive reports whether the user may authenticate and be resolved.
func (u *User) IsActive() bool { return u.Status == StatusActive }
