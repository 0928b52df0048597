package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleAdmin = "admin"
	RoleCarer = "carer"
)

// Profile is the identity record of an authenticated user. Its ID is the
// identity provider subject; roles are pre-provisioned.
type Profile struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	FullName  *string   `json:"full_name"`
	Role      string    `json:"role" gorm:"index;not null;default:'carer'"`
	CreatedAt time.Time `json:"created_at"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// DisplayName falls back to the email address when no name is set.
func (p Profile) DisplayName() string {
	if p.FullName != nil && *p.FullName != "" {
		return *p.FullName
	}
	return p.Email
}

func (p Profile) IsAdmin() bool { return p.Role == RoleAdmin }
func (p Profile) IsCarer() bool { return p.Role == RoleCarer }
