package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// Document is a policy document. Documents are never deleted, only archived.
type Document struct {
	ID              uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Title           string     `json:"title" gorm:"not null"`
	OriginalContent *string    `json:"original_content"`
	EnhancedContent *string    `json:"enhanced_content"`
	FileURL         *string    `json:"file_url"`
	FileName        *string    `json:"file_name"`
	Status          string     `json:"status" gorm:"index;not null;default:'draft'"` // draft, published, archived
	ReviewDate      *time.Time `json:"review_date" gorm:"type:date"`
	CreatedBy       uuid.UUID  `json:"created_by" gorm:"type:uuid;index"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.Status == "" {
		d.Status = StatusDraft
	}
	return nil
}

// Content returns the text shown to carers: the enhanced version when there is one.
func (d Document) Content() string {
	if d.EnhancedContent != nil && *d.EnhancedContent != "" {
		return *d.EnhancedContent
	}
	if d.OriginalContent != nil {
		return *d.OriginalContent
	}
	return ""
}

func IsValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}
