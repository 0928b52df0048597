package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocumentRead is the compliance record: one row per (document, user) pair.
type DocumentRead struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	DocumentID uuid.UUID `json:"document_id" gorm:"type:uuid;not null;uniqueIndex:idx_document_reads_document_user"`
	UserID     uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_document_reads_document_user;index"`
	ReadAt     time.Time `json:"read_at" gorm:"not null"`
	QuizPassed *bool     `json:"quiz_passed"`
	QuizScore  *int      `json:"quiz_score"`
}

func (r *DocumentRead) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
