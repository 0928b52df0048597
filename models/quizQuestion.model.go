package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// QuizOptionCount is the number of answer options every question carries.
const QuizOptionCount = 4

// QuizQuestion is one knowledge-check question of a document, ordered by OrderIndex.
type QuizQuestion struct {
	ID           uuid.UUID                   `json:"id" gorm:"type:uuid;primaryKey"`
	DocumentID   uuid.UUID                   `json:"document_id" gorm:"type:uuid;not null;index"`
	Question     string                      `json:"question" gorm:"not null"`
	Options      datatypes.JSONSlice[string] `json:"options"`
	CorrectIndex int                         `json:"correct_index"`
	OrderIndex   int                         `json:"order_index" gorm:"default:0"`
}

func (q *QuizQuestion) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}
