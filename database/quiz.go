package database

import (
	"context"
	"policyportal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListQuizQuestions returns the document's quiz in order.
func (d DbInstance) ListQuizQuestions(ctx context.Context, documentID uuid.UUID) ([]models.QuizQuestion, error) {
	var out []models.QuizQuestion
	err := d.Db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("order_index asc").
		Find(&out).Error
	return out, err
}

// ReplaceQuiz swaps the document's question set inside one transaction, so
// readers see either the old set or the new one, never an empty gap.
// Order indices are reassigned from the slice position.
func (d DbInstance) ReplaceQuiz(ctx context.Context, documentID uuid.UUID, questions []models.QuizQuestion) ([]models.QuizQuestion, error) {
	saved := make([]models.QuizQuestion, len(questions))
	for i, q := range questions {
		saved[i] = models.QuizQuestion{
			DocumentID:   documentID,
			Question:     q.Question,
			Options:      q.Options,
			CorrectIndex: q.CorrectIndex,
			OrderIndex:   i,
		}
	}

	err := d.Db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", documentID).Delete(&models.QuizQuestion{}).Error; err != nil {
			return err
		}
		if len(saved) == 0 {
			return nil
		}
		return tx.Create(&saved).Error
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// CountQuizQuestions returns question counts keyed by document id.
func (d DbInstance) CountQuizQuestions(ctx context.Context) (map[uuid.UUID]int, error) {
	var rows []struct {
		DocumentID uuid.UUID
		Total      int
	}
	err := d.Db.WithContext(ctx).Model(&models.QuizQuestion{}).
		Select("document_id, COUNT(*) AS total").
		Group("document_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]int, len(rows))
	for _, r := range rows {
		out[r.DocumentID] = r.Total
	}
	return out, nil
}
