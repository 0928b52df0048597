package database

import (
	"context"
	"policyportal/models"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

// RecordRead upserts the compliance record for (document, user). A repeated
// confirmation overwrites read_at and the quiz fields of the existing row.
func (d DbInstance) RecordRead(ctx context.Context, read models.DocumentRead) error {
	return d.Db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "document_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"read_at", "quiz_passed", "quiz_score"}),
	}).Create(&read).Error
}

func (d DbInstance) ListReads(ctx context.Context) ([]models.DocumentRead, error) {
	var out []models.DocumentRead
	err := d.Db.WithContext(ctx).Find(&out).Error
	return out, err
}

func (d DbInstance) ListReadsForDocument(ctx context.Context, documentID uuid.UUID) ([]models.DocumentRead, error) {
	var out []models.DocumentRead
	err := d.Db.WithContext(ctx).Where("document_id = ?", documentID).Order("read_at desc").Find(&out).Error
	return out, err
}

func (d DbInstance) ListReadsForUser(ctx context.Context, userID uuid.UUID) ([]models.DocumentRead, error) {
	var out []models.DocumentRead
	err := d.Db.WithContext(ctx).Where("user_id = ?", userID).Find(&out).Error
	return out, err
}

// HasRead reports whether a compliance record exists for the pair.
func (d DbInstance) HasRead(ctx context.Context, documentID, userID uuid.UUID) (bool, error) {
	var count int64
	err := d.Db.WithContext(ctx).Model(&models.DocumentRead{}).
		Where("document_id = ? AND user_id = ?", documentID, userID).
		Count(&count).Error
	return count > 0, err
}
