package database

import (
	"context"
	"errors"
	"policyportal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (d DbInstance) CreateDocument(ctx context.Context, doc *models.Document) error {
	return d.Db.WithContext(ctx).Create(doc).Error
}

func (d DbInstance) GetDocument(ctx context.Context, id uuid.UUID) (models.Document, error) {
	var doc models.Document
	err := d.Db.WithContext(ctx).Where("id = ?", id).First(&doc).Error
	return doc, err
}

// GetPublishedDocument only finds documents carers are allowed to read.
func (d DbInstance) GetPublishedDocument(ctx context.Context, id uuid.UUID) (models.Document, error) {
	var doc models.Document
	err := d.Db.WithContext(ctx).Where("id = ? AND status = ?", id, models.StatusPublished).First(&doc).Error
	return doc, err
}

// ListDocuments returns all documents, newest first.
func (d DbInstance) ListDocuments(ctx context.Context) ([]models.Document, error) {
	var out []models.Document
	err := d.Db.WithContext(ctx).Order("created_at desc").Find(&out).Error
	return out, err
}

// ListPublishedDocuments returns published documents ordered by title.
func (d DbInstance) ListPublishedDocuments(ctx context.Context) ([]models.Document, error) {
	var out []models.Document
	err := d.Db.WithContext(ctx).Where("status = ?", models.StatusPublished).Order("title asc").Find(&out).Error
	return out, err
}

// ErrStatusChanged means the document no longer had the expected status when
// the update ran.
var ErrStatusChanged = errors.New("document status changed concurrently")

// UpdateDocumentStatus moves the document from one status to another. The
// write only applies while the stored status still equals from.
func (d DbInstance) UpdateDocumentStatus(ctx context.Context, id uuid.UUID, from, to string) (models.Document, error) {
	var doc models.Document
	err := d.Db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Document{}).
			Where("id = ? AND status = ?", id, from).
			Update("status", to)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStatusChanged
		}
		return tx.Where("id = ?", id).First(&doc).Error
	})
	return doc, err
}

func (d DbInstance) SaveEnhancedContent(ctx context.Context, id uuid.UUID, text string) error {
	_, err := d.UpdateDocument(ctx, id, map[string]interface{}{"enhanced_content": text})
	return err
}

// UpdateDocument applies the given column updates and reloads the row.
func (d DbInstance) UpdateDocument(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (models.Document, error) {
	var doc models.Document
	err := d.Db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Document{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("id = ?", id).First(&doc).Error
	})
	return doc, err
}
