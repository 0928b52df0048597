package database

import (
	"context"
	"errors"
	"policyportal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (d DbInstance) GetProfile(ctx context.Context, id uuid.UUID) (models.Profile, error) {
	var p models.Profile
	err := d.Db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	return p, err
}

// ListCarers returns every carer profile ordered by name.
func (d DbInstance) ListCarers(ctx context.Context) ([]models.Profile, error) {
	return d.listByRole(ctx, models.RoleCarer)
}

func (d DbInstance) ListAdmins(ctx context.Context) ([]models.Profile, error) {
	return d.listByRole(ctx, models.RoleAdmin)
}

func (d DbInstance) listByRole(ctx context.Context, role string) ([]models.Profile, error) {
	var out []models.Profile
	err := d.Db.WithContext(ctx).
		Where("role = ?", role).
		Order("full_name asc").Order("email asc").
		Find(&out).Error
	return out, err
}

func (d DbInstance) UpdateProfileName(ctx context.Context, id uuid.UUID, fullName *string) (models.Profile, error) {
	var p models.Profile
	err := d.Db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Profile{}).Where("id = ?", id).Update("full_name", fullName).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).First(&p).Error
	})
	return p, err
}

// UpsertProfile inserts or updates a provisioned profile keyed by id and
// reports whether a new row was created.
func (d DbInstance) UpsertProfile(ctx context.Context, p models.Profile) (bool, error) {
	var existing models.Profile
	err := d.Db.WithContext(ctx).Where("id = ?", p.ID).First(&existing).Error
	inserted := errors.Is(err, gorm.ErrRecordNotFound)
	if err != nil && !inserted {
		return false, err
	}
	err = d.Db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "full_name", "role"}),
	}).Create(&p).Error
	return inserted, err
}
