package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	snaps "github.com/stellarsnaps/stellarsnaps-go"
	"github.com/stellarsnaps/stellarsnaps-go/internal/domain"
	"github.com/stellarsnaps/stellarsnaps-go/internal/infrastructure/database/models"
)

type RegistryRepository struct {
	db *gorm.DB
}

func NewRegistryRepository(db *gorm.DB) *RegistryRepository {
	return &RegistryRepository{db: db}
}

func (r *RegistryRepository) List(ctx context.Context) ([]snaps.RegistryEntry, error) {
	var rows []models.RegistryDomain
	err := r.db.WithContext(ctx).Order("domain").Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]snaps.RegistryEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, toEntry(row))
	}
	return out, nil
}

func (r *RegistryRepository) Get(ctx context.Context, domainName string) (snaps.RegistryEntry, error) {
	var row models.RegistryDomain
	err := r.db.WithContext(ctx).Where("domain = ?", domainName).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return snaps.RegistryEntry{}, domain.NotFoundError{Resource: "domain"}
		}
		return snaps.RegistryEntry{}, err
	}
	return toEntry(row), nil
}

func (r *RegistryRepository) Upsert(ctx context.Context, entry snaps.RegistryEntry) error {
	row := models.RegistryDomain{
		Domain:      entry.Domain,
		Status:      string(entry.Status),
		Name:        entry.Name,
		Description: entry.Description,
		Icon:        entry.Icon,
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "domain"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "name", "description", "icon"}),
	}).Create(&row).Error
}

func toEntry(row models.RegistryDomain) snaps.RegistryEntry {
	return snaps.RegistryEntry{
		Domain:      row.Domain,
		Status:      snaps.DomainStatus(row.Status),
		Name:        row.Name,
		Description: row.Description,
		Icon:        row.Icon,
	}
}
