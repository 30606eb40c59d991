package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/bradfitz/gomemcache/memcache"
	"gorm.io/gorm"

	snaps "github.com/stellarsnaps/stellarsnaps-go"
	"github.com/stellarsnaps/stellarsnaps-go/internal/domain"
	"github.com/stellarsnaps/stellarsnaps-go/internal/infrastructure/database/models"
)

// snapCacheTTL keeps snap reads off postgres for a minute; snaps rarely
// change after creation.
const snapCacheTTL = 60

type SnapRepository struct {
	db *gorm.DB
	mc *memcache.Client
}

func NewSnapRepository(db *gorm.DB, mc *memcache.Client) *SnapRepository {
	return &SnapRepository{db: db, mc: mc}
}

func (r *SnapRepository) Create(ctx context.Context, snap snaps.Snap) error {
	model := models.Snap{
		ID:          snap.ID,
		Creator:     snap.Creator,
		Title:       snap.Title,
		Description: snap.Description,
		ImageURL:    snap.ImageURL,
		Destination: snap.Destination,
		Amount:      snap.Amount,
		AssetCode:   snap.AssetCode,
		AssetIssuer: snap.AssetIssuer,
		Memo:        snap.Memo,
		MemoType:    snap.MemoType,
		Network:     snap.Network,
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *SnapRepository) Get(ctx context.Context, id string) (snaps.Snap, error) {
	cacheKey := "snap:" + id
	if r.mc != nil {
		if item, err := r.mc.Get(cacheKey); err == nil {
			var snap snaps.Snap
			if err := json.Unmarshal(item.Value, &snap); err == nil {
				return snap, nil
			}
		}
	}

	var model models.Snap
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return snaps.Snap{}, domain.NotFoundError{Resource: "snap"}
		}
		return snaps.Snap{}, err
	}

	snap := toSnap(model)

	if r.mc != nil {
		if data, err := json.Marshal(snap); err == nil {
			if err := r.mc.Set(&memcache.Item{Key: cacheKey, Value: data, Expiration: snapCacheTTL}); err != nil {
				slog.Warn("failed to cache snap",
					slog.String("error", err.Error()),
					slog.String("module", "repository"),
				)
			}
		}
	}

	return snap, nil
}

func (r *SnapRepository) ListByCreator(ctx context.Context, creator string) ([]snaps.Snap, error) {
	var rows []models.Snap
	err := r.db.WithContext(ctx).
		Where("creator = ?", creator).
		Order("c_date DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]snaps.Snap, 0, len(rows))
	for _, row := range rows {
		out = append(out, toSnap(row))
	}
	return out, nil
}

func (r *SnapRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Snap{}).Error
	if err != nil {
		return err
	}
	if r.mc != nil {
		_ = r.mc.Delete("snap:" + id)
	}
	return nil
}

func toSnap(model models.Snap) snaps.Snap {
	return snaps.Snap{
		ID:          model.ID,
		Creator:     model.Creator,
		Title:       model.Title,
		Description: model.Description,
		ImageURL:    model.ImageURL,
		Destination: model.Destination,
		Amount:      model.Amount,
		AssetCode:   model.AssetCode,
		AssetIssuer: model.AssetIssuer,
		Memo:        model.Memo,
		MemoType:    model.MemoType,
		Network:     model.Network,
		CreatedAt:   model.CDate,
		UpdatedAt:   model.MDate,
	}
}
