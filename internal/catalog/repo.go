package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mateoquiroga/agencydesk-backend/pkg/db/models"
)

// Repository exposes pack and service-addon persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListActivePacks returns the packs currently offered, newest first.
func (r *Repository) ListActivePacks(ctx context.Context) ([]models.Pack, error) {
	var packs []models.Pack
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&packs).Error; err != nil {
		return nil, err
	}
	return packs, nil
}

// ListActiveServices returns the add-on services currently offered.
func (r *Repository) ListActiveServices(ctx context.Context) ([]models.ServiceAddon, error) {
	var services []models.ServiceAddon
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}

// GetPack loads a single pack by id.
func (r *Repository) GetPack(ctx context.Context, id uuid.UUID) (*models.Pack, error) {
	var pack models.Pack
	if err := r.db.WithContext(ctx).First(&pack, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &pack, nil
}

// GetService loads a single service addon by id.
func (r *Repository) GetService(ctx context.Context, id uuid.UUID) (*models.ServiceAddon, error) {
	var service models.ServiceAddon
	if err := r.db.WithContext(ctx).First(&service, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &service, nil
}
