package projects

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mateoquiroga/agencydesk-backend/pkg/db/models"
)

// Repository manages project rows and their progress children.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repository to the provided DB handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListByUser returns a client's projects with updates and milestones preloaded,
// newest project first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	var projects []models.Project
	if err := r.db.WithContext(ctx).
		Preload("Updates", func(q *gorm.DB) *gorm.DB { return q.Order("created_at DESC") }).
		Preload("Milestones", func(q *gorm.DB) *gorm.DB { return q.Order("created_at ASC") }).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// Get loads one project scoped to its owner.
func (r *Repository) Get(ctx context.Context, userID, projectID uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).
		Preload("Updates").
		Preload("Milestones").
		Where("id = ? AND user_id = ?", projectID, userID).
		First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// AddUpdate appends a progress update to a project.
func (r *Repository) AddUpdate(ctx context.Context, update *models.ProjectUpdate) error {
	if update.ID == uuid.Nil {
		update.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(update).Error
}

// SetProgress rewrites a project's status and completion percentage.
func (r *Repository) SetProgress(ctx context.Context, projectID uuid.UUID, status string, progressPct int) error {
	return r.db.WithContext(ctx).
		Model(&models.Project{}).
		Where("id = ?", projectID).
		Updates(map[string]any{
			"status":       status,
			"progress_pct": progressPct,
		}).Error
}
