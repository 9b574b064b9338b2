package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mateoquiroga/agencydesk-backend/pkg/db/models"
	"github.com/mateoquiroga/agencydesk-backend/pkg/enums"
)

// Repository manages identity rows for the auth flows.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repository to the provided DB handle. Register
// passes a transaction here so the whole onboarding commits atomically.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByEmail loads one user by email, case-insensitively.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	normalized := strings.ToLower(strings.TrimSpace(email))
	if err := r.db.WithContext(ctx).First(&user, "LOWER(email) = ?", normalized).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateLastLogin stamps the user's last successful login.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// FindRole returns the user's assigned role, defaulting to client when no
// assignment row exists.
func (r *Repository) FindRole(ctx context.Context, userID uuid.UUID) (enums.UserRole, error) {
	var assignment models.RoleAssignment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		First(&assignment).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return enums.RoleClient, nil
		}
		return "", err
	}

	role := enums.UserRole(assignment.Role)
	if !role.IsValid() {
		return enums.RoleClient, nil
	}
	return role, nil
}

// CreateUser inserts a new identity row.
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(user).Error
}

// CreateRoleAssignment grants the user a role.
func (r *Repository) CreateRoleAssignment(ctx context.Context, userID uuid.UUID, role enums.UserRole) error {
	return r.db.WithContext(ctx).Create(&models.RoleAssignment{
		ID:     uuid.New(),
		UserID: userID,
		Role:   string(role),
	}).Error
}

// CreateProfile attaches the company profile to a new user.
func (r *Repository) CreateProfile(ctx context.Context, profile *models.Profile) error {
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(profile).Error
}

// CreatePrivacySettings seeds the default privacy row for a new user.
func (r *Repository) CreatePrivacySettings(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Create(&models.PrivacySettings{
		ID:     uuid.New(),
		UserID: userID,
	}).Error
}
