package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mateoquiroga/agencydesk-backend/internal/deletion"
	"github.com/mateoquiroga/agencydesk-backend/pkg/enums"
	pkgerrors "github.com/mateoquiroga/agencydesk-backend/pkg/errors"
	"github.com/mateoquiroga/agencydesk-backend/pkg/logger"
)

// protectedEmails are agency-operator accounts no admin tooling may touch.
var protectedEmails = map[string]struct{}{
	"soporte@agencydesk.io":  {},
	"sistemas@agencydesk.io": {},
}

// EmailCheck is the result of the admin filter's check_email action.
type EmailCheck struct {
	Email     string `json:"email"`
	Exists    bool   `json:"exists"`
	Protected bool   `json:"protected"`
}

type sessionRevoker interface {
	Revoke(ctx context.Context, sessionID string) error
}

type dataWiper interface {
	WipeClientData(ctx context.Context, targetUserID uuid.UUID, actorID *uuid.UUID, reason *string) (*deletion.Report, error)
}

type auditRecorder interface {
	Record(ctx context.Context, action enums.AuditAction, actorID *uuid.UUID, targetUserID uuid.UUID, reason *string, tables []string) error
}

// Service covers self-service account removal and the admin user filter.
type Service interface {
	SoftDeleteAccount(ctx context.Context, userID uuid.UUID, sessionID string, reason *string) error
	CheckEmail(ctx context.Context, email string) (*EmailCheck, error)
	RemoveClientData(ctx context.Context, email string, actorID *uuid.UUID) (*deletion.Report, error)
}

type service struct {
	repo     UserRepository
	sessions sessionRevoker
	wiper    dataWiper
	audit    auditRecorder
	logg     *logger.Logger
}

// NewService wires the accounts service.
func NewService(repo UserRepository, sessions sessionRevoker, wiper dataWiper, audit auditRecorder, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session revoker required")
	}
	if wiper == nil {
		return nil, fmt.Errorf("data wiper required")
	}
	if audit == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, sessions: sessions, wiper: wiper, audit: audit, logg: logg}, nil
}

// SoftDeleteAccount marks the caller's user row deleted and signs them out.
// Dependent rows stay; only the admin cascade removes data.
func (s *service) SoftDeleteAccount(ctx context.Context, userID uuid.UUID, sessionID string, reason *string) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if user.DeletedAt != nil {
		return pkgerrors.New(pkgerrors.CodeConflict, "account already deleted")
	}

	if err := s.repo.SoftDelete(ctx, userID, reason); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "soft delete user")
	}

	if err := s.audit.Record(ctx, enums.AuditAccountSoftDeleted, &userID, userID, reason, nil); err != nil {
		s.logg.Warn(ctx, "soft delete audit row not recorded")
	}

	if sessionID != "" {
		if err := s.sessions.Revoke(ctx, sessionID); err != nil {
			// The account is already marked deleted; a stale session simply
			// expires on its own TTL.
			s.logg.Warn(ctx, "session revoke failed after soft delete")
		}
	}
	return nil
}

// CheckEmail reports whether an email belongs to an existing user and whether
// it is protected from admin tooling.
func (s *service) CheckEmail(ctx context.Context, email string) (*EmailCheck, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	check := &EmailCheck{Email: normalized, Protected: isProtected(normalized)}

	_, err := s.repo.FindByEmail(ctx, normalized)
	switch {
	case err == nil:
		check.Exists = true
	case errors.Is(err, gorm.ErrRecordNotFound):
		check.Exists = false
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up email")
	}
	return check, nil
}

// RemoveClientData wipes everything a client owns while keeping their
// identity row. Protected operator accounts are refused outright.
func (s *service) RemoveClientData(ctx context.Context, email string, actorID *uuid.UUID) (*deletion.Report, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if isProtected(normalized) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account is protected")
	}

	user, err := s.repo.FindByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up email")
	}

	return s.wiper.WipeClientData(ctx, user.ID, actorID, nil)
}

func isProtected(email string) bool {
	_, ok := protectedEmails[email]
	return ok
}

// IsProtectedEmail exposes the filter for other packages (admin cascade guard).
func IsProtectedEmail(email string) bool {
	return isProtected(strings.ToLower(strings.TrimSpace(email)))
}
