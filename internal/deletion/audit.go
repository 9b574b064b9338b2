package deletion

import (
	"context"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/mateoquiroga/agencydesk-backend/pkg/db/models"
	"github.com/mateoquiroga/agencydesk-backend/pkg/enums"
)

// AuditRecorder writes audit rows around destructive runs. Recording is
// best effort: a failed insert never blocks the deletion itself.
type AuditRecorder struct {
	db *gorm.DB
}

// NewAuditRecorder binds the recorder to the provided DB handle.
func NewAuditRecorder(db *gorm.DB) *AuditRecorder {
	return &AuditRecorder{db: db}
}

// Record inserts one audit row and returns the insert error for the caller
// to log.
func (a *AuditRecorder) Record(ctx context.Context, action enums.AuditAction, actorID *uuid.UUID, targetUserID uuid.UUID, reason *string, tables []string) error {
	row := models.AuditLog{
		ID:            uuid.New(),
		ActorID:       actorID,
		TargetUserID:  targetUserID,
		Action:        string(action),
		Reason:        reason,
		TablesTouched: pq.StringArray(tables),
	}
	return a.db.WithContext(ctx).Create(&row).Error
}
