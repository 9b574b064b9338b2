package deletion

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/mateoquiroga/agencydesk-backend/pkg/enums"
	pkgerrors "github.com/mateoquiroga/agencydesk-backend/pkg/errors"
	"github.com/mateoquiroga/agencydesk-backend/pkg/logger"
	"github.com/mateoquiroga/agencydesk-backend/pkg/metrics"
)

// StepPolicy decides what a failed step does to the run.
type StepPolicy int

const (
	// PolicyBestEffort records the failure and keeps going. Dependent-table
	// steps use it so one stubborn table cannot strand the whole account.
	PolicyBestEffort StepPolicy = iota
	// PolicyCritical aborts the run. Only the root row uses it.
	PolicyCritical
)

// StepResult is the outcome of one executed step.
type StepResult struct {
	Table        string `json:"table"`
	RowsAffected int64  `json:"rows_affected"`
	Failed       bool   `json:"failed"`
}

// Report summarizes a full cascade run.
type Report struct {
	TargetUserID uuid.UUID    `json:"target_user_id"`
	RootDeleted  bool         `json:"root_deleted"`
	RowsDeleted  int64        `json:"rows_deleted"`
	Steps        []StepResult `json:"steps"`
	FailedTables []string     `json:"failed_tables,omitempty"`
}

// Runner executes the derived deletion plan against the database.
type Runner struct {
	db    *gorm.DB
	audit *AuditRecorder
	logg  *logger.Logger
	steps []Step
}

// NewRunner builds the plan from edges once and reuses it for every run.
func NewRunner(db *gorm.DB, audit *AuditRecorder, logg *logger.Logger, edges []Edge) (*Runner, error) {
	if db == nil {
		return nil, fmt.Errorf("db handle required")
	}
	if audit == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	steps, err := BuildPlan(edges)
	if err != nil {
		return nil, err
	}
	return &Runner{db: db, audit: audit, logg: logg, steps: steps}, nil
}

// PlannedTables returns the dependent tables in execution order.
func (r *Runner) PlannedTables() []string {
	tables := make([]string, 0, len(r.steps))
	for _, step := range r.steps {
		tables = append(tables, step.Table)
	}
	return tables
}

// DeleteUser removes the target user and everything they own. Dependent
// tables are best effort and their failures are aggregated into the report;
// the root row is critical, so the run only counts as deleted when the users
// row itself is gone.
func (r *Runner) DeleteUser(ctx context.Context, targetUserID uuid.UUID, actorID *uuid.UUID, reason *string) (*Report, error) {
	if err := r.ensureTargetExists(ctx, targetUserID); err != nil {
		return nil, err
	}

	if err := r.audit.Record(ctx, enums.AuditCascadeStarted, actorID, targetUserID, reason, r.PlannedTables()); err != nil {
		r.logg.Warn(ctx, "audit start row not recorded")
	}

	report, stepErrs := r.runSteps(ctx, targetUserID)

	res := r.db.WithContext(ctx).Exec("DELETE FROM users WHERE id = ?", targetUserID)
	if res.Error != nil {
		metrics.DeletionSteps.WithLabelValues(RootTable, "error").Inc()
		r.logg.Error(ctx, "root user delete failed", res.Error)
		return report, pkgerrors.
			Wrap(pkgerrors.CodeInternal, multierr.Append(stepErrs, res.Error), "delete user").
			WithDetails(map[string]any{
				"failed_step":   RootTable,
				"failed_tables": report.FailedTables,
				"cause":         res.Error.Error(),
			})
	}
	metrics.DeletionSteps.WithLabelValues(RootTable, "ok").Inc()
	report.RootDeleted = true
	report.RowsDeleted += res.RowsAffected

	if err := r.audit.Record(ctx, enums.AuditCascadeCompleted, actorID, targetUserID, reason, report.FailedTables); err != nil {
		r.logg.Warn(ctx, "audit completion row not recorded")
	}

	if stepErrs != nil {
		r.logg.Warn(ctx, fmt.Sprintf("cascade finished with %d failed tables", len(report.FailedTables)))
	}
	return report, nil
}

// WipeClientData runs the dependent-table plan but keeps the users row, for
// resetting an account without destroying the identity.
func (r *Runner) WipeClientData(ctx context.Context, targetUserID uuid.UUID, actorID *uuid.UUID, reason *string) (*Report, error) {
	if err := r.ensureTargetExists(ctx, targetUserID); err != nil {
		return nil, err
	}

	report, stepErrs := r.runSteps(ctx, targetUserID)

	if err := r.audit.Record(ctx, enums.AuditClientDataWiped, actorID, targetUserID, reason, report.FailedTables); err != nil {
		r.logg.Warn(ctx, "audit wipe row not recorded")
	}

	if stepErrs != nil {
		r.logg.Warn(ctx, fmt.Sprintf("wipe finished with %d failed tables", len(report.FailedTables)))
	}
	return report, nil
}

func (r *Runner) runSteps(ctx context.Context, targetUserID uuid.UUID) (*Report, error) {
	report := &Report{TargetUserID: targetUserID}
	var errs error

	for _, step := range r.steps {
		res := r.db.WithContext(ctx).Exec(step.SQL, targetUserID)
		result := StepResult{Table: step.Table, RowsAffected: res.RowsAffected}
		if res.Error != nil {
			result.Failed = true
			result.RowsAffected = 0
			report.FailedTables = append(report.FailedTables, step.Table)
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", step.Table, res.Error))
			metrics.DeletionSteps.WithLabelValues(step.Table, "error").Inc()
			r.logg.Warn(ctx, fmt.Sprintf("deletion step failed for table %s", step.Table))
		} else {
			report.RowsDeleted += res.RowsAffected
			metrics.DeletionSteps.WithLabelValues(step.Table, "ok").Inc()
		}
		report.Steps = append(report.Steps, result)
	}
	return report, errs
}

func (r *Runner) ensureTargetExists(ctx context.Context, targetUserID uuid.UUID) error {
	var count int64
	if err := r.db.WithContext(ctx).
		Table(RootTable).
		Where("id = ?", targetUserID).
		Count(&count).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up target user")
	}
	if count == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return nil
}
