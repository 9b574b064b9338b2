package deletion

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgerrors "github.com/mateoquiroga/agencydesk-backend/pkg/errors"
	"github.com/mateoquiroga/agencydesk-backend/pkg/logger"
)

var testEdges = []Edge{
	{Table: "carts", FKColumn: "user_id", Parent: RootTable},
	{Table: "cart_items", FKColumn: "cart_id", Parent: "carts"},
	{Table: "projects", FKColumn: "user_id", Parent: RootTable},
	{Table: "project_updates", FKColumn: "project_id", Parent: "projects"},
}

func setupDeletionTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := []string{
		`CREATE TABLE users (id TEXT PRIMARY KEY, email TEXT, created_at DATETIME);`,
		`CREATE TABLE carts (id TEXT PRIMARY KEY, user_id TEXT, created_at DATETIME);`,
		`CREATE TABLE cart_items (id TEXT PRIMARY KEY, cart_id TEXT, created_at DATETIME);`,
		`CREATE TABLE projects (id TEXT PRIMARY KEY, user_id TEXT, created_at DATETIME);`,
		`CREATE TABLE project_updates (id TEXT PRIMARY KEY, project_id TEXT, created_at DATETIME);`,
		`CREATE TABLE audit_logs (
		  id TEXT PRIMARY KEY,
		  actor_id TEXT,
		  target_user_id TEXT,
		  action TEXT,
		  reason TEXT,
		  tables_touched TEXT,
		  created_at DATETIME
		);`,
	}
	for _, stmt := range schema {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedUserGraph(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()

	userID := uuid.New()
	cartID := uuid.New()
	projectID := uuid.New()

	require.NoError(t, db.Exec(`INSERT INTO users (id, email) VALUES (?, ?)`, userID, userID.String()+"@example.com").Error)
	require.NoError(t, db.Exec(`INSERT INTO carts (id, user_id) VALUES (?, ?)`, cartID, userID).Error)
	require.NoError(t, db.Exec(`INSERT INTO cart_items (id, cart_id) VALUES (?, ?)`, uuid.New(), cartID).Error)
	require.NoError(t, db.Exec(`INSERT INTO cart_items (id, cart_id) VALUES (?, ?)`, uuid.New(), cartID).Error)
	require.NoError(t, db.Exec(`INSERT INTO projects (id, user_id) VALUES (?, ?)`, projectID, userID).Error)
	require.NoError(t, db.Exec(`INSERT INTO project_updates (id, project_id) VALUES (?, ?)`, uuid.New(), projectID).Error)
	return userID
}

func countRows(t *testing.T, db *gorm.DB, table string, column string, id uuid.UUID) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Table(table).Where(column+" = ?", id).Count(&count).Error)
	return count
}

func newTestRunner(t *testing.T, db *gorm.DB, edges []Edge) *Runner {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	runner, err := NewRunner(db, NewAuditRecorder(db), logg, edges)
	require.NoError(t, err)
	return runner
}

func TestDeleteUserRemovesOwnedRowsOnly(t *testing.T) {
	db := setupDeletionTestDB(t)
	runner := newTestRunner(t, db, testEdges)

	target := seedUserGraph(t, db)
	bystander := seedUserGraph(t, db)

	report, err := runner.DeleteUser(context.Background(), target, nil, nil)
	require.NoError(t, err)

	assert.True(t, report.RootDeleted)
	assert.Empty(t, report.FailedTables)
	// 1 cart + 2 items + 1 project + 1 update + the users row.
	assert.Equal(t, int64(6), report.RowsDeleted)

	assert.Equal(t, int64(0), countRows(t, db, "users", "id", target))
	assert.Equal(t, int64(0), countRows(t, db, "carts", "user_id", target))
	assert.Equal(t, int64(0), countRows(t, db, "projects", "user_id", target))

	assert.Equal(t, int64(1), countRows(t, db, "users", "id", bystander))
	assert.Equal(t, int64(1), countRows(t, db, "carts", "user_id", bystander))
	assert.Equal(t, int64(1), countRows(t, db, "projects", "user_id", bystander))
}

func TestDeleteUserWritesAuditTrail(t *testing.T) {
	db := setupDeletionTestDB(t)
	runner := newTestRunner(t, db, testEdges)

	actorID := uuid.New()
	reason := "gdpr request"
	target := seedUserGraph(t, db)

	_, err := runner.DeleteUser(context.Background(), target, &actorID, &reason)
	require.NoError(t, err)

	var actions []string
	require.NoError(t, db.Table("audit_logs").
		Where("target_user_id = ?", target).
		Order("created_at").
		Pluck("action", &actions).Error)
	assert.Equal(t, []string{"cascade_delete_started", "cascade_delete_completed"}, actions)
}

func TestDeleteUserNotFound(t *testing.T) {
	db := setupDeletionTestDB(t)
	runner := newTestRunner(t, db, testEdges)

	_, err := runner.DeleteUser(context.Background(), uuid.New(), nil, nil)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestDeleteUserBestEffortSurvivesFailingStep(t *testing.T) {
	db := setupDeletionTestDB(t)

	// ghosts has no backing table, so its step always fails.
	edges := append([]Edge{
		{Table: "ghosts", FKColumn: "user_id", Parent: RootTable},
	}, testEdges...)
	runner := newTestRunner(t, db, edges)

	target := seedUserGraph(t, db)

	report, err := runner.DeleteUser(context.Background(), target, nil, nil)
	require.NoError(t, err)

	assert.True(t, report.RootDeleted)
	assert.Equal(t, []string{"ghosts"}, report.FailedTables)
	assert.Equal(t, int64(0), countRows(t, db, "users", "id", target))
}

func TestDeleteUserRootFailureNamesStep(t *testing.T) {
	db := setupDeletionTestDB(t)
	runner := newTestRunner(t, db, testEdges)

	target := seedUserGraph(t, db)

	// Abort every delete on the root table so the critical step fails after
	// the dependent steps have already run.
	require.NoError(t, db.Exec(`CREATE TRIGGER block_user_delete BEFORE DELETE ON users
		BEGIN SELECT RAISE(ABORT, 'users row is pinned'); END;`).Error)

	report, err := runner.DeleteUser(context.Background(), target, nil, nil)
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInternal, typed.Code())

	details, ok := typed.Details().(map[string]any)
	require.True(t, ok, "root failure must carry step details")
	assert.Equal(t, RootTable, details["failed_step"])
	assert.Contains(t, details["cause"], "pinned")

	// No undo: the dependents are gone, only the root row survives.
	require.NotNil(t, report)
	assert.False(t, report.RootDeleted)
	assert.Equal(t, int64(1), countRows(t, db, "users", "id", target))
	assert.Equal(t, int64(0), countRows(t, db, "carts", "user_id", target))
	assert.Equal(t, int64(0), countRows(t, db, "projects", "user_id", target))
}

func TestWipeClientDataKeepsRootRow(t *testing.T) {
	db := setupDeletionTestDB(t)
	runner := newTestRunner(t, db, testEdges)

	target := seedUserGraph(t, db)

	report, err := runner.WipeClientData(context.Background(), target, nil, nil)
	require.NoError(t, err)

	assert.False(t, report.RootDeleted)
	assert.Equal(t, int64(5), report.RowsDeleted)
	assert.Equal(t, int64(1), countRows(t, db, "users", "id", target))
	assert.Equal(t, int64(0), countRows(t, db, "carts", "user_id", target))

	var actions []string
	require.NoError(t, db.Table("audit_logs").
		Where("target_user_id = ?", target).
		Pluck("action", &actions).Error)
	assert.Equal(t, []string{"client_data_wiped"}, actions)
}

func TestPlannedTablesExecutionOrder(t *testing.T) {
	db := setupDeletionTestDB(t)
	runner := newTestRunner(t, db, testEdges)

	assert.Equal(t, []string{"cart_items", "project_updates", "carts", "projects"}, runner.PlannedTables())
}
