package projects

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mateoquiroga/agencydesk-backend/pkg/db/models"
)

func setupProjectsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := []string{
		`CREATE TABLE projects (
		  id TEXT PRIMARY KEY,
		  user_id TEXT NOT NULL,
		  name TEXT NOT NULL,
		  status TEXT NOT NULL DEFAULT 'in_progress',
		  progress_pct INTEGER NOT NULL DEFAULT 0,
		  created_at DATETIME,
		  updated_at DATETIME
		);`,
		`CREATE TABLE project_updates (
		  id TEXT PRIMARY KEY,
		  project_id TEXT NOT NULL,
		  title TEXT NOT NULL,
		  body TEXT,
		  created_at DATETIME
		);`,
		`CREATE TABLE project_milestones (
		  id TEXT PRIMARY KEY,
		  project_id TEXT NOT NULL,
		  title TEXT NOT NULL,
		  due_at DATETIME,
		  done_at DATETIME,
		  created_at DATETIME
		);`,
	}
	for _, stmt := range schema {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func TestListByUser(t *testing.T) {
	db := setupProjectsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	otherID := uuid.New()
	projectID := uuid.New()

	require.NoError(t, db.Exec(`INSERT INTO projects (id, user_id, name) VALUES (?, ?, ?)`, projectID, userID, "Corporate Site").Error)
	require.NoError(t, db.Exec(`INSERT INTO projects (id, user_id, name) VALUES (?, ?, ?)`, uuid.New(), otherID, "Someone Else").Error)

	require.NoError(t, repo.AddUpdate(ctx, &models.ProjectUpdate{ProjectID: projectID, Title: "Kickoff done"}))

	projects, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "Corporate Site", projects[0].Name)
	require.Len(t, projects[0].Updates, 1)
	assert.Equal(t, "Kickoff done", projects[0].Updates[0].Title)
}

func TestSetProgress(t *testing.T) {
	db := setupProjectsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	projectID := uuid.New()
	require.NoError(t, db.Exec(`INSERT INTO projects (id, user_id, name) VALUES (?, ?, ?)`, projectID, userID, "Corporate Site").Error)

	require.NoError(t, repo.SetProgress(ctx, projectID, "review", 80))

	project, err := repo.Get(ctx, userID, projectID)
	require.NoError(t, err)
	assert.Equal(t, "review", project.Status)
	assert.Equal(t, 80, project.ProgressPct)
}
