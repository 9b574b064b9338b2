package messages

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mateoquiroga/agencydesk-backend/pkg/db/models"
)

func setupMessagesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`CREATE TABLE contact_messages (
	  id TEXT PRIMARY KEY,
	  name TEXT NOT NULL,
	  email TEXT NOT NULL,
	  body TEXT NOT NULL,
	  created_at DATETIME
	);`).Error)
	return db
}

func TestCreateAndList(t *testing.T) {
	db := setupMessagesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.ContactMessage{
		Name:  "Ada",
		Email: "ada@example.com",
		Body:  "Need a storefront revamp.",
	}))

	msgs, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "ada@example.com", msgs[0].Email)
}
