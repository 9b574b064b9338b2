package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mateoquiroga/agencydesk-backend/pkg/db/models"
	"github.com/mateoquiroga/agencydesk-backend/pkg/enums"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	carts := `
CREATE TABLE IF NOT EXISTS carts (
  id TEXT PRIMARY KEY,
  user_id TEXT,
  session_token TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	cartItems := `
CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  item_type TEXT NOT NULL,
  product_id TEXT NOT NULL,
  product_name TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 1,
  unit_price_cents INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(carts).Error)
	require.NoError(t, db.Exec(cartItems).Error)
	return db
}

func TestFindOrCreateByOwner(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	owner := AnonymousOwner(uuid.NewString())

	created, err := repo.FindOrCreateByOwner(ctx, owner)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)

	again, err := repo.FindOrCreateByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
}

func TestFindOrCreateByOwnerForUser(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()

	created, err := repo.FindOrCreateByOwner(ctx, UserOwner(userID))
	require.NoError(t, err)
	require.NotNil(t, created.UserID)
	assert.Equal(t, userID, *created.UserID)

	again, err := repo.FindOrCreateByOwner(ctx, UserOwner(userID))
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
}

func TestItemLifecycle(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	cart, err := repo.FindOrCreateByOwner(ctx, AnonymousOwner(uuid.NewString()))
	require.NoError(t, err)

	packID := uuid.New()
	item := &models.CartItem{
		CartID:         cart.ID,
		ItemType:       enums.ItemTypePack,
		ProductID:      packID,
		ProductName:    "Landing Pack",
		Quantity:       1,
		UnitPriceCents: 10000,
	}
	require.NoError(t, repo.CreateItem(ctx, item))
	require.NotEqual(t, uuid.Nil, item.ID)

	found, err := repo.FindItemByProduct(ctx, cart.ID, enums.ItemTypePack, packID)
	require.NoError(t, err)
	assert.Equal(t, item.ID, found.ID)

	require.NoError(t, repo.UpdateItemQuantity(ctx, item.ID, 3))
	updated, err := repo.FindItem(ctx, cart.ID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Quantity)

	loaded, err := repo.FindByOwner(ctx, Owner{SessionToken: *cart.SessionToken})
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)

	require.NoError(t, repo.DeleteItem(ctx, item.ID))
	_, err = repo.FindItem(ctx, cart.ID, item.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteItemsByTypeAndCount(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	cart, err := repo.FindOrCreateByOwner(ctx, AnonymousOwner(uuid.NewString()))
	require.NoError(t, err)

	require.NoError(t, repo.CreateItem(ctx, &models.CartItem{
		CartID: cart.ID, ItemType: enums.ItemTypePack, ProductID: uuid.New(), ProductName: "Pack", Quantity: 1,
	}))
	require.NoError(t, repo.CreateItem(ctx, &models.CartItem{
		CartID: cart.ID, ItemType: enums.ItemTypeService, ProductID: uuid.New(), ProductName: "SEO", Quantity: 1,
	}))
	require.NoError(t, repo.CreateItem(ctx, &models.CartItem{
		CartID: cart.ID, ItemType: enums.ItemTypeService, ProductID: uuid.New(), ProductName: "Hosting", Quantity: 1,
	}))

	services, err := repo.CountByType(ctx, cart.ID, enums.ItemTypeService)
	require.NoError(t, err)
	assert.Equal(t, int64(2), services)

	require.NoError(t, repo.DeleteItemsByType(ctx, cart.ID, enums.ItemTypeService))

	services, err = repo.CountByType(ctx, cart.ID, enums.ItemTypeService)
	require.NoError(t, err)
	assert.Equal(t, int64(0), services)

	packs, err := repo.CountByType(ctx, cart.ID, enums.ItemTypePack)
	require.NoError(t, err)
	assert.Equal(t, int64(1), packs)
}

func TestDeleteCart(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	owner := AnonymousOwner(uuid.NewString())
	cart, err := repo.FindOrCreateByOwner(ctx, owner)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteCart(ctx, cart.ID))
	_, err = repo.FindByOwner(ctx, owner)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
