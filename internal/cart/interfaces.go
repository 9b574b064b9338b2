package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mateoquiroga/agencydesk-backend/pkg/db/models"
	"github.com/mateoquiroga/agencydesk-backend/pkg/enums"
)

// CartRepository is the persistence surface the service depends on.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	FindByOwner(ctx context.Context, owner Owner) (*models.Cart, error)
	FindOrCreateByOwner(ctx context.Context, owner Owner) (*models.Cart, error)
	FindItem(ctx context.Context, cartID, itemID uuid.UUID) (*models.CartItem, error)
	FindItemByProduct(ctx context.Context, cartID uuid.UUID, itemType enums.CartItemType, productID uuid.UUID) (*models.CartItem, error)
	CreateItem(ctx context.Context, item *models.CartItem) error
	UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	DeleteItemsByType(ctx context.Context, cartID uuid.UUID, itemType enums.CartItemType) error
	DeleteCart(ctx context.Context, cartID uuid.UUID) error
	CountByType(ctx context.Context, cartID uuid.UUID, itemType enums.CartItemType) (int64, error)
}
