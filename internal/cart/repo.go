package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mateoquiroga/agencydesk-backend/pkg/db/models"
	"github.com/mateoquiroga/agencydesk-backend/pkg/enums"
)

// Repository manages cart and cart-item rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repository to the provided DB handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx scopes the repository to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) ownerScope(q *gorm.DB, owner Owner) *gorm.DB {
	if owner.UserID != nil {
		return q.Where("user_id = ?", *owner.UserID)
	}
	return q.Where("session_token = ?", owner.SessionToken)
}

// FindByOwner loads the owner's cart with items preloaded.
func (r *Repository) FindByOwner(ctx context.Context, owner Owner) (*models.Cart, error) {
	var cart models.Cart
	q := r.ownerScope(r.db.WithContext(ctx), owner)
	if err := q.Preload("Items").First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// FindOrCreateByOwner loads the owner's cart, creating an empty one on miss.
func (r *Repository) FindOrCreateByOwner(ctx context.Context, owner Owner) (*models.Cart, error) {
	cart, err := r.FindByOwner(ctx, owner)
	if err == nil {
		return cart, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	fresh := models.Cart{ID: uuid.New(), UserID: owner.UserID}
	if owner.SessionToken != "" {
		token := owner.SessionToken
		fresh.SessionToken = &token
	}
	if err := r.db.WithContext(ctx).Create(&fresh).Error; err != nil {
		return nil, err
	}
	return &fresh, nil
}

// FindItem loads one item scoped to a cart.
func (r *Repository) FindItem(ctx context.Context, cartID, itemID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.WithContext(ctx).
		Where("cart_id = ? AND id = ?", cartID, itemID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindItemByProduct loads the cart row referencing a given product, if any.
func (r *Repository) FindItemByProduct(ctx context.Context, cartID uuid.UUID, itemType enums.CartItemType, productID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.WithContext(ctx).
		Where("cart_id = ? AND item_type = ? AND product_id = ?", cartID, itemType, productID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateItem inserts a new cart row.
func (r *Repository) CreateItem(ctx context.Context, item *models.CartItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(item).Error
}

// UpdateItemQuantity rewrites the quantity of a single row.
func (r *Repository) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", itemID).
		UpdateColumn("quantity", quantity).Error
}

// DeleteItem removes a single row.
func (r *Repository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.CartItem{}, "id = ?", itemID).Error
}

// DeleteItemsByType removes every row of the given type from a cart.
func (r *Repository) DeleteItemsByType(ctx context.Context, cartID uuid.UUID, itemType enums.CartItemType) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ? AND item_type = ?", cartID, itemType).
		Delete(&models.CartItem{}).Error
}

// DeleteCart removes a cart row (items are cleaned up by the caller first).
func (r *Repository) DeleteCart(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Cart{}, "id = ?", cartID).Error
}

// CountByType counts rows of the given type in a cart.
func (r *Repository) CountByType(ctx context.Context, cartID uuid.UUID, itemType enums.CartItemType) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("cart_id = ? AND item_type = ?", cartID, itemType).
		Count(&count).Error
	return count, err
}
