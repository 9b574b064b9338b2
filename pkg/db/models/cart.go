package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mateoquiroga/agencydesk-backend/pkg/enums"
)

// Cart belongs to exactly one owner: an authenticated user or an anonymous
// session token handed to the browser before login.
type Cart struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       *uuid.UUID `gorm:"column:user_id;type:uuid;index"`
	SessionToken *string    `gorm:"column:session_token;index"`
	Items        []CartItem `gorm:"foreignKey:CartID"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Cart) TableName() string { return "carts" }

// CartItem references either a pack or a service and carries a denormalized
// snapshot of the unit price taken when the row was created.
type CartItem struct {
	ID             uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID         uuid.UUID          `gorm:"column:cart_id;type:uuid;not null;index"`
	ItemType       enums.CartItemType `gorm:"column:item_type;not null"`
	ProductID      uuid.UUID          `gorm:"column:product_id;type:uuid;not null"`
	ProductName    string             `gorm:"column:product_name;not null"`
	Quantity       int                `gorm:"column:quantity;not null;default:1"`
	UnitPriceCents int                `gorm:"column:unit_price_cents;not null;default:0"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (CartItem) TableName() string { return "cart_items" }
