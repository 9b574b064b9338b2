package cart

import (
	"strings"

	"github.com/google/uuid"

	"github.com/mateoquiroga/agencydesk-backend/pkg/enums"
)

// Owner identifies who a cart belongs to: an authenticated user or an
// anonymous browser session. Exactly one of the two is set.
type Owner struct {
	UserID       *uuid.UUID
	SessionToken string
}

// UserOwner builds an Owner for an authenticated user.
func UserOwner(userID uuid.UUID) Owner {
	id := userID
	return Owner{UserID: &id}
}

// AnonymousOwner builds an Owner for a pre-login session token.
func AnonymousOwner(token string) Owner {
	return Owner{SessionToken: strings.TrimSpace(token)}
}

// IsValid reports whether the owner identifies anyone at all.
func (o Owner) IsValid() bool {
	return o.UserID != nil || o.SessionToken != ""
}

// ItemView is the denormalized cart row handed to the store and the API.
type ItemView struct {
	ID             uuid.UUID          `json:"id"`
	ItemType       enums.CartItemType `json:"item_type"`
	ProductID      uuid.UUID          `json:"product_id"`
	ProductName    string             `json:"product_name"`
	Quantity       int                `json:"quantity"`
	UnitPriceCents int                `json:"unit_price_cents"`
}

// View is a cart plus its resolved items.
type View struct {
	CartID uuid.UUID  `json:"cart_id"`
	Items  []ItemView `json:"items"`
}
