package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mateoquiroga/agencydesk-backend/pkg/db/models"
	"github.com/mateoquiroga/agencydesk-backend/pkg/enums"
	pkgerrors "github.com/mateoquiroga/agencydesk-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productCatalog interface {
	GetPack(ctx context.Context, id uuid.UUID) (*models.Pack, error)
	GetService(ctx context.Context, id uuid.UUID) (*models.ServiceAddon, error)
}

// Service exposes the server-side cart operations the store mirrors.
type Service interface {
	GetCart(ctx context.Context, owner Owner) (*View, error)
	AddPack(ctx context.Context, owner Owner, packID uuid.UUID) error
	AddService(ctx context.Context, owner Owner, serviceID uuid.UUID) error
	UpdateItemQuantity(ctx context.Context, owner Owner, itemID uuid.UUID, quantity int) error
	RemoveItem(ctx context.Context, owner Owner, itemID uuid.UUID) error
	MergeAnonymousCart(ctx context.Context, sessionToken string, userID uuid.UUID) error
}

type service struct {
	repo    CartRepository
	tx      txRunner
	catalog productCatalog
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, tx txRunner, catalog productCatalog) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("product catalog required")
	}
	return &service{repo: repo, tx: tx, catalog: catalog}, nil
}

// GetCart returns the owner's cart and items, creating an empty cart on first use.
func (s *service) GetCart(ctx context.Context, owner Owner) (*View, error) {
	if !owner.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart owner is required")
	}

	cart, err := s.repo.FindOrCreateByOwner(ctx, owner)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	view := &View{CartID: cart.ID, Items: make([]ItemView, 0, len(cart.Items))}
	for _, item := range cart.Items {
		view.Items = append(view.Items, ItemView{
			ID:             item.ID,
			ItemType:       item.ItemType,
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		})
	}
	return view, nil
}

// AddPack adds a pack to the owner's cart with a server-assigned price snapshot.
func (s *service) AddPack(ctx context.Context, owner Owner, packID uuid.UUID) error {
	pack, err := s.catalog.GetPack(ctx, packID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "pack not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pack")
	}
	if !pack.IsActive {
		return pkgerrors.New(pkgerrors.CodeValidation, "pack is not available")
	}
	return s.addItem(ctx, owner, enums.ItemTypePack, pack.ID, pack.Name, pack.PriceCents)
}

// AddService adds a service addon to the owner's cart.
func (s *service) AddService(ctx context.Context, owner Owner, serviceID uuid.UUID) error {
	addon, err := s.catalog.GetService(ctx, serviceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load service")
	}
	if !addon.IsActive {
		return pkgerrors.New(pkgerrors.CodeValidation, "service is not available")
	}
	return s.addItem(ctx, owner, enums.ItemTypeService, addon.ID, addon.Name, addon.PriceCents)
}

func (s *service) addItem(ctx context.Context, owner Owner, itemType enums.CartItemType, productID uuid.UUID, name string, priceCents int) error {
	if !owner.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart owner is required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		cart, err := txRepo.FindOrCreateByOwner(ctx, owner)
		if err != nil {
			return err
		}

		existing, err := txRepo.FindItemByProduct(ctx, cart.ID, itemType, productID)
		if err == nil {
			return txRepo.UpdateItemQuantity(ctx, existing.ID, existing.Quantity+1)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return txRepo.CreateItem(ctx, &models.CartItem{
			CartID:         cart.ID,
			ItemType:       itemType,
			ProductID:      productID,
			ProductName:    name,
			Quantity:       1,
			UnitPriceCents: priceCents,
		})
	})
}

// UpdateItemQuantity rewrites an item's quantity.
func (s *service) UpdateItemQuantity(ctx context.Context, owner Owner, itemID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	cart, err := s.repo.FindByOwner(ctx, owner)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	if _, err := s.repo.FindItem(ctx, cart.ID, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}

	return s.repo.UpdateItemQuantity(ctx, itemID, quantity)
}

// RemoveItem deletes an item. Removing the last pack from a cart that still
// contains services cascades to the service rows, since services are add-ons
// to a pack and cannot stand alone.
func (s *service) RemoveItem(ctx context.Context, owner Owner, itemID uuid.UUID) error {
	cart, err := s.repo.FindByOwner(ctx, owner)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	item, err := s.repo.FindItem(ctx, cart.ID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		if item.ItemType == enums.ItemTypePack {
			packCount, err := txRepo.CountByType(ctx, cart.ID, enums.ItemTypePack)
			if err != nil {
				return err
			}
			if packCount == 1 {
				if err := txRepo.DeleteItemsByType(ctx, cart.ID, enums.ItemTypeService); err != nil {
					return err
				}
			}
		}

		return txRepo.DeleteItem(ctx, item.ID)
	})
}

// MergeAnonymousCart folds a pre-login session cart into the user's cart.
// Rows referencing the same product collapse into one with summed quantity;
// the anonymous cart is destroyed afterwards.
func (s *service) MergeAnonymousCart(ctx context.Context, sessionToken string, userID uuid.UUID) error {
	anonOwner := AnonymousOwner(sessionToken)
	if !anonOwner.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "session token is required")
	}
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		anonCart, err := txRepo.FindByOwner(ctx, anonOwner)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil // nothing to merge
			}
			return err
		}

		userCart, err := txRepo.FindOrCreateByOwner(ctx, UserOwner(userID))
		if err != nil {
			return err
		}

		for _, item := range anonCart.Items {
			existing, err := txRepo.FindItemByProduct(ctx, userCart.ID, item.ItemType, item.ProductID)
			if err == nil {
				if err := txRepo.UpdateItemQuantity(ctx, existing.ID, existing.Quantity+item.Quantity); err != nil {
					return err
				}
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if err := txRepo.CreateItem(ctx, &models.CartItem{
				CartID:         userCart.ID,
				ItemType:       item.ItemType,
				ProductID:      item.ProductID,
				ProductName:    item.ProductName,
				Quantity:       item.Quantity,
				UnitPriceCents: item.UnitPriceCents,
			}); err != nil {
				return err
			}
		}

		for _, item := range anonCart.Items {
			if err := txRepo.DeleteItem(ctx, item.ID); err != nil {
				return err
			}
		}
		return txRepo.DeleteCart(ctx, anonCart.ID)
	})
}
