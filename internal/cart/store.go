package cart

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mateoquiroga/agencydesk-backend/pkg/enums"
	pkgerrors "github.com/mateoquiroga/agencydesk-backend/pkg/errors"
	"github.com/mateoquiroga/agencydesk-backend/pkg/logger"
	"github.com/mateoquiroga/agencydesk-backend/pkg/metrics"
)

// DefaultPollInterval is how often a polling store re-reads the server cart.
const DefaultPollInterval = 60 * time.Second

// ConfirmFunc is asked before a removal that would also drop every service
// in the cart. Returning false aborts the removal.
type ConfirmFunc func(ctx context.Context) bool

// Snapshot is a point-in-time read of the store's mirrored state.
type Snapshot struct {
	CartID        uuid.UUID
	Items         []ItemView
	Plan          *InstallmentPlan
	SubtotalCents int
	TotalCents    int
	ItemCount     int
	Loading       bool
}

// Store mirrors one owner's server cart and applies mutations optimistically:
// the local copy changes first, the server call follows, and a failed call
// rolls the copy back by refetching. The merge that runs at login takes the
// gate exclusively so no mutation interleaves with it.
type Store struct {
	svc     Service
	logg    *logger.Logger
	confirm ConfirmFunc

	gate sync.RWMutex // merge vs. everything else

	mu      sync.Mutex
	owner   Owner
	cartID  uuid.UUID
	items   []ItemView
	plan    *InstallmentPlan
	loading bool
	merged  bool

	pollInterval time.Duration
}

// StoreOption tweaks store construction.
type StoreOption func(*Store)

// WithConfirm installs the callback consulted before a removal that would
// clear the cart's services.
func WithConfirm(fn ConfirmFunc) StoreOption {
	return func(s *Store) { s.confirm = fn }
}

// WithPollInterval overrides the polling cadence.
func WithPollInterval(d time.Duration) StoreOption {
	return func(s *Store) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// NewStore builds a store mirroring the given owner's cart.
func NewStore(svc Service, owner Owner, logg *logger.Logger, opts ...StoreOption) (*Store, error) {
	if svc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart service required")
	}
	if !owner.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart owner is required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	s := &Store{
		svc:          svc,
		owner:        owner,
		logg:         logg,
		confirm:      func(context.Context) bool { return true },
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Refresh refetches the server cart and replaces the mirror. Concurrent
// callers collapse into one fetch; the losers return immediately and read
// whatever the winner writes.
func (s *Store) Refresh(ctx context.Context) error {
	s.gate.RLock()
	defer s.gate.RUnlock()
	return s.refreshLocked(ctx)
}

// refreshLocked assumes the caller already holds the gate in either mode.
func (s *Store) refreshLocked(ctx context.Context) error {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return nil
	}
	s.loading = true
	owner := s.owner
	s.mu.Unlock()

	view, err := s.svc.GetCart(ctx, owner)

	s.mu.Lock()
	s.loading = false
	if err == nil {
		s.cartID = view.CartID
		s.items = view.Items
	}
	s.mu.Unlock()

	if err != nil {
		metrics.CartRefreshes.WithLabelValues("error").Inc()
		s.logg.Error(ctx, "cart refresh failed", err)
		return err
	}
	metrics.CartRefreshes.WithLabelValues("ok").Inc()
	return nil
}

// AddPack adds a pack server-side, then refreshes. Adds are not optimistic:
// the server owns the price snapshot, so there is nothing to show early.
func (s *Store) AddPack(ctx context.Context, packID uuid.UUID) error {
	s.gate.RLock()
	defer s.gate.RUnlock()

	if err := s.svc.AddPack(ctx, s.ownerNow(), packID); err != nil {
		return err
	}
	return s.refreshLocked(ctx)
}

// AddService adds a service addon server-side, then refreshes.
func (s *Store) AddService(ctx context.Context, serviceID uuid.UUID) error {
	s.gate.RLock()
	defer s.gate.RUnlock()

	if err := s.svc.AddService(ctx, s.ownerNow(), serviceID); err != nil {
		return err
	}
	return s.refreshLocked(ctx)
}

// UpdateItemQuantity rewrites a row's quantity in the mirror first, then on
// the server. A server failure rolls the mirror back by refetching.
func (s *Store) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	s.gate.RLock()
	defer s.gate.RUnlock()

	s.mu.Lock()
	prev := -1
	for i := range s.items {
		if s.items[i].ID == itemID {
			prev = s.items[i].Quantity
			s.items[i].Quantity = quantity
			break
		}
	}
	owner := s.owner
	s.mu.Unlock()

	if prev < 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}

	if err := s.svc.UpdateItemQuantity(ctx, owner, itemID, quantity); err != nil {
		metrics.CartMutationRollbacks.Inc()
		s.logg.Warn(ctx, "quantity update rejected, rolling back mirror")
		if rbErr := s.refreshLocked(ctx); rbErr != nil {
			s.logg.Error(ctx, "rollback refetch failed", rbErr)
		}
		return err
	}
	return nil
}

// RemoveItem removes a row. The plain case is optimistic. Removing the last
// pack while services remain is not: the confirm callback runs first, and the
// mirror only changes after the server says yes, because the removal fans out
// to rows the caller never named.
func (s *Store) RemoveItem(ctx context.Context, itemID uuid.UUID) error {
	s.gate.RLock()
	defer s.gate.RUnlock()

	s.mu.Lock()
	idx := -1
	for i := range s.items {
		if s.items[i].ID == itemID {
			idx = i
			break
		}
	}
	cascades := false
	if idx >= 0 && s.items[idx].ItemType == enums.ItemTypePack {
		packs, services := 0, 0
		for _, item := range s.items {
			switch item.ItemType {
			case enums.ItemTypePack:
				packs++
			case enums.ItemTypeService:
				services++
			}
		}
		cascades = packs == 1 && services > 0
	}
	owner := s.owner
	s.mu.Unlock()

	if idx < 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}

	if cascades {
		if !s.confirm(ctx) {
			return nil
		}
		if err := s.svc.RemoveItem(ctx, owner, itemID); err != nil {
			return err
		}
		return s.refreshLocked(ctx)
	}

	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == itemID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	if err := s.svc.RemoveItem(ctx, owner, itemID); err != nil {
		metrics.CartMutationRollbacks.Inc()
		s.logg.Warn(ctx, "item removal rejected, rolling back mirror")
		if rbErr := s.refreshLocked(ctx); rbErr != nil {
			s.logg.Error(ctx, "rollback refetch failed", rbErr)
		}
		return err
	}
	return nil
}

// HandleLogin switches the store to the authenticated user and folds the
// anonymous cart into theirs. The merge runs at most once per login and holds
// the gate exclusively, so no mutation observes a half-merged cart.
func (s *Store) HandleLogin(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	s.gate.Lock()
	defer s.gate.Unlock()

	s.mu.Lock()
	if s.merged {
		s.mu.Unlock()
		return nil
	}
	token := s.owner.SessionToken
	s.owner = UserOwner(userID)
	s.merged = true
	s.mu.Unlock()

	if token != "" {
		if err := s.svc.MergeAnonymousCart(ctx, token, userID); err != nil {
			s.logg.Error(ctx, "anonymous cart merge failed", err)
			return err
		}
	}
	return s.refreshLocked(ctx)
}

// HandleLogout drops the mirrored state and re-arms the merge for the next
// login under a fresh anonymous session.
func (s *Store) HandleLogout(sessionToken string) {
	s.gate.Lock()
	defer s.gate.Unlock()

	s.mu.Lock()
	s.owner = AnonymousOwner(sessionToken)
	s.cartID = uuid.Nil
	s.items = nil
	s.plan = nil
	s.merged = false
	s.mu.Unlock()
}

// SetInstallmentPlan records the displayed payment spread. Purely local.
func (s *Store) SetInstallmentPlan(plan *InstallmentPlan) {
	s.mu.Lock()
	s.plan = plan
	s.mu.Unlock()
}

// Snapshot returns a copy of the mirrored state with derived totals.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]ItemView, len(s.items))
	copy(items, s.items)

	subtotal, count := 0, 0
	for _, item := range items {
		subtotal += item.UnitPriceCents * item.Quantity
		count += item.Quantity
	}

	return Snapshot{
		CartID:        s.cartID,
		Items:         items,
		Plan:          s.plan,
		SubtotalCents: subtotal,
		TotalCents:    ApplyInterest(subtotal, s.plan),
		ItemCount:     count,
		Loading:       s.loading,
	}
}

// StartPolling refreshes the mirror on a fixed cadence until ctx is done.
func (s *Store) StartPolling(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = s.Refresh(ctx)
			}
		}
	}()
}

func (s *Store) ownerNow() Owner {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner
}
