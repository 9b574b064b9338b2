package cart

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mateoquiroga/agencydesk-backend/pkg/enums"
	pkgerrors "github.com/mateoquiroga/agencydesk-backend/pkg/errors"
	"github.com/mateoquiroga/agencydesk-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func testView() *View {
	return &View{
		CartID: uuid.New(),
		Items: []ItemView{
			{ID: uuid.New(), ItemType: enums.ItemTypePack, ProductID: uuid.New(), ProductName: "Corporate Site", Quantity: 1, UnitPriceCents: 10000},
			{ID: uuid.New(), ItemType: enums.ItemTypeService, ProductID: uuid.New(), ProductName: "SEO", Quantity: 1, UnitPriceCents: 2000},
		},
	}
}

func newTestStore(t *testing.T, svc Service, owner Owner, opts ...StoreOption) *Store {
	t.Helper()
	store, err := NewStore(svc, owner, testLogger(), opts...)
	require.NoError(t, err)
	return store
}

func TestStoreRefreshAndTotals(t *testing.T) {
	t.Parallel()

	svc := &storeStubService{view: testView()}
	store := newTestStore(t, svc, AnonymousOwner("tok"))

	require.NoError(t, store.Refresh(context.Background()))

	snap := store.Snapshot()
	assert.Equal(t, 12000, snap.SubtotalCents)
	assert.Equal(t, 12000, snap.TotalCents)
	assert.Equal(t, 2, snap.ItemCount)

	twelve := PlanTwelveMonths
	store.SetInstallmentPlan(&twelve)
	snap = store.Snapshot()
	assert.Equal(t, 12000, snap.SubtotalCents)
	assert.Equal(t, 13800, snap.TotalCents)
}

func TestStoreConcurrentRefreshCollapses(t *testing.T) {
	t.Parallel()

	svc := &storeStubService{view: testView(), getGate: make(chan struct{})}
	store := newTestStore(t, svc, AnonymousOwner("tok"))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = store.Refresh(context.Background())
	}()

	// Wait until the first refresh is inside GetCart, then pile on more.
	require.Eventually(t, func() bool {
		return svc.getCalls() == 1
	}, time.Second, 5*time.Millisecond)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Refresh(context.Background()))
	}

	close(svc.getGate)
	wg.Wait()

	assert.Equal(t, 1, svc.getCalls())
}

func TestStoreOptimisticQuantityUpdate(t *testing.T) {
	t.Parallel()

	view := testView()
	svc := &storeStubService{view: view}
	store := newTestStore(t, svc, AnonymousOwner("tok"))
	require.NoError(t, store.Refresh(context.Background()))

	itemID := view.Items[0].ID
	require.NoError(t, store.UpdateItemQuantity(context.Background(), itemID, 4))

	snap := store.Snapshot()
	assert.Equal(t, 4, snap.Items[0].Quantity)
	assert.Equal(t, 1, svc.updateCallCount)
}

func TestStoreQuantityUpdateRollsBackOnFailure(t *testing.T) {
	t.Parallel()

	view := testView()
	svc := &storeStubService{
		view:      view,
		updateErr: pkgerrors.New(pkgerrors.CodeDependency, "db down"),
	}
	store := newTestStore(t, svc, AnonymousOwner("tok"))
	require.NoError(t, store.Refresh(context.Background()))

	itemID := view.Items[0].ID
	err := store.UpdateItemQuantity(context.Background(), itemID, 9)
	require.Error(t, err)

	// The mirror must be back to the server's quantity after the rollback refetch.
	snap := store.Snapshot()
	assert.Equal(t, 1, snap.Items[0].Quantity)
}

func TestStoreRemoveItemOptimistic(t *testing.T) {
	t.Parallel()

	view := testView()
	// Two packs so the removal does not cascade.
	view.Items = append(view.Items, ItemView{
		ID: uuid.New(), ItemType: enums.ItemTypePack, ProductID: uuid.New(), ProductName: "Landing", Quantity: 1, UnitPriceCents: 4000,
	})
	svc := &storeStubService{view: view}
	store := newTestStore(t, svc, AnonymousOwner("tok"))
	require.NoError(t, store.Refresh(context.Background()))

	require.NoError(t, store.RemoveItem(context.Background(), view.Items[0].ID))

	snap := store.Snapshot()
	assert.Len(t, snap.Items, 2)
	assert.Equal(t, 1, svc.removeCallCount)
}

func TestStoreRemoveLastPackAsksForConfirmation(t *testing.T) {
	t.Parallel()

	view := testView()
	asked := false
	svc := &storeStubService{view: view}
	store := newTestStore(t, svc, AnonymousOwner("tok"), WithConfirm(func(ctx context.Context) bool {
		asked = true
		return false
	}))
	require.NoError(t, store.Refresh(context.Background()))

	var packItemID uuid.UUID
	for _, item := range view.Items {
		if item.ItemType == enums.ItemTypePack {
			packItemID = item.ID
		}
	}

	require.NoError(t, store.RemoveItem(context.Background(), packItemID))

	assert.True(t, asked)
	assert.Equal(t, 0, svc.removeCallCount)
	assert.Len(t, store.Snapshot().Items, 2)
}

func TestStoreRemoveLastPackConfirmedClearsServices(t *testing.T) {
	t.Parallel()

	view := testView()
	svc := &storeStubService{view: view}
	store := newTestStore(t, svc, AnonymousOwner("tok"), WithConfirm(func(ctx context.Context) bool {
		return true
	}))
	require.NoError(t, store.Refresh(context.Background()))

	var packItemID uuid.UUID
	for _, item := range view.Items {
		if item.ItemType == enums.ItemTypePack {
			packItemID = item.ID
		}
	}

	// The stub mimics the server cascade: confirmed removal empties the cart.
	svc.mu.Lock()
	svc.removeHook = func() {
		svc.view = &View{CartID: view.CartID, Items: nil}
	}
	svc.mu.Unlock()

	require.NoError(t, store.RemoveItem(context.Background(), packItemID))

	assert.Equal(t, 1, svc.removeCallCount)
	assert.Empty(t, store.Snapshot().Items)
}

func TestStoreLoginMergesExactlyOnce(t *testing.T) {
	t.Parallel()

	svc := &storeStubService{view: testView()}
	store := newTestStore(t, svc, AnonymousOwner("tok"))
	userID := uuid.New()

	require.NoError(t, store.HandleLogin(context.Background(), userID))
	require.NoError(t, store.HandleLogin(context.Background(), userID))

	assert.Equal(t, 1, svc.mergeCallCount)
}

func TestStoreLogoutRearmsTheMerge(t *testing.T) {
	t.Parallel()

	svc := &storeStubService{view: testView()}
	store := newTestStore(t, svc, AnonymousOwner("tok"))
	userID := uuid.New()

	require.NoError(t, store.HandleLogin(context.Background(), userID))
	store.HandleLogout("tok-2")

	snap := store.Snapshot()
	assert.Empty(t, snap.Items)
	assert.Nil(t, snap.Plan)

	require.NoError(t, store.HandleLogin(context.Background(), userID))
	assert.Equal(t, 2, svc.mergeCallCount)
}

func TestStorePollingRefreshes(t *testing.T) {
	t.Parallel()

	svc := &storeStubService{view: testView()}
	store := newTestStore(t, svc, AnonymousOwner("tok"), WithPollInterval(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store.StartPolling(ctx)

	require.Eventually(t, func() bool {
		return svc.getCalls() >= 2
	}, time.Second, 5*time.Millisecond)
}

// storeStubService is a controllable Service for store tests.
type storeStubService struct {
	mu sync.Mutex

	view    *View
	getGate chan struct{}

	getErr    error
	updateErr error
	removeErr error
	mergeErr  error

	getCallCount    int
	updateCallCount int
	removeCallCount int
	mergeCallCount  int

	removeHook func()
}

func (s *storeStubService) getCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getCallCount
}

func (s *storeStubService) GetCart(ctx context.Context, owner Owner) (*View, error) {
	s.mu.Lock()
	s.getCallCount++
	gate := s.getGate
	view := s.view
	err := s.getErr
	s.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	copied := *view
	copied.Items = make([]ItemView, len(view.Items))
	copy(copied.Items, view.Items)
	return &copied, nil
}

func (s *storeStubService) AddPack(ctx context.Context, owner Owner, packID uuid.UUID) error {
	return nil
}

func (s *storeStubService) AddService(ctx context.Context, owner Owner, serviceID uuid.UUID) error {
	return nil
}

func (s *storeStubService) UpdateItemQuantity(ctx context.Context, owner Owner, itemID uuid.UUID, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateCallCount++
	if s.updateErr != nil {
		return s.updateErr
	}
	for i := range s.view.Items {
		if s.view.Items[i].ID == itemID {
			s.view.Items[i].Quantity = quantity
		}
	}
	return nil
}

func (s *storeStubService) RemoveItem(ctx context.Context, owner Owner, itemID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeCallCount++
	if s.removeErr != nil {
		return s.removeErr
	}
	if s.removeHook != nil {
		s.removeHook()
		return nil
	}
	for i := range s.view.Items {
		if s.view.Items[i].ID == itemID {
			s.view.Items = append(s.view.Items[:i], s.view.Items[i+1:]...)
			break
		}
	}
	return nil
}

func (s *storeStubService) MergeAnonymousCart(ctx context.Context, sessionToken string, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mergeCallCount++
	return s.mergeErr
}
