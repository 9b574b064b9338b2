package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/mateoquiroga/agencydesk-backend/api/middleware"
	cartsvc "github.com/mateoquiroga/agencydesk-backend/internal/cart"
)

type stubCartService struct {
	view        *cartsvc.View
	err         error
	addedPack   uuid.UUID
	mergedToken string
	mergedUser  uuid.UUID
	lastOwner   cartsvc.Owner
}

func (s *stubCartService) GetCart(ctx context.Context, owner cartsvc.Owner) (*cartsvc.View, error) {
	s.lastOwner = owner
	return s.view, s.err
}

func (s *stubCartService) AddPack(ctx context.Context, owner cartsvc.Owner, packID uuid.UUID) error {
	s.lastOwner = owner
	s.addedPack = packID
	return s.err
}

func (s *stubCartService) AddService(ctx context.Context, owner cartsvc.Owner, serviceID uuid.UUID) error {
	return s.err
}

func (s *stubCartService) UpdateItemQuantity(ctx context.Context, owner cartsvc.Owner, itemID uuid.UUID, quantity int) error {
	return s.err
}

func (s *stubCartService) RemoveItem(ctx context.Context, owner cartsvc.Owner, itemID uuid.UUID) error {
	return s.err
}

func (s *stubCartService) MergeAnonymousCart(ctx context.Context, sessionToken string, userID uuid.UUID) error {
	s.mergedToken = sessionToken
	s.mergedUser = userID
	return s.err
}

func TestCartFetchAnonymous(t *testing.T) {
	svc := &stubCartService{view: &cartsvc.View{CartID: uuid.New()}}
	handler := CartFetch(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("X-Cart-Token", "anon-token")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastOwner.SessionToken != "anon-token" {
		t.Fatalf("expected anonymous owner got %+v", svc.lastOwner)
	}
}

func TestCartFetchWithoutOwner(t *testing.T) {
	handler := CartFetch(&stubCartService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCartAddPackPrefersAuthenticatedOwner(t *testing.T) {
	userID := uuid.New()
	packID := uuid.New()
	svc := &stubCartService{view: &cartsvc.View{CartID: uuid.New()}}
	handler := CartAddPack(svc, nil)

	payload, _ := json.Marshal(map[string]string{"packId": packID.String()})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/packs", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Cart-Token", "anon-token")
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.addedPack != packID {
		t.Fatalf("expected pack %s got %s", packID, svc.addedPack)
	}
	if svc.lastOwner.UserID == nil || *svc.lastOwner.UserID != userID {
		t.Fatalf("expected user owner got %+v", svc.lastOwner)
	}
}

func TestCartAddPackRejectsMissingID(t *testing.T) {
	handler := CartAddPack(&stubCartService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/packs", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Cart-Token", "anon-token")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartSyncMergesAnonymousCart(t *testing.T) {
	userID := uuid.New()
	svc := &stubCartService{view: &cartsvc.View{CartID: uuid.New()}}
	handler := CartSync(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/sync", nil)
	req.Header.Set("X-Cart-Token", "anon-token")
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.mergedToken != "anon-token" || svc.mergedUser != userID {
		t.Fatalf("expected merge call got token=%q user=%s", svc.mergedToken, svc.mergedUser)
	}
}

func TestCartSyncRequiresAuth(t *testing.T) {
	handler := CartSync(&stubCartService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/sync", nil)
	req.Header.Set("X-Cart-Token", "anon-token")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}
