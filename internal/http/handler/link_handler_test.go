package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sifan077/SnipURL/internal/app/auth"
	"github.com/sifan077/SnipURL/internal/app/model"
	"github.com/sifan077/SnipURL/internal/app/repository"
	"github.com/sifan077/SnipURL/internal/app/service"
)

type mockLinkService struct {
	createFn func(ctx context.Context, input service.CreateLinkInput) (*model.Link, error)
	listFn   func(ctx context.Context, userID string) ([]model.Link, error)
	deleteFn func(ctx context.Context, userID, linkID string) error
	updateFn func(ctx context.Context, userID, linkID string, input service.UpdateLinkInput) (*model.Link, error)
	clickFn  func(ctx context.Context, linkID, userAgent, clientIP string) (*service.ClickReceipt, error)
}

func (m *mockLinkService) CreateLink(ctx context.Context, input service.CreateLinkInput) (*model.Link, error) {
	return m.createFn(ctx, input)
}

func (m *mockLinkService) ListLinks(ctx context.Context, userID string) ([]model.Link, error) {
	return m.listFn(ctx, userID)
}

func (m *mockLinkService) DeleteLink(ctx context.Context, userID, linkID string) error {
	return m.deleteFn(ctx, userID, linkID)
}

func (m *mockLinkService) UpdateLink(ctx context.Context, userID, linkID string, input service.UpdateLinkInput) (*model.Link, error) {
	return m.updateFn(ctx, userID, linkID, input)
}

func (m *mockLinkService) RecordClick(ctx context.Context, linkID, userAgent, clientIP string) (*service.ClickReceipt, error) {
	return m.clickFn(ctx, linkID, userAgent, clientIP)
}

func (m *mockLinkService) SeedCodes(ctx context.Context) error { return nil }

func newLinkApp(t *testing.T, links service.LinkService) (*fiber.App, *auth.JWTManager) {
	t.Helper()
	tokens := auth.NewJWTManager("test-secret", time.Hour)
	app := fiber.New()
	NewLinkHandler(LinkDeps{Links: links, Tokens: tokens}).Register(app)
	return app, tokens
}

func bearer(t *testing.T, tokens *auth.JWTManager, userID string) string {
	t.Helper()
	token, err := tokens.Generate(userID, "")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	return "Bearer " + token
}

func TestLinkHandler_Click_Public(t *testing.T) {
	var gotLinkID, gotUA, gotIP string
	links := &mockLinkService{
		clickFn: func(ctx context.Context, linkID, userAgent, clientIP string) (*service.ClickReceipt, error) {
			gotLinkID, gotUA, gotIP = linkID, userAgent, clientIP
			return &service.ClickReceipt{
				OriginalURL: "https://example.com",
				ShortCode:   "abcd1234",
				Clicks:      1,
				Timestamp:   time.Now(),
				IPAddress:   clientIP,
				Device:      "Android",
			}, nil
		},
	}
	app, _ := newLinkApp(t, links)

	req := httptest.NewRequest(fiber.MethodPost, "/api/links/click/link-1", nil)
	req.Header.Set(fiber.HeaderUserAgent, "Mozilla/5.0 (Linux; Android 14)")
	req.Header.Set(fiber.HeaderXForwardedFor, "203.0.113.9, 10.0.0.1")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	if gotLinkID != "link-1" {
		t.Fatalf("expected link-1, got %q", gotLinkID)
	}
	if !strings.Contains(gotUA, "Android") {
		t.Fatalf("expected user agent to be forwarded, got %q", gotUA)
	}
	if gotIP != "203.0.113.9" {
		t.Fatalf("expected first forwarded address, got %q", gotIP)
	}

	var body struct {
		Clicks     int64  `json:"clicks"`
		UserDevice string `json:"userDevice"`
		ShortLink  string `json:"shortLink"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Clicks != 1 || body.UserDevice != "Android" || body.ShortLink != "abcd1234" {
		t.Fatalf("unexpected receipt body: %+v", body)
	}
}

func TestLinkHandler_Click_NotFound(t *testing.T) {
	links := &mockLinkService{
		clickFn: func(ctx context.Context, linkID, userAgent, clientIP string) (*service.ClickReceipt, error) {
			return nil, repository.ErrLinkNotFound
		},
	}
	app, _ := newLinkApp(t, links)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/api/links/click/missing", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestLinkHandler_Create_RequiresAuth(t *testing.T) {
	app, _ := newLinkApp(t, &mockLinkService{})

	req := httptest.NewRequest(fiber.MethodPost, "/api/links/", strings.NewReader(`{"originalLink":"https://example.com"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestLinkHandler_Create(t *testing.T) {
	links := &mockLinkService{
		createFn: func(ctx context.Context, input service.CreateLinkInput) (*model.Link, error) {
			if input.UserID != "user-1" {
				t.Fatalf("expected caller's user id, got %q", input.UserID)
			}
			if input.OriginalURL == "" {
				return nil, service.ErrMissingURL
			}
			return &model.Link{
				ID:          "link-1",
				UserID:      input.UserID,
				OriginalURL: input.OriginalURL,
				ShortCode:   "abcd1234",
				Status:      model.LinkStatusActive,
			}, nil
		},
	}
	app, tokens := newLinkApp(t, links)

	req := httptest.NewRequest(fiber.MethodPost, "/api/links/", strings.NewReader(`{"originalLink":"https://example.com"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set(fiber.HeaderAuthorization, bearer(t, tokens, "user-1"))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var body struct {
		Link model.Link `json:"link"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Link.ShortCode == "" {
		t.Fatal("expected a non-empty shortLink")
	}

	// Missing originalLink is a validation error.
	req = httptest.NewRequest(fiber.MethodPost, "/api/links/", strings.NewReader(`{}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set(fiber.HeaderAuthorization, bearer(t, tokens, "user-1"))
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestLinkHandler_Delete_NotFound(t *testing.T) {
	links := &mockLinkService{
		deleteFn: func(ctx context.Context, userID, linkID string) error {
			return repository.ErrLinkNotFound
		},
	}
	app, tokens := newLinkApp(t, links)

	req := httptest.NewRequest(fiber.MethodDelete, "/api/links/link-1", nil)
	req.Header.Set(fiber.HeaderAuthorization, bearer(t, tokens, "user-2"))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestLinkHandler_List(t *testing.T) {
	links := &mockLinkService{
		listFn: func(ctx context.Context, userID string) ([]model.Link, error) {
			return []model.Link{{ID: "a", UserID: userID}}, nil
		},
	}
	app, tokens := newLinkApp(t, links)

	req := httptest.NewRequest(fiber.MethodGet, "/api/links/", nil)
	req.Header.Set(fiber.HeaderAuthorization, bearer(t, tokens, "user-1"))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Links []model.Link `json:"links"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Links) != 1 {
		t.Fatalf("expected 1 link, got %d", len(body.Links))
	}
}
