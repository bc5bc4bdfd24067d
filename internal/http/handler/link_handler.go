package handler

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sifan077/SnipURL/internal/app/auth"
	"github.com/sifan077/SnipURL/internal/app/model"
	"github.com/sifan077/SnipURL/internal/app/repository"
	"github.com/sifan077/SnipURL/internal/app/service"
	"github.com/sifan077/SnipURL/internal/http/middleware"
	"go.uber.org/zap"
)

// LinkDeps groups dependencies required by the link endpoints.
type LinkDeps struct {
	Logger *zap.Logger
	Links  service.LinkService
	Tokens *auth.JWTManager
}

// LinkHandler implements link management plus the public click endpoint.
type LinkHandler struct {
	logger *zap.Logger
	links  service.LinkService
	tokens *auth.JWTManager
}

// NewLinkHandler creates a link handler with the provided dependencies.
func NewLinkHandler(deps LinkDeps) *LinkHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LinkHandler{
		logger: logger,
		links:  deps.Links,
		tokens: deps.Tokens,
	}
}

// Register wires link routes onto the provided router. The click route is
// public; everything else requires a valid bearer token.
func (h *LinkHandler) Register(router fiber.Router) {
	requireAuth := middleware.Auth(h.tokens)

	links := router.Group("/api/links")
	{
		links.Post("/click/:id", h.Click)
		links.Post("/", requireAuth, h.Create)
		links.Get("/", requireAuth, h.List)
		links.Put("/:id", requireAuth, h.Update)
		links.Delete("/:id", requireAuth, h.Delete)
	}
}

// CreateLinkRequest represents the request body for creating a link.
type CreateLinkRequest struct {
	OriginalLink   string     `json:"originalLink"`
	Remarks        string     `json:"remarks,omitempty"`
	ShortLink      string     `json:"shortLink,omitempty"`
	ExpirationDate *time.Time `json:"expirationDate,omitempty"`
}

// Create handles POST /api/links
func (h *LinkHandler) Create(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "unauthorized",
		})
	}

	var req CreateLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	link, err := h.links.CreateLink(requestContext(c), service.CreateLinkInput{
		UserID:      userID,
		OriginalURL: req.OriginalLink,
		Remarks:     req.Remarks,
		Code:        req.ShortLink,
		ExpiresAt:   req.ExpirationDate,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingURL), errors.Is(err, service.ErrCodeTaken):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		default:
			h.logger.Error("failed to create link", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "internal server error",
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Link created successfully",
		"link":    link,
	})
}

// List handles GET /api/links
func (h *LinkHandler) List(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "unauthorized",
		})
	}

	links, err := h.links.ListLinks(requestContext(c), userID)
	if err != nil {
		h.logger.Error("failed to list links", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}
	if links == nil {
		links = []model.Link{}
	}

	return c.JSON(fiber.Map{
		"links": links,
	})
}

// UpdateLinkRequest represents the request body for updating a link.
type UpdateLinkRequest struct {
	OriginalLink   *string    `json:"originalLink,omitempty"`
	Remarks        *string    `json:"remarks,omitempty"`
	Status         *string    `json:"status,omitempty"`
	ExpirationDate *time.Time `json:"expirationDate,omitempty"`
}

// Update handles PUT /api/links/:id
func (h *LinkHandler) Update(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "unauthorized",
		})
	}

	var req UpdateLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if req.Status != nil && *req.Status != model.LinkStatusActive && *req.Status != model.LinkStatusInactive {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "status must be Active or Inactive",
		})
	}

	link, err := h.links.UpdateLink(requestContext(c), userID, c.Params("id"), service.UpdateLinkInput{
		OriginalURL: req.OriginalLink,
		Remarks:     req.Remarks,
		Status:      req.Status,
		ExpiresAt:   req.ExpirationDate,
	})
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "link not found or not authorized",
			})
		}
		h.logger.Error("failed to update link", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}

	return c.JSON(fiber.Map{
		"link": link,
	})
}

// Delete handles DELETE /api/links/:id
func (h *LinkHandler) Delete(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "unauthorized",
		})
	}

	if err := h.links.DeleteLink(requestContext(c), userID, c.Params("id")); err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "link not found or not authorized",
			})
		}
		h.logger.Error("failed to delete link", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Link deleted successfully",
	})
}

// Click handles POST /api/links/click/:id — the one unauthenticated route.
func (h *LinkHandler) Click(c *fiber.Ctx) error {
	receipt, err := h.links.RecordClick(
		requestContext(c),
		c.Params("id"),
		c.Get(fiber.HeaderUserAgent),
		clientAddress(c),
	)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "link not found",
			})
		}
		h.logger.Error("failed to record click", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}

	return c.JSON(fiber.Map{
		"message":      "Click logged successfully",
		"originalLink": receipt.OriginalURL,
		"shortLink":    receipt.ShortCode,
		"clicks":       receipt.Clicks,
		"timestamp":    receipt.Timestamp,
		"ipAddress":    receipt.IPAddress,
		"userDevice":   receipt.Device,
	})
}

// clientAddress prefers the first forwarded address and falls back to the
// transport-level peer.
func clientAddress(c *fiber.Ctx) string {
	if forwarded := c.Get(fiber.HeaderXForwardedFor); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	return c.IP()
}
