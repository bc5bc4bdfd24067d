package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sifan077/SnipURL/internal/app/auth"
	"github.com/sifan077/SnipURL/internal/app/repository"
	"github.com/sifan077/SnipURL/internal/app/service"
	"github.com/sifan077/SnipURL/internal/http/middleware"
	"go.uber.org/zap"
)

// AuthDeps groups dependencies required by the user endpoints.
type AuthDeps struct {
	Logger *zap.Logger
	Auth   service.AuthService
	Tokens *auth.JWTManager
}

// AuthHandler implements signup, login, profile and logout.
type AuthHandler struct {
	logger *zap.Logger
	auth   service.AuthService
	tokens *auth.JWTManager
}

// NewAuthHandler creates an auth handler with the provided dependencies.
func NewAuthHandler(deps AuthDeps) *AuthHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{
		logger: logger,
		auth:   deps.Auth,
		tokens: deps.Tokens,
	}
}

// Register wires user routes onto the provided router.
func (h *AuthHandler) Register(router fiber.Router) {
	users := router.Group("/api/users")
	{
		users.Post("/signup", h.Signup)
		users.Post("/login", h.Login)
		users.Get("/me", middleware.Auth(h.tokens), h.Me)
		users.Post("/logout", h.Logout)
	}
}

// SignupRequest mirrors the registration form field names.
type SignupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"ph"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmpassword"`
}

// Signup handles POST /api/users/signup
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	user, token, err := h.auth.Signup(requestContext(c), service.SignupInput{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPasswordTooShort),
			errors.Is(err, service.ErrPasswordMismatch),
			errors.Is(err, service.ErrEmailTaken):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		default:
			h.logger.Error("signup failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "internal server error",
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"id":      user.ID,
		"token":   token,
	})
}

// LoginRequest is the login form.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/users/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	token, err := h.auth.Login(requestContext(c), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "user not found",
			})
		case errors.Is(err, service.ErrInvalidCredentials):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid credentials",
			})
		default:
			h.logger.Error("login failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "internal server error",
			})
		}
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
	})
}

// Me handles GET /api/users/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "unauthorized",
		})
	}

	user, err := h.auth.Me(requestContext(c), userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "user not found",
			})
		}
		h.logger.Error("failed to load profile", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}

	return c.JSON(fiber.Map{
		"user": fiber.Map{
			"name":  user.Name,
			"email": user.Email,
		},
	})
}

// Logout handles POST /api/users/logout. Tokens are stateless, so this is a
// no-op kept for client surface parity.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Logout successful",
	})
}

func requestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return ctx
}
