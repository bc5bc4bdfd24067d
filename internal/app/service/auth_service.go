package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sifan077/SnipURL/internal/app/auth"
	"github.com/sifan077/SnipURL/internal/app/model"
	"github.com/sifan077/SnipURL/internal/app/repository"
)

var (
	// ErrPasswordTooShort is returned when the signup password is under 8 characters.
	ErrPasswordTooShort = errors.New("passwords must be 8 character long")
	// ErrPasswordMismatch is returned when password and confirmation differ.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrEmailTaken is returned when the signup email is already registered.
	ErrEmailTaken = errors.New("email already exists")
	// ErrInvalidCredentials is returned when the login password does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

const minPasswordLength = 8

// AuthService handles signup, login and profile lookups.
type AuthService interface {
	Signup(ctx context.Context, input SignupInput) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (string, error)
	Me(ctx context.Context, userID string) (*model.User, error)
}

// SignupInput captures the registration form.
type SignupInput struct {
	Name            string
	Email           string
	Phone           string
	Password        string
	ConfirmPassword string
}

type authService struct {
	users  repository.UserRepository
	hasher *auth.PasswordHasher
	tokens *auth.JWTManager
}

// NewAuthService returns an AuthService backed by the given repository,
// hasher and token manager.
func NewAuthService(users repository.UserRepository, hasher *auth.PasswordHasher, tokens *auth.JWTManager) AuthService {
	return &authService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

// Signup validates the form, stores the user with a hashed password and
// returns the new user together with a signed token.
func (s *authService) Signup(ctx context.Context, input SignupInput) (*model.User, string, error) {
	if len(input.Password) < minPasswordLength {
		return nil, "", ErrPasswordTooShort
	}
	if input.Password != input.ConfirmPassword {
		return nil, "", ErrPasswordMismatch
	}

	exists, err := s.users.EmailExists(ctx, input.Email)
	if err != nil {
		return nil, "", fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, "", ErrEmailTaken
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Name:         input.Name,
		Email:        input.Email,
		Phone:        input.Phone,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("sign token: %w", err)
	}
	return user, token, nil
}

// Login verifies the credentials and returns a signed token. Unknown emails
// surface as ErrUserNotFound, wrong passwords as ErrInvalidCredentials.
func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", err
		}
		return "", fmt.Errorf("load user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}

	return s.tokens.Generate(user.ID, user.Email)
}

func (s *authService) Me(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}
