package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sifan077/SnipURL/internal/app/auth"
	"github.com/sifan077/SnipURL/internal/app/model"
	"github.com/sifan077/SnipURL/internal/app/repository"
)

type mockUserRepository struct {
	createFn      func(ctx context.Context, user *model.User) error
	getByIDFn     func(ctx context.Context, id string) (*model.User, error)
	getByEmailFn  func(ctx context.Context, email string) (*model.User, error)
	emailExistsFn func(ctx context.Context, email string) (bool, error)
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	if m.emailExistsFn != nil {
		return m.emailExistsFn(ctx, email)
	}
	return false, nil
}

func newTestAuthService(repo repository.UserRepository) AuthService {
	return NewAuthService(repo, auth.NewPasswordHasher(), auth.NewJWTManager("test-secret", time.Hour))
}

func TestAuthService_Signup_ShortPassword(t *testing.T) {
	svc := newTestAuthService(&mockUserRepository{})
	_, _, err := svc.Signup(context.Background(), SignupInput{
		Name:            "Alice",
		Email:           "alice@example.com",
		Password:        "seven77",
		ConfirmPassword: "seven77",
	})
	if !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
}

func TestAuthService_Signup_PasswordMismatch(t *testing.T) {
	svc := newTestAuthService(&mockUserRepository{})
	_, _, err := svc.Signup(context.Background(), SignupInput{
		Name:            "Alice",
		Email:           "alice@example.com",
		Password:        "password1",
		ConfirmPassword: "password2",
	})
	if !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
}

func TestAuthService_Signup_DuplicateEmail(t *testing.T) {
	repo := &mockUserRepository{
		emailExistsFn: func(ctx context.Context, email string) (bool, error) {
			return true, nil
		},
	}
	svc := newTestAuthService(repo)
	_, _, err := svc.Signup(context.Background(), SignupInput{
		Name:            "Alice",
		Email:           "alice@example.com",
		Password:        "password1",
		ConfirmPassword: "password1",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthService_Signup_HashesPasswordAndIssuesToken(t *testing.T) {
	var stored *model.User
	repo := &mockUserRepository{
		createFn: func(ctx context.Context, user *model.User) error {
			stored = user
			return nil
		},
	}
	svc := newTestAuthService(repo)

	user, token, err := svc.Signup(context.Background(), SignupInput{
		Name:            "Alice",
		Email:           "alice@example.com",
		Phone:           "5551234",
		Password:        "password1",
		ConfirmPassword: "password1",
	})
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}
	if token == "" {
		t.Fatal("expected a signed token")
	}
	if user.ID == "" {
		t.Fatal("expected user id to be set")
	}
	if stored == nil {
		t.Fatal("expected user to be persisted")
	}
	if stored.PasswordHash == "password1" || stored.PasswordHash == "" {
		t.Fatal("expected password to be stored as a hash")
	}
}

func TestAuthService_Login(t *testing.T) {
	hasher := auth.NewPasswordHasher()
	hash, err := hasher.Hash("password1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	repo := &mockUserRepository{
		getByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			if email != "alice@example.com" {
				return nil, repository.ErrUserNotFound
			}
			return &model.User{ID: "user-1", Email: email, PasswordHash: hash}, nil
		},
	}
	svc := newTestAuthService(repo)

	if _, err := svc.Login(context.Background(), "nobody@example.com", "password1"); !errors.Is(err, repository.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound for unknown email, got %v", err)
	}

	if _, err := svc.Login(context.Background(), "alice@example.com", "wrongpass1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}

	token, err := svc.Login(context.Background(), "alice@example.com", "password1")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if token == "" {
		t.Fatal("expected a signed token")
	}
}

func TestAuthService_Me(t *testing.T) {
	repo := &mockUserRepository{
		getByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			if id != "user-1" {
				return nil, repository.ErrUserNotFound
			}
			return &model.User{ID: id, Name: "Alice", Email: "alice@example.com"}, nil
		},
	}
	svc := newTestAuthService(repo)

	user, err := svc.Me(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Me returned error: %v", err)
	}
	if user.Name != "Alice" || user.Email != "alice@example.com" {
		t.Fatalf("unexpected profile: %+v", user)
	}

	if _, err := svc.Me(context.Background(), "ghost"); !errors.Is(err, repository.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
