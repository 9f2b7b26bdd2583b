package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/isdelr/ender-admin-auth/internal/auth"
	"github.com/isdelr/ender-admin-auth/internal/models"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 5
	// bcrypt only reads the first 72 bytes of a password.
	maxBcryptInput = 72

	sessionTTL    = 24 * time.Hour
	rememberMeTTL = 7 * 24 * time.Hour
)

// AuthServiceProvider defines the interface for authentication services.
type AuthServiceProvider interface {
	Register(ctx context.Context, in RegisterInput) (RegisteredAdmin, error)
	Login(ctx context.Context, in LoginInput) (LoginResult, error)
	Logout(ctx context.Context, adminID string) (bool, error)
	VerifySession(ctx context.Context, token string) (models.Admin, error)
}

// RegisterInput holds the fields accepted by Register.
type RegisterInput struct {
	Email         string
	Password      string
	PasswordCheck string
	Name          string
	Surname       string
}

// RegisteredAdmin is the public view of a newly created admin.
type RegisteredAdmin struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
}

// LoginInput holds the fields accepted by Login.
type LoginInput struct {
	Email      string
	Password   string
	RememberMe bool
}

// LoginAdmin is the public view of a logged-in admin.
type LoginAdmin struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	IsLoggedIn bool   `json:"isLoggedIn"`
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Admin     LoginAdmin
	Role      string
}

// AuthService provides registration, login, logout and session verification.
type AuthService struct {
	store      AdminStore
	signer     *auth.Signer
	bcryptCost int
	now        func() time.Time
}

// AuthOption customises an AuthService.
type AuthOption func(*AuthService)

// WithBcryptCost overrides bcrypt.DefaultCost.
func WithBcryptCost(cost int) AuthOption {
	return func(s *AuthService) { s.bcryptCost = cost }
}

// WithNow overrides the clock used to compute token expiry.
func WithNow(now func() time.Time) AuthOption {
	return func(s *AuthService) { s.now = now }
}

// NewAuthService creates a new AuthService.
func NewAuthService(store AdminStore, signer *auth.Signer, opts ...AuthOption) *AuthService {
	s := &AuthService{
		store:      store,
		signer:     signer,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register validates the input and creates a new admin.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (RegisteredAdmin, error) {
	email := NormalizeEmail(in.Email)
	if email == "" || in.Password == "" || in.PasswordCheck == "" {
		return RegisteredAdmin{}, ErrMissingFields
	}
	if utf8.RuneCountInString(in.Password) < minPasswordLength {
		return RegisteredAdmin{}, ErrPasswordTooShort
	}
	if in.Password != in.PasswordCheck {
		return RegisteredAdmin{}, ErrPasswordMismatch
	}

	_, err := s.store.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return RegisteredAdmin{}, ErrEmailTaken
	case !errors.Is(err, ErrAdminNotFound):
		return RegisteredAdmin{}, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = email
	}

	hash, err := bcrypt.GenerateFromPassword(bcryptInput(in.Password), s.bcryptCost)
	if err != nil {
		return RegisteredAdmin{}, fmt.Errorf("failed to hash password: %w", err)
	}

	admin, err := s.store.Create(ctx, models.Admin{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Surname:      strings.TrimSpace(in.Surname),
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return RegisteredAdmin{}, ErrEmailTaken
		}
		return RegisteredAdmin{}, err
	}

	return RegisteredAdmin{ID: admin.ID, Name: admin.Name, Surname: admin.Surname}, nil
}

// Login verifies credentials, issues a token and marks the admin logged in.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	email := NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return LoginResult{}, ErrMissingFields
	}

	admin, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAdminNotFound) {
			return LoginResult{}, ErrNoAccount
		}
		return LoginResult{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), bcryptInput(in.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, fmt.Errorf("failed to compare password: %w", err)
	}

	ttl := sessionTTL
	if in.RememberMe {
		ttl = rememberMeTTL
	}
	expiresAt := s.now().Add(ttl).Truncate(time.Second)

	token, err := s.signer.Issue(admin.ID, expiresAt)
	if err != nil {
		return LoginResult{}, err
	}

	updated, err := s.store.UpdateLoginState(ctx, admin.ID, true, &expiresAt)
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		Admin:     LoginAdmin{ID: updated.ID, Name: updated.Name, IsLoggedIn: updated.LoggedIn()},
		Role:      models.RoleAdmin,
	}, nil
}

// Logout clears the single-session flag. It does not check the previous value.
func (s *AuthService) Logout(ctx context.Context, adminID string) (bool, error) {
	updated, err := s.store.UpdateLoginState(ctx, adminID, false, nil)
	if err != nil {
		return false, err
	}
	return updated.LoggedIn(), nil
}

// VerifySession resolves a token to a logged-in admin. Rejections are
// *auth.AuthError values; store failures are returned as-is.
func (s *AuthService) VerifySession(ctx context.Context, token string) (models.Admin, error) {
	if token == "" {
		return models.Admin{}, auth.NewAuthError(auth.ReasonMissingToken)
	}

	claims, err := s.signer.Verify(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return models.Admin{}, auth.NewAuthError(auth.ReasonTokenExpired)
		}
		return models.Admin{}, auth.NewAuthError(auth.ReasonInvalidToken)
	}

	admin, err := s.store.FindByID(ctx, claims.AdminID)
	if err != nil {
		if errors.Is(err, ErrAdminNotFound) {
			return models.Admin{}, auth.NewAuthError(auth.ReasonAccountNotFound)
		}
		return models.Admin{}, err
	}

	if !admin.LoggedIn() {
		return models.Admin{}, auth.NewAuthError(auth.ReasonLoggedOut)
	}
	return admin, nil
}

// bcryptInput truncates password to the bytes bcrypt actually hashes, so long
// passwords are accepted instead of failing with bcrypt.ErrPasswordTooLong.
func bcryptInput(password string) []byte {
	b := []byte(password)
	if len(b) > maxBcryptInput {
		b = b[:maxBcryptInput]
	}
	return b
}
