package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"globetrotter-service/internal/auth"
	"globetrotter-service/internal/domain"
)

// AuthService registers players and issues bearer tokens.
type AuthService struct {
	users  UserRepository
	tokens *auth.Issuer
	now    func() time.Time
}

func NewAuthService(users UserRepository, tokens *auth.Issuer) *AuthService {
	return &AuthService{users: users, tokens: tokens, now: time.Now}
}

// Register validates the input, stores a new account and returns a token for it.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (string, domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if err := domain.ValidateUsername(username); err != nil {
		return "", domain.User{}, err
	}
	if err := domain.ValidateEmail(email); err != nil {
		return "", domain.User{}, err
	}
	if err := domain.ValidatePassword(password); err != nil {
		return "", domain.User{}, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", domain.User{}, err
	}

	user, err := s.users.Create(ctx, domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		return "", domain.User{}, err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", domain.User{}, err
	}
	return token, user, nil
}

// Login checks credentials by email. Unknown emails and wrong passwords both
// yield domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", domain.User{}, domain.ValidationError{Field: "email", Message: "email and password are required"}
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return "", domain.User{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return "", domain.User{}, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return "", domain.User{}, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", domain.User{}, err
	}
	return token, user, nil
}

// Authenticate resolves a bearer token to a user id.
func (s *AuthService) Authenticate(token string) (string, error) {
	return s.tokens.Parse(token)
}

// Me returns the full account of the authenticated user.
func (s *AuthService) Me(ctx context.Context, userID string) (domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

// Profile returns the public projection of a user.
func (s *AuthService) Profile(ctx context.Context, username string) (domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return domain.User{}, err
	}
	return user.Public(), nil
}
