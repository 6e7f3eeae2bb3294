package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/openshelf/library-system/internal/core/domain"
	"github.com/openshelf/library-system/internal/core/ports"
)

// AuthService implements lender registration and login for every role.
type AuthService struct {
	repo ports.UserRepository
	log  zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, log zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, log: log}
}

// Register creates a lender account. The role is checked before any other
// field so a non-lender request is always Forbidden.
func (s *AuthService) Register(ctx context.Context, username, email, password, role string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	password = strings.TrimSpace(password)
	role = strings.TrimSpace(role)

	if role != domain.RoleLender {
		return nil, domain.ErrRegistrationForbidden
	}
	if username == "" || email == "" || password == "" {
		return nil, domain.Invalid("Username, email, and password are required")
	}
	// The username is echoed back in a Set-Cookie value at login.
	if !cookieSafe(username) {
		return nil, domain.Invalid("Username contains characters not allowed in a cookie")
	}

	hash, err := SaltedHash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.repo.Create(ctx, &domain.User{
		Username: username,
		Email:    email,
		Secret:   hash,
		Role:     role,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Str("username", created.Username).Int64("user_id", created.ID).Msg("lender registered")
	return created, nil
}

// Login authenticates username against the stored credential. The claimed
// role must equal the stored role; the stored role then selects the scheme.
func (s *AuthService) Login(ctx context.Context, username, password, role string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	role = strings.TrimSpace(role)

	if username == "" || password == "" || role == "" {
		return nil, domain.Invalid("Missing credentials")
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if user.Role != role {
		s.log.Warn().Str("username", username).Str("claimed_role", role).Msg("login role mismatch")
		return nil, domain.ErrRoleMismatch
	}

	if !VerifySecret(user.Scheme(), password, user.Secret) {
		s.log.Warn().Str("username", username).Stringer("scheme", user.Scheme()).Msg("login rejected")
		return nil, domain.ErrInvalidCredentials
	}

	s.log.Info().Str("username", username).Str("role", user.Role).Msg("login successful")
	return user, nil
}

// cookieSafe reports whether v consists only of RFC 6265 cookie-octets.
func cookieSafe(v string) bool {
	return strings.IndexFunc(v, func(r rune) bool {
		return r <= ' ' || r >= 0x7f || r == '"' || r == ',' || r == ';' || r == '\\'
	}) < 0
}
