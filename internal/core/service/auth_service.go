package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/tsmart/voyage-api/internal/core/domain"
	"github.com/tsmart/voyage-api/internal/core/ports"
	"github.com/tsmart/voyage-api/internal/pkg/metrics"
)

// BcryptCost is the work factor for stored password hashes.
const BcryptCost = 12

const defaultTokenLifetime = time.Hour

// claims is the signed token body. Refresh tokens carry only sub and type.
type claims struct {
	Email string           `json:"email,omitempty"`
	Role  domain.Role      `json:"role,omitempty"`
	Type  domain.TokenType `json:"type"`
	jwt.RegisteredClaims
}

// AuthService implements registration, login and token handling.
type AuthService struct {
	repo       ports.UserRepository
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
	log        zerolog.Logger
}

var _ ports.AuthService = (*AuthService)(nil)

// AuthConfig lifetimes use the compact "<n><unit>" form, see ParseTokenLifetime.
type AuthConfig struct {
	Secret           string
	ExpiresIn        string
	RefreshExpiresIn string
}

func NewAuthService(repo ports.UserRepository, cfg AuthConfig, log zerolog.Logger) *AuthService {
	return &AuthService{
		repo:       repo,
		secret:     []byte(cfg.Secret),
		accessTTL:  ParseTokenLifetime(cfg.ExpiresIn),
		refreshTTL: ParseTokenLifetime(cfg.RefreshExpiresIn),
		now:        time.Now,
		log:        log.With().Str("component", "auth").Logger(),
	}
}

// ParseTokenLifetime reads "<n><unit>" with unit s, m, h or d ("15m", "7d").
// Anything else yields one hour.
func ParseTokenLifetime(s string) time.Duration {
	if len(s) < 2 {
		return defaultTokenLifetime
	}
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n <= 0 {
		return defaultTokenLifetime
	}
	switch s[len(s)-1] {
	case 's':
		return time.Duration(n) * time.Second
	case 'm':
		return time.Duration(n) * time.Minute
	case 'h':
		return time.Duration(n) * time.Hour
	case 'd':
		return time.Duration(n) * 24 * time.Hour
	default:
		return defaultTokenLifetime
	}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.AuthResult, error) {
	if _, err := s.repo.FindByEmail(ctx, in.Email); err == nil {
		s.record("register", "user_exists")
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		s.record("register", "error")
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, &domain.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		PasswordHash: string(hash),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
		Role:         domain.RoleCustomer,
		IsActive:     true,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			s.record("register", "user_exists")
			return nil, err
		}
		s.record("register", "error")
		s.log.Error().Err(err).Msg("user creation failed")
		return nil, fmt.Errorf("register: %w", err)
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	s.touchLastLogin(ctx, user.ID)
	s.record("register", "success")
	return result, nil
}

// Login answers ErrInvalidCredentials for an unknown email, an inactive
// account and a wrong password alike.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.record("login", "invalid_credentials")
			return nil, domain.ErrInvalidCredentials
		}
		s.record("login", "error")
		return nil, fmt.Errorf("login: %w", err)
	}
	if !user.IsActive {
		s.record("login", "invalid_credentials")
		return nil, domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.record("login", "invalid_credentials")
		return nil, domain.ErrInvalidCredentials
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	s.touchLastLogin(ctx, user.ID)
	s.record("login", "success")
	return result, nil
}

// VerifyToken accepts only access tokens.
func (s *AuthService) VerifyToken(token string) (*domain.TokenPayload, error) {
	c, err := s.parse(token)
	if err != nil {
		return nil, err
	}
	if c.Type != domain.TokenAccess {
		s.log.Warn().Str("type", string(c.Type)).Msg("token verification failed: not an access token")
		return nil, domain.ErrInvalidToken
	}
	return c.payload(), nil
}

func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*domain.AuthResult, error) {
	c, err := s.parse(refreshToken)
	if err != nil {
		s.record("refresh", "invalid_token")
		return nil, domain.ErrInvalidRefreshToken
	}
	if c.Type != domain.TokenRefresh {
		s.record("refresh", "invalid_token")
		return nil, domain.ErrInvalidRefreshToken
	}

	user, err := s.repo.FindByID(ctx, c.Subject)
	if err != nil || !user.IsActive {
		if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
			s.log.Error().Err(err).Str("user_id", c.Subject).Msg("token refresh lookup failed")
		}
		s.record("refresh", "user_inactive")
		return nil, domain.ErrUserInactive
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	s.record("refresh", "success")
	return result, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		s.record("change_password", "user_not_found")
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		s.record("change_password", "incorrect_password")
		return domain.ErrIncorrectPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), BcryptCost)
	if err != nil {
		return fmt.Errorf("change password: hash: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, userID, string(hash)); err != nil {
		s.record("change_password", "error")
		return fmt.Errorf("change password: %w", err)
	}
	s.record("change_password", "success")
	return nil
}

// ResetPassword never reveals whether email belongs to an account. No reset
// link is sent yet; the request is only logged.
func (s *AuthService) ResetPassword(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil && user.IsActive:
		s.log.Info().Str("user_id", user.ID).Msg("password reset requested")
	case err != nil && !errors.Is(err, domain.ErrUserNotFound):
		s.log.Error().Err(err).Msg("password reset lookup failed")
	}
	s.record("reset_password", "success")
	return nil
}

func (s *AuthService) GetUserByToken(ctx context.Context, token string) (*domain.User, error) {
	p, err := s.VerifyToken(token)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, p.Subject)
}

// GenerateToken signs an access token for user carrying its email and role.
func (s *AuthService) GenerateToken(user *domain.User) (string, error) {
	return s.sign(claims{
		Email:            user.Email,
		Role:             user.Role,
		Type:             domain.TokenAccess,
		RegisteredClaims: s.registered(user.ID, s.now(), s.accessTTL),
	})
}

// GenerateRefreshToken signs a refresh token; it carries only sub and type.
func (s *AuthService) GenerateRefreshToken(user *domain.User) (string, error) {
	return s.sign(claims{
		Type:             domain.TokenRefresh,
		RegisteredClaims: s.registered(user.ID, s.now(), s.refreshTTL),
	})
}

func (s *AuthService) issue(user *domain.User) (*domain.AuthResult, error) {
	access, err := s.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := s.GenerateRefreshToken(user)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	return &domain.AuthResult{
		User:         user,
		Token:        access,
		RefreshToken: refresh,
		ExpiresAt:    s.now().Add(s.accessTTL).UTC(),
	}, nil
}

func (s *AuthService) registered(subject string, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (s *AuthService) sign(c claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
}

func (s *AuthService) parse(token string) (*claims, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		s.log.Warn().Err(err).Msg("token verification failed")
		return nil, domain.ErrInvalidToken
	}
	if c.Subject == "" {
		return nil, domain.ErrInvalidToken
	}
	return &c, nil
}

func (c *claims) payload() *domain.TokenPayload {
	p := &domain.TokenPayload{
		Subject: c.Subject,
		Email:   c.Email,
		Role:    c.Role,
		Type:    c.Type,
	}
	if c.IssuedAt != nil {
		p.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		p.ExpiresAt = c.ExpiresAt.Time
	}
	return p
}

func (s *AuthService) touchLastLogin(ctx context.Context, id string) {
	if err := s.repo.TouchLastLogin(ctx, id, s.now().UTC()); err != nil {
		s.log.Warn().Err(err).Str("user_id", id).Msg("failed to record last login")
	}
}

func (s *AuthService) record(event, result string) {
	metrics.AuthEventsTotal.WithLabelValues(event, result).Inc()
}
