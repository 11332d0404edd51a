package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"versioninfo/models"

	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	// ErrInvalidCredentials is returned for an unknown login, a wrong password
	// or a wrong authentication code
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRateLimited is returned when a client made too many login attempts
	ErrRateLimited = errors.New("too many login attempts")
	// ErrSessionNotFound is returned for unknown or expired sessions
	ErrSessionNotFound = errors.New("session not found")
)

// AuthOptions configures an AuthService
type AuthOptions struct {
	SessionDuration time.Duration
	RateLimit       int
	RateWindow      time.Duration
}

// AuthService handles console logins and sessions
type AuthService struct {
	db          *gorm.DB
	opts        AuthOptions
	rateLimiter *RateLimiter
	now         func() time.Time
}

// NewAuthService constructs an auth service
func NewAuthService(db *gorm.DB, opts AuthOptions) *AuthService {
	if opts.SessionDuration <= 0 {
		opts.SessionDuration = 24 * time.Hour
	}
	return &AuthService{
		db:          db,
		opts:        opts,
		rateLimiter: NewRateLimiter(opts.RateLimit, opts.RateWindow),
		now:         time.Now,
	}
}

// Authenticate checks login, password and, for users with a TOTP secret,
// the authentication code. ip is used for rate limiting.
func (s *AuthService) Authenticate(ctx context.Context, ip, login, password, code string) (*models.User, error) {
	if !s.rateLimiter.Allow(ip) {
		return nil, ErrRateLimited
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("login = ?", login).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.TOTPSecret != "" && !totp.Validate(code, user.TOTPSecret) {
		return nil, ErrInvalidCredentials
	}

	s.rateLimiter.Reset(ip)
	return &user, nil
}

// CreateSession starts a session for userID
func (s *AuthService) CreateSession(ctx context.Context, userID uint) (*models.Session, error) {
	id, err := generateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	now := s.now()
	sess := &models.Session{
		ID:        id,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.opts.SessionDuration),
	}
	if err := s.db.WithContext(ctx).Create(sess).Error; err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return sess, nil
}

// SessionUser resolves a session id to its session and user. Expired
// sessions are deleted.
func (s *AuthService) SessionUser(ctx context.Context, id string) (*models.Session, *models.User, error) {
	if id == "" {
		return nil, nil, ErrSessionNotFound
	}

	var sess models.Session
	if err := s.db.WithContext(ctx).First(&sess, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrSessionNotFound
		}
		return nil, nil, fmt.Errorf("failed to load session: %w", err)
	}
	if sess.Expired(s.now()) {
		_ = s.DeleteSession(ctx, id)
		return nil, nil, ErrSessionNotFound
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, sess.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrSessionNotFound
		}
		return nil, nil, fmt.Errorf("failed to load session user: %w", err)
	}
	return &sess, &user, nil
}

// DeleteSession ends a session
func (s *AuthService) DeleteSession(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Delete(&models.Session{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// PurgeExpiredSessions deletes every expired session and returns how many
// were removed
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at < ?", s.now()).Delete(&models.Session{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// EnsureUser creates the user described by req unless its login exists.
// created reports whether a new user was written.
func (s *AuthService) EnsureUser(ctx context.Context, req models.UserCreate) (user *models.User, created bool, err error) {
	req.Normalize()
	if req.Login == "" || req.Password == "" {
		return nil, false, errors.New("login and password are required")
	}
	if req.Role != models.RoleAdministrator && req.Role != models.RoleEditor {
		return nil, false, fmt.Errorf("unknown role: %s", req.Role)
	}

	var existing models.User
	err = s.db.WithContext(ctx).Where("login = ?", req.Login).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("failed to look up user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, false, fmt.Errorf("failed to hash password: %w", err)
	}

	u := models.User{
		Login:        req.Login,
		PasswordHash: string(hash),
		Role:         req.Role,
		TOTPSecret:   req.TOTPSecret,
	}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		return nil, false, fmt.Errorf("failed to create user: %w", err)
	}
	return &u, true, nil
}

func generateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
