package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jbtolen/wastesort/internal/common"
	"github.com/jbtolen/wastesort/internal/logging"
	"github.com/jbtolen/wastesort/internal/server/config"
	"github.com/jbtolen/wastesort/internal/server/models"
	"github.com/jbtolen/wastesort/internal/server/store"
)

// bcryptCost is deliberately above the library default; password hashing is
// the one intentionally CPU-expensive step of a login.
const bcryptCost = 10

// PublicProfile is the outward projection of a user. It never carries the
// password hash.
type PublicProfile struct {
	ID        string          `json:"id"`
	Email     string          `json:"email"`
	Role      string          `json:"role"`
	FirstName *string         `json:"firstName,omitempty"`
	Usage     models.APIUsage `json:"usage"`
}

// Service provides authentication-related operations:
// - Register: create users
// - Login: verify credentials and mint a bearer token
// - Verify: validate a presented token
// - GetUserProfile: fresh user+usage projection
type Service struct {
	store             *store.Store
	secret            []byte
	tokenValidity     time.Duration
	defaultQuotaLimit int
	adminEmail        string
	adminPassword     string
	logger            logging.Logger
}

// NewService constructs the credential service from server config.
func NewService(st *store.Store, cfg *config.Config, logger logging.Logger) *Service {
	return &Service{
		store:             st,
		secret:            []byte(cfg.SecretKey),
		tokenValidity:     cfg.TokenValidity,
		defaultQuotaLimit: cfg.DefaultQuotaLimit,
		adminEmail:        cfg.AdminEmail,
		adminPassword:     cfg.AdminPassword,
		logger:            logger.With("module", "auth"),
	}
}

// TokenValidity is exposed so the HTTP layer can align the session cookie
// lifetime with the token it carries.
func (s *Service) TokenValidity() time.Duration { return s.tokenValidity }

// Register creates a user with role "user" and the default quota limit.
// The email is normalized to lowercase; a duplicate (case-insensitive)
// yields common.ErrorAlreadyExists.
func (s *Service) Register(ctx context.Context, email, password string, firstName *string) (*PublicProfile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, common.ErrorValidation
	}

	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return nil, common.ErrorAlreadyExists
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user, err := s.store.CreateUser(ctx, &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    firstName,
		Role:         models.RoleUser,
	}, s.defaultQuotaLimit)
	if err != nil {
		return nil, err
	}

	return publicProfile(user), nil
}

// Login verifies the password against the stored hash and, on success,
// issues a signed bearer token. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (string, *PublicProfile, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", nil, common.ErrorInvalidCredentials
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, common.ErrorInvalidCredentials
	}

	token, err := GenerateToken(user.ID, user.Email, user.Role, s.secret, s.tokenValidity)
	if err != nil {
		return "", nil, common.ErrorInternal
	}

	return token, publicProfile(user), nil
}

// Verify validates signature and expiry. Any failure is the normal absent
// outcome, never an error pushed up the stack.
func (s *Service) Verify(token string) (*Claims, bool) {
	claims, err := ParseToken(token, s.secret)
	if err != nil {
		return nil, false
	}
	return claims, true
}

// GetUserProfile re-reads the current user+usage state so callers see fresh
// quota counters, not a snapshot from token issuance.
func (s *Service) GetUserProfile(ctx context.Context, userID string) (*PublicProfile, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return publicProfile(user), nil
}

// SeedAdmin creates the bootstrap admin account if it does not exist yet.
// Idempotent; a no-op when admin credentials are not configured.
func (s *Service) SeedAdmin(ctx context.Context) (*PublicProfile, error) {
	if s.adminEmail == "" || s.adminPassword == "" {
		return nil, nil
	}

	email := strings.ToLower(s.adminEmail)
	if user, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return publicProfile(user), nil
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.adminPassword), bcryptCost)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user, err := s.store.CreateUser(ctx, &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}, s.defaultQuotaLimit)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "seeded admin user", "email", email)
	return publicProfile(user), nil
}

func publicProfile(user *models.User) *PublicProfile {
	return &PublicProfile{
		ID:        user.ID,
		Email:     user.Email,
		Role:      user.Role,
		FirstName: user.FirstName,
		Usage:     user.Usage,
	}
}
