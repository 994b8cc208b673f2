package services

//go:generate mockgen -source=auth.go -destination=auth_mock.go -package=services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/sbilibin2017/gw-messenger/internal/logger"
	"github.com/sbilibin2017/gw-messenger/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// bcrypt ignores input past this length.
const maxPasswordBytes = 72

// Column widths of the users table, in characters.
const (
	maxUsernameLen = 50
	maxNameLen     = 100
	maxPhoneLen    = 32
)

// UserReader defines read-only operations for users.
type UserReader interface {
	GetByUsername(ctx context.Context, username string) (*models.UserDB, error) // Returns nil when the user does not exist
	List(ctx context.Context) ([]models.UserBasic, error)                        // Returns all users ordered by username
}

// UserWriter defines write operations for users.
type UserWriter interface {
	Save(ctx context.Context, username, passwordHash, firstName, lastName, phone string) (*models.UserDB, error) // Returns nil when the username is taken
	UpdateLastLogin(ctx context.Context, username string) error                                                 // Returns sql.ErrNoRows for an unknown user
}

// JWTGenerator defines an interface for generating JWT tokens.
type JWTGenerator interface {
	Generate(ctx context.Context, username string) (string, error)
}

// ProfileCache caches public profiles.
type ProfileCache interface {
	GetProfile(ctx context.Context, username string) (*models.User, error) // Returns nil on a cache miss
	SetProfile(ctx context.Context, profile *models.User) error
	DeleteProfile(ctx context.Context, username string) error
}

// AuthConfig holds the credential hashing settings.
type AuthConfig struct {
	BcryptCost int // bcrypt work factor, bcrypt.DefaultCost when out of range
}

// AuthService handles registration, credential verification and login.
type AuthService struct {
	reader    UserReader
	writer    UserWriter
	jwt       JWTGenerator
	cache     ProfileCache
	cost      int
	dummyHash []byte
}

// NewAuthService creates a new AuthService instance. cache may be nil.
func NewAuthService(reader UserReader, writer UserWriter, jwt JWTGenerator, cache ProfileCache, cfg AuthConfig) *AuthService {
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	// compared against for unknown usernames so both failure paths cost one bcrypt run
	dummyHash, err := bcrypt.GenerateFromPassword([]byte("gw-messenger-dummy"), cost)
	if err != nil {
		logger.Log.Errorw("failed to build dummy hash", "err", err)
	}

	return &AuthService{
		reader:    reader,
		writer:    writer,
		jwt:       jwt,
		cache:     cache,
		cost:      cost,
		dummyHash: dummyHash,
	}
}

// Register creates a new user and returns its public profile.
func (svc *AuthService) Register(ctx context.Context, username, password, firstName, lastName, phone string) (*models.User, error) {
	log := logger.FromContext(ctx)

	if username == "" || password == "" || firstName == "" || lastName == "" {
		return nil, fmt.Errorf("%w: username, password, first_name and last_name are required", ErrValidation)
	}
	if len(password) > maxPasswordBytes {
		return nil, fmt.Errorf("%w: password must be %d bytes or fewer", ErrValidation, maxPasswordBytes)
	}
	for _, f := range []struct {
		name  string
		value string
		max   int
	}{
		{"username", username, maxUsernameLen},
		{"first_name", firstName, maxNameLen},
		{"last_name", lastName, maxNameLen},
		{"phone", phone, maxPhoneLen},
	} {
		if utf8.RuneCountInString(f.value) > f.max {
			return nil, fmt.Errorf("%w: %s must be %d characters or fewer", ErrValidation, f.name, f.max)
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), svc.cost)
	if err != nil {
		log.Errorw("failed to hash password", "err", err)
		return nil, err
	}

	user, err := svc.writer.Save(ctx, username, string(hashedPassword), firstName, lastName, phone)
	if err != nil {
		log.Errorw("failed to save user", "username", username, "err", err)
		return nil, err
	}
	if user == nil {
		log.Infow("user already exists", "username", username)
		return nil, ErrDuplicateIdentity
	}

	return user.Profile(), nil
}

// Authenticate reports whether password matches the stored credential of username.
// Unknown users and wrong passwords both yield false; the error is set only on store failures.
func (svc *AuthService) Authenticate(ctx context.Context, username, password string) (bool, error) {
	user, err := svc.reader.GetByUsername(ctx, username)
	if err != nil {
		logger.FromContext(ctx).Errorw("failed to get user", "err", err)
		return false, err
	}

	// bcrypt only looks at the first 72 bytes, so a longer password could match a shorter one
	if user == nil || len(password) > maxPasswordBytes {
		_ = bcrypt.CompareHashAndPassword(svc.dummyHash, []byte(password))
		return false, nil
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password))
	if err != nil && !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		logger.FromContext(ctx).Errorw("stored credential is unusable", "username", username, "err", err)
	}
	return err == nil, nil
}

// RecordLogin sets the last-login timestamp of username to now.
func (svc *AuthService) RecordLogin(ctx context.Context, username string) error {
	log := logger.FromContext(ctx)

	if err := svc.writer.UpdateLastLogin(ctx, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		log.Errorw("failed to update last login", "username", username, "err", err)
		return err
	}

	if svc.cache != nil {
		if err := svc.cache.DeleteProfile(ctx, username); err != nil {
			log.Warnw("failed to evict cached profile", "username", username, "err", err)
		}
	}

	return nil
}

// Login authenticates a user, records the login and returns a JWT token.
func (svc *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	ok, err := svc.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}
	if !ok {
		logger.FromContext(ctx).Infow("invalid credentials", "username", username)
		return "", ErrInvalidCredentials
	}

	if err := svc.RecordLogin(ctx, username); err != nil {
		return "", err
	}

	token, err := svc.jwt.Generate(ctx, username)
	if err != nil {
		logger.FromContext(ctx).Errorw("failed to generate JWT", "err", err)
		return "", err
	}

	return token, nil
}
