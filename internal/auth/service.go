package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborline/shipline-backend/internal/users"
	pkgAuth "github.com/harborline/shipline-backend/pkg/auth"
	"github.com/harborline/shipline-backend/pkg/config"
	"github.com/harborline/shipline-backend/pkg/db/models"
	pkgerrors "github.com/harborline/shipline-backend/pkg/errors"
	"github.com/harborline/shipline-backend/pkg/logger"
	"github.com/harborline/shipline-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid user ID or password"

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*Session, error)
	CurrentUser(ctx context.Context, identity string) (*users.UserDTO, error)
	Refresh(ctx context.Context, identity string) (*Session, error)
	Check(ctx context.Context, identity string) CheckResponse
}

type service struct {
	users    userRepository
	jwtCfg   config.JWTConfig
	password config.PasswordConfig
	logg     *logger.Logger
	now      func() time.Time
}

type userRepository interface {
	FindByIdentity(ctx context.Context, identity string) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo       userRepository
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
	Logger         *logger.Logger
	Now            func() time.Time
}

// NewService constructs an auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.JWTConfig.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		users:    params.UserRepo,
		jwtCfg:   params.JWTConfig,
		password: params.PasswordConfig,
		logg:     params.Logger,
		now:      now,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	user, err := s.authenticate(ctx, req.Identity, req.Password)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *service) CurrentUser(ctx context.Context, identity string) (*users.UserDTO, error) {
	user, err := s.resolve(ctx, identity)
	if err != nil {
		return nil, err
	}
	return users.FromModel(user), nil
}

func (s *service) Refresh(ctx context.Context, identity string) (*Session, error) {
	user, err := s.resolve(ctx, identity)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

// Check never fails; lookup errors read as "not authenticated".
func (s *service) Check(ctx context.Context, identity string) CheckResponse {
	if strings.TrimSpace(identity) == "" {
		return CheckResponse{}
	}
	user, err := s.users.FindByIdentity(ctx, identity)
	if err != nil || user == nil {
		return CheckResponse{}
	}
	return CheckResponse{Authenticated: true, User: users.FromModel(user)}
}

func (s *service) resolve(ctx context.Context, identity string) (*models.User, error) {
	if strings.TrimSpace(identity) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeAuthenticationRequired, "authentication required")
	}
	user, err := s.users.FindByIdentity(ctx, identity)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUserNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDatabase, err, "lookup user")
	}
	return user, nil
}

func (s *service) issue(user *models.User) (*Session, error) {
	token, expiresAt, err := pkgAuth.MintAccessToken(s.jwtCfg, s.now().UTC(), pkgAuth.AccessTokenPayload{
		Identity: user.Identity,
		Role:     user.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return &Session{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      users.FromModel(user),
	}, nil
}

func (s *service) authenticate(ctx context.Context, identity, password string) (*models.User, error) {
	input := strings.TrimSpace(identity)
	if input == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidCredentials, invalidCredentialsMessage)
	}
	user, err := s.users.FindByIdentity(ctx, input)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidCredentials, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDatabase, err, "lookup user")
	}

	valid, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidCredentials, invalidCredentialsMessage)
	}

	if security.NeedsRehash(user.PasswordHash) {
		s.upgradeHash(ctx, user, password)
	}
	return user, nil
}

// upgradeHash moves a legacy bcrypt hash to argon2id. Failures are logged and
// do not block the login.
func (s *service) upgradeHash(ctx context.Context, user *models.User, password string) {
	hash, err := security.HashPassword(password, s.password)
	if err == nil {
		err = s.users.UpdatePasswordHash(ctx, user.ID, hash)
	}
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"identity": user.Identity,
				"error":    err.Error(),
			}), "auth.rehash_failed")
		}
		return
	}
	user.PasswordHash = hash
}
