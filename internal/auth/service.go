package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/mariasandoval/storelocator-backend/pkg/auth"
	"github.com/mariasandoval/storelocator-backend/pkg/config"
	"github.com/mariasandoval/storelocator-backend/pkg/db/models"
	pkgerrors "github.com/mariasandoval/storelocator-backend/pkg/errors"
	"github.com/mariasandoval/storelocator-backend/pkg/security"
)

const (
	invalidCredentialsMessage  = "invalid credentials"
	invalidRefreshTokenMessage = "invalid refresh token"
	revokedRefreshTokenMessage = "refresh token revoked"
	expiredRefreshTokenMessage = "refresh token expired"
)

type userRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type tokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uuid.UUID) error
}

// Service owns the access/refresh token lifecycle.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Refresh(ctx context.Context, req RefreshRequest) (*RefreshResponse, error)
	Logout(ctx context.Context, req LogoutRequest) error
}

type service struct {
	users  userRepository
	tokens tokenRepository
	jwtCfg config.JWTConfig
	now    func() time.Time
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo  userRepository
	TokenRepo tokenRepository
	JWTConfig config.JWTConfig
	Now       func() time.Time
}

// NewService constructs the token authority with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.TokenRepo == nil {
		return nil, fmt.Errorf("token repository is required")
	}
	if params.JWTConfig.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		users:  params.UserRepo,
		tokens: params.TokenRepo,
		jwtCfg: params.JWTConfig,
		now:    now,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	access, err := pkgauth.MintAccessToken(s.jwtCfg, now, pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	issued, err := newRefreshToken()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "issue refresh token")
	}
	if err := s.tokens.Create(ctx, &models.RefreshToken{
		ID:        issued.ID,
		UserID:    user.ID,
		TokenHash: issued.SecretHash,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.jwtCfg.RefreshTokenTTL()),
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist refresh token")
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record login")
	}

	return &LoginResponse{
		AccessToken:  access,
		RefreshToken: issued.Plaintext,
		TokenType:    TokenTypeBearer,
	}, nil
}

func (s *service) Refresh(ctx context.Context, req RefreshRequest) (*RefreshResponse, error) {
	if strings.TrimSpace(req.RefreshToken) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refresh_token is required")
	}

	id, secret, err := splitRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidRefreshTokenMessage)
	}

	token, err := s.tokens.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidRefreshTokenMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load refresh token")
	}
	if !secretMatchesHash(secret, token.TokenHash) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidRefreshTokenMessage)
	}

	// Terminal states reject further use. Revocation wins over expiry so
	// a logged-out token never reads as merely expired.
	if token.Revoked {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, revokedRefreshTokenMessage)
	}
	now := s.now().UTC()
	if token.ExpiredAt(now) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, expiredRefreshTokenMessage)
	}

	user, err := s.users.FindByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidRefreshTokenMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if !user.IsActive() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidRefreshTokenMessage)
	}

	access, err := pkgauth.MintAccessToken(s.jwtCfg, now, pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	return &RefreshResponse{AccessToken: access, TokenType: TokenTypeBearer}, nil
}

// Logout revokes the supplied refresh token. It reports success for
// already-revoked, expired, malformed, or unknown tokens so the response
// never leaks token state.
func (s *service) Logout(ctx context.Context, req LogoutRequest) error {
	if strings.TrimSpace(req.RefreshToken) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "refresh_token is required")
	}

	id, secret, err := splitRefreshToken(req.RefreshToken)
	if err != nil {
		return nil
	}

	token, err := s.tokens.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load refresh token")
	}
	if !secretMatchesHash(secret, token.TokenHash) {
		return nil
	}

	if err := s.tokens.Revoke(ctx, token.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke refresh token")
	}
	return nil
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}
	if !user.IsActive() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return user, nil
}
