package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/cargochainlabs/cargochain-backend/internal/users"
	pkgAuth "github.com/cargochainlabs/cargochain-backend/pkg/auth"
	"github.com/cargochainlabs/cargochain-backend/pkg/config"
	"github.com/cargochainlabs/cargochain-backend/pkg/db/models"
	"github.com/cargochainlabs/cargochain-backend/pkg/enums"
	pkgerrors "github.com/cargochainlabs/cargochain-backend/pkg/errors"
	"github.com/cargochainlabs/cargochain-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth controller.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	WalletLogin(ctx context.Context, req WalletLoginRequest) (*AuthResponse, error)
}

// RegisterRequest carries a new account's fields.
type RegisterRequest struct {
	Username      string
	Email         string
	Password      string
	Role          enums.UserRole
	WalletAddress *string
}

// LoginRequest authenticates by username or email plus password.
type LoginRequest struct {
	Identifier string
	Password   string
}

// WalletLoginRequest authenticates by wallet address, creating the
// account on first sight.
type WalletLoginRequest struct {
	WalletAddress string
}

// AuthResponse is returned by every auth operation.
type AuthResponse struct {
	AccessToken string        `json:"access_token"`
	User        users.UserDTO `json:"user"`
}

type service struct {
	users  users.Repository
	pwdCfg config.PasswordConfig
	jwtCfg config.JWTConfig
	now    func() time.Time
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo       users.Repository
	PasswordConfig config.PasswordConfig
	JWTConfig      config.JWTConfig
	Now            func() time.Time
}

// NewService constructs an auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		users:  params.UserRepo,
		pwdCfg: params.PasswordConfig,
		jwtCfg: params.JWTConfig,
		now:    now,
	}, nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" || email == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username, email and password are required")
	}

	role := req.Role
	if role == "" {
		role = enums.UserRoleUser
	}
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid role %q", role))
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup username")
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup email")
	}

	hash, err := security.HashPassword(req.Password, s.pwdCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		Username:      username,
		Email:         email,
		PasswordHash:  hash,
		Role:          role,
		WalletAddress: normalizeWallet(req.WalletAddress),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "create user")
	}

	return s.issueToken(ctx, user)
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	identifier := strings.TrimSpace(req.Identifier)
	if identifier == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	user, err := s.lookup(ctx, identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	ok, err := security.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil || !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	return s.issueToken(ctx, user)
}

func (s *service) WalletLogin(ctx context.Context, req WalletLoginRequest) (*AuthResponse, error) {
	address := strings.ToLower(strings.TrimSpace(req.WalletAddress))
	if address == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wallet address is required")
	}

	user, err := s.users.GetByWalletAddress(ctx, address)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup wallet")
		}
		user, err = s.provisionWalletUser(ctx, address)
		if err != nil {
			return nil, err
		}
	}

	return s.issueToken(ctx, user)
}

// provisionWalletUser creates a shipper account keyed to the wallet. The
// generated credentials are unusable for password login until reset.
func (s *service) provisionWalletUser(ctx context.Context, address string) (*models.User, error) {
	placeholder, err := security.HashPassword(address+":"+s.now().String(), s.pwdCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash placeholder password")
	}

	suffix := address
	if len(suffix) > 10 {
		suffix = suffix[len(suffix)-10:]
	}
	user := &models.User{
		Username:      "wallet_" + suffix,
		Email:         suffix + "@wallet.cargochain.local",
		PasswordHash:  placeholder,
		Role:          enums.UserRoleUser,
		WalletAddress: &address,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "create wallet user")
	}
	return user, nil
}

func (s *service) lookup(ctx context.Context, identifier string) (*models.User, error) {
	if strings.Contains(identifier, "@") {
		return s.users.GetByEmail(ctx, strings.ToLower(identifier))
	}
	return s.users.GetByUsername(ctx, identifier)
}

func (s *service) issueToken(ctx context.Context, user *models.User) (*AuthResponse, error) {
	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record login")
	}
	loginAt := s.now()
	user.LastLoginAt = &loginAt

	token, err := pkgAuth.MintAccessToken(s.jwtCfg, s.now(), pkgAuth.AccessTokenPayload{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	return &AuthResponse{
		AccessToken: token,
		User:        users.FromModel(user),
	}, nil
}

func normalizeWallet(address *string) *string {
	if address == nil {
		return nil
	}
	trimmed := strings.ToLower(strings.TrimSpace(*address))
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
