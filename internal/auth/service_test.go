package auth

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cargochainlabs/cargochain-backend/internal/users"
	pkgAuth "github.com/cargochainlabs/cargochain-backend/pkg/auth"
	"github.com/cargochainlabs/cargochain-backend/pkg/config"
	"github.com/cargochainlabs/cargochain-backend/pkg/db/models"
	"github.com/cargochainlabs/cargochain-backend/pkg/enums"
	pkgerrors "github.com/cargochainlabs/cargochain-backend/pkg/errors"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	service, err := NewService(ServiceParams{
		UserRepo: users.NewRepository(conn),
		PasswordConfig: config.PasswordConfig{
			ArgonMemoryKB:    8,
			ArgonTime:        1,
			ArgonParallelism: 1,
			ArgonSaltLen:     16,
			ArgonKeyLen:      32,
		},
		JWTConfig: config.JWTConfig{
			Secret:            "test-secret",
			Issuer:            "cargochain",
			ExpirationMinutes: 15,
		},
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return service
}

func sampleRegisterRequest() RegisterRequest {
	return RegisterRequest{
		Username: "swift_logistics",
		Email:    "ops@swiftlogistics.test",
		Password: "transport-2025",
		Role:     enums.UserRoleLogistics,
	}
}

func TestRegisterIssuesToken(t *testing.T) {
	service := newTestService(t)

	resp, err := service.Register(context.Background(), sampleRegisterRequest())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatal("expected access token")
	}
	if resp.User.ID == 0 {
		t.Fatal("expected persisted user id")
	}
	if resp.User.Role != enums.UserRoleLogistics {
		t.Fatalf("expected logistics role, got %s", resp.User.Role)
	}

	claims, err := pkgAuth.ParseAccessToken(config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "cargochain",
		ExpirationMinutes: 15,
	}, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != resp.User.ID {
		t.Fatalf("token user mismatch: %d vs %d", claims.UserID, resp.User.ID)
	}
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	service := newTestService(t)
	if _, err := service.Register(context.Background(), sampleRegisterRequest()); err != nil {
		t.Fatalf("register: %v", err)
	}

	dup := sampleRegisterRequest()
	dup.Email = "other@swiftlogistics.test"
	_, err := service.Register(context.Background(), dup)
	if !pkgerrors.Is(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	service := newTestService(t)
	if _, err := service.Register(context.Background(), sampleRegisterRequest()); err != nil {
		t.Fatalf("register: %v", err)
	}

	dup := sampleRegisterRequest()
	dup.Username = "someone_else"
	_, err := service.Register(context.Background(), dup)
	if !pkgerrors.Is(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestRegisterDefaultsRole(t *testing.T) {
	service := newTestService(t)
	req := sampleRegisterRequest()
	req.Role = ""
	resp, err := service.Register(context.Background(), req)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.User.Role != enums.UserRoleUser {
		t.Fatalf("expected default user role, got %s", resp.User.Role)
	}
}

func TestLoginByUsernameAndEmail(t *testing.T) {
	service := newTestService(t)
	if _, err := service.Register(context.Background(), sampleRegisterRequest()); err != nil {
		t.Fatalf("register: %v", err)
	}

	byUsername, err := service.Login(context.Background(), LoginRequest{
		Identifier: "swift_logistics",
		Password:   "transport-2025",
	})
	if err != nil {
		t.Fatalf("login by username: %v", err)
	}
	if byUsername.AccessToken == "" {
		t.Fatal("expected token")
	}
	if byUsername.User.LastLoginAt == nil {
		t.Fatal("expected last login recorded")
	}

	byEmail, err := service.Login(context.Background(), LoginRequest{
		Identifier: "ops@swiftlogistics.test",
		Password:   "transport-2025",
	})
	if err != nil {
		t.Fatalf("login by email: %v", err)
	}
	if byEmail.User.ID != byUsername.User.ID {
		t.Fatal("expected same account")
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	service := newTestService(t)
	if _, err := service.Register(context.Background(), sampleRegisterRequest()); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := service.Login(context.Background(), LoginRequest{
		Identifier: "swift_logistics",
		Password:   "wrong",
	})
	if !pkgerrors.Is(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
}

func TestLoginRejectsUnknownUser(t *testing.T) {
	service := newTestService(t)
	_, err := service.Login(context.Background(), LoginRequest{
		Identifier: "ghost",
		Password:   "anything",
	})
	if !pkgerrors.Is(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
}

func TestWalletLoginProvisionsOnce(t *testing.T) {
	service := newTestService(t)
	address := "0xAbCd000000000000000000000000000000001234"

	first, err := service.WalletLogin(context.Background(), WalletLoginRequest{WalletAddress: address})
	if err != nil {
		t.Fatalf("wallet login: %v", err)
	}
	if first.User.WalletAddress == nil {
		t.Fatal("expected wallet address stored")
	}

	// Same wallet, different casing, finds the same account.
	second, err := service.WalletLogin(context.Background(), WalletLoginRequest{WalletAddress: "0xABCD000000000000000000000000000000001234"})
	if err != nil {
		t.Fatalf("wallet login again: %v", err)
	}
	if second.User.ID != first.User.ID {
		t.Fatalf("expected same account, got %d and %d", first.User.ID, second.User.ID)
	}
}

func TestWalletLoginRequiresAddress(t *testing.T) {
	service := newTestService(t)
	_, err := service.WalletLogin(context.Background(), WalletLoginRequest{WalletAddress: "  "})
	if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestTokenExpiryFollowsConfig(t *testing.T) {
	service := newTestService(t)
	start := time.Now()
	resp, err := service.Register(context.Background(), sampleRegisterRequest())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	claims, err := pkgAuth.ParseAccessToken(config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "cargochain",
		ExpirationMinutes: 15,
	}, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.ExpiresAt.Time.Before(start.Add(14 * time.Minute)) {
		t.Fatal("expected ~15 minute expiry")
	}
}
