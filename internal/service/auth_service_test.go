package service

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"evcharge/internal/models"
	"evcharge/internal/password"
)

func newAuthFixture(t *testing.T, owners ...*models.Owner) (*AuthService, *TokenService) {
	t.Helper()
	tokens := NewTokenService("test-secret", time.Hour)
	svc := NewAuthService(newFakeUserStore(), newFakeOwnerStore(owners...), password.NewBcryptHasher(bcrypt.MinCost), tokens)
	return svc, tokens
}

func TestRegisterAndLogin(t *testing.T) {
	svc, tokens := newAuthFixture(t)
	stubIDs(t, "user-1")

	user, err := svc.RegisterUser(context.Background(), " operator1 ", "s3cret", models.RoleStationOperator)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Username != "operator1" {
		t.Fatalf("username not trimmed: %q", user.Username)
	}
	if user.PasswordHash == "" || user.PasswordHash == "s3cret" {
		t.Fatal("password must be stored hashed")
	}

	signed, err := svc.Login(context.Background(), "operator1", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := tokens.Validate(signed)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.Subject != "operator1" || claims.Role != models.RoleStationOperator {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _ := newAuthFixture(t)
	if _, err := svc.RegisterUser(context.Background(), "operator1", "pw", models.RoleStationOperator); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err := svc.RegisterUser(context.Background(), "operator1", "pw2", models.RoleBackoffice)
	assertCode(t, err, CodeDuplicateUsername)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newAuthFixture(t)
	if _, err := svc.RegisterUser(context.Background(), "operator1", "s3cret", models.RoleStationOperator); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := svc.Login(context.Background(), "operator1", "wrong")
	assertCode(t, err, CodeInvalidCredentials)

	_, err = svc.Login(context.Background(), "nobody", "s3cret")
	assertCode(t, err, CodeInvalidCredentials)
}

func TestOwnerLogin(t *testing.T) {
	active := &models.Owner{NIC: "991234567V", Name: "Nimal", Email: "nimal@example.com", IsActive: true}
	dormant := &models.Owner{NIC: "881234567V", Name: "Kamal", Email: "kamal@example.com", IsActive: false}
	svc, tokens := newAuthFixture(t, active, dormant)

	signed, err := svc.OwnerLogin(context.Background(), "991234567V")
	if err != nil {
		t.Fatalf("owner login: %v", err)
	}
	claims, err := tokens.Validate(signed)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.Subject != "991234567V" || claims.Role != models.RoleEVOwner {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	_, err = svc.OwnerLogin(context.Background(), "881234567V")
	assertCode(t, err, CodeOwnerInactive)

	_, err = svc.OwnerLogin(context.Background(), "000000000V")
	assertCode(t, err, CodeInvalidCredentials)
}
