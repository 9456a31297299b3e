package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/loomtrack/internal/models"
	"github.com/loomtrack/internal/repository"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupAuthServiceTest(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:auth_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.MigrateAll(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	svc := NewAuthService(repository.NewOperatorRepository(db), "test-secret", 1)
	return svc, db
}

func createAuthTestOperator(t *testing.T, db *gorm.DB, username, password string, active bool) *models.Operator {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	op := &models.Operator{
		Username:     username,
		DisplayName:  username,
		PasswordHash: string(hash),
		IsActive:     active,
	}
	if err := db.Create(op).Error; err != nil {
		t.Fatalf("create operator failed: %v", err)
	}
	return op
}

func TestLoginAndParseToken(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	op := createAuthTestOperator(t, db, "weaver01", "weaver123", true)

	result, err := svc.Login("weaver01", "weaver123")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if result.Token == "" {
		t.Fatalf("empty token")
	}
	if result.Operator == nil || result.Operator.ID != op.ID {
		t.Fatalf("operator missing from result")
	}

	claims, err := svc.ParseToken(result.Token)
	if err != nil {
		t.Fatalf("ParseToken error: %v", err)
	}
	if claims.OperatorID != op.ID || claims.Username != "weaver01" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	createAuthTestOperator(t, db, "weaver02", "weaver123", true)
	createAuthTestOperator(t, db, "leaver01", "gone123", false)

	if _, err := svc.Login("weaver02", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login("nobody", "x"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login("leaver01", "gone123"); !errors.Is(err, ErrOperatorDisabled) {
		t.Fatalf("expected ErrOperatorDisabled, got %v", err)
	}
}

func TestParseTokenRejectsForgedToken(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	createAuthTestOperator(t, db, "weaver03", "weaver123", true)

	result, err := svc.Login("weaver03", "weaver123")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}

	other := NewAuthService(repository.NewOperatorRepository(db), "other-secret", 1)
	if _, err := other.ParseToken(result.Token); err == nil {
		t.Fatalf("token signed with different secret must be rejected")
	}
}
