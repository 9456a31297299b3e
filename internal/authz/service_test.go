package authz

import (
	"fmt"
	"testing"
	"time"

	"github.com/loomtrack/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzTest(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:authz_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Operator{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func createAuthzOperator(t *testing.T, db *gorm.DB, username string, permissions []string) *models.Operator {
	t.Helper()
	op := &models.Operator{
		Username:    username,
		DisplayName: username,
		Permissions: models.StringArray(permissions),
		IsActive:    true,
	}
	if err := db.Create(op).Error; err != nil {
		t.Fatalf("create operator failed: %v", err)
	}
	return op
}

func TestNewServiceSyncsOperatorPermissions(t *testing.T) {
	db := setupAuthzTest(t)
	writer := createAuthzOperator(t, db, "writer01", []string{"tracking.write", "delay.approve"})
	reader := createAuthzOperator(t, db, "reader01", nil)

	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("NewService error: %v", err)
	}

	for _, perm := range []string{"tracking.write", "delay.approve"} {
		has, err := svc.HasPermission(writer.ID, perm)
		if err != nil {
			t.Fatalf("HasPermission %s error: %v", perm, err)
		}
		if !has {
			t.Fatalf("seeded permission %s not synced into policy", perm)
		}
	}

	has, err := svc.HasPermission(writer.ID, "shipping.write")
	if err != nil {
		t.Fatalf("HasPermission error: %v", err)
	}
	if has {
		t.Fatalf("ungranted permission must be denied")
	}

	has, err = svc.HasPermission(reader.ID, "tracking.write")
	if err != nil {
		t.Fatalf("HasPermission error: %v", err)
	}
	if has {
		t.Fatalf("operator without tags must be denied")
	}
}

func TestWildcardPermission(t *testing.T) {
	db := setupAuthzTest(t)
	admin := createAuthzOperator(t, db, "admin01", []string{"*"})

	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("NewService error: %v", err)
	}

	for _, perm := range []string{"tracking.write", "delay.approve", "anything.else"} {
		has, err := svc.HasPermission(admin.ID, perm)
		if err != nil {
			t.Fatalf("HasPermission %s error: %v", perm, err)
		}
		if !has {
			t.Fatalf("wildcard holder denied %s", perm)
		}
	}
}

func TestSyncOperatorReplacesTags(t *testing.T) {
	db := setupAuthzTest(t)
	op := createAuthzOperator(t, db, "shift01", []string{"tracking.write"})

	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("NewService error: %v", err)
	}

	if err := svc.SyncOperator(op.ID, []string{"shipping.write"}); err != nil {
		t.Fatalf("SyncOperator error: %v", err)
	}

	has, err := svc.HasPermission(op.ID, "tracking.write")
	if err != nil {
		t.Fatalf("HasPermission error: %v", err)
	}
	if has {
		t.Fatalf("old tag must be dropped on sync")
	}
	has, err = svc.HasPermission(op.ID, "shipping.write")
	if err != nil {
		t.Fatalf("HasPermission error: %v", err)
	}
	if !has {
		t.Fatalf("new tag must be granted on sync")
	}
}

func TestGrantAndRevokePermission(t *testing.T) {
	db := setupAuthzTest(t)
	op := createAuthzOperator(t, db, "temp01", nil)

	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("NewService error: %v", err)
	}

	if err := svc.GrantPermission(op.ID, "delay.approve"); err != nil {
		t.Fatalf("GrantPermission error: %v", err)
	}
	has, err := svc.HasPermission(op.ID, "delay.approve")
	if err != nil {
		t.Fatalf("HasPermission error: %v", err)
	}
	if !has {
		t.Fatalf("granted permission denied")
	}

	if err := svc.RevokePermission(op.ID, "delay.approve"); err != nil {
		t.Fatalf("RevokePermission error: %v", err)
	}
	has, err = svc.HasPermission(op.ID, "delay.approve")
	if err != nil {
		t.Fatalf("HasPermission error: %v", err)
	}
	if has {
		t.Fatalf("revoked permission still allowed")
	}
}
