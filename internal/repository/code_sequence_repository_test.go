package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/loomtrack/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupCodeSequenceTest(t *testing.T) (*GormCodeSequenceRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:code_sequence_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.CodeSequence{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewCodeSequenceRepository(db), db
}

func TestNextValueStartsAtOneAndIncrements(t *testing.T) {
	repo, db := setupCodeSequenceTest(t)

	for want := 1; want <= 5; want++ {
		var got int
		err := db.Transaction(func(tx *gorm.DB) error {
			var err error
			got, err = repo.NextValue(tx, "WV20260829")
			return err
		})
		if err != nil {
			t.Fatalf("NextValue error: %v", err)
		}
		if got != want {
			t.Fatalf("expected %d, got %d", want, got)
		}
	}
}

func TestNextValueScopesAreIndependent(t *testing.T) {
	repo, db := setupCodeSequenceTest(t)

	scopes := []string{"WV20260829", "FN20260829", "WV20260830"}
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, scope := range scopes {
			v, err := repo.NextValue(tx, scope)
			if err != nil {
				return err
			}
			if v != 1 {
				return fmt.Errorf("scope %s expected 1, got %d", scope, v)
			}
		}
		v, err := repo.NextValue(tx, "WV20260829")
		if err != nil {
			return err
		}
		if v != 2 {
			return fmt.Errorf("expected 2 after reuse, got %d", v)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("scoped sequence failed: %v", err)
	}
}

func TestNextValueRollbackDiscardsIncrement(t *testing.T) {
	repo, db := setupCodeSequenceTest(t)

	if err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := repo.NextValue(tx, "QC20260829"); err != nil {
			return err
		}
		return fmt.Errorf("force rollback")
	}); err == nil {
		t.Fatalf("expected forced rollback error")
	}

	var got int
	if err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		got, err = repo.NextValue(tx, "QC20260829")
		return err
	}); err != nil {
		t.Fatalf("NextValue error: %v", err)
	}
	if got != 1 {
		t.Fatalf("rolled-back increment must not persist, got %d", got)
	}
}
