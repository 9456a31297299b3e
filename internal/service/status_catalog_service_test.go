package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/loomtrack/internal/authz"
	"github.com/loomtrack/internal/constants"
	"github.com/loomtrack/internal/models"
	"github.com/loomtrack/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupStatusCatalogTest(t *testing.T, checker *stubChecker) (*StatusCatalogService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:status_catalog_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.MigrateAll(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	if err := models.SeedReferenceData(db); err != nil {
		t.Fatalf("seed reference data failed: %v", err)
	}
	return NewStatusCatalogService(repository.NewStatusRepository(db), checker), db
}

func TestListActiveStatusesOrdered(t *testing.T) {
	svc, _ := setupStatusCatalogTest(t, &stubChecker{})

	statuses, err := svc.ListActiveStatuses()
	if err != nil {
		t.Fatalf("ListActiveStatuses error: %v", err)
	}
	if len(statuses) == 0 {
		t.Fatalf("expected seeded statuses")
	}
	for i := 1; i < len(statuses); i++ {
		if statuses[i-1].Sequence > statuses[i].Sequence {
			t.Fatalf("statuses not ordered by sequence: %d before %d",
				statuses[i-1].Sequence, statuses[i].Sequence)
		}
	}

	if _, err := svc.GetStatusByCode("NO_SUCH_STATUS"); !errors.Is(err, ErrStatusNotFound) {
		t.Fatalf("expected ErrStatusNotFound, got %v", err)
	}
}

func TestValidateTransitionRequiresEdge(t *testing.T) {
	svc, db := setupStatusCatalogTest(t, &stubChecker{})

	created := statusIDByCode(t, db, constants.StatusOrderCreated)
	completed := statusIDByCode(t, db, constants.StatusCompleted)

	// ORDER_CREATED 不能直接跳到 COMPLETED
	if err := svc.ValidateTransition(created, completed, 1, true); !errors.Is(err, ErrTransitionNotAllowed) {
		t.Fatalf("expected ErrTransitionNotAllowed, got %v", err)
	}
}

func TestValidateTransitionPermission(t *testing.T) {
	checker := &stubChecker{allow: map[string]bool{}}
	svc, db := setupStatusCatalogTest(t, checker)

	created := statusIDByCode(t, db, constants.StatusOrderCreated)
	weaving := statusIDByCode(t, db, constants.StatusWeavingStarted)

	if err := svc.ValidateTransition(created, weaving, 1, true); !errors.Is(err, ErrTransitionForbidden) {
		t.Fatalf("expected ErrTransitionForbidden, got %v", err)
	}

	checker.allow[constants.PermissionTrackingWrite] = true
	if err := svc.ValidateTransition(created, weaving, 1, true); err != nil {
		t.Fatalf("permitted transition rejected: %v", err)
	}

	// 系统操作者跳过权限检查
	if err := svc.ValidateTransition(created, weaving, constants.SystemActorID, false); err != nil {
		t.Fatalf("system transition rejected: %v", err)
	}
}

func TestValidateTransitionAutomatedEdge(t *testing.T) {
	checker := &stubChecker{allow: map[string]bool{constants.PermissionShippingWrite: true}}
	svc, db := setupStatusCatalogTest(t, checker)

	shipped := statusIDByCode(t, db, constants.StatusShipped)
	completed := statusIDByCode(t, db, constants.StatusCompleted)

	// SHIPPED→COMPLETED 是自动边：人工触发被拒，系统路径放行
	if err := svc.ValidateTransition(shipped, completed, 1, true); !errors.Is(err, ErrTransitionAutomated) {
		t.Fatalf("expected ErrTransitionAutomated, got %v", err)
	}
	if err := svc.ValidateTransition(shipped, completed, constants.SystemActorID, false); err != nil {
		t.Fatalf("system path rejected on automated edge: %v", err)
	}
}

func TestValidateTransitionWithDirectoryBackedChecker(t *testing.T) {
	dsn := fmt.Sprintf("file:status_catalog_authz_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.MigrateAll(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	if err := models.SeedReferenceData(db); err != nil {
		t.Fatalf("seed reference data failed: %v", err)
	}
	if err := models.InitDefaultOperator(db, "lead01", "lead123"); err != nil {
		t.Fatalf("init default operator failed: %v", err)
	}
	var lead models.Operator
	if err := db.Where("username = ?", "lead01").First(&lead).Error; err != nil {
		t.Fatalf("seeded operator missing: %v", err)
	}

	checker, err := authz.NewService(db)
	if err != nil {
		t.Fatalf("authz service failed: %v", err)
	}
	svc := NewStatusCatalogService(repository.NewStatusRepository(db), checker)

	created := statusIDByCode(t, db, constants.StatusOrderCreated)
	weaving := statusIDByCode(t, db, constants.StatusWeavingStarted)

	// 种子操作员的权限标签经目录同步进策略库，人工流转放行
	if err := svc.ValidateTransition(created, weaving, lead.ID, true); err != nil {
		t.Fatalf("seeded operator rejected: %v", err)
	}
	has, err := checker.HasPermission(lead.ID, constants.PermissionDelayApprove)
	if err != nil {
		t.Fatalf("HasPermission error: %v", err)
	}
	if !has {
		t.Fatalf("seeded delay.approve tag not enforced")
	}

	// 无标签操作员照常被拒
	outsider := &models.Operator{Username: "outsider01", DisplayName: "outsider01", IsActive: true}
	if err := db.Create(outsider).Error; err != nil {
		t.Fatalf("create operator failed: %v", err)
	}
	if err := checker.SyncFromDirectory(db); err != nil {
		t.Fatalf("SyncFromDirectory error: %v", err)
	}
	if err := svc.ValidateTransition(created, weaving, outsider.ID, true); !errors.Is(err, ErrTransitionForbidden) {
		t.Fatalf("expected ErrTransitionForbidden, got %v", err)
	}
}

func TestListTransitionsFromAnnotatesAllowed(t *testing.T) {
	checker := &stubChecker{allow: map[string]bool{constants.PermissionTrackingWrite: true}}
	svc, db := setupStatusCatalogTest(t, checker)

	created := statusIDByCode(t, db, constants.StatusOrderCreated)
	options, err := svc.ListTransitionsFrom(created, 1)
	if err != nil {
		t.Fatalf("ListTransitionsFrom error: %v", err)
	}
	if len(options) == 0 {
		t.Fatalf("expected outgoing edges from ORDER_CREATED")
	}

	byCode := map[string]TransitionOption{}
	for _, opt := range options {
		if opt.ToStatus == nil {
			t.Fatalf("to_status not resolved: %+v", opt.Transition)
		}
		byCode[opt.ToStatus.Code] = opt
	}

	weaving, ok := byCode[constants.StatusWeavingStarted]
	if !ok {
		t.Fatalf("edge to WEAVING_STARTED missing")
	}
	if !weaving.Allowed {
		t.Fatalf("tracking.write holder must be allowed to start weaving")
	}

	hold, ok := byCode[constants.StatusOnHold]
	if !ok {
		t.Fatalf("edge to ON_HOLD missing")
	}
	if hold.Allowed {
		t.Fatalf("hold edge must be blocked without its permission")
	}

	cancel, ok := byCode[constants.StatusCancelled]
	if !ok {
		t.Fatalf("edge to CANCELLED missing")
	}
	if cancel.Allowed {
		t.Fatalf("automated cancel edge must be blocked for human operators")
	}

	if _, err := svc.ListTransitionsFrom(9999, 1); !errors.Is(err, ErrStatusNotFound) {
		t.Fatalf("expected ErrStatusNotFound, got %v", err)
	}
}
