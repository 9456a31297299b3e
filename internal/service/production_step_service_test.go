package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/loomtrack/internal/constants"
	"github.com/loomtrack/internal/models"
	"github.com/loomtrack/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupStepServiceTest(t *testing.T) (*ProductionStepService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:step_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.MigrateAll(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	if err := models.SeedReferenceData(db); err != nil {
		t.Fatalf("seed reference data failed: %v", err)
	}
	svc := NewProductionStepService(
		repository.NewOrderRepository(db),
		repository.NewProductionStepRepository(db),
	)
	return svc, db
}

func createStepTestOrder(t *testing.T, db *gorm.DB, orderNo string) *models.ProductionOrder {
	t.Helper()
	order := &models.ProductionOrder{
		OrderNo:      orderNo,
		CustomerName: "测试客户",
		FabricType:   "双层纱布",
		Quantity:     models.NewQuantityFromInt(300),
		Unit:         "m",
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func stepTestDepartmentID(t *testing.T, db *gorm.DB, code string) uint {
	t.Helper()
	var dept models.Department
	if err := db.Where("code = ?", code).First(&dept).Error; err != nil {
		t.Fatalf("department %s missing: %v", code, err)
	}
	return dept.ID
}

func TestCreateStepDefaults(t *testing.T) {
	svc, db := setupStepServiceTest(t)
	order := createStepTestOrder(t, db, "ORD-ST-0001")
	deptID := stepTestDepartmentID(t, db, constants.DepartmentWeaving)

	step, err := svc.CreateStep(CreateStepInput{
		OrderID:      order.ID,
		DepartmentID: deptID,
		StepLabel:    "织造",
		StepOrder:    1,
		OperatorID:   7,
	})
	if err != nil {
		t.Fatalf("CreateStep error: %v", err)
	}
	if step.Status != constants.StepStatusPending {
		t.Fatalf("expected pending default, got %s", step.Status)
	}
	if step.CompletionPercent != 0 {
		t.Fatalf("expected 0%% default, got %d", step.CompletionPercent)
	}
	if step.UpdatedByID != 7 {
		t.Fatalf("creator not stamped: %d", step.UpdatedByID)
	}

	if _, err := svc.CreateStep(CreateStepInput{OrderID: order.ID, DepartmentID: deptID, StepLabel: "x", StepOrder: 0}); !errors.Is(err, ErrStepOrderInvalid) {
		t.Fatalf("expected ErrStepOrderInvalid, got %v", err)
	}
	if _, err := svc.CreateStep(CreateStepInput{OrderID: 9999, DepartmentID: deptID, StepLabel: "x", StepOrder: 1}); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestCreateStepRejectsDuplicateSlot(t *testing.T) {
	svc, db := setupStepServiceTest(t)
	order := createStepTestOrder(t, db, "ORD-ST-0004")
	deptID := stepTestDepartmentID(t, db, constants.DepartmentWeaving)

	input := CreateStepInput{
		OrderID:      order.ID,
		DepartmentID: deptID,
		StepLabel:    "织造",
		StepOrder:    1,
		OperatorID:   1,
	}
	if _, err := svc.CreateStep(input); err != nil {
		t.Fatalf("CreateStep error: %v", err)
	}
	if _, err := svc.CreateStep(input); !errors.Is(err, ErrStepSlotTaken) {
		t.Fatalf("expected ErrStepSlotTaken, got %v", err)
	}

	// 另一序号不受影响
	input.StepOrder = 2
	if _, err := svc.CreateStep(input); err != nil {
		t.Fatalf("CreateStep with free slot error: %v", err)
	}
}

func TestUpdateStepValidatesCompletion(t *testing.T) {
	svc, db := setupStepServiceTest(t)
	order := createStepTestOrder(t, db, "ORD-ST-0002")
	deptID := stepTestDepartmentID(t, db, constants.DepartmentWeaving)

	step, err := svc.CreateStep(CreateStepInput{
		OrderID:      order.ID,
		DepartmentID: deptID,
		StepLabel:    "织造",
		StepOrder:    1,
		OperatorID:   7,
	})
	if err != nil {
		t.Fatalf("CreateStep error: %v", err)
	}

	for _, bad := range []int{-1, 101} {
		pct := bad
		if _, err := svc.UpdateStep(step.ID, UpdateStepInput{CompletionPercent: &pct}); !errors.Is(err, ErrCompletionOutOfRange) {
			t.Fatalf("completion %d: expected ErrCompletionOutOfRange, got %v", bad, err)
		}
	}

	pct := 45
	status := constants.StepStatusInProgress
	now := time.Now()
	updated, err := svc.UpdateStep(step.ID, UpdateStepInput{
		Status:            &status,
		CompletionPercent: &pct,
		ActualStart:       &now,
		OperatorID:        9,
	})
	if err != nil {
		t.Fatalf("UpdateStep error: %v", err)
	}
	if updated.Status != constants.StepStatusInProgress || updated.CompletionPercent != 45 {
		t.Fatalf("update not applied: %+v", updated)
	}
	if updated.ActualStart == nil {
		t.Fatalf("actual start not recorded")
	}
	if updated.UpdatedByID != 9 {
		t.Fatalf("updater not stamped: %d", updated.UpdatedByID)
	}

	if _, err := svc.UpdateStep(9999, UpdateStepInput{}); !errors.Is(err, ErrStepNotFound) {
		t.Fatalf("expected ErrStepNotFound, got %v", err)
	}
}

func TestCurrentStepSelection(t *testing.T) {
	svc, db := setupStepServiceTest(t)
	order := createStepTestOrder(t, db, "ORD-ST-0003")

	current, err := svc.CurrentStep(order.ID)
	if err != nil {
		t.Fatalf("CurrentStep error: %v", err)
	}
	if current != nil {
		t.Fatalf("expected nil for order without steps, got %+v", current)
	}

	labels := []struct {
		dept  string
		label string
	}{
		{constants.DepartmentWeaving, "织造"},
		{constants.DepartmentFinishing, "染整"},
		{constants.DepartmentQuality, "质检"},
	}
	var steps []*models.ProductionStep
	for i, l := range labels {
		step, err := svc.CreateStep(CreateStepInput{
			OrderID:      order.ID,
			DepartmentID: stepTestDepartmentID(t, db, l.dept),
			StepLabel:    l.label,
			StepOrder:    i + 1,
			OperatorID:   1,
		})
		if err != nil {
			t.Fatalf("CreateStep %s error: %v", l.label, err)
		}
		steps = append(steps, step)
	}

	// 全 pending：当前工序为第一道
	current, err = svc.CurrentStep(order.ID)
	if err != nil {
		t.Fatalf("CurrentStep error: %v", err)
	}
	if current == nil || current.ID != steps[0].ID {
		t.Fatalf("expected first pending step, got %+v", current)
	}

	// 第二道开工后优先返回 in_progress
	inProgress := constants.StepStatusInProgress
	if _, err := svc.UpdateStep(steps[1].ID, UpdateStepInput{Status: &inProgress, OperatorID: 1}); err != nil {
		t.Fatalf("UpdateStep error: %v", err)
	}
	completed := constants.StepStatusCompleted
	if _, err := svc.UpdateStep(steps[0].ID, UpdateStepInput{Status: &completed, OperatorID: 1}); err != nil {
		t.Fatalf("UpdateStep error: %v", err)
	}

	current, err = svc.CurrentStep(order.ID)
	if err != nil {
		t.Fatalf("CurrentStep error: %v", err)
	}
	if current == nil || current.ID != steps[1].ID {
		t.Fatalf("expected in_progress step, got %+v", current)
	}

	if _, err := svc.ListSteps("ORD-MISSING"); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}

	listed, err := svc.ListSteps(order.OrderNo)
	if err != nil {
		t.Fatalf("ListSteps error: %v", err)
	}
	if len(listed) != 3 || listed[0].StepOrder != 1 || listed[2].StepOrder != 3 {
		t.Fatalf("steps not ordered: %+v", listed)
	}
}
