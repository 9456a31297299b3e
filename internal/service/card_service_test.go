package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/loomtrack/internal/constants"
	"github.com/loomtrack/internal/models"
	"github.com/loomtrack/internal/queue"
	"github.com/loomtrack/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupCardServiceTest(t *testing.T) (*CardService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:card_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
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

	queueClient, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("queue client failed: %v", err)
	}
	svc := NewCardService(
		db,
		repository.NewCardRepository(db),
		repository.NewRoutingRepository(db),
		repository.NewOrderRepository(db),
		repository.NewDirectoryRepository(db),
		queueClient,
	)
	return svc, db
}

func createCardTestOrder(t *testing.T, db *gorm.DB, orderNo string) *models.ProductionOrder {
	t.Helper()
	order := &models.ProductionOrder{
		OrderNo:      orderNo,
		CustomerName: "测试客户",
		FabricType:   "平纹棉",
		Color:        "白",
		Quantity:     models.NewQuantityFromInt(1000),
		Unit:         "m",
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func departmentIDByCode(t *testing.T, db *gorm.DB, code string) uint {
	t.Helper()
	var dept models.Department
	if err := db.Where("code = ?", code).First(&dept).Error; err != nil {
		t.Fatalf("department %s missing: %v", code, err)
	}
	return dept.ID
}

func TestCardThreeStepWalkthrough(t *testing.T) {
	svc, db := setupCardServiceTest(t)
	order := createCardTestOrder(t, db, "ORD-CARD-0001")

	card, err := svc.CreateCard(CreateCardInput{
		CardNumber: "KART-1000",
		OrderID:    order.ID,
		Quantity:   models.NewQuantityFromInt(400),
	})
	if err != nil {
		t.Fatalf("CreateCard error: %v", err)
	}
	if card.TotalSteps != 3 {
		t.Fatalf("expected 3 total steps from default routing, got %d", card.TotalSteps)
	}
	if card.Status != constants.CardStatusCreated || card.CurrentStep != 1 {
		t.Fatalf("unexpected fresh card state: %+v", card)
	}

	departments := []string{
		constants.DepartmentWeaving,
		constants.DepartmentFinishing,
		constants.DepartmentQuality,
	}
	for i, deptCode := range departments {
		deptID := departmentIDByCode(t, db, deptCode)
		record, err := svc.StartStep(StartStepInput{
			CardNumber:   "KART-1000",
			OperatorID:   1,
			DepartmentID: deptID,
		})
		if err != nil {
			t.Fatalf("StartStep step %d error: %v", i+1, err)
		}
		if record.StepOrder != i+1 {
			t.Fatalf("expected step order %d, got %d", i+1, record.StepOrder)
		}
		if record.Status != constants.CardRecordStatusInProgress {
			t.Fatalf("expected in_progress record, got %s", record.Status)
		}
		if record.MachineID == 0 || record.ProcessTypeID == 0 {
			t.Fatalf("expected defaulted machine and process type, got %+v", record)
		}

		result, err := svc.CompleteStep(CompleteStepInput{
			CardNumber:        "KART-1000",
			QuantityProcessed: models.NewQuantityFromInt(400),
		})
		if err != nil {
			t.Fatalf("CompleteStep step %d error: %v", i+1, err)
		}
		if i < len(departments)-1 {
			if result.NextStep == nil || *result.NextStep != i+2 {
				t.Fatalf("expected next step %d, got %+v", i+2, result.NextStep)
			}
			if result.Card.Status != constants.CardStatusInProgress {
				t.Fatalf("expected in_progress card, got %s", result.Card.Status)
			}
		} else {
			if result.NextStep != nil {
				t.Fatalf("expected terminal completion, got next step %d", *result.NextStep)
			}
			if result.Card.Status != constants.CardStatusCompleted {
				t.Fatalf("expected completed card, got %s", result.Card.Status)
			}
		}
	}

	// 完结之后再次完工必须报无进行中工序
	if _, err := svc.CompleteStep(CompleteStepInput{CardNumber: "KART-1000"}); !errors.Is(err, ErrNoActiveStep) {
		t.Fatalf("expected ErrNoActiveStep after terminal completion, got %v", err)
	}

	detail, err := svc.Detail("KART-1000")
	if err != nil {
		t.Fatalf("Detail error: %v", err)
	}
	if len(detail.Records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(detail.Records))
	}
	for i, row := range detail.Records {
		if row.StepOrder != i+1 {
			t.Fatalf("records out of order: %+v", detail.Records)
		}
		if row.MachineName == "" || row.DepartmentName == "" {
			t.Fatalf("expected joined names on record row: %+v", row)
		}
	}
}

func TestStartStepRejectsSecondStart(t *testing.T) {
	svc, db := setupCardServiceTest(t)
	order := createCardTestOrder(t, db, "ORD-CARD-0002")
	if _, err := svc.CreateCard(CreateCardInput{
		CardNumber: "KART-2000",
		OrderID:    order.ID,
		Quantity:   models.NewQuantityFromInt(100),
	}); err != nil {
		t.Fatalf("CreateCard error: %v", err)
	}
	weavingID := departmentIDByCode(t, db, constants.DepartmentWeaving)

	if _, err := svc.StartStep(StartStepInput{
		CardNumber:   "KART-2000",
		OperatorID:   1,
		DepartmentID: weavingID,
	}); err != nil {
		t.Fatalf("first StartStep error: %v", err)
	}

	// 同一工步重复开工
	if _, err := svc.StartStep(StartStepInput{
		CardNumber:   "KART-2000",
		OperatorID:   2,
		DepartmentID: weavingID,
	}); !errors.Is(err, ErrStepAlreadyRunning) {
		t.Fatalf("expected ErrStepAlreadyRunning, got %v", err)
	}

	// 其他工步在卡忙时开工
	if _, err := svc.StartStep(StartStepInput{
		CardNumber:   "KART-2000",
		OperatorID:   2,
		DepartmentID: weavingID,
		StepOrder:    2,
	}); !errors.Is(err, ErrCardBusy) {
		t.Fatalf("expected ErrCardBusy, got %v", err)
	}
}

func TestStartStepSimpleIdempotent(t *testing.T) {
	svc, db := setupCardServiceTest(t)
	order := createCardTestOrder(t, db, "ORD-CARD-0003")
	if _, err := svc.CreateCard(CreateCardInput{
		CardNumber: "KART-3000",
		OrderID:    order.ID,
		Quantity:   models.NewQuantityFromInt(100),
	}); err != nil {
		t.Fatalf("CreateCard error: %v", err)
	}
	weavingID := departmentIDByCode(t, db, constants.DepartmentWeaving)

	first, err := svc.StartStepSimple(StartStepInput{
		CardNumber:   "KART-3000",
		OperatorID:   1,
		DepartmentID: weavingID,
	})
	if err != nil {
		t.Fatalf("first StartStepSimple error: %v", err)
	}
	second, err := svc.StartStepSimple(StartStepInput{
		CardNumber:   "KART-3000",
		OperatorID:   2,
		DepartmentID: weavingID,
	})
	if err != nil {
		t.Fatalf("second StartStepSimple error: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected identical record, got %d and %d", first.ID, second.ID)
	}

	var count int64
	db.Model(&models.CardProcessRecord{}).Where("status = ?", constants.CardRecordStatusInProgress).Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly 1 in_progress record, got %d", count)
	}
}

func TestStartStepUnknownCard(t *testing.T) {
	svc, db := setupCardServiceTest(t)
	weavingID := departmentIDByCode(t, db, constants.DepartmentWeaving)
	if _, err := svc.StartStep(StartStepInput{
		CardNumber:   "KART-NOPE",
		OperatorID:   1,
		DepartmentID: weavingID,
	}); !errors.Is(err, ErrCardNotFound) {
		t.Fatalf("expected ErrCardNotFound, got %v", err)
	}
}

func TestStartStepMachineFallbackMissing(t *testing.T) {
	svc, db := setupCardServiceTest(t)
	order := createCardTestOrder(t, db, "ORD-CARD-0004")
	if _, err := svc.CreateCard(CreateCardInput{
		CardNumber: "KART-4000",
		OrderID:    order.ID,
		Quantity:   models.NewQuantityFromInt(100),
	}); err != nil {
		t.Fatalf("CreateCard error: %v", err)
	}

	// 计划部门没有机台
	planningID := departmentIDByCode(t, db, constants.DepartmentPlanning)
	if _, err := svc.StartStep(StartStepInput{
		CardNumber:   "KART-4000",
		OperatorID:   1,
		DepartmentID: planningID,
	}); !errors.Is(err, ErrMachineNotFound) {
		t.Fatalf("expected ErrMachineNotFound, got %v", err)
	}
}

func TestCompleteStepWithoutStart(t *testing.T) {
	svc, db := setupCardServiceTest(t)
	order := createCardTestOrder(t, db, "ORD-CARD-0005")
	if _, err := svc.CreateCard(CreateCardInput{
		CardNumber: "KART-5000",
		OrderID:    order.ID,
		Quantity:   models.NewQuantityFromInt(100),
	}); err != nil {
		t.Fatalf("CreateCard error: %v", err)
	}
	if _, err := svc.CompleteStep(CompleteStepInput{CardNumber: "KART-5000"}); !errors.Is(err, ErrNoActiveStep) {
		t.Fatalf("expected ErrNoActiveStep, got %v", err)
	}
}
