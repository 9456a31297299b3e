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

func setupTrackingServiceTest(t *testing.T) (*TrackingService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:tracking_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
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

	svc := NewTrackingService(
		repository.NewOrderRepository(db),
		repository.NewTrackingEventRepository(db),
		repository.NewStatusRepository(db),
		repository.NewProductionStepRepository(db),
		repository.NewTransferRepository(db),
		repository.NewDelayRepository(db),
		repository.NewOperatorRepository(db),
	)
	return svc, db
}

func createTrackingTestOrder(t *testing.T, db *gorm.DB, orderNo string) *models.ProductionOrder {
	t.Helper()
	order := &models.ProductionOrder{
		OrderNo:      orderNo,
		CustomerName: "测试客户",
		FabricType:   "色织格子布",
		Quantity:     models.NewQuantityFromInt(600),
		Unit:         "m",
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func statusIDByCode(t *testing.T, db *gorm.DB, code string) uint {
	t.Helper()
	var status models.TrackingStatus
	if err := db.Where("code = ?", code).First(&status).Error; err != nil {
		t.Fatalf("status %s missing: %v", code, err)
	}
	return status.ID
}

func createTrackingTestOperator(t *testing.T, db *gorm.DB, username, displayName string) *models.Operator {
	t.Helper()
	op := &models.Operator{
		Username:    username,
		DisplayName: displayName,
		IsActive:    true,
	}
	if err := db.Create(op).Error; err != nil {
		t.Fatalf("create operator failed: %v", err)
	}
	return op
}

func TestRecordEventRoundTrip(t *testing.T) {
	svc, db := setupTrackingServiceTest(t)
	order := createTrackingTestOrder(t, db, "ORD-TK-0001")
	op := createTrackingTestOperator(t, db, "tracker01", "张跟单")
	createdID := statusIDByCode(t, db, constants.StatusOrderCreated)

	event, err := svc.RecordEvent(RecordEventInput{
		OrderID:  order.ID,
		StatusID: createdID,
		Note:     "订单建档",
		ActorID:  op.ID,
	})
	if err != nil {
		t.Fatalf("RecordEvent error: %v", err)
	}
	if event.ID == 0 {
		t.Fatalf("event not persisted")
	}

	current, err := svc.CurrentStatus(order.ID)
	if err != nil {
		t.Fatalf("CurrentStatus error: %v", err)
	}
	if current == nil || current.Code != constants.StatusOrderCreated {
		t.Fatalf("expected ORDER_CREATED, got %+v", current)
	}

	// 事件落账后订单上的状态缓存同步刷新
	var reloaded models.ProductionOrder
	if err := db.First(&reloaded, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if reloaded.CurrentStatusID != createdID {
		t.Fatalf("order status cache not refreshed: %d", reloaded.CurrentStatusID)
	}
}

func TestRecordEventValidatesReferences(t *testing.T) {
	svc, db := setupTrackingServiceTest(t)
	order := createTrackingTestOrder(t, db, "ORD-TK-0002")

	if _, err := svc.RecordEvent(RecordEventInput{OrderID: 9999, StatusID: 1}); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
	if _, err := svc.RecordEvent(RecordEventInput{OrderID: order.ID, StatusID: 9999}); !errors.Is(err, ErrStatusNotFound) {
		t.Fatalf("expected ErrStatusNotFound, got %v", err)
	}
}

func TestCurrentStatusFollowsLatestEvent(t *testing.T) {
	svc, db := setupTrackingServiceTest(t)
	order := createTrackingTestOrder(t, db, "ORD-TK-0003")

	current, err := svc.CurrentStatus(order.ID)
	if err != nil {
		t.Fatalf("CurrentStatus error: %v", err)
	}
	if current != nil {
		t.Fatalf("order without events must have nil status, got %+v", current)
	}

	codes := []string{constants.StatusOrderCreated, constants.StatusWeavingStarted, constants.StatusWeavingCompleted}
	for _, code := range codes {
		if _, err := svc.RecordEvent(RecordEventInput{
			OrderID:  order.ID,
			StatusID: statusIDByCode(t, db, code),
			ActorID:  1,
		}); err != nil {
			t.Fatalf("RecordEvent %s error: %v", code, err)
		}
	}

	current, err = svc.CurrentStatus(order.ID)
	if err != nil {
		t.Fatalf("CurrentStatus error: %v", err)
	}
	if current == nil || current.Code != constants.StatusWeavingCompleted {
		t.Fatalf("expected latest status WEAVING_COMPLETED, got %+v", current)
	}
}

func TestRecordEventFollowsAutomatedEdge(t *testing.T) {
	svc, db := setupTrackingServiceTest(t)
	order := createTrackingTestOrder(t, db, "ORD-TK-0006")

	// 发运落账后，SHIPPED→COMPLETED 自动边由系统接续
	if _, err := svc.RecordEvent(RecordEventInput{
		OrderID:  order.ID,
		StatusID: statusIDByCode(t, db, constants.StatusShipped),
		ActorID:  1,
	}); err != nil {
		t.Fatalf("RecordEvent error: %v", err)
	}

	current, err := svc.CurrentStatus(order.ID)
	if err != nil {
		t.Fatalf("CurrentStatus error: %v", err)
	}
	if current == nil || current.Code != constants.StatusCompleted {
		t.Fatalf("expected auto-completion to COMPLETED, got %+v", current)
	}

	history, err := svc.History(order.ID)
	if err != nil {
		t.Fatalf("History error: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected SHIPPED + COMPLETED events, got %d", len(history))
	}
	if history[0].StatusCode != constants.StatusCompleted || history[0].ActorID != constants.SystemActorID {
		t.Fatalf("completion event must come from system actor: %+v", history[0])
	}
	if history[1].StatusCode != constants.StatusShipped || history[1].ActorID != 1 {
		t.Fatalf("shipped event must keep its human actor: %+v", history[1])
	}

	var reloaded models.ProductionOrder
	if err := db.First(&reloaded, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if reloaded.CurrentStatusID != statusIDByCode(t, db, constants.StatusCompleted) {
		t.Fatalf("order status cache must land on COMPLETED, got %d", reloaded.CurrentStatusID)
	}
}

func TestRecordEventDoesNotFollowGatedAutomatedEdge(t *testing.T) {
	svc, db := setupTrackingServiceTest(t)
	order := createTrackingTestOrder(t, db, "ORD-TK-0007")

	// 取消边虽为自动边但带权限标签，归延期工作流触发，落账不得跟进
	if _, err := svc.RecordEvent(RecordEventInput{
		OrderID:  order.ID,
		StatusID: statusIDByCode(t, db, constants.StatusOrderCreated),
		ActorID:  1,
	}); err != nil {
		t.Fatalf("RecordEvent error: %v", err)
	}

	current, err := svc.CurrentStatus(order.ID)
	if err != nil {
		t.Fatalf("CurrentStatus error: %v", err)
	}
	if current == nil || current.Code != constants.StatusOrderCreated {
		t.Fatalf("status must stay ORDER_CREATED, got %+v", current)
	}
}

func TestHistoryEnrichment(t *testing.T) {
	svc, db := setupTrackingServiceTest(t)
	order := createTrackingTestOrder(t, db, "ORD-TK-0004")
	op := createTrackingTestOperator(t, db, "tracker02", "李跟单")

	if _, err := svc.RecordEvent(RecordEventInput{
		OrderID:  order.ID,
		StatusID: statusIDByCode(t, db, constants.StatusOrderCreated),
		ActorID:  op.ID,
	}); err != nil {
		t.Fatalf("RecordEvent error: %v", err)
	}
	if _, err := svc.RecordEvent(RecordEventInput{
		OrderID:  order.ID,
		StatusID: statusIDByCode(t, db, constants.StatusWeavingStarted),
		ActorID:  constants.SystemActorID,
	}); err != nil {
		t.Fatalf("RecordEvent error: %v", err)
	}

	history, err := svc.History(order.ID)
	if err != nil {
		t.Fatalf("History error: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 events, got %d", len(history))
	}

	// 新事件在前
	if history[0].StatusCode != constants.StatusWeavingStarted {
		t.Fatalf("expected WEAVING_STARTED first, got %s", history[0].StatusCode)
	}
	if history[0].ActorName != "" {
		t.Fatalf("system event must not carry actor name, got %q", history[0].ActorName)
	}
	if history[1].StatusCode != constants.StatusOrderCreated {
		t.Fatalf("expected ORDER_CREATED second, got %s", history[1].StatusCode)
	}
	if history[1].ActorName != "李跟单" {
		t.Fatalf("actor name not enriched: %q", history[1].ActorName)
	}
	if history[1].StatusName == "" || history[1].StatusColor == "" {
		t.Fatalf("status name/color not enriched: %+v", history[1])
	}
}

func TestDetailAggregatesOrderView(t *testing.T) {
	svc, db := setupTrackingServiceTest(t)
	order := createTrackingTestOrder(t, db, "ORD-TK-0005")

	if _, err := svc.RecordEvent(RecordEventInput{
		OrderID:  order.ID,
		StatusID: statusIDByCode(t, db, constants.StatusOrderCreated),
		ActorID:  1,
	}); err != nil {
		t.Fatalf("RecordEvent error: %v", err)
	}

	var weaving models.Department
	if err := db.Where("code = ?", constants.DepartmentWeaving).First(&weaving).Error; err != nil {
		t.Fatalf("weaving department missing: %v", err)
	}
	step := &models.ProductionStep{
		OrderID:      order.ID,
		DepartmentID: weaving.ID,
		StepLabel:    "整经",
		StepOrder:    1,
		Status:       constants.StepStatusPending,
	}
	if err := db.Create(step).Error; err != nil {
		t.Fatalf("create step failed: %v", err)
	}
	delay := &models.DelayRecord{
		OrderID:      order.ID,
		Reason:       "纱线待检",
		ReportedByID: 1,
		ReportedDate: time.Now(),
	}
	if err := db.Create(delay).Error; err != nil {
		t.Fatalf("create delay failed: %v", err)
	}

	detail, err := svc.Detail(order.OrderNo)
	if err != nil {
		t.Fatalf("Detail error: %v", err)
	}
	if detail.Order == nil || detail.Order.ID != order.ID {
		t.Fatalf("order missing from detail")
	}
	if detail.CurrentStatus == nil || detail.CurrentStatus.Code != constants.StatusOrderCreated {
		t.Fatalf("current status missing: %+v", detail.CurrentStatus)
	}
	if len(detail.History) != 1 || len(detail.Steps) != 1 || len(detail.Delays) != 1 {
		t.Fatalf("detail aggregation incomplete: history=%d steps=%d delays=%d",
			len(detail.History), len(detail.Steps), len(detail.Delays))
	}

	if _, err := svc.Detail("ORD-MISSING"); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}
