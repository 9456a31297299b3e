package main

import (
	"time"

	"github.com/loomtrack/internal/config"
	"github.com/loomtrack/internal/constants"
	"github.com/loomtrack/internal/logger"
	"github.com/loomtrack/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// 开发环境演示数据：一张订单从建单到织造在制的最小切片
func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns: cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns: cfg.Database.Pool.MaxIdleConns,
	}); err != nil {
		stdLog.Fatalf("数据库连接失败: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("数据库迁移失败: %v", err)
	}
	if err := models.SeedReferenceData(models.DB); err != nil {
		stdLog.Fatalf("参照数据初始化失败: %v", err)
	}

	db := models.DB

	var weaving models.Department
	if err := db.Where("code = ?", constants.DepartmentWeaving).First(&weaving).Error; err != nil {
		stdLog.Fatalf("缺少机织部门: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("weaver123"), bcrypt.DefaultCost)
	if err != nil {
		stdLog.Fatalf("口令哈希失败: %v", err)
	}
	weaver := models.Operator{
		Username:     "weaver01",
		DisplayName:  "织造一班",
		PasswordHash: string(hash),
		DepartmentID: weaving.ID,
		Permissions:  models.StringArray{constants.PermissionTrackingWrite},
		IsActive:     true,
	}
	if err := db.Where("username = ?", weaver.Username).FirstOrCreate(&weaver).Error; err != nil {
		stdLog.Fatalf("演示操作员写入失败: %v", err)
	}

	due := time.Now().AddDate(0, 1, 0)
	order := models.ProductionOrder{
		OrderNo:      "ORD-2026-0001",
		CustomerName: "环湖家纺",
		FabricType:   "斜纹棉",
		Color:        "靛蓝",
		Quantity:     models.NewQuantityFromInt(1200),
		Unit:         "m",
		DueDate:      &due,
	}
	if err := db.Where("order_no = ?", order.OrderNo).FirstOrCreate(&order).Error; err != nil {
		stdLog.Fatalf("演示订单写入失败: %v", err)
	}

	var created models.TrackingStatus
	if err := db.Where("code = ?", constants.StatusOrderCreated).First(&created).Error; err != nil {
		stdLog.Fatalf("缺少建单状态: %v", err)
	}
	var count int64
	db.Model(&models.TrackingEvent{}).Where("order_id = ?", order.ID).Count(&count)
	if count == 0 {
		event := models.TrackingEvent{
			OrderID:   order.ID,
			StatusID:  created.ID,
			Note:      "建单",
			ActorID:   constants.SystemActorID,
			CreatedAt: time.Now(),
		}
		if err := db.Create(&event).Error; err != nil {
			stdLog.Fatalf("演示台账写入失败: %v", err)
		}
		db.Model(&models.ProductionOrder{}).Where("id = ?", order.ID).
			Update("current_status_id", created.ID)
	}

	stage := models.StageProcess{
		ProcessType:  constants.ProcessTypeWeaving,
		Code:         "WV" + time.Now().Format("20060102") + "-001",
		DepartmentID: weaving.ID,
		OrderID:      order.ID,
		Quantity:     models.NewQuantityFromDecimal(decimal.NewFromInt(1200)),
		Unit:         "m",
		FabricType:   order.FabricType,
		Color:        order.Color,
		Status:       constants.StageStatusInProgress,
	}
	if err := db.Where("code = ?", stage.Code).FirstOrCreate(&stage).Error; err != nil {
		stdLog.Fatalf("演示阶段记录写入失败: %v", err)
	}

	var routing models.ProcessRouting
	if err := db.Preload("Steps").Where("is_default = ?", true).First(&routing).Error; err != nil {
		stdLog.Fatalf("缺少默认工艺路线: %v", err)
	}
	card := models.ProcessCard{
		CardNumber:  "KART-1000",
		OrderID:     order.ID,
		RoutingID:   routing.ID,
		Quantity:    models.NewQuantityFromInt(400),
		Unit:        "m",
		CurrentStep: 1,
		TotalSteps:  len(routing.Steps),
		Status:      constants.CardStatusCreated,
	}
	if err := db.Where("card_number = ?", card.CardNumber).FirstOrCreate(&card).Error; err != nil {
		stdLog.Fatalf("演示流程卡写入失败: %v", err)
	}

	stdLog.Printf("演示数据就绪: 订单 %s / 流程卡 %s", order.OrderNo, card.CardNumber)
}
