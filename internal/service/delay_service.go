package service

import (
	"time"

	"github.com/loomtrack/internal/constants"
	"github.com/loomtrack/internal/logger"
	"github.com/loomtrack/internal/models"
	"github.com/loomtrack/internal/queue"
	"github.com/loomtrack/internal/repository"

	"gorm.io/gorm"
)

// DelayService 延期/取消工作流服务
type DelayService struct {
	db            *gorm.DB
	delayRepo     repository.DelayRepository
	orderRepo     repository.OrderRepository
	eventRepo     repository.TrackingEventRepository
	statusRepo    repository.StatusRepository
	statusCatalog *StatusCatalogService
	queueClient   *queue.Client
}

// NewDelayService 创建延期工作流服务
func NewDelayService(db *gorm.DB, delayRepo repository.DelayRepository, orderRepo repository.OrderRepository, eventRepo repository.TrackingEventRepository, statusRepo repository.StatusRepository, statusCatalog *StatusCatalogService, queueClient *queue.Client) *DelayService {
	return &DelayService{
		db:            db,
		delayRepo:     delayRepo,
		orderRepo:     orderRepo,
		eventRepo:     eventRepo,
		statusRepo:    statusRepo,
		statusCatalog: statusCatalog,
		queueClient:   queueClient,
	}
}

// ReportDelayInput 上报延期/取消输入
type ReportDelayInput struct {
	OrderID     uint
	Reason      string
	Description string
	DelayDays   int
	NewDueDate  *time.Time
	IsCancelled bool
	ReporterID  uint
}

// ReportDelay 上报延期/取消申请；只落记录，不动订单
func (s *DelayService) ReportDelay(input ReportDelayInput) (*models.DelayRecord, error) {
	if input.Reason == "" {
		return nil, ErrReasonRequired
	}
	order, err := s.orderRepo.GetByID(input.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	record := &models.DelayRecord{
		OrderID:      input.OrderID,
		Reason:       input.Reason,
		Description:  input.Description,
		DelayDays:    input.DelayDays,
		NewDueDate:   input.NewDueDate,
		IsCancelled:  input.IsCancelled,
		ReportedByID: input.ReporterID,
		ReportedDate: time.Now(),
	}
	if err := s.delayRepo.Create(record); err != nil {
		return nil, err
	}
	return record, nil
}

// ApproveDelay 审批延期/取消申请；审批一次性，重复审批返回冲突
// 取消路径走系统操作者的流转校验并追加 CANCELLED 台账事件。
func (s *DelayService) ApproveDelay(id uint, approverID uint) (*models.DelayRecord, error) {
	record, err := s.delayRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrDelayNotFound
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		affected, err := s.delayRepo.Approve(tx, id, approverID, time.Now())
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrDelayAlreadyApproved
		}

		if record.IsCancelled {
			return s.cancelOrder(tx, record)
		}
		if record.NewDueDate != nil {
			return s.orderRepo.WithTx(tx).UpdateDueDate(record.OrderID, *record.NewDueDate)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 提交后尽力通知，失败只记日志
	if err := s.queueClient.EnqueueDelayApproved(queue.DelayApprovedPayload{
		DelayRecordID: record.ID,
		OrderID:       record.OrderID,
		ReporterID:    record.ReportedByID,
		Cancelled:     record.IsCancelled,
	}); err != nil {
		logger.Errorw("延期审批通知入队失败", "delay_id", record.ID, "error", err)
	}

	return s.delayRepo.GetByID(id)
}

// cancelOrder 事务内执行取消：校验流转、追加台账、翻转订单标记
func (s *DelayService) cancelOrder(tx *gorm.DB, record *models.DelayRecord) error {
	cancelled, err := s.statusRepo.GetByCode(constants.StatusCancelled)
	if err != nil {
		return err
	}
	if cancelled == nil {
		return ErrStatusNotFound
	}

	latest, err := s.eventRepo.WithTx(tx).Latest(record.OrderID)
	if err != nil {
		return err
	}
	if latest != nil {
		if err := s.statusCatalog.ValidateTransition(latest.StatusID, cancelled.ID, constants.SystemActorID, false); err != nil {
			return err
		}
	}

	event := &models.TrackingEvent{
		OrderID:   record.OrderID,
		StatusID:  cancelled.ID,
		Note:      record.Reason,
		ActorID:   constants.SystemActorID,
		CreatedAt: time.Now(),
	}
	if err := s.eventRepo.WithTx(tx).Append(event); err != nil {
		return err
	}
	return s.orderRepo.WithTx(tx).MarkCancelled(record.OrderID, cancelled.ID)
}

// ListDelays 列出订单的延期记录
func (s *DelayService) ListDelays(orderNo string) ([]models.DelayRecord, error) {
	order, err := s.orderRepo.GetByOrderNo(orderNo)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return s.delayRepo.ListByOrder(order.ID)
}
