package service

import (
	"context"
	"fmt"
	"time"

	"github.com/loomtrack/internal/cache"
	"github.com/loomtrack/internal/constants"
	"github.com/loomtrack/internal/logger"
	"github.com/loomtrack/internal/models"
	"github.com/loomtrack/internal/queue"
	"github.com/loomtrack/internal/repository"
)

// 同一事件的重复投递在该窗口内去重
const notifyDedupeTTL = 10 * time.Minute

// NotificationService 站内通知服务；worker 消费任务后经此落库
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	operatorRepo     repository.OperatorRepository
	directoryRepo    repository.DirectoryRepository
	orderRepo        repository.OrderRepository
}

// NewNotificationService 创建通知服务
func NewNotificationService(notificationRepo repository.NotificationRepository, operatorRepo repository.OperatorRepository, directoryRepo repository.DirectoryRepository, orderRepo repository.OrderRepository) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		operatorRepo:     operatorRepo,
		directoryRepo:    directoryRepo,
		orderRepo:        orderRepo,
	}
}

// DispatchCardHandoff 流程卡交接通知：发给下游部门用户；终完工发给计划部门
func (s *NotificationService) DispatchCardHandoff(ctx context.Context, payload queue.CardHandoffPayload) error {
	dedupeKey := fmt.Sprintf("notify:card:%d:%d", payload.CardID, payload.NextStep)
	fresh, err := cache.SetNX(ctx, dedupeKey, "1", notifyDedupeTTL)
	if err != nil {
		logger.Warnw("通知去重检查失败，继续投递", "key", dedupeKey, "error", err)
	} else if !fresh {
		return nil
	}

	departmentID := payload.NextDepartmentID
	notifyType := constants.NotificationTypeCardHandoff
	title := fmt.Sprintf("流程卡 %s 交接到第 %d 步", payload.CardNumber, payload.NextStep)
	if payload.Terminal {
		notifyType = constants.NotificationTypeCardCompleted
		title = fmt.Sprintf("流程卡 %s 已完结", payload.CardNumber)
		planning, err := s.directoryRepo.GetDepartmentByCode(constants.DepartmentPlanning)
		if err != nil {
			return err
		}
		if planning != nil {
			departmentID = planning.ID
		}
	}
	if departmentID == 0 {
		logger.Warnw("交接通知缺少目标部门，跳过", "card_id", payload.CardID)
		return nil
	}

	recipients, err := s.operatorRepo.ListByDepartment(departmentID)
	if err != nil {
		return err
	}

	notifications := make([]models.Notification, 0, len(recipients))
	for _, op := range recipients {
		notifications = append(notifications, models.Notification{
			RecipientID: op.ID,
			Title:       title,
			Content:     fmt.Sprintf("流程卡号 %s", payload.CardNumber),
			Type:        notifyType,
			EntityType:  constants.NotificationEntityCard,
			EntityID:    payload.CardID,
		})
	}
	return s.notificationRepo.CreateBatch(notifications)
}

// DispatchDelayApproved 延期审批结果通知：发给上报人
func (s *NotificationService) DispatchDelayApproved(ctx context.Context, payload queue.DelayApprovedPayload) error {
	dedupeKey := fmt.Sprintf("notify:delay:%d", payload.DelayRecordID)
	fresh, err := cache.SetNX(ctx, dedupeKey, "1", notifyDedupeTTL)
	if err != nil {
		logger.Warnw("通知去重检查失败，继续投递", "key", dedupeKey, "error", err)
	} else if !fresh {
		return nil
	}

	order, err := s.orderRepo.GetByID(payload.OrderID)
	if err != nil {
		return err
	}
	orderNo := ""
	if order != nil {
		orderNo = order.OrderNo
	}

	notifyType := constants.NotificationTypeDelayApproved
	title := fmt.Sprintf("订单 %s 的延期申请已批准", orderNo)
	if payload.Cancelled {
		notifyType = constants.NotificationTypeOrderCanceled
		title = fmt.Sprintf("订单 %s 已取消", orderNo)
	}

	return s.notificationRepo.Create(&models.Notification{
		RecipientID: payload.ReporterID,
		Title:       title,
		Type:        notifyType,
		EntityType:  constants.NotificationEntityDelay,
		EntityID:    payload.DelayRecordID,
	})
}

// ListInbox 收件箱分页
func (s *NotificationService) ListInbox(filter repository.NotificationListFilter) ([]models.Notification, int64, error) {
	return s.notificationRepo.ListByRecipient(filter)
}

// MarkRead 标记已读；不属于该收件人的通知不会命中
func (s *NotificationService) MarkRead(id uint, recipientID uint) error {
	_, err := s.notificationRepo.MarkRead(id, recipientID)
	return err
}

// CountUnread 未读数
func (s *NotificationService) CountUnread(recipientID uint) (int64, error) {
	return s.notificationRepo.CountUnread(recipientID)
}
