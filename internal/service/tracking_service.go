package service

import (
	"time"

	"github.com/loomtrack/internal/constants"
	"github.com/loomtrack/internal/logger"
	"github.com/loomtrack/internal/models"
	"github.com/loomtrack/internal/repository"
)

// TrackingService 跟踪台账服务
// 台账自身只负责追加与查询；流转合法性由调用方先走 ValidateTransition。
type TrackingService struct {
	orderRepo    repository.OrderRepository
	eventRepo    repository.TrackingEventRepository
	statusRepo   repository.StatusRepository
	stepRepo     repository.ProductionStepRepository
	transferRepo repository.TransferRepository
	delayRepo    repository.DelayRepository
	operatorRepo repository.OperatorRepository
}

// NewTrackingService 创建跟踪台账服务
func NewTrackingService(orderRepo repository.OrderRepository, eventRepo repository.TrackingEventRepository, statusRepo repository.StatusRepository, stepRepo repository.ProductionStepRepository, transferRepo repository.TransferRepository, delayRepo repository.DelayRepository, operatorRepo repository.OperatorRepository) *TrackingService {
	return &TrackingService{
		orderRepo:    orderRepo,
		eventRepo:    eventRepo,
		statusRepo:   statusRepo,
		stepRepo:     stepRepo,
		transferRepo: transferRepo,
		delayRepo:    delayRepo,
		operatorRepo: operatorRepo,
	}
}

// RecordEventInput 追加台账事件输入
type RecordEventInput struct {
	OrderID          uint
	StatusID         uint
	Note             string
	ActorID          uint
	ProductionPlanID *uint
	ShipmentID       *uint
	Payload          models.JSON
}

// TrackingEventView 台账事件展示行（带状态与操作者名称）
type TrackingEventView struct {
	models.TrackingEvent
	StatusCode  string `json:"status_code"`
	StatusName  string `json:"status_name"`
	StatusColor string `json:"status_color"`
	ActorName   string `json:"actor_name,omitempty"`
}

// TrackingDetail 订单跟踪全景
type TrackingDetail struct {
	Order         *models.ProductionOrder  `json:"order"`
	CurrentStatus *models.TrackingStatus   `json:"current_status,omitempty"`
	History       []TrackingEventView      `json:"history"`
	Steps         []models.ProductionStep  `json:"steps"`
	Transfers     []models.ProcessTransfer `json:"transfers"`
	Delays        []models.DelayRecord     `json:"delays"`
}

// RecordEvent 追加一条台账事件
func (s *TrackingService) RecordEvent(input RecordEventInput) (*models.TrackingEvent, error) {
	order, err := s.orderRepo.GetByID(input.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	status, err := s.statusRepo.GetByID(input.StatusID)
	if err != nil {
		return nil, err
	}
	if status == nil {
		return nil, ErrStatusNotFound
	}

	event := &models.TrackingEvent{
		OrderID:          input.OrderID,
		StatusID:         input.StatusID,
		Note:             input.Note,
		ActorID:          input.ActorID,
		ProductionPlanID: input.ProductionPlanID,
		ShipmentID:       input.ShipmentID,
		Payload:          input.Payload,
		CreatedAt:        time.Now(),
	}
	if err := s.eventRepo.Append(event); err != nil {
		return nil, err
	}
	s.refreshStatusCache(input.OrderID, input.StatusID)

	if err := s.followAutomated(input.OrderID, input.StatusID); err != nil {
		return nil, err
	}

	return event, nil
}

// refreshStatusCache 冷缓存，查询仍以台账为准，刷新失败只记日志
func (s *TrackingService) refreshStatusCache(orderID, statusID uint) {
	if err := s.orderRepo.UpdateCurrentStatus(orderID, statusID); err != nil {
		logger.Warnw("订单状态缓存刷新失败", "order_id", orderID, "status_id", statusID, "error", err)
	}
}

// followAutomated 沿无权限标签的自动边由系统继续推进台账
// 带权限标签的自动边（如取消）归各自工作流触发，这里不跟进。
func (s *TrackingService) followAutomated(orderID, fromStatusID uint) error {
	// 跳数上限挡住流转图里的意外环
	const maxHops = 8
	current := fromStatusID
	for hop := 0; hop < maxHops; hop++ {
		transitions, err := s.statusRepo.ListTransitionsFrom(current)
		if err != nil {
			return err
		}
		var next *models.TrackingTransition
		for i := range transitions {
			if transitions[i].IsAutomated && transitions[i].RequiredPermission == "" {
				next = &transitions[i]
				break
			}
		}
		if next == nil {
			return nil
		}
		event := &models.TrackingEvent{
			OrderID:   orderID,
			StatusID:  next.ToStatusID,
			Note:      next.Description,
			ActorID:   constants.SystemActorID,
			CreatedAt: time.Now(),
		}
		if err := s.eventRepo.Append(event); err != nil {
			return err
		}
		s.refreshStatusCache(orderID, next.ToStatusID)
		current = next.ToStatusID
	}
	return nil
}

// CurrentStatus 订单当前状态：台账最新事件指向的状态，无事件返回 nil
func (s *TrackingService) CurrentStatus(orderID uint) (*models.TrackingStatus, error) {
	latest, err := s.eventRepo.Latest(orderID)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, nil
	}
	return s.statusRepo.GetByID(latest.StatusID)
}

// History 订单台账，新事件在前，带状态与操作者名称
func (s *TrackingService) History(orderID uint) ([]TrackingEventView, error) {
	events, err := s.eventRepo.ListByOrder(orderID)
	if err != nil {
		return nil, err
	}

	statusCache := map[uint]*models.TrackingStatus{}
	actorCache := map[uint]string{}

	views := make([]TrackingEventView, 0, len(events))
	for _, e := range events {
		view := TrackingEventView{TrackingEvent: e}

		status, ok := statusCache[e.StatusID]
		if !ok {
			status, err = s.statusRepo.GetByID(e.StatusID)
			if err != nil {
				return nil, err
			}
			statusCache[e.StatusID] = status
		}
		if status != nil {
			view.StatusCode = status.Code
			view.StatusName = status.Name
			view.StatusColor = status.Color
		}

		if e.ActorID != 0 {
			name, ok := actorCache[e.ActorID]
			if !ok {
				actor, err := s.operatorRepo.GetByID(e.ActorID)
				if err != nil {
					return nil, err
				}
				if actor != nil {
					name = actor.DisplayName
				}
				actorCache[e.ActorID] = name
			}
			view.ActorName = name
		}

		views = append(views, view)
	}
	return views, nil
}

// Detail 按订单号取跟踪全景：订单、当前状态、台账、工序、流转、延期
func (s *TrackingService) Detail(orderNo string) (*TrackingDetail, error) {
	order, err := s.orderRepo.GetByOrderNo(orderNo)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	current, err := s.CurrentStatus(order.ID)
	if err != nil {
		return nil, err
	}

	history, err := s.History(order.ID)
	if err != nil {
		return nil, err
	}

	steps, err := s.stepRepo.ListByOrder(order.ID)
	if err != nil {
		return nil, err
	}

	transfers, err := s.transferRepo.ListByOrder(order.ID)
	if err != nil {
		return nil, err
	}

	delays, err := s.delayRepo.ListByOrder(order.ID)
	if err != nil {
		return nil, err
	}

	return &TrackingDetail{
		Order:         order,
		CurrentStatus: current,
		History:       history,
		Steps:         steps,
		Transfers:     transfers,
		Delays:        delays,
	}, nil
}
