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

// CardService 流程卡顺序推进服务
type CardService struct {
	db            *gorm.DB
	cardRepo      repository.CardRepository
	routingRepo   repository.RoutingRepository
	orderRepo     repository.OrderRepository
	directoryRepo repository.DirectoryRepository
	queueClient   *queue.Client
}

// NewCardService 创建流程卡服务
func NewCardService(db *gorm.DB, cardRepo repository.CardRepository, routingRepo repository.RoutingRepository, orderRepo repository.OrderRepository, directoryRepo repository.DirectoryRepository, queueClient *queue.Client) *CardService {
	return &CardService{
		db:            db,
		cardRepo:      cardRepo,
		routingRepo:   routingRepo,
		orderRepo:     orderRepo,
		directoryRepo: directoryRepo,
		queueClient:   queueClient,
	}
}

// CreateCardInput 建卡输入
type CreateCardInput struct {
	CardNumber string
	OrderID    uint
	RoutingID  uint // 0 表示使用默认路线
	Quantity   models.Quantity
	Unit       string
}

// StartStepInput 开工输入；机台/工序类型缺省时按部门解析首个启用项
type StartStepInput struct {
	CardNumber    string
	OperatorID    uint
	DepartmentID  uint
	MachineID     uint // 0 表示缺省解析
	ProcessTypeID uint // 0 表示缺省解析
	StepOrder     int  // 0 表示沿用卡当前工步
}

// CompleteStepInput 完工输入
type CompleteStepInput struct {
	CardNumber        string
	QuantityProcessed models.Quantity
	QuantityDefect    models.Quantity
	Notes             string
}

// CompleteStepResult 完工结果；NextStep 为空表示卡已终完工
type CompleteStepResult struct {
	Card     *models.ProcessCard       `json:"card"`
	Record   *models.CardProcessRecord `json:"record"`
	NextStep *int                      `json:"next_step,omitempty"`
}

// CardDetail 流程卡全景
type CardDetail struct {
	Card    *models.ProcessCard        `json:"card"`
	Order   *models.ProductionOrder    `json:"order,omitempty"`
	Records []repository.CardRecordRow `json:"records"`
}

// CreateCard 建卡；total_steps 由工艺路线解析
func (s *CardService) CreateCard(input CreateCardInput) (*models.ProcessCard, error) {
	if !input.Quantity.IsPositive() {
		return nil, ErrQuantityNotPositive
	}
	order, err := s.orderRepo.GetByID(input.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	routing, err := s.resolveRouting(input.RoutingID)
	if err != nil {
		return nil, err
	}

	unit := input.Unit
	if unit == "" {
		unit = order.Unit
	}
	card := &models.ProcessCard{
		CardNumber:  input.CardNumber,
		OrderID:     input.OrderID,
		RoutingID:   routing.ID,
		Quantity:    input.Quantity,
		Unit:        unit,
		CurrentStep: 1,
		TotalSteps:  len(routing.Steps),
		Status:      constants.CardStatusCreated,
	}
	if err := s.cardRepo.Create(card); err != nil {
		return nil, err
	}
	return card, nil
}

func (s *CardService) resolveRouting(routingID uint) (*models.ProcessRouting, error) {
	var routing *models.ProcessRouting
	var err error
	if routingID != 0 {
		routing, err = s.routingRepo.GetByID(routingID)
	} else {
		routing, err = s.routingRepo.GetDefault()
	}
	if err != nil {
		return nil, err
	}
	if routing == nil || len(routing.Steps) == 0 {
		return nil, ErrRoutingNotFound
	}
	return routing, nil
}

// StartStep 卡上开工一道工序
// 卡行锁内校验：已有进行中记录时，同工步报 ErrStepAlreadyRunning，否则 ErrCardBusy。
func (s *CardService) StartStep(input StartStepInput) (*models.CardProcessRecord, error) {
	var record *models.CardProcessRecord
	err := s.db.Transaction(func(tx *gorm.DB) error {
		card, err := s.cardRepo.GetByCardNumberForUpdate(tx, input.CardNumber)
		if err != nil {
			return err
		}
		if card == nil {
			return ErrCardNotFound
		}
		if card.Status == constants.CardStatusCompleted {
			return ErrCardCompleted
		}

		stepOrder := input.StepOrder
		if stepOrder == 0 {
			stepOrder = card.CurrentStep
		}
		if stepOrder < 1 || stepOrder > card.TotalSteps {
			return ErrStepOrderInvalid
		}

		active, err := s.cardRepo.ActiveRecord(tx, card.ID)
		if err != nil {
			return err
		}
		if active != nil {
			if active.StepOrder == stepOrder {
				return ErrStepAlreadyRunning
			}
			return ErrCardBusy
		}

		record, err = s.insertRecord(tx, card, input, stepOrder)
		if err != nil {
			return err
		}
		return s.cardRepo.UpdateProgress(tx, card.ID, constants.CardStatusInProgress, stepOrder)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// StartStepSimple 幂等开工：已有进行中记录时直接返回它
func (s *CardService) StartStepSimple(input StartStepInput) (*models.CardProcessRecord, error) {
	var record *models.CardProcessRecord
	err := s.db.Transaction(func(tx *gorm.DB) error {
		card, err := s.cardRepo.GetByCardNumberForUpdate(tx, input.CardNumber)
		if err != nil {
			return err
		}
		if card == nil {
			return ErrCardNotFound
		}
		if card.Status == constants.CardStatusCompleted {
			return ErrCardCompleted
		}

		active, err := s.cardRepo.ActiveRecord(tx, card.ID)
		if err != nil {
			return err
		}
		if active != nil {
			record = active
			return nil
		}

		record, err = s.insertRecord(tx, card, input, card.CurrentStep)
		if err != nil {
			return err
		}
		return s.cardRepo.UpdateProgress(tx, card.ID, constants.CardStatusInProgress, card.CurrentStep)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// insertRecord 事务内落一条 in_progress 工序记录，机台/工序类型按部门兜底
func (s *CardService) insertRecord(tx *gorm.DB, card *models.ProcessCard, input StartStepInput, stepOrder int) (*models.CardProcessRecord, error) {
	machineID := input.MachineID
	if machineID == 0 {
		machine, err := s.directoryRepo.FirstActiveMachine(input.DepartmentID)
		if err != nil {
			return nil, err
		}
		if machine == nil {
			return nil, ErrMachineNotFound
		}
		machineID = machine.ID
	}

	processTypeID := input.ProcessTypeID
	if processTypeID == 0 {
		pt, err := s.directoryRepo.FirstActiveProcessType(input.DepartmentID)
		if err != nil {
			return nil, err
		}
		if pt == nil {
			return nil, ErrProcessTypeNotFound
		}
		processTypeID = pt.ID
	}

	record := &models.CardProcessRecord{
		CardID:        card.ID,
		MachineID:     machineID,
		OperatorID:    input.OperatorID,
		ProcessTypeID: processTypeID,
		DepartmentID:  input.DepartmentID,
		StepOrder:     stepOrder,
		StartTime:     time.Now(),
		Status:        constants.CardRecordStatusInProgress,
	}
	if err := s.cardRepo.CreateRecord(tx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// CompleteStep 完工当前工序并推进卡
// next 超过 total_steps 时卡终完工；提交后向下游部门用户尽力推送交接通知。
func (s *CardService) CompleteStep(input CompleteStepInput) (*CompleteStepResult, error) {
	var result CompleteStepResult
	var handoff queue.CardHandoffPayload

	err := s.db.Transaction(func(tx *gorm.DB) error {
		card, err := s.cardRepo.GetByCardNumberForUpdate(tx, input.CardNumber)
		if err != nil {
			return err
		}
		if card == nil {
			return ErrCardNotFound
		}

		active, err := s.cardRepo.ActiveRecord(tx, card.ID)
		if err != nil {
			return err
		}
		if active == nil {
			return ErrNoActiveStep
		}

		now := time.Now()
		affected, err := s.cardRepo.CloseRecord(tx, active.ID, now, input.QuantityProcessed, input.QuantityDefect, input.Notes)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrNoActiveStep
		}
		active.EndTime = &now
		active.Status = constants.CardRecordStatusCompleted
		active.QuantityProcessed = input.QuantityProcessed
		active.QuantityDefect = input.QuantityDefect
		if input.Notes != "" {
			active.Notes = input.Notes
		}

		next := active.StepOrder + 1
		if next > card.TotalSteps {
			if err := s.cardRepo.UpdateProgress(tx, card.ID, constants.CardStatusCompleted, card.TotalSteps); err != nil {
				return err
			}
			card.Status = constants.CardStatusCompleted
			card.CurrentStep = card.TotalSteps
			handoff = queue.CardHandoffPayload{
				CardID:     card.ID,
				CardNumber: card.CardNumber,
				Terminal:   true,
			}
		} else {
			if err := s.cardRepo.UpdateProgress(tx, card.ID, constants.CardStatusInProgress, next); err != nil {
				return err
			}
			card.Status = constants.CardStatusInProgress
			card.CurrentStep = next
			result.NextStep = &next

			step, err := s.routingRepo.StepAt(card.RoutingID, next)
			if err != nil {
				return err
			}
			handoff = queue.CardHandoffPayload{
				CardID:     card.ID,
				CardNumber: card.CardNumber,
				NextStep:   next,
			}
			if step != nil {
				handoff.NextDepartmentID = step.DepartmentID
			}
		}

		result.Card = card
		result.Record = active
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 提交后尽力通知，失败只记日志
	if err := s.queueClient.EnqueueCardHandoff(handoff); err != nil {
		logger.Errorw("流程卡交接通知入队失败", "card_number", input.CardNumber, "error", err)
	}

	return &result, nil
}

// Detail 流程卡全景：卡、订单、带名称的工序记录
func (s *CardService) Detail(cardNumber string) (*CardDetail, error) {
	card, err := s.cardRepo.GetByCardNumber(cardNumber)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, ErrCardNotFound
	}

	order, err := s.orderRepo.GetByID(card.OrderID)
	if err != nil {
		return nil, err
	}

	rows, err := s.cardRepo.ListRecordRows(card.ID)
	if err != nil {
		return nil, err
	}

	return &CardDetail{
		Card:    card,
		Order:   order,
		Records: rows,
	}, nil
}

// ListActiveCards 列出未完结的流程卡
func (s *CardService) ListActiveCards(filter repository.CardListFilter) ([]models.ProcessCard, int64, error) {
	return s.cardRepo.ListActive(filter)
}
