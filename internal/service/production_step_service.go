package service

import (
	"errors"
	"time"

	"github.com/loomtrack/internal/constants"
	"github.com/loomtrack/internal/models"
	"github.com/loomtrack/internal/repository"

	"gorm.io/gorm"
)

// ProductionStepService 生产工序跟踪服务
type ProductionStepService struct {
	orderRepo repository.OrderRepository
	stepRepo  repository.ProductionStepRepository
}

// NewProductionStepService 创建生产工序服务
func NewProductionStepService(orderRepo repository.OrderRepository, stepRepo repository.ProductionStepRepository) *ProductionStepService {
	return &ProductionStepService{
		orderRepo: orderRepo,
		stepRepo:  stepRepo,
	}
}

// CreateStepInput 创建生产工序输入
type CreateStepInput struct {
	OrderID          uint
	ProductionPlanID uint
	DepartmentID     uint
	StepLabel        string
	StepOrder        int
	PlannedStart     *time.Time
	PlannedEnd       *time.Time
	Notes            string
	OperatorID       uint
}

// UpdateStepInput 更新生产工序输入；nil 字段不改动
type UpdateStepInput struct {
	Status            *string
	CompletionPercent *int
	ActualStart       *time.Time
	ActualEnd         *time.Time
	Notes             *string
	OperatorID        uint
}

// CreateStep 创建生产工序，缺省 pending / 0%
func (s *ProductionStepService) CreateStep(input CreateStepInput) (*models.ProductionStep, error) {
	order, err := s.orderRepo.GetByID(input.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if input.StepOrder < 1 {
		return nil, ErrStepOrderInvalid
	}

	step := &models.ProductionStep{
		OrderID:          input.OrderID,
		ProductionPlanID: input.ProductionPlanID,
		DepartmentID:     input.DepartmentID,
		StepLabel:        input.StepLabel,
		StepOrder:        input.StepOrder,
		Status:           constants.StepStatusPending,
		PlannedStart:     input.PlannedStart,
		PlannedEnd:       input.PlannedEnd,
		Notes:            input.Notes,
		UpdatedByID:      input.OperatorID,
	}
	if err := s.stepRepo.Create(step); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrStepSlotTaken
		}
		return nil, err
	}
	return step, nil
}

// UpdateStep 更新生产工序；每次写入都盖 updated_by 戳
func (s *ProductionStepService) UpdateStep(id uint, input UpdateStepInput) (*models.ProductionStep, error) {
	step, err := s.stepRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if step == nil {
		return nil, ErrStepNotFound
	}

	updates := map[string]interface{}{
		"updated_by_id": input.OperatorID,
	}
	if input.Status != nil {
		updates["status"] = *input.Status
	}
	if input.CompletionPercent != nil {
		if *input.CompletionPercent < 0 || *input.CompletionPercent > 100 {
			return nil, ErrCompletionOutOfRange
		}
		updates["completion_percent"] = *input.CompletionPercent
	}
	if input.ActualStart != nil {
		updates["actual_start"] = *input.ActualStart
	}
	if input.ActualEnd != nil {
		updates["actual_end"] = *input.ActualEnd
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}

	if err := s.stepRepo.Updates(id, updates); err != nil {
		return nil, err
	}
	return s.stepRepo.GetByID(id)
}

// ListSteps 按 step_order 列出订单的生产工序
func (s *ProductionStepService) ListSteps(orderNo string) ([]models.ProductionStep, error) {
	order, err := s.orderRepo.GetByOrderNo(orderNo)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return s.stepRepo.ListByOrder(order.ID)
}

// CurrentStep 订单当前工序：首个 in_progress，其次首个 pending，否则 nil
func (s *ProductionStepService) CurrentStep(orderID uint) (*models.ProductionStep, error) {
	steps, err := s.stepRepo.ListByOrder(orderID)
	if err != nil {
		return nil, err
	}
	for i := range steps {
		if steps[i].Status == constants.StepStatusInProgress {
			return &steps[i], nil
		}
	}
	for i := range steps {
		if steps[i].Status == constants.StepStatusPending {
			return &steps[i], nil
		}
	}
	return nil, nil
}
