package handlers

import (
	"time"

	"github.com/loomtrack/internal/http/response"
	"github.com/loomtrack/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateStepRequest 创建生产工序请求
type CreateStepRequest struct {
	OrderID          uint       `json:"order_id" binding:"required"`
	ProductionPlanID uint       `json:"production_plan_id"`
	DepartmentID     uint       `json:"department_id" binding:"required"`
	StepLabel        string     `json:"step_label" binding:"required"`
	StepOrder        int        `json:"step_order" binding:"required"`
	PlannedStart     *time.Time `json:"planned_start"`
	PlannedEnd       *time.Time `json:"planned_end"`
	Notes            string     `json:"notes"`
}

// UpdateStepRequest 更新生产工序请求
type UpdateStepRequest struct {
	Status            *string    `json:"status"`
	CompletionPercent *int       `json:"completion_percent"`
	ActualStart       *time.Time `json:"actual_start"`
	ActualEnd         *time.Time `json:"actual_end"`
	Notes             *string    `json:"notes"`
}

var stepErrorRules = concatMappedHandlerErrors(
	notFoundErrorRules,
	invalidInputErrorRules,
	conflictErrorRules,
)

// CreateStep 创建生产工序
func (h *Handler) CreateStep(c *gin.Context) {
	operatorID, ok := getOperatorID(c)
	if !ok {
		return
	}

	var req CreateStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误")
		return
	}

	step, err := h.StepService.CreateStep(service.CreateStepInput{
		OrderID:          req.OrderID,
		ProductionPlanID: req.ProductionPlanID,
		DepartmentID:     req.DepartmentID,
		StepLabel:        req.StepLabel,
		StepOrder:        req.StepOrder,
		PlannedStart:     req.PlannedStart,
		PlannedEnd:       req.PlannedEnd,
		Notes:            req.Notes,
		OperatorID:       operatorID,
	})
	if err != nil {
		respondWithMappedError(c, err, stepErrorRules)
		return
	}
	response.Success(c, step)
}

// UpdateStep 更新生产工序
func (h *Handler) UpdateStep(c *gin.Context) {
	operatorID, ok := getOperatorID(c)
	if !ok {
		return
	}
	stepID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req UpdateStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误")
		return
	}

	step, err := h.StepService.UpdateStep(stepID, service.UpdateStepInput{
		Status:            req.Status,
		CompletionPercent: req.CompletionPercent,
		ActualStart:       req.ActualStart,
		ActualEnd:         req.ActualEnd,
		Notes:             req.Notes,
		OperatorID:        operatorID,
	})
	if err != nil {
		respondWithMappedError(c, err, stepErrorRules)
		return
	}
	response.Success(c, step)
}

// ListSteps 列出订单的生产工序
func (h *Handler) ListSteps(c *gin.Context) {
	steps, err := h.StepService.ListSteps(c.Param("orderNo"))
	if err != nil {
		respondWithMappedError(c, err, stepErrorRules)
		return
	}
	response.Success(c, steps)
}
