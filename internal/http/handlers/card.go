package handlers

import (
	"github.com/loomtrack/internal/http/response"
	"github.com/loomtrack/internal/models"
	"github.com/loomtrack/internal/repository"
	"github.com/loomtrack/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateCardRequest 建卡请求
type CreateCardRequest struct {
	CardNumber string          `json:"card_number" binding:"required"`
	OrderID    uint            `json:"order_id" binding:"required"`
	RoutingID  uint            `json:"routing_id"`
	Quantity   models.Quantity `json:"quantity"`
	Unit       string          `json:"unit"`
}

// StartStepRequest 开工请求
type StartStepRequest struct {
	DepartmentID  uint `json:"department_id" binding:"required"`
	MachineID     uint `json:"machine_id"`
	ProcessTypeID uint `json:"process_type_id"`
	StepOrder     int  `json:"step_order"`
}

// CompleteStepRequest 完工请求
type CompleteStepRequest struct {
	QuantityProcessed models.Quantity `json:"quantity_processed"`
	QuantityDefect    models.Quantity `json:"quantity_defect"`
	Notes             string          `json:"notes"`
}

var cardErrorRules = concatMappedHandlerErrors(
	notFoundErrorRules,
	invalidInputErrorRules,
	conflictErrorRules,
)

// CreateCard 建卡
func (h *Handler) CreateCard(c *gin.Context) {
	if _, ok := getOperatorID(c); !ok {
		return
	}

	var req CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误")
		return
	}

	card, err := h.CardService.CreateCard(service.CreateCardInput{
		CardNumber: req.CardNumber,
		OrderID:    req.OrderID,
		RoutingID:  req.RoutingID,
		Quantity:   req.Quantity,
		Unit:       req.Unit,
	})
	if err != nil {
		respondWithMappedError(c, err, cardErrorRules)
		return
	}
	response.Success(c, card)
}

// StartStep 卡上开工一道工序
func (h *Handler) StartStep(c *gin.Context) {
	operatorID, ok := getOperatorID(c)
	if !ok {
		return
	}

	var req StartStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误")
		return
	}

	record, err := h.CardService.StartStep(service.StartStepInput{
		CardNumber:    c.Param("cardNumber"),
		OperatorID:    operatorID,
		DepartmentID:  req.DepartmentID,
		MachineID:     req.MachineID,
		ProcessTypeID: req.ProcessTypeID,
		StepOrder:     req.StepOrder,
	})
	if err != nil {
		respondWithMappedError(c, err, cardErrorRules)
		return
	}
	response.Success(c, record)
}

// StartStepSimple 幂等开工
func (h *Handler) StartStepSimple(c *gin.Context) {
	operatorID, ok := getOperatorID(c)
	if !ok {
		return
	}

	var req StartStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误")
		return
	}

	record, err := h.CardService.StartStepSimple(service.StartStepInput{
		CardNumber:    c.Param("cardNumber"),
		OperatorID:    operatorID,
		DepartmentID:  req.DepartmentID,
		MachineID:     req.MachineID,
		ProcessTypeID: req.ProcessTypeID,
	})
	if err != nil {
		respondWithMappedError(c, err, cardErrorRules)
		return
	}
	response.Success(c, record)
}

// CompleteStep 完工当前工序并推进卡
func (h *Handler) CompleteStep(c *gin.Context) {
	if _, ok := getOperatorID(c); !ok {
		return
	}

	var req CompleteStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误")
		return
	}

	result, err := h.CardService.CompleteStep(service.CompleteStepInput{
		CardNumber:        c.Param("cardNumber"),
		QuantityProcessed: req.QuantityProcessed,
		QuantityDefect:    req.QuantityDefect,
		Notes:             req.Notes,
	})
	if err != nil {
		respondWithMappedError(c, err, cardErrorRules)
		return
	}
	response.Success(c, result)
}

// GetCard 流程卡全景
func (h *Handler) GetCard(c *gin.Context) {
	detail, err := h.CardService.Detail(c.Param("cardNumber"))
	if err != nil {
		respondWithMappedError(c, err, cardErrorRules)
		return
	}
	response.Success(c, detail)
}

// ListActiveCards 列出未完结的流程卡
func (h *Handler) ListActiveCards(c *gin.Context) {
	orderID, err := parseUintQuery(c, "order_id")
	if err != nil {
		response.BadRequest(c, "参数 order_id 非法")
		return
	}
	page, pageSize := parsePageQuery(c)

	cards, total, err := h.CardService.ListActiveCards(repository.CardListFilter{
		Page:     page,
		PageSize: pageSize,
		OrderID:  orderID,
		Status:   c.Query("status"),
	})
	if err != nil {
		respondWithMappedError(c, err, cardErrorRules)
		return
	}
	response.SuccessWithPage(c, cards, response.NewPagination(page, pageSize, total))
}
