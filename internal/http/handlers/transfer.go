package handlers

import (
	"time"

	"github.com/loomtrack/internal/http/response"
	"github.com/loomtrack/internal/models"
	"github.com/loomtrack/internal/repository"
	"github.com/loomtrack/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateTransferRequest 创建流转单请求
type CreateTransferRequest struct {
	SourceProcessID    uint            `json:"source_process_id" binding:"required"`
	SourceProcessType  string          `json:"source_process_type" binding:"required"`
	TargetDepartmentID uint            `json:"target_department_id" binding:"required"`
	TargetProcessType  string          `json:"target_process_type" binding:"required"`
	Quantity           models.Quantity `json:"quantity"`
	Unit               string          `json:"unit"`
	TransferDate       *time.Time      `json:"transfer_date"`
	Notes              string          `json:"notes"`
	CreateTarget       bool            `json:"create_target"`
}

// UpdateTransferRequest 更新流转单请求
type UpdateTransferRequest struct {
	Status   *string          `json:"status"`
	Notes    *string          `json:"notes"`
	Quantity *models.Quantity `json:"quantity"`
}

var transferErrorRules = concatMappedHandlerErrors(
	notFoundErrorRules,
	invalidInputErrorRules,
	conflictErrorRules,
)

// CreateTransfer 创建一次阶段间数量交接
func (h *Handler) CreateTransfer(c *gin.Context) {
	operatorID, ok := getOperatorID(c)
	if !ok {
		return
	}

	var req CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误")
		return
	}

	view, err := h.TransferService.CreateTransfer(service.CreateTransferInput{
		SourceProcessID:    req.SourceProcessID,
		SourceProcessType:  req.SourceProcessType,
		TargetDepartmentID: req.TargetDepartmentID,
		TargetProcessType:  req.TargetProcessType,
		Quantity:           req.Quantity,
		Unit:               req.Unit,
		TransferDate:       req.TransferDate,
		Notes:              req.Notes,
		CreateTarget:       req.CreateTarget,
		OperatorID:         operatorID,
	})
	if err != nil {
		respondWithMappedError(c, err, transferErrorRules)
		return
	}
	response.Success(c, view)
}

// GetTransfer 获取流转单
func (h *Handler) GetTransfer(c *gin.Context) {
	transferID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	view, err := h.TransferService.GetTransfer(transferID)
	if err != nil {
		respondWithMappedError(c, err, transferErrorRules)
		return
	}
	response.Success(c, view)
}

// ListTransfers 按来源阶段记录列出流转单
func (h *Handler) ListTransfers(c *gin.Context) {
	sourceID, err := parseUintQuery(c, "source_process_id")
	if err != nil {
		response.BadRequest(c, "参数 source_process_id 非法")
		return
	}
	sourceType := c.Query("source_process_type")
	if sourceID == 0 || sourceType == "" {
		response.BadRequest(c, "必须指定来源阶段记录")
		return
	}

	page, pageSize := parsePageQuery(c)
	views, total, err := h.TransferService.ListTransfersFor(repository.TransferListFilter{
		Page:              page,
		PageSize:          pageSize,
		SourceProcessID:   sourceID,
		SourceProcessType: sourceType,
		Status:            c.Query("status"),
	})
	if err != nil {
		respondWithMappedError(c, err, transferErrorRules)
		return
	}
	response.SuccessWithPage(c, views, response.NewPagination(page, pageSize, total))
}

// UpdateTransfer 更新流转单
func (h *Handler) UpdateTransfer(c *gin.Context) {
	transferID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req UpdateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误")
		return
	}

	view, err := h.TransferService.UpdateTransfer(transferID, service.UpdateTransferInput{
		Status:   req.Status,
		Notes:    req.Notes,
		Quantity: req.Quantity,
	})
	if err != nil {
		respondWithMappedError(c, err, transferErrorRules)
		return
	}
	response.Success(c, view)
}
