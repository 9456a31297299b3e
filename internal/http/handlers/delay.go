package handlers

import (
	"time"

	"github.com/loomtrack/internal/http/response"
	"github.com/loomtrack/internal/service"

	"github.com/gin-gonic/gin"
)

// ReportDelayRequest 上报延期/取消请求
type ReportDelayRequest struct {
	OrderID     uint       `json:"order_id" binding:"required"`
	Reason      string     `json:"reason" binding:"required"`
	Description string     `json:"description"`
	DelayDays   int        `json:"delay_days"`
	NewDueDate  *time.Time `json:"new_due_date"`
	IsCancelled bool       `json:"is_cancelled"`
}

var delayErrorRules = concatMappedHandlerErrors(
	notFoundErrorRules,
	invalidInputErrorRules,
	conflictErrorRules,
	transitionErrorRules,
)

// ReportDelay 上报延期/取消申请
func (h *Handler) ReportDelay(c *gin.Context) {
	operatorID, ok := getOperatorID(c)
	if !ok {
		return
	}

	var req ReportDelayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误")
		return
	}

	record, err := h.DelayService.ReportDelay(service.ReportDelayInput{
		OrderID:     req.OrderID,
		Reason:      req.Reason,
		Description: req.Description,
		DelayDays:   req.DelayDays,
		NewDueDate:  req.NewDueDate,
		IsCancelled: req.IsCancelled,
		ReporterID:  operatorID,
	})
	if err != nil {
		respondWithMappedError(c, err, delayErrorRules)
		return
	}
	response.Success(c, record)
}

// ApproveDelay 审批延期/取消申请；审批一次性
func (h *Handler) ApproveDelay(c *gin.Context) {
	operatorID, ok := getOperatorID(c)
	if !ok {
		return
	}
	delayID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	record, err := h.DelayService.ApproveDelay(delayID, operatorID)
	if err != nil {
		respondWithMappedError(c, err, delayErrorRules)
		return
	}
	response.Success(c, record)
}

// ListDelays 列出订单的延期记录
func (h *Handler) ListDelays(c *gin.Context) {
	records, err := h.DelayService.ListDelays(c.Param("orderNo"))
	if err != nil {
		respondWithMappedError(c, err, delayErrorRules)
		return
	}
	response.Success(c, records)
}
