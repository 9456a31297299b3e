package handlers

import (
	"github.com/loomtrack/internal/http/response"
	"github.com/loomtrack/internal/models"
	"github.com/loomtrack/internal/service"

	"github.com/gin-gonic/gin"
)

// RecordEventRequest 追加台账事件请求
type RecordEventRequest struct {
	StatusCode       string      `json:"status_code" binding:"required"`
	Note             string      `json:"note"`
	ProductionPlanID *uint       `json:"production_plan_id"`
	ShipmentID       *uint       `json:"shipment_id"`
	Payload          models.JSON `json:"payload"`
}

var trackingErrorRules = concatMappedHandlerErrors(
	notFoundErrorRules,
	transitionErrorRules,
)

// GetTracking 订单跟踪全景
func (h *Handler) GetTracking(c *gin.Context) {
	orderNo := c.Param("orderNo")
	detail, err := h.TrackingService.Detail(orderNo)
	if err != nil {
		respondWithMappedError(c, err, notFoundErrorRules)
		return
	}
	response.Success(c, detail)
}

// RecordEvent 人工追加一条台账事件
// 先走流转校验（当前状态 → 目标状态，人工路径），通过后落账。
func (h *Handler) RecordEvent(c *gin.Context) {
	operatorID, ok := getOperatorID(c)
	if !ok {
		return
	}

	var req RecordEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误")
		return
	}

	order, err := h.OrderRepo.GetByOrderNo(c.Param("orderNo"))
	if err != nil {
		respondWithMappedError(c, err, trackingErrorRules)
		return
	}
	if order == nil {
		respondWithMappedError(c, service.ErrOrderNotFound, trackingErrorRules)
		return
	}

	target, err := h.StatusCatalog.GetStatusByCode(req.StatusCode)
	if err != nil {
		respondWithMappedError(c, err, trackingErrorRules)
		return
	}

	current, err := h.TrackingService.CurrentStatus(order.ID)
	if err != nil {
		respondWithMappedError(c, err, trackingErrorRules)
		return
	}
	if current != nil {
		if err := h.StatusCatalog.ValidateTransition(current.ID, target.ID, operatorID, true); err != nil {
			respondWithMappedError(c, err, trackingErrorRules)
			return
		}
	}

	event, err := h.TrackingService.RecordEvent(service.RecordEventInput{
		OrderID:          order.ID,
		StatusID:         target.ID,
		Note:             req.Note,
		ActorID:          operatorID,
		ProductionPlanID: req.ProductionPlanID,
		ShipmentID:       req.ShipmentID,
		Payload:          req.Payload,
	})
	if err != nil {
		respondWithMappedError(c, err, trackingErrorRules)
		return
	}
	response.Success(c, event)
}
