package handlers

import (
	"github.com/loomtrack/internal/http/response"
	"github.com/loomtrack/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListNotifications 收件箱
func (h *Handler) ListNotifications(c *gin.Context) {
	operatorID, ok := getOperatorID(c)
	if !ok {
		return
	}
	page, pageSize := parsePageQuery(c)

	notifications, total, err := h.NotificationService.ListInbox(repository.NotificationListFilter{
		Page:        page,
		PageSize:    pageSize,
		RecipientID: operatorID,
		OnlyUnread:  c.Query("unread") == "1",
	})
	if err != nil {
		respondWithMappedError(c, err, nil)
		return
	}
	response.SuccessWithPage(c, notifications, response.NewPagination(page, pageSize, total))
}

// MarkNotificationRead 标记通知已读
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	operatorID, ok := getOperatorID(c)
	if !ok {
		return
	}
	notificationID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	if err := h.NotificationService.MarkRead(notificationID, operatorID); err != nil {
		respondWithMappedError(c, err, nil)
		return
	}
	response.Success(c, nil)
}
