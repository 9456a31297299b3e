package handlers

import (
	"github.com/loomtrack/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListStatuses 按展示顺序列出启用跟踪状态
func (h *Handler) ListStatuses(c *gin.Context) {
	statuses, err := h.StatusCatalog.ListActiveStatuses()
	if err != nil {
		respondWithMappedError(c, err, notFoundErrorRules)
		return
	}
	response.Success(c, statuses)
}

// ListTransitions 列出某状态的出边及当前操作者的可用性
func (h *Handler) ListTransitions(c *gin.Context) {
	operatorID, ok := getOperatorID(c)
	if !ok {
		return
	}
	statusID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	options, err := h.StatusCatalog.ListTransitionsFrom(statusID, operatorID)
	if err != nil {
		respondWithMappedError(c, err, notFoundErrorRules)
		return
	}
	response.Success(c, options)
}
