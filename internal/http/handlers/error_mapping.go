package handlers

import (
	"errors"

	"github.com/loomtrack/internal/http/response"
	"github.com/loomtrack/internal/logger"
	"github.com/loomtrack/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			response.Error(c, rule.code, rule.target.Error())
			return
		}
	}
	logger.Errorw("handler_unmapped_error", "path", c.FullPath(), "error", err)
	response.Error(c, response.CodeInternal, "内部错误")
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

// 各资源通用的不存在类错误
var notFoundErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound},
	{target: service.ErrStatusNotFound, code: response.CodeNotFound},
	{target: service.ErrCardNotFound, code: response.CodeNotFound},
	{target: service.ErrMachineNotFound, code: response.CodeNotFound},
	{target: service.ErrProcessTypeNotFound, code: response.CodeNotFound},
	{target: service.ErrSourceProcessNotFound, code: response.CodeNotFound},
	{target: service.ErrDelayNotFound, code: response.CodeNotFound},
	{target: service.ErrTransferNotFound, code: response.CodeNotFound},
	{target: service.ErrStepNotFound, code: response.CodeNotFound},
	{target: service.ErrRoutingNotFound, code: response.CodeNotFound},
	{target: service.ErrNoActiveStep, code: response.CodeNotFound},
}

// 参数类错误
var invalidInputErrorRules = []mappedHandlerError{
	{target: service.ErrQuantityNotPositive, code: response.CodeBadRequest},
	{target: service.ErrCompletionOutOfRange, code: response.CodeBadRequest},
	{target: service.ErrReasonRequired, code: response.CodeBadRequest},
	{target: service.ErrStepOrderInvalid, code: response.CodeBadRequest},
}

// 状态冲突类错误
var conflictErrorRules = []mappedHandlerError{
	{target: service.ErrStepAlreadyRunning, code: response.CodeConflict},
	{target: service.ErrCardBusy, code: response.CodeConflict},
	{target: service.ErrCardCompleted, code: response.CodeConflict},
	{target: service.ErrDelayAlreadyApproved, code: response.CodeConflict},
	{target: service.ErrTransferQuantityExceeded, code: response.CodeConflict},
	{target: service.ErrProcessCodeConflict, code: response.CodeConflict},
	{target: service.ErrStepSlotTaken, code: response.CodeConflict},
}

// 流转校验类错误
var transitionErrorRules = []mappedHandlerError{
	{target: service.ErrTransitionNotAllowed, code: response.CodeBadRequest},
	{target: service.ErrTransitionAutomated, code: response.CodeForbidden},
	{target: service.ErrTransitionForbidden, code: response.CodeForbidden},
}
