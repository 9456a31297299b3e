package handlers

import (
	"strconv"

	"github.com/loomtrack/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ContextOperatorIDKey 认证中间件写入的操作员 ID 键
const ContextOperatorIDKey = "operator_id"

// getOperatorID 取当前操作员 ID；缺失时直接响应 401
func getOperatorID(c *gin.Context) (uint, bool) {
	value, ok := c.Get(ContextOperatorIDKey)
	if !ok {
		response.Unauthorized(c, "未登录")
		return 0, false
	}
	id, ok := value.(uint)
	if !ok || id == 0 {
		response.Unauthorized(c, "未登录")
		return 0, false
	}
	return id, true
}

// parseUintParam 解析路径上的无符号整数参数
func parseUintParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || value == 0 {
		response.BadRequest(c, "参数 "+name+" 非法")
		return 0, false
	}
	return uint(value), true
}

// parseUintQuery 解析查询串上的无符号整数参数；缺省返回 0
func parseUintQuery(c *gin.Context, name string) (uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(value), nil
}

// parsePageQuery 解析分页查询参数
func parsePageQuery(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 20
	}
	return page, pageSize
}
