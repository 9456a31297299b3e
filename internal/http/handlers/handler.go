package handlers

import (
	"github.com/loomtrack/internal/provider"
)

// Handler 接口处理器集合
type Handler struct {
	*provider.Container
}

// New 创建处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
