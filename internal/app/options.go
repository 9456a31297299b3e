package app

import (
	"os"
	"time"

	"github.com/loomtrack/internal/config"
	"github.com/loomtrack/internal/logger"

	"go.uber.org/zap"
)

// 运行模式：api 只起 HTTP 面，worker 只起队列消费，all 同进程合跑
const (
	ModeAll    = "all"
	ModeAPI    = "api"
	ModeWorker = "worker"
)

// 关停窗口要覆盖在途请求与 asynq 任务收尾
const defaultShutdownTimeout = 15 * time.Second

// Options 应用启动选项
type Options struct {
	Config          *config.Config
	Logger          *zap.SugaredLogger
	Signals         []os.Signal
	ShutdownTimeout time.Duration
	Mode            string
}

// withDefaults 补齐缺省项后返回副本
func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = logger.S()
	}
	if o.ShutdownTimeout <= 0 {
		o.ShutdownTimeout = defaultShutdownTimeout
	}
	if o.Mode == "" {
		o.Mode = ModeAll
	}
	return o
}
