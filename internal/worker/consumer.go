package worker

import (
	"context"
	"encoding/json"

	"github.com/loomtrack/internal/logger"
	"github.com/loomtrack/internal/provider"
	"github.com/loomtrack/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskCardHandoffNotify, c.handleCardHandoff)
	mux.HandleFunc(queue.TaskDelayApprovedNotify, c.handleDelayApproved)
}

func (c *Consumer) handleCardHandoff(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.CardHandoffPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_card_handoff_unmarshal_failed", "error", err)
		return err
	}
	if payload.CardID == 0 {
		logger.Debugw("worker_card_handoff_skip_invalid_payload", "card_id", payload.CardID)
		return nil
	}
	if err := c.NotificationService.DispatchCardHandoff(ctx, payload); err != nil {
		logger.Warnw("worker_card_handoff_dispatch_failed", "card_id", payload.CardID, "error", err)
		return err
	}
	return nil
}

func (c *Consumer) handleDelayApproved(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.DelayApprovedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_delay_approved_unmarshal_failed", "error", err)
		return err
	}
	if payload.DelayRecordID == 0 || payload.ReporterID == 0 {
		logger.Debugw("worker_delay_approved_skip_invalid_payload", "delay_id", payload.DelayRecordID)
		return nil
	}
	if err := c.NotificationService.DispatchDelayApproved(ctx, payload); err != nil {
		logger.Warnw("worker_delay_approved_dispatch_failed", "delay_id", payload.DelayRecordID, "error", err)
		return err
	}
	return nil
}
