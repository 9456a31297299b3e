package queue

import (
	"encoding/json"

	"github.com/loomtrack/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskCardHandoffNotify 流程卡交接通知任务
	TaskCardHandoffNotify = constants.TaskCardHandoffNotify
	// TaskDelayApprovedNotify 延期审批结果通知任务
	TaskDelayApprovedNotify = constants.TaskDelayApprovedNotify
)

// CardHandoffPayload 流程卡交接通知载荷
type CardHandoffPayload struct {
	CardID           uint   `json:"card_id"`
	CardNumber       string `json:"card_number"`
	NextStep         int    `json:"next_step"` // 0 表示终完工
	NextDepartmentID uint   `json:"next_department_id"`
	Terminal         bool   `json:"terminal"`
}

// DelayApprovedPayload 延期审批通知载荷
type DelayApprovedPayload struct {
	DelayRecordID uint `json:"delay_record_id"`
	OrderID       uint `json:"order_id"`
	ReporterID    uint `json:"reporter_id"`
	Cancelled     bool `json:"cancelled"`
}

// NewCardHandoffTask 创建流程卡交接通知任务
func NewCardHandoffTask(payload CardHandoffPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCardHandoffNotify, body), nil
}

// NewDelayApprovedTask 创建延期审批通知任务
func NewDelayApprovedTask(payload DelayApprovedPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDelayApprovedNotify, body), nil
}
