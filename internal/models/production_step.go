package models

import "time"

// ProductionStep 生产工序表（订单在某部门下的可变工作状态，区别于只追加的台账）
type ProductionStep struct {
	ID                uint       `gorm:"primarykey" json:"id"`
	OrderID           uint       `gorm:"index:idx_step_slot,unique;not null" json:"order_id"`
	ProductionPlanID  uint       `gorm:"index" json:"production_plan_id"`
	DepartmentID      uint       `gorm:"index:idx_step_slot,unique;not null" json:"department_id"`
	StepLabel         string     `gorm:"not null" json:"step_label"`
	StepOrder         int        `gorm:"index:idx_step_slot,unique;not null" json:"step_order"`
	Status            string     `gorm:"index;not null;default:pending" json:"status"`
	CompletionPercent int        `gorm:"not null;default:0" json:"completion_percent"` // 0-100
	PlannedStart      *time.Time `json:"planned_start"`
	PlannedEnd        *time.Time `json:"planned_end"`
	ActualStart       *time.Time `json:"actual_start"`
	ActualEnd         *time.Time `json:"actual_end"`
	Notes             string     `gorm:"type:text" json:"notes,omitempty"`
	UpdatedByID       uint       `json:"updated_by_id"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// TableName 指定表名
func (ProductionStep) TableName() string {
	return "production_steps"
}
