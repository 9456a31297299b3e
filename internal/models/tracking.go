package models

import "time"

// TrackingStatus 跟踪状态表（不可变参照数据）
// Sequence 仅用于展示排序，不参与流转合法性判断。
type TrackingStatus struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Code      string    `gorm:"uniqueIndex;not null" json:"code"`
	Color     string    `gorm:"type:varchar(16)" json:"color"` // 展示颜色
	Sequence  int       `gorm:"not null;default:0" json:"sequence"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (TrackingStatus) TableName() string {
	return "tracking_statuses"
}

// TrackingTransition 状态流转边表；整张表构成流转图
type TrackingTransition struct {
	ID                 uint      `gorm:"primarykey" json:"id"`
	FromStatusID       uint      `gorm:"index:idx_transition_edge,unique;not null" json:"from_status_id"`
	ToStatusID         uint      `gorm:"index:idx_transition_edge,unique;not null" json:"to_status_id"`
	Description        string    `json:"description"`
	IsAutomated        bool      `gorm:"not null;default:false" json:"is_automated"`         // 仅允许系统触发
	RequiredPermission string    `gorm:"type:varchar(64)" json:"required_permission,omitempty"` // 为空表示无需权限
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// TableName 指定表名
func (TrackingTransition) TableName() string {
	return "tracking_transitions"
}

// TrackingEvent 跟踪台账事件（只追加，不更新不删除；纠错靠追加新事件）
type TrackingEvent struct {
	ID               uint      `gorm:"primarykey" json:"id"`
	OrderID          uint      `gorm:"index;not null" json:"order_id"`
	StatusID         uint      `gorm:"index;not null" json:"status_id"`
	Note             string    `gorm:"type:text" json:"note,omitempty"`
	ActorID          uint      `gorm:"index" json:"actor_id"` // 0 表示系统
	ProductionPlanID *uint     `gorm:"index" json:"production_plan_id,omitempty"`
	ShipmentID       *uint     `gorm:"index" json:"shipment_id,omitempty"`
	Payload          JSON      `gorm:"type:text" json:"payload,omitempty"`
	CreatedAt        time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (TrackingEvent) TableName() string {
	return "tracking_events"
}
