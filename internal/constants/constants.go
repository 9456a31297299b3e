package constants

// 跟踪状态编码常量（参照 sequence 顺序）
const (
	StatusOrderCreated       = "ORDER_CREATED"
	StatusWeavingStarted     = "WEAVING_STARTED"
	StatusWeavingCompleted   = "WEAVING_COMPLETED"
	StatusFinishingStarted   = "FINISHING_STARTED"
	StatusFinishingCompleted = "FINISHING_COMPLETED"
	StatusQualityCheck       = "QUALITY_CHECK"
	StatusQualityApproved    = "QUALITY_APPROVED"
	StatusInStorage          = "IN_STORAGE"
	StatusShipped            = "SHIPPED"
	StatusCompleted          = "COMPLETED"
	StatusOnHold             = "ON_HOLD"
	StatusCancelled          = "CANCELLED"
)

// 生产工序状态常量
const (
	StepStatusPending    = "pending"
	StepStatusInProgress = "in_progress"
	StepStatusCompleted  = "completed"
	StepStatusSkipped    = "skipped"
)

// 工序阶段类型常量（流转记录的来源/目标表标签）
const (
	ProcessTypeWeaving   = "WEAVING"
	ProcessTypeFinishing = "FINISHING"
	ProcessTypeQuality   = "QUALITY"
	ProcessTypeStorage   = "STORAGE"
	ProcessTypeShipping  = "SHIPPING"
)

// 阶段工序记录状态常量
const (
	StageStatusPlanned    = "planned"
	StageStatusInProgress = "in_progress"
	StageStatusCompleted  = "completed"
)

// 流转单状态常量
const (
	TransferStatusPending   = "pending"
	TransferStatusCompleted = "completed"
)

// 流程卡状态常量
const (
	CardStatusCreated    = "created"
	CardStatusInProgress = "in_progress"
	CardStatusCompleted  = "completed"
)

// 流程卡工序记录状态常量
const (
	CardRecordStatusInProgress = "in_progress"
	CardRecordStatusCompleted  = "completed"
)

// SystemActorID 系统操作者（自动流转、审批联动产生的台账事件）
const SystemActorID = 0

// 异步任务类型常量
const (
	TaskCardHandoffNotify   = "card:handoff_notify"
	TaskDelayApprovedNotify = "delay:approved_notify"
	QueueDefault            = "default"
)

// 通知类型常量
const (
	NotificationTypeCardHandoff   = "card_handoff"
	NotificationTypeCardCompleted = "card_completed"
	NotificationTypeDelayApproved = "delay_approved"
	NotificationTypeOrderCanceled = "order_cancelled"
)

// 通知关联实体类型常量
const (
	NotificationEntityCard  = "process_card"
	NotificationEntityOrder = "production_order"
	NotificationEntityDelay = "delay_record"
)

// 部门编码常量（种子数据，流水线顺序）
const (
	DepartmentWeaving   = "WEAVING"
	DepartmentFinishing = "FINISHING"
	DepartmentQuality   = "QUALITY"
	DepartmentStorage   = "STORAGE"
	DepartmentShipping  = "SHIPPING"
	DepartmentPlanning  = "PLANNING"
)

// 权限标签常量（跟踪流转边上的 required_permission）
const (
	PermissionTrackingWrite  = "tracking.write"
	PermissionTrackingCancel = "tracking.cancel"
	PermissionTrackingHold   = "tracking.hold"
	PermissionDelayApprove   = "delay.approve"
	PermissionShippingWrite  = "shipping.write"
)
