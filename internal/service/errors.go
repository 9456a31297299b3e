package service

import "errors"

// 业务哨兵错误；handler 层按映射表翻译为响应码
var (
	// 资源不存在
	ErrOrderNotFound         = errors.New("生产订单不存在")
	ErrStatusNotFound        = errors.New("跟踪状态不存在")
	ErrCardNotFound          = errors.New("流程卡不存在")
	ErrMachineNotFound       = errors.New("机台不存在")
	ErrProcessTypeNotFound   = errors.New("工序类型不存在")
	ErrSourceProcessNotFound = errors.New("来源阶段记录不存在")
	ErrDelayNotFound         = errors.New("延期记录不存在")
	ErrTransferNotFound      = errors.New("流转单不存在")
	ErrStepNotFound          = errors.New("生产工序不存在")
	ErrRoutingNotFound       = errors.New("工艺路线不存在")
	ErrNoActiveStep          = errors.New("卡上没有进行中的工序")

	// 参数非法
	ErrQuantityNotPositive  = errors.New("数量必须为正")
	ErrCompletionOutOfRange = errors.New("完成度必须在 0 到 100 之间")
	ErrReasonRequired       = errors.New("必须填写原因")
	ErrStepOrderInvalid     = errors.New("工步序号非法")

	// 状态冲突
	ErrStepAlreadyRunning       = errors.New("该工步已在进行中")
	ErrCardBusy                 = errors.New("卡上已有进行中的工序")
	ErrCardCompleted            = errors.New("流程卡已完结")
	ErrDelayAlreadyApproved     = errors.New("延期记录已审批")
	ErrTransferQuantityExceeded = errors.New("流转数量超出来源剩余量")
	ErrProcessCodeConflict      = errors.New("阶段编号冲突")
	ErrStepSlotTaken            = errors.New("该订单在此部门的工步序号已占用")

	// 流转校验
	ErrTransitionNotAllowed = errors.New("不存在该状态流转边")
	ErrTransitionAutomated  = errors.New("该流转仅允许系统触发")
	ErrTransitionForbidden  = errors.New("缺少该流转所需权限")

	// 认证
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrOperatorDisabled   = errors.New("账号已停用")
)
