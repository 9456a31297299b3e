package repository

import "time"

// TransferListFilter 查询流转单列表的过滤条件
type TransferListFilter struct {
	Page              int
	PageSize          int
	SourceProcessID   uint
	SourceProcessType string
	Status            string
	TransferFrom      *time.Time
	TransferTo        *time.Time
}

// CardListFilter 查询流程卡列表的过滤条件
type CardListFilter struct {
	Page         int
	PageSize     int
	OrderID      uint
	Status       string
	DepartmentID uint
}

// NotificationListFilter 查询通知列表的过滤条件
type NotificationListFilter struct {
	Page        int
	PageSize    int
	RecipientID uint
	OnlyUnread  bool
}
