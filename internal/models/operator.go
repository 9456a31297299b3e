package models

import "time"

// Operator 操作员表（用户目录在本系统内的投影，只做查询与打点）
type Operator struct {
	ID           uint        `gorm:"primarykey" json:"id"`                    // 主键
	Username     string      `gorm:"uniqueIndex;not null" json:"username"`    // 登录名
	DisplayName  string      `gorm:"not null" json:"display_name"`            // 显示名
	PasswordHash string      `gorm:"type:varchar(200)" json:"-"`              // 口令哈希
	DepartmentID uint        `gorm:"index" json:"department_id"`              // 所属部门
	Permissions  StringArray `gorm:"type:text" json:"permissions,omitempty"`  // 权限标签集合
	IsActive     bool        `gorm:"not null;default:true" json:"is_active"`  // 启用标记
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// TableName 指定表名
func (Operator) TableName() string {
	return "operators"
}
