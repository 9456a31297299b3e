package models

import "time"

// Department 部门表（机织/后整理/质检/仓储/发运/计划）
type Department struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Code      string    `gorm:"uniqueIndex;not null" json:"code"` // 部门编码
	Name      string    `gorm:"not null" json:"name"`
	Sequence  int       `gorm:"not null;default:0" json:"sequence"` // 流水线顺序
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Department) TableName() string {
	return "departments"
}

// Machine 机台表
type Machine struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Code         string    `gorm:"uniqueIndex;not null" json:"code"` // 机台编码
	Name         string    `gorm:"not null" json:"name"`
	DepartmentID uint      `gorm:"index;not null" json:"department_id"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Machine) TableName() string {
	return "machines"
}

// ProcessType 工序类型表；CodePrefix 用于下游阶段记录的编号前缀
type ProcessType struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Code         string    `gorm:"uniqueIndex;not null" json:"code"` // WEAVING / FINISHING / ...
	Name         string    `gorm:"not null" json:"name"`
	CodePrefix   string    `gorm:"type:varchar(8);not null" json:"code_prefix"` // WV / FN / QC / ST / SH
	DepartmentID uint      `gorm:"index;not null" json:"department_id"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName 指定表名
func (ProcessType) TableName() string {
	return "process_types"
}
