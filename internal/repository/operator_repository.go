package repository

import (
	"errors"

	"github.com/loomtrack/internal/models"

	"gorm.io/gorm"
)

// OperatorRepository 操作员数据访问接口
type OperatorRepository interface {
	GetByID(id uint) (*models.Operator, error)
	GetByUsername(username string) (*models.Operator, error)
	ListByDepartment(departmentID uint) ([]models.Operator, error)
}

// GormOperatorRepository GORM 实现
type GormOperatorRepository struct {
	db *gorm.DB
}

// NewOperatorRepository 创建操作员仓库
func NewOperatorRepository(db *gorm.DB) *GormOperatorRepository {
	return &GormOperatorRepository{db: db}
}

// GetByID 按 ID 获取操作员
func (r *GormOperatorRepository) GetByID(id uint) (*models.Operator, error) {
	var op models.Operator
	if err := r.db.First(&op, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &op, nil
}

// GetByUsername 按登录名获取操作员
func (r *GormOperatorRepository) GetByUsername(username string) (*models.Operator, error) {
	var op models.Operator
	if err := r.db.Where("username = ?", username).First(&op).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &op, nil
}

// ListByDepartment 列出部门下启用操作员，用于站内通知分发
func (r *GormOperatorRepository) ListByDepartment(departmentID uint) ([]models.Operator, error) {
	var ops []models.Operator
	if err := r.db.Where("department_id = ? AND is_active = ?", departmentID, true).
		Order("id asc").
		Find(&ops).Error; err != nil {
		return nil, err
	}
	return ops, nil
}
