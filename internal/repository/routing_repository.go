package repository

import (
	"errors"

	"github.com/loomtrack/internal/models"

	"gorm.io/gorm"
)

// RoutingRepository 工艺路线数据访问接口
type RoutingRepository interface {
	GetByID(id uint) (*models.ProcessRouting, error)
	GetDefault() (*models.ProcessRouting, error)
	StepAt(routingID uint, stepOrder int) (*models.RoutingStep, error)
}

// GormRoutingRepository GORM 实现
type GormRoutingRepository struct {
	db *gorm.DB
}

// NewRoutingRepository 创建工艺路线仓库
func NewRoutingRepository(db *gorm.DB) *GormRoutingRepository {
	return &GormRoutingRepository{db: db}
}

// GetByID 按 ID 获取路线（含工步，按序）
func (r *GormRoutingRepository) GetByID(id uint) (*models.ProcessRouting, error) {
	var routing models.ProcessRouting
	if err := r.db.Preload("Steps", func(db *gorm.DB) *gorm.DB {
		return db.Order("step_order asc")
	}).First(&routing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &routing, nil
}

// GetDefault 获取默认启用路线
func (r *GormRoutingRepository) GetDefault() (*models.ProcessRouting, error) {
	var routing models.ProcessRouting
	if err := r.db.Preload("Steps", func(db *gorm.DB) *gorm.DB {
		return db.Order("step_order asc")
	}).Where("is_default = ? AND is_active = ?", true, true).
		First(&routing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &routing, nil
}

// StepAt 取路线上指定序号的工步
func (r *GormRoutingRepository) StepAt(routingID uint, stepOrder int) (*models.RoutingStep, error) {
	var step models.RoutingStep
	if err := r.db.Where("routing_id = ? AND step_order = ?", routingID, stepOrder).
		First(&step).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &step, nil
}
