package repository

import (
	"errors"

	"github.com/loomtrack/internal/models"

	"gorm.io/gorm"
)

// ProductionStepRepository 生产工序数据访问接口
type ProductionStepRepository interface {
	Create(step *models.ProductionStep) error
	GetByID(id uint) (*models.ProductionStep, error)
	Updates(id uint, updates map[string]interface{}) error
	ListByOrder(orderID uint) ([]models.ProductionStep, error)
	WithTx(tx *gorm.DB) *GormProductionStepRepository
}

// GormProductionStepRepository GORM 实现
type GormProductionStepRepository struct {
	db *gorm.DB
}

// NewProductionStepRepository 创建生产工序仓库
func NewProductionStepRepository(db *gorm.DB) *GormProductionStepRepository {
	return &GormProductionStepRepository{db: db}
}

// WithTx 绑定事务
func (r *GormProductionStepRepository) WithTx(tx *gorm.DB) *GormProductionStepRepository {
	if tx == nil {
		return r
	}
	return &GormProductionStepRepository{db: tx}
}

// Create 创建工序行
func (r *GormProductionStepRepository) Create(step *models.ProductionStep) error {
	return r.db.Create(step).Error
}

// GetByID 根据 ID 获取工序行
func (r *GormProductionStepRepository) GetByID(id uint) (*models.ProductionStep, error) {
	var step models.ProductionStep
	if err := r.db.First(&step, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &step, nil
}

// Updates 原地更新工序行
func (r *GormProductionStepRepository) Updates(id uint, updates map[string]interface{}) error {
	return r.db.Model(&models.ProductionStep{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// ListByOrder 订单工序，按 step_order 排序
func (r *GormProductionStepRepository) ListByOrder(orderID uint) ([]models.ProductionStep, error) {
	var steps []models.ProductionStep
	if err := r.db.Where("order_id = ?", orderID).
		Order("step_order asc").
		Find(&steps).Error; err != nil {
		return nil, err
	}
	return steps, nil
}
