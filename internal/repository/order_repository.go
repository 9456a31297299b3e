package repository

import (
	"errors"
	"time"

	"github.com/loomtrack/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderRepository 生产订单数据访问接口
type OrderRepository interface {
	Create(order *models.ProductionOrder) error
	GetByID(id uint) (*models.ProductionOrder, error)
	GetByOrderNo(orderNo string) (*models.ProductionOrder, error)
	GetByIDForUpdate(tx *gorm.DB, id uint) (*models.ProductionOrder, error)
	UpdateDueDate(id uint, dueDate time.Time) error
	MarkCancelled(id uint, statusID uint) error
	UpdateCurrentStatus(id uint, statusID uint) error
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建生产订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Create 创建生产订单
func (r *GormOrderRepository) Create(order *models.ProductionOrder) error {
	return r.db.Create(order).Error
}

// GetByID 根据 ID 获取生产订单
func (r *GormOrderRepository) GetByID(id uint) (*models.ProductionOrder, error) {
	var order models.ProductionOrder
	if err := r.db.Preload("Plans").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByOrderNo 根据订单编号获取生产订单
func (r *GormOrderRepository) GetByOrderNo(orderNo string) (*models.ProductionOrder, error) {
	var order models.ProductionOrder
	if err := r.db.Preload("Plans").Where("order_no = ?", orderNo).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByIDForUpdate 在事务内加行锁获取订单
func (r *GormOrderRepository) GetByIDForUpdate(tx *gorm.DB, id uint) (*models.ProductionOrder, error) {
	db := r.db
	if tx != nil {
		db = tx
	}
	var order models.ProductionOrder
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// UpdateDueDate 更新交期
func (r *GormOrderRepository) UpdateDueDate(id uint, dueDate time.Time) error {
	return r.db.Model(&models.ProductionOrder{}).
		Where("id = ?", id).
		Update("due_date", dueDate).Error
}

// MarkCancelled 标记订单取消并刷新状态缓存
func (r *GormOrderRepository) MarkCancelled(id uint, statusID uint) error {
	return r.db.Model(&models.ProductionOrder{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_cancelled":      true,
			"current_status_id": statusID,
		}).Error
}

// UpdateCurrentStatus 刷新订单状态缓存列
func (r *GormOrderRepository) UpdateCurrentStatus(id uint, statusID uint) error {
	return r.db.Model(&models.ProductionOrder{}).
		Where("id = ?", id).
		Update("current_status_id", statusID).Error
}
