package repository

import (
	"errors"
	"time"

	"github.com/loomtrack/internal/models"

	"gorm.io/gorm"
)

// DelayRepository 延期/取消申请数据访问接口
type DelayRepository interface {
	Create(record *models.DelayRecord) error
	GetByID(id uint) (*models.DelayRecord, error)
	ListByOrder(orderID uint) ([]models.DelayRecord, error)
	Approve(tx *gorm.DB, id uint, approverID uint, approvedAt time.Time) (int64, error)
	WithTx(tx *gorm.DB) *GormDelayRepository
}

// GormDelayRepository GORM 实现
type GormDelayRepository struct {
	db *gorm.DB
}

// NewDelayRepository 创建延期申请仓库
func NewDelayRepository(db *gorm.DB) *GormDelayRepository {
	return &GormDelayRepository{db: db}
}

// WithTx 绑定事务
func (r *GormDelayRepository) WithTx(tx *gorm.DB) *GormDelayRepository {
	if tx == nil {
		return r
	}
	return &GormDelayRepository{db: tx}
}

// Create 创建延期申请
func (r *GormDelayRepository) Create(record *models.DelayRecord) error {
	return r.db.Create(record).Error
}

// GetByID 根据 ID 获取延期申请
func (r *GormDelayRepository) GetByID(id uint) (*models.DelayRecord, error) {
	var record models.DelayRecord
	if err := r.db.First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// ListByOrder 订单的延期申请，新到旧
func (r *GormDelayRepository) ListByOrder(orderID uint) ([]models.DelayRecord, error) {
	var records []models.DelayRecord
	if err := r.db.Where("order_id = ?", orderID).
		Order("id desc").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Approve 条件更新盖审批戳；approved_by_id 非空时不命中，返回受影响行数供上层判冲突
func (r *GormDelayRepository) Approve(tx *gorm.DB, id uint, approverID uint, approvedAt time.Time) (int64, error) {
	db := r.db
	if tx != nil {
		db = tx
	}
	result := db.Model(&models.DelayRecord{}).
		Where("id = ? AND approved_by_id IS NULL", id).
		Updates(map[string]interface{}{
			"approved_by_id": approverID,
			"approved_date":  approvedAt,
		})
	return result.RowsAffected, result.Error
}
