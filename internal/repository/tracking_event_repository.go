package repository

import (
	"errors"

	"github.com/loomtrack/internal/models"

	"gorm.io/gorm"
)

// TrackingEventRepository 跟踪台账数据访问接口（只追加）
type TrackingEventRepository interface {
	Append(event *models.TrackingEvent) error
	Latest(orderID uint) (*models.TrackingEvent, error)
	ListByOrder(orderID uint) ([]models.TrackingEvent, error)
	CountByOrder(orderID uint) (int64, error)
	WithTx(tx *gorm.DB) *GormTrackingEventRepository
}

// GormTrackingEventRepository GORM 实现
type GormTrackingEventRepository struct {
	db *gorm.DB
}

// NewTrackingEventRepository 创建跟踪台账仓库
func NewTrackingEventRepository(db *gorm.DB) *GormTrackingEventRepository {
	return &GormTrackingEventRepository{db: db}
}

// WithTx 绑定事务
func (r *GormTrackingEventRepository) WithTx(tx *gorm.DB) *GormTrackingEventRepository {
	if tx == nil {
		return r
	}
	return &GormTrackingEventRepository{db: tx}
}

// Append 追加台账事件
func (r *GormTrackingEventRepository) Append(event *models.TrackingEvent) error {
	return r.db.Create(event).Error
}

// Latest 取订单最近一条事件；时间相同按插入顺序（id）决先后
func (r *GormTrackingEventRepository) Latest(orderID uint) (*models.TrackingEvent, error) {
	var event models.TrackingEvent
	if err := r.db.Where("order_id = ?", orderID).
		Order("created_at desc, id desc").
		First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

// ListByOrder 订单全量事件，新到旧
func (r *GormTrackingEventRepository) ListByOrder(orderID uint) ([]models.TrackingEvent, error) {
	var events []models.TrackingEvent
	if err := r.db.Where("order_id = ?", orderID).
		Order("created_at desc, id desc").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// CountByOrder 统计订单事件数
func (r *GormTrackingEventRepository) CountByOrder(orderID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.TrackingEvent{}).
		Where("order_id = ?", orderID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
