package repository

import (
	"errors"

	"github.com/loomtrack/internal/models"

	"gorm.io/gorm"
)

// StatusRepository 状态目录数据访问接口
type StatusRepository interface {
	ListActive() ([]models.TrackingStatus, error)
	GetByID(id uint) (*models.TrackingStatus, error)
	GetByCode(code string) (*models.TrackingStatus, error)
	ListTransitionsFrom(fromStatusID uint) ([]models.TrackingTransition, error)
	GetTransition(fromStatusID, toStatusID uint) (*models.TrackingTransition, error)
}

// GormStatusRepository GORM 实现
type GormStatusRepository struct {
	db *gorm.DB
}

// NewStatusRepository 创建状态目录仓库
func NewStatusRepository(db *gorm.DB) *GormStatusRepository {
	return &GormStatusRepository{db: db}
}

// ListActive 列出启用状态，按 sequence 排序
func (r *GormStatusRepository) ListActive() ([]models.TrackingStatus, error) {
	var statuses []models.TrackingStatus
	if err := r.db.Where("is_active = ?", true).
		Order("sequence asc").
		Find(&statuses).Error; err != nil {
		return nil, err
	}
	return statuses, nil
}

// GetByID 根据 ID 获取状态
func (r *GormStatusRepository) GetByID(id uint) (*models.TrackingStatus, error) {
	var status models.TrackingStatus
	if err := r.db.First(&status, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &status, nil
}

// GetByCode 根据编码获取状态
func (r *GormStatusRepository) GetByCode(code string) (*models.TrackingStatus, error) {
	var status models.TrackingStatus
	if err := r.db.Where("code = ?", code).First(&status).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &status, nil
}

// ListTransitionsFrom 列出某状态的全部出边
func (r *GormStatusRepository) ListTransitionsFrom(fromStatusID uint) ([]models.TrackingTransition, error) {
	var transitions []models.TrackingTransition
	if err := r.db.Where("from_status_id = ?", fromStatusID).
		Order("to_status_id asc").
		Find(&transitions).Error; err != nil {
		return nil, err
	}
	return transitions, nil
}

// GetTransition 获取指定流转边
func (r *GormStatusRepository) GetTransition(fromStatusID, toStatusID uint) (*models.TrackingTransition, error) {
	var transition models.TrackingTransition
	if err := r.db.Where("from_status_id = ? AND to_status_id = ?", fromStatusID, toStatusID).
		First(&transition).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &transition, nil
}
