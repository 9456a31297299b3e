package repository

import (
	"errors"

	"github.com/loomtrack/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransferRepository 流转单数据访问接口
type TransferRepository interface {
	Create(transfer *models.ProcessTransfer) error
	GetByID(id uint) (*models.ProcessTransfer, error)
	ListBySource(filter TransferListFilter) ([]models.ProcessTransfer, int64, error)
	ListByOrder(orderID uint) ([]models.ProcessTransfer, error)
	SumQuantityBySource(sourceProcessID uint, sourceProcessType string, excludeID uint) (decimal.Decimal, error)
	SetTarget(id uint, targetProcessID uint, targetProcessType string) error
	Updates(id uint, updates map[string]interface{}) error
	WithTx(tx *gorm.DB) *GormTransferRepository
}

// GormTransferRepository GORM 实现
type GormTransferRepository struct {
	db *gorm.DB
}

// NewTransferRepository 创建流转单仓库
func NewTransferRepository(db *gorm.DB) *GormTransferRepository {
	return &GormTransferRepository{db: db}
}

// WithTx 绑定事务
func (r *GormTransferRepository) WithTx(tx *gorm.DB) *GormTransferRepository {
	if tx == nil {
		return r
	}
	return &GormTransferRepository{db: tx}
}

// Create 创建流转单
func (r *GormTransferRepository) Create(transfer *models.ProcessTransfer) error {
	return r.db.Create(transfer).Error
}

// GetByID 根据 ID 获取流转单
func (r *GormTransferRepository) GetByID(id uint) (*models.ProcessTransfer, error) {
	var transfer models.ProcessTransfer
	if err := r.db.First(&transfer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &transfer, nil
}

// ListBySource 按来源列出流转单
func (r *GormTransferRepository) ListBySource(filter TransferListFilter) ([]models.ProcessTransfer, int64, error) {
	query := r.db.Model(&models.ProcessTransfer{}).
		Where("source_process_id = ? AND source_process_type = ?", filter.SourceProcessID, filter.SourceProcessType)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.TransferFrom != nil {
		query = query.Where("transfer_date >= ?", *filter.TransferFrom)
	}
	if filter.TransferTo != nil {
		query = query.Where("transfer_date <= ?", *filter.TransferTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = paginate(query, filter.Page, filter.PageSize)

	var transfers []models.ProcessTransfer
	if err := query.Order("id desc").Find(&transfers).Error; err != nil {
		return nil, 0, err
	}
	return transfers, total, nil
}

// ListByOrder 经来源阶段记录关联出某订单的全部流转单
func (r *GormTransferRepository) ListByOrder(orderID uint) ([]models.ProcessTransfer, error) {
	var transfers []models.ProcessTransfer
	if err := r.db.
		Joins("JOIN stage_processes ON stage_processes.id = process_transfers.source_process_id AND stage_processes.process_type = process_transfers.source_process_type").
		Where("stage_processes.order_id = ?", orderID).
		Order("process_transfers.id desc").
		Find(&transfers).Error; err != nil {
		return nil, err
	}
	return transfers, nil
}

// SumQuantityBySource 某来源的累计流转量；excludeID 排除自身（更新数量时）
func (r *GormTransferRepository) SumQuantityBySource(sourceProcessID uint, sourceProcessType string, excludeID uint) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	query := r.db.Model(&models.ProcessTransfer{}).
		Select("COALESCE(SUM(quantity), 0) AS total").
		Where("source_process_id = ? AND source_process_type = ?", sourceProcessID, sourceProcessType)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Take(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

// SetTarget 回填目标阶段记录指针
func (r *GormTransferRepository) SetTarget(id uint, targetProcessID uint, targetProcessType string) error {
	return r.db.Model(&models.ProcessTransfer{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"target_process_id":   targetProcessID,
			"target_process_type": targetProcessType,
		}).Error
}

// Updates 更新可变字段
func (r *GormTransferRepository) Updates(id uint, updates map[string]interface{}) error {
	return r.db.Model(&models.ProcessTransfer{}).
		Where("id = ?", id).
		Updates(updates).Error
}
