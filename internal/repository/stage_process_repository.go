package repository

import (
	"errors"

	"github.com/loomtrack/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StageProcessRepository 阶段工序记录数据访问接口
type StageProcessRepository interface {
	Create(process *models.StageProcess) error
	GetByIDAndType(id uint, processType string) (*models.StageProcess, error)
	GetByIDAndTypeForUpdate(tx *gorm.DB, id uint, processType string) (*models.StageProcess, error)
	UpdateQuantity(id uint, quantity models.Quantity) error
	WithTx(tx *gorm.DB) *GormStageProcessRepository
}

// GormStageProcessRepository GORM 实现
type GormStageProcessRepository struct {
	db *gorm.DB
}

// NewStageProcessRepository 创建阶段工序仓库
func NewStageProcessRepository(db *gorm.DB) *GormStageProcessRepository {
	return &GormStageProcessRepository{db: db}
}

// WithTx 绑定事务
func (r *GormStageProcessRepository) WithTx(tx *gorm.DB) *GormStageProcessRepository {
	if tx == nil {
		return r
	}
	return &GormStageProcessRepository{db: tx}
}

// Create 创建阶段工序记录
func (r *GormStageProcessRepository) Create(process *models.StageProcess) error {
	return r.db.Create(process).Error
}

// GetByIDAndType 按 ID 与阶段类型获取记录
func (r *GormStageProcessRepository) GetByIDAndType(id uint, processType string) (*models.StageProcess, error) {
	var process models.StageProcess
	if err := r.db.Where("id = ? AND process_type = ?", id, processType).
		First(&process).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &process, nil
}

// GetByIDAndTypeForUpdate 在事务内加行锁获取记录（累计流转量校验用）
func (r *GormStageProcessRepository) GetByIDAndTypeForUpdate(tx *gorm.DB, id uint, processType string) (*models.StageProcess, error) {
	db := r.db
	if tx != nil {
		db = tx
	}
	var process models.StageProcess
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND process_type = ?", id, processType).
		First(&process).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &process, nil
}

// UpdateQuantity 更新记录数量（流转单数量变更联动）
func (r *GormStageProcessRepository) UpdateQuantity(id uint, quantity models.Quantity) error {
	return r.db.Model(&models.StageProcess{}).
		Where("id = ?", id).
		Update("quantity", quantity).Error
}
