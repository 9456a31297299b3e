package repository

import (
	"errors"
	"time"

	"github.com/loomtrack/internal/constants"
	"github.com/loomtrack/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CardRecordRow 流程卡工序记录明细行（联表带出名称）
type CardRecordRow struct {
	models.CardProcessRecord
	MachineName     string `json:"machine_name"`
	OperatorName    string `json:"operator_name"`
	DepartmentName  string `json:"department_name"`
	ProcessTypeName string `json:"process_type_name"`
}

// CardRepository 流程卡数据访问接口
type CardRepository interface {
	Create(card *models.ProcessCard) error
	GetByCardNumber(cardNumber string) (*models.ProcessCard, error)
	GetByCardNumberForUpdate(tx *gorm.DB, cardNumber string) (*models.ProcessCard, error)
	UpdateProgress(tx *gorm.DB, id uint, status string, currentStep int) error
	ActiveRecord(tx *gorm.DB, cardID uint) (*models.CardProcessRecord, error)
	CreateRecord(tx *gorm.DB, record *models.CardProcessRecord) error
	CloseRecord(tx *gorm.DB, recordID uint, endTime time.Time, processed, defect models.Quantity, notes string) (int64, error)
	ListRecordRows(cardID uint) ([]CardRecordRow, error)
	ListActive(filter CardListFilter) ([]models.ProcessCard, int64, error)
	WithTx(tx *gorm.DB) *GormCardRepository
}

// GormCardRepository GORM 实现
type GormCardRepository struct {
	db *gorm.DB
}

// NewCardRepository 创建流程卡仓库
func NewCardRepository(db *gorm.DB) *GormCardRepository {
	return &GormCardRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCardRepository) WithTx(tx *gorm.DB) *GormCardRepository {
	if tx == nil {
		return r
	}
	return &GormCardRepository{db: tx}
}

// Create 创建流程卡
func (r *GormCardRepository) Create(card *models.ProcessCard) error {
	return r.db.Create(card).Error
}

// GetByCardNumber 按业务键获取流程卡
func (r *GormCardRepository) GetByCardNumber(cardNumber string) (*models.ProcessCard, error) {
	var card models.ProcessCard
	if err := r.db.Where("card_number = ?", cardNumber).First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

// GetByCardNumberForUpdate 在事务内加行锁获取流程卡
// 卡行锁串行化同一张卡的并发推进，"至多一条 in_progress 记录"在锁内校验。
func (r *GormCardRepository) GetByCardNumberForUpdate(tx *gorm.DB, cardNumber string) (*models.ProcessCard, error) {
	db := r.db
	if tx != nil {
		db = tx
	}
	var card models.ProcessCard
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("card_number = ?", cardNumber).
		First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

// UpdateProgress 更新卡状态与当前工步
func (r *GormCardRepository) UpdateProgress(tx *gorm.DB, id uint, status string, currentStep int) error {
	db := r.db
	if tx != nil {
		db = tx
	}
	return db.Model(&models.ProcessCard{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       status,
			"current_step": currentStep,
		}).Error
}

// ActiveRecord 取卡上 in_progress 的工序记录
func (r *GormCardRepository) ActiveRecord(tx *gorm.DB, cardID uint) (*models.CardProcessRecord, error) {
	db := r.db
	if tx != nil {
		db = tx
	}
	var record models.CardProcessRecord
	if err := db.Where("card_id = ? AND status = ?", cardID, constants.CardRecordStatusInProgress).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// CreateRecord 创建工序记录
func (r *GormCardRepository) CreateRecord(tx *gorm.DB, record *models.CardProcessRecord) error {
	db := r.db
	if tx != nil {
		db = tx
	}
	return db.Create(record).Error
}

// CloseRecord 条件关闭工序记录；仅命中仍为 in_progress 的行
func (r *GormCardRepository) CloseRecord(tx *gorm.DB, recordID uint, endTime time.Time, processed, defect models.Quantity, notes string) (int64, error) {
	db := r.db
	if tx != nil {
		db = tx
	}
	updates := map[string]interface{}{
		"end_time":           endTime,
		"status":             constants.CardRecordStatusCompleted,
		"quantity_processed": processed,
		"quantity_defect":    defect,
	}
	if notes != "" {
		updates["notes"] = notes
	}
	result := db.Model(&models.CardProcessRecord{}).
		Where("id = ? AND status = ?", recordID, constants.CardRecordStatusInProgress).
		Updates(updates)
	return result.RowsAffected, result.Error
}

// ListRecordRows 卡的工序记录明细，按工步排序，联表带出机台/操作员/部门/工序类型名称
func (r *GormCardRepository) ListRecordRows(cardID uint) ([]CardRecordRow, error) {
	var rows []CardRecordRow
	if err := r.db.Table("card_process_records").
		Select("card_process_records.*, machines.name AS machine_name, operators.display_name AS operator_name, departments.name AS department_name, process_types.name AS process_type_name").
		Joins("LEFT JOIN machines ON machines.id = card_process_records.machine_id").
		Joins("LEFT JOIN operators ON operators.id = card_process_records.operator_id").
		Joins("LEFT JOIN departments ON departments.id = card_process_records.department_id").
		Joins("LEFT JOIN process_types ON process_types.id = card_process_records.process_type_id").
		Where("card_process_records.card_id = ?", cardID).
		Order("card_process_records.step_order asc, card_process_records.id asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListActive 列出未完结的流程卡
func (r *GormCardRepository) ListActive(filter CardListFilter) ([]models.ProcessCard, int64, error) {
	query := r.db.Model(&models.ProcessCard{}).
		Where("status <> ?", constants.CardStatusCompleted)

	if filter.OrderID != 0 {
		query = query.Where("order_id = ?", filter.OrderID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = paginate(query, filter.Page, filter.PageSize)

	var cards []models.ProcessCard
	if err := query.Order("id desc").Find(&cards).Error; err != nil {
		return nil, 0, err
	}
	return cards, total, nil
}
