package repository

import (
	"errors"

	"github.com/loomtrack/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CodeSequenceRepository 编号序列数据访问接口
type CodeSequenceRepository interface {
	NextValue(tx *gorm.DB, scope string) (int, error)
}

// GormCodeSequenceRepository GORM 实现
type GormCodeSequenceRepository struct {
	db *gorm.DB
}

// NewCodeSequenceRepository 创建编号序列仓库
func NewCodeSequenceRepository(db *gorm.DB) *GormCodeSequenceRepository {
	return &GormCodeSequenceRepository{db: db}
}

// NextValue 在事务内对 scope 行加锁自增并返回新值
// 不存在则先插入零行；同事务并发由行锁串行化，保证编号无重复无空洞。
func (r *GormCodeSequenceRepository) NextValue(tx *gorm.DB, scope string) (int, error) {
	db := r.db
	if tx != nil {
		db = tx
	}

	var seq models.CodeSequence
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("scope = ?", scope).
		First(&seq).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, err
		}
		seq = models.CodeSequence{Scope: scope}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "scope"}},
			DoNothing: true,
		}).Create(&seq).Error; err != nil {
			return 0, err
		}
		// 并发首插可能被别人抢先，重新加锁读取
		if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("scope = ?", scope).
			First(&seq).Error; err != nil {
			return 0, err
		}
	}

	next := seq.LastValue + 1
	if err := db.Model(&models.CodeSequence{}).
		Where("id = ?", seq.ID).
		Update("last_value", next).Error; err != nil {
		return 0, err
	}
	return next, nil
}
