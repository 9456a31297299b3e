package repository

import (
	"errors"

	"github.com/loomtrack/internal/models"

	"gorm.io/gorm"
)

// DirectoryRepository 部门/机台/工序类型基础数据访问接口
type DirectoryRepository interface {
	GetDepartmentByID(id uint) (*models.Department, error)
	GetDepartmentByCode(code string) (*models.Department, error)
	ListDepartments() ([]models.Department, error)
	GetMachineByID(id uint) (*models.Machine, error)
	FirstActiveMachine(departmentID uint) (*models.Machine, error)
	GetProcessTypeByID(id uint) (*models.ProcessType, error)
	GetProcessTypeByCode(code string) (*models.ProcessType, error)
	FirstActiveProcessType(departmentID uint) (*models.ProcessType, error)
}

// GormDirectoryRepository GORM 实现
type GormDirectoryRepository struct {
	db *gorm.DB
}

// NewDirectoryRepository 创建基础数据仓库
func NewDirectoryRepository(db *gorm.DB) *GormDirectoryRepository {
	return &GormDirectoryRepository{db: db}
}

// GetDepartmentByID 按 ID 获取部门
func (r *GormDirectoryRepository) GetDepartmentByID(id uint) (*models.Department, error) {
	var dept models.Department
	if err := r.db.First(&dept, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &dept, nil
}

// GetDepartmentByCode 按编码获取部门
func (r *GormDirectoryRepository) GetDepartmentByCode(code string) (*models.Department, error) {
	var dept models.Department
	if err := r.db.Where("code = ?", code).First(&dept).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &dept, nil
}

// ListDepartments 按流水线顺序列出启用部门
func (r *GormDirectoryRepository) ListDepartments() ([]models.Department, error) {
	var depts []models.Department
	if err := r.db.Where("is_active = ?", true).
		Order("sequence asc, id asc").
		Find(&depts).Error; err != nil {
		return nil, err
	}
	return depts, nil
}

// GetMachineByID 按 ID 获取机台
func (r *GormDirectoryRepository) GetMachineByID(id uint) (*models.Machine, error) {
	var machine models.Machine
	if err := r.db.First(&machine, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &machine, nil
}

// FirstActiveMachine 取部门下编号最小的启用机台，用于简化开工时的缺省解析
func (r *GormDirectoryRepository) FirstActiveMachine(departmentID uint) (*models.Machine, error) {
	var machine models.Machine
	if err := r.db.Where("department_id = ? AND is_active = ?", departmentID, true).
		Order("id asc").
		First(&machine).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &machine, nil
}

// GetProcessTypeByID 按 ID 获取工序类型
func (r *GormDirectoryRepository) GetProcessTypeByID(id uint) (*models.ProcessType, error) {
	var pt models.ProcessType
	if err := r.db.First(&pt, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pt, nil
}

// GetProcessTypeByCode 按编码获取工序类型
func (r *GormDirectoryRepository) GetProcessTypeByCode(code string) (*models.ProcessType, error) {
	var pt models.ProcessType
	if err := r.db.Where("code = ?", code).First(&pt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pt, nil
}

// FirstActiveProcessType 取部门下缺省工序类型
func (r *GormDirectoryRepository) FirstActiveProcessType(departmentID uint) (*models.ProcessType, error) {
	var pt models.ProcessType
	if err := r.db.Where("department_id = ? AND is_active = ?", departmentID, true).
		Order("id asc").
		First(&pt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pt, nil
}
