package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/loomtrack/internal/constants"
	"github.com/loomtrack/internal/models"
	"github.com/loomtrack/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransferService 阶段间流转协调服务
type TransferService struct {
	db            *gorm.DB
	transferRepo  repository.TransferRepository
	stageRepo     repository.StageProcessRepository
	codeSeqRepo   repository.CodeSequenceRepository
	directoryRepo repository.DirectoryRepository
}

// NewTransferService 创建流转服务
func NewTransferService(db *gorm.DB, transferRepo repository.TransferRepository, stageRepo repository.StageProcessRepository, codeSeqRepo repository.CodeSequenceRepository, directoryRepo repository.DirectoryRepository) *TransferService {
	return &TransferService{
		db:            db,
		transferRepo:  transferRepo,
		stageRepo:     stageRepo,
		codeSeqRepo:   codeSeqRepo,
		directoryRepo: directoryRepo,
	}
}

// CreateTransferInput 创建流转单输入
type CreateTransferInput struct {
	SourceProcessID    uint
	SourceProcessType  string
	TargetDepartmentID uint
	TargetProcessType  string
	Quantity           models.Quantity
	Unit               string
	TransferDate       *time.Time
	Notes              string
	CreateTarget       bool
	OperatorID         uint
}

// UpdateTransferInput 更新流转单输入；nil 字段不改动
type UpdateTransferInput struct {
	Status   *string
	Notes    *string
	Quantity *models.Quantity
}

// TransferView 流转单及其已物化的目标阶段记录
type TransferView struct {
	Transfer models.ProcessTransfer `json:"transfer"`
	Target   *models.StageProcess   `json:"target,omitempty"`
}

// CreateTransfer 创建一次数量交接，必要时物化下游阶段记录
// 全程单事务：来源行加锁，累计流转量不得超过来源数量。
func (s *TransferService) CreateTransfer(input CreateTransferInput) (*TransferView, error) {
	if !input.Quantity.IsPositive() {
		return nil, ErrQuantityNotPositive
	}

	var view TransferView
	err := s.db.Transaction(func(tx *gorm.DB) error {
		source, err := s.stageRepo.GetByIDAndTypeForUpdate(tx, input.SourceProcessID, input.SourceProcessType)
		if err != nil {
			return err
		}
		if source == nil {
			return ErrSourceProcessNotFound
		}

		transferred, err := s.transferRepo.WithTx(tx).SumQuantityBySource(source.ID, input.SourceProcessType, 0)
		if err != nil {
			return err
		}
		if transferred.Add(input.Quantity.Decimal).GreaterThan(source.Quantity.Decimal) {
			return ErrTransferQuantityExceeded
		}

		unit := input.Unit
		if unit == "" {
			unit = source.Unit
		}
		transferDate := time.Now()
		if input.TransferDate != nil {
			transferDate = *input.TransferDate
		}

		status := constants.TransferStatusCompleted
		if input.CreateTarget {
			status = constants.TransferStatusPending
		}

		transfer := &models.ProcessTransfer{
			SourceDepartmentID: source.DepartmentID,
			SourceProcessID:    source.ID,
			SourceProcessType:  input.SourceProcessType,
			TargetDepartmentID: input.TargetDepartmentID,
			TargetProcessType:  input.TargetProcessType,
			Quantity:           input.Quantity,
			Unit:               unit,
			TransferDate:       transferDate,
			Status:             status,
			Notes:              input.Notes,
			CreatedByID:        input.OperatorID,
		}
		if err := s.transferRepo.WithTx(tx).Create(transfer); err != nil {
			return err
		}
		view.Transfer = *transfer

		if !input.CreateTarget {
			return nil
		}

		target, err := s.materializeTarget(tx, source, transfer, input)
		if err != nil {
			return err
		}
		if err := s.transferRepo.WithTx(tx).SetTarget(transfer.ID, target.ID, input.TargetProcessType); err != nil {
			return err
		}
		tp := target.ID
		view.Transfer.TargetProcessID = &tp
		view.Target = target
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// materializeTarget 在事务内生成下游阶段记录，属性承自来源行
func (s *TransferService) materializeTarget(tx *gorm.DB, source *models.StageProcess, transfer *models.ProcessTransfer, input CreateTransferInput) (*models.StageProcess, error) {
	code, err := s.nextProcessCode(tx, input.TargetProcessType, transfer.TransferDate)
	if err != nil {
		return nil, err
	}

	sourceID := source.ID
	transferID := transfer.ID
	target := &models.StageProcess{
		ProcessType:      input.TargetProcessType,
		Code:             code,
		DepartmentID:     input.TargetDepartmentID,
		OrderID:          source.OrderID,
		Quantity:         input.Quantity,
		Unit:             transfer.Unit,
		FabricType:       source.FabricType,
		Color:            source.Color,
		Status:           constants.StageStatusPlanned,
		SourceTransferID: &transferID,
		SourceProcessID:  &sourceID,
	}
	if err := s.stageRepo.WithTx(tx).Create(target); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrProcessCodeConflict
		}
		return nil, err
	}
	return target, nil
}

// nextProcessCode 生成 <前缀><YYYYMMDD>-<三位序号> 编号
// 序号来自 CodeSequence 的事务内原子自增，不依赖 max-id。
func (s *TransferService) nextProcessCode(tx *gorm.DB, processType string, date time.Time) (string, error) {
	pt, err := s.directoryRepo.GetProcessTypeByCode(processType)
	if err != nil {
		return "", err
	}
	if pt == nil {
		return "", ErrProcessTypeNotFound
	}

	scope := fmt.Sprintf("%s%s", pt.CodePrefix, date.Format("20060102"))
	seq, err := s.codeSeqRepo.NextValue(tx, scope)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%03d", scope, seq), nil
}

// GetTransfer 获取流转单，带已物化的目标
func (s *TransferService) GetTransfer(id uint) (*TransferView, error) {
	transfer, err := s.transferRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if transfer == nil {
		return nil, ErrTransferNotFound
	}
	return s.enrich(transfer)
}

// ListTransfersFor 某来源阶段记录的流转单列表，带目标
func (s *TransferService) ListTransfersFor(filter repository.TransferListFilter) ([]TransferView, int64, error) {
	transfers, total, err := s.transferRepo.ListBySource(filter)
	if err != nil {
		return nil, 0, err
	}
	views := make([]TransferView, 0, len(transfers))
	for i := range transfers {
		view, err := s.enrich(&transfers[i])
		if err != nil {
			return nil, 0, err
		}
		views = append(views, *view)
	}
	return views, total, nil
}

// UpdateTransfer 更新流转单；数量变更时重查来源余量并同步目标
func (s *TransferService) UpdateTransfer(id uint, input UpdateTransferInput) (*TransferView, error) {
	transfer, err := s.transferRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if transfer == nil {
		return nil, ErrTransferNotFound
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{}
		if input.Status != nil {
			updates["status"] = *input.Status
		}
		if input.Notes != nil {
			updates["notes"] = *input.Notes
		}

		if input.Quantity != nil {
			if !input.Quantity.IsPositive() {
				return ErrQuantityNotPositive
			}
			source, err := s.stageRepo.GetByIDAndTypeForUpdate(tx, transfer.SourceProcessID, transfer.SourceProcessType)
			if err != nil {
				return err
			}
			if source == nil {
				return ErrSourceProcessNotFound
			}
			others, err := s.transferRepo.WithTx(tx).SumQuantityBySource(source.ID, transfer.SourceProcessType, transfer.ID)
			if err != nil {
				return err
			}
			if others.Add(input.Quantity.Decimal).GreaterThan(source.Quantity.Decimal) {
				return ErrTransferQuantityExceeded
			}
			updates["quantity"] = *input.Quantity
		}

		if len(updates) == 0 {
			return nil
		}
		if err := s.transferRepo.WithTx(tx).Updates(transfer.ID, updates); err != nil {
			return err
		}

		// 数量同步到已物化的目标阶段记录
		if input.Quantity != nil && transfer.TargetProcessID != nil {
			if err := s.stageRepo.WithTx(tx).UpdateQuantity(*transfer.TargetProcessID, *input.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetTransfer(id)
}

func (s *TransferService) enrich(transfer *models.ProcessTransfer) (*TransferView, error) {
	view := &TransferView{Transfer: *transfer}
	if transfer.TargetProcessID != nil {
		target, err := s.stageRepo.GetByIDAndType(*transfer.TargetProcessID, transfer.TargetProcessType)
		if err != nil {
			return nil, err
		}
		view.Target = target
	}
	return view, nil
}

// RemainingQuantity 来源阶段记录尚未流转出的余量
func (s *TransferService) RemainingQuantity(sourceProcessID uint, sourceProcessType string) (decimal.Decimal, error) {
	source, err := s.stageRepo.GetByIDAndType(sourceProcessID, sourceProcessType)
	if err != nil {
		return decimal.Zero, err
	}
	if source == nil {
		return decimal.Zero, ErrSourceProcessNotFound
	}
	transferred, err := s.transferRepo.SumQuantityBySource(sourceProcessID, sourceProcessType, 0)
	if err != nil {
		return decimal.Zero, err
	}
	return source.Quantity.Decimal.Sub(transferred), nil
}
