package service

import (
	"github.com/loomtrack/internal/authz"
	"github.com/loomtrack/internal/constants"
	"github.com/loomtrack/internal/models"
	"github.com/loomtrack/internal/repository"
)

// StatusCatalogService 跟踪状态目录服务
type StatusCatalogService struct {
	statusRepo repository.StatusRepository
	authzCheck authz.Checker
}

// NewStatusCatalogService 创建状态目录服务
func NewStatusCatalogService(statusRepo repository.StatusRepository, authzCheck authz.Checker) *StatusCatalogService {
	return &StatusCatalogService{
		statusRepo: statusRepo,
		authzCheck: authzCheck,
	}
}

// TransitionOption 从某状态出发的一条流转边及其对当前操作者的可用性
type TransitionOption struct {
	Transition models.TrackingTransition `json:"transition"`
	ToStatus   *models.TrackingStatus    `json:"to_status,omitempty"`
	Allowed    bool                      `json:"allowed"`
}

// ListActiveStatuses 按 sequence 列出启用状态
func (s *StatusCatalogService) ListActiveStatuses() ([]models.TrackingStatus, error) {
	return s.statusRepo.ListActive()
}

// GetStatusByCode 按编码取状态
func (s *StatusCatalogService) GetStatusByCode(code string) (*models.TrackingStatus, error) {
	status, err := s.statusRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if status == nil {
		return nil, ErrStatusNotFound
	}
	return status, nil
}

// ListTransitionsFrom 列出某状态的所有出边，按操作者权限标注可用性
// 自动边对人工操作者一律不可用。
func (s *StatusCatalogService) ListTransitionsFrom(fromStatusID uint, operatorID uint) ([]TransitionOption, error) {
	from, err := s.statusRepo.GetByID(fromStatusID)
	if err != nil {
		return nil, err
	}
	if from == nil {
		return nil, ErrStatusNotFound
	}

	transitions, err := s.statusRepo.ListTransitionsFrom(fromStatusID)
	if err != nil {
		return nil, err
	}

	options := make([]TransitionOption, 0, len(transitions))
	for _, t := range transitions {
		to, err := s.statusRepo.GetByID(t.ToStatusID)
		if err != nil {
			return nil, err
		}
		allowed := true
		if t.IsAutomated && operatorID != constants.SystemActorID {
			allowed = false
		} else if t.RequiredPermission != "" {
			allowed, err = s.authzCheck.HasPermission(operatorID, t.RequiredPermission)
			if err != nil {
				return nil, err
			}
		}
		options = append(options, TransitionOption{
			Transition: t,
			ToStatus:   to,
			Allowed:    allowed,
		})
	}
	return options, nil
}

// ValidateTransition 校验一次状态流转对指定操作者是否合法
// manual 为 true 表示人工触发；自动边仅系统路径（manual=false）可走。
func (s *StatusCatalogService) ValidateTransition(fromStatusID, toStatusID uint, operatorID uint, manual bool) error {
	transition, err := s.statusRepo.GetTransition(fromStatusID, toStatusID)
	if err != nil {
		return err
	}
	if transition == nil {
		return ErrTransitionNotAllowed
	}
	if transition.IsAutomated && manual {
		return ErrTransitionAutomated
	}
	if transition.RequiredPermission != "" && operatorID != constants.SystemActorID {
		has, err := s.authzCheck.HasPermission(operatorID, transition.RequiredPermission)
		if err != nil {
			return err
		}
		if !has {
			return ErrTransitionForbidden
		}
	}
	return nil
}
