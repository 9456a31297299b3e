package authz

import (
	"fmt"

	"github.com/loomtrack/internal/models"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

const (
	casbinTableName    = "casbin_rule"
	operatorSubjectFmt = "operator:%d"
)

// 权限标签模型：p 行授予操作员一个标签，"*" 表示全部标签
const permissionTagModel = `
[request_definition]
r = sub, perm

[policy_definition]
p = sub, perm

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = (g(r.sub, p.sub) || r.sub == p.sub) && (r.perm == p.perm || p.perm == "*")
`

// Checker 权限判定接口（状态目录校验流转边的 required_permission 时使用）
type Checker interface {
	HasPermission(operatorID uint, permission string) (bool, error)
}

// Service Casbin 授权服务
// 封装权限标签的授予、回收与判定。
type Service struct {
	enforcer *casbin.SyncedEnforcer
}

// NewService 创建授权服务
func NewService(db *gorm.DB) (*Service, error) {
	if db == nil {
		return nil, fmt.Errorf("authz db is nil")
	}

	adapter, err := gormadapter.NewAdapterByDBUseTableName(db, "", casbinTableName)
	if err != nil {
		return nil, fmt.Errorf("create authz adapter failed: %w", err)
	}

	m, err := model.NewModelFromString(permissionTagModel)
	if err != nil {
		return nil, fmt.Errorf("load authz model failed: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("init authz enforcer failed: %w", err)
	}
	enforcer.EnableAutoSave(true)

	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("load authz policy failed: %w", err)
	}

	svc := &Service{enforcer: enforcer}

	// 操作员表的 permissions 列是权限事实来源，启动时整体同步进策略库
	if err := svc.SyncFromDirectory(db); err != nil {
		return nil, fmt.Errorf("sync authz policy failed: %w", err)
	}

	return svc, nil
}

// SyncFromDirectory 以操作员目录重建权限策略
// 落库的权限标签变更后需要重新同步才会生效。
func (s *Service) SyncFromDirectory(db *gorm.DB) error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service not initialized")
	}
	var operators []models.Operator
	if err := db.Find(&operators).Error; err != nil {
		return err
	}
	for _, op := range operators {
		if err := s.SyncOperator(op.ID, op.Permissions); err != nil {
			return err
		}
	}
	return nil
}

// HasPermission 判定操作员是否持有权限标签
func (s *Service) HasPermission(operatorID uint, permission string) (bool, error) {
	if s == nil || s.enforcer == nil {
		return false, fmt.Errorf("authz service not initialized")
	}
	return s.enforcer.Enforce(subject(operatorID), permission)
}

// SyncOperator 将操作员的权限标签集合同步为给定集合
func (s *Service) SyncOperator(operatorID uint, permissions []string) error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service not initialized")
	}
	sub := subject(operatorID)
	if _, err := s.enforcer.RemoveFilteredPolicy(0, sub); err != nil {
		return err
	}
	for _, permission := range permissions {
		if permission == "" {
			continue
		}
		if _, err := s.enforcer.AddPolicy(sub, permission); err != nil {
			return err
		}
	}
	return nil
}

// GrantPermission 授予单个权限标签
func (s *Service) GrantPermission(operatorID uint, permission string) error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service not initialized")
	}
	_, err := s.enforcer.AddPolicy(subject(operatorID), permission)
	return err
}

// RevokePermission 回收单个权限标签
func (s *Service) RevokePermission(operatorID uint, permission string) error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service not initialized")
	}
	_, err := s.enforcer.RemovePolicy(subject(operatorID), permission)
	return err
}

func subject(operatorID uint) string {
	return fmt.Sprintf(operatorSubjectFmt, operatorID)
}
