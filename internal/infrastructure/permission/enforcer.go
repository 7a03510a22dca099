// Package permission backs custom role ability grants with a casbin enforcer
// persisted through the gorm adapter.
package permission

import (
	"fmt"
	"sync"

	"github.com/casbin/casbin/v2"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"

	"github.com/forgegate-inc/forgegate/internal/domain/membership"
	"github.com/forgegate-inc/forgegate/internal/shared/logger"
)

var _ membership.AbilityEnforcer = (*Enforcer)(nil)

// Enforcer wraps a casbin enforcer. Casbin's in-memory model is not safe for
// concurrent mutation, so every call goes through the RWMutex.
type Enforcer struct {
	enforcer *casbin.Enforcer
	mu       sync.RWMutex
	logger   logger.Interface
}

// NewEnforcer creates the ability enforcer from the RBAC model file, storing
// policies in the given database.
func NewEnforcer(db *gorm.DB, modelPath string, log logger.Interface) (*Enforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin adapter: %w", err)
	}

	enforcer, err := casbin.NewEnforcer(modelPath, adapter)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("failed to load policy: %w", err)
	}

	return &Enforcer{
		enforcer: enforcer,
		logger:   log,
	}, nil
}

func roleSubject(roleID uint) string {
	return fmt.Sprintf("role:%d", roleID)
}

// Allows reports whether the custom role grants the action on the resource
// kind.
func (e *Enforcer) Allows(roleID uint, resourceKind, action string) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	allowed, err := e.enforcer.Enforce(roleSubject(roleID), resourceKind, action)
	if err != nil {
		e.logger.Errorw("ability check failed",
			"error", err,
			"role_id", roleID,
			"resource_kind", resourceKind,
			"action", action)
		return false, fmt.Errorf("ability check failed: %w", err)
	}
	return allowed, nil
}

// Grant adds one ability to the role.
func (e *Enforcer) Grant(roleID uint, resourceKind, action string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.enforcer.AddPolicy(roleSubject(roleID), resourceKind, action); err != nil {
		e.logger.Errorw("failed to grant ability", "error", err, "role_id", roleID)
		return fmt.Errorf("failed to grant ability: %w", err)
	}
	return e.enforcer.SavePolicy()
}

// Revoke removes one ability from the role.
func (e *Enforcer) Revoke(roleID uint, resourceKind, action string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.enforcer.RemovePolicy(roleSubject(roleID), resourceKind, action); err != nil {
		e.logger.Errorw("failed to revoke ability", "error", err, "role_id", roleID)
		return fmt.Errorf("failed to revoke ability: %w", err)
	}
	return e.enforcer.SavePolicy()
}

// SyncAbilities replaces the role's grant set wholesale. Each ability is a
// (resource kind, action) pair.
func (e *Enforcer) SyncAbilities(roleID uint, abilities [][2]string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	subject := roleSubject(roleID)
	if _, err := e.enforcer.RemoveFilteredPolicy(0, subject); err != nil {
		e.logger.Errorw("failed to clear role abilities", "error", err, "role_id", roleID)
		return fmt.Errorf("failed to clear role abilities: %w", err)
	}

	for _, ability := range abilities {
		if _, err := e.enforcer.AddPolicy(subject, ability[0], ability[1]); err != nil {
			e.logger.Errorw("failed to add role ability", "error", err, "role_id", roleID)
			return fmt.Errorf("failed to add role ability: %w", err)
		}
	}

	if err := e.enforcer.SavePolicy(); err != nil {
		return fmt.Errorf("failed to save policy: %w", err)
	}

	e.logger.Infow("role abilities synced", "role_id", roleID, "count", len(abilities))
	return nil
}

// AbilitiesFor returns the role's grants as raw policy rows.
func (e *Enforcer) AbilitiesFor(roleID uint) ([][]string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	abilities, err := e.enforcer.GetImplicitPermissionsForUser(roleSubject(roleID))
	if err != nil {
		return nil, fmt.Errorf("failed to get role abilities: %w", err)
	}
	return abilities, nil
}

// Reload re-reads policies from storage.
func (e *Enforcer) Reload() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.enforcer.LoadPolicy(); err != nil {
		return fmt.Errorf("failed to reload policy: %w", err)
	}
	e.logger.Info("ability policy reloaded")
	return nil
}
