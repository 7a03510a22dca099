package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/forgegate-inc/forgegate/internal/domain/membership"
	"github.com/forgegate-inc/forgegate/internal/infrastructure/persistence/models"
	"github.com/forgegate-inc/forgegate/internal/shared/constants"
	"github.com/forgegate-inc/forgegate/internal/shared/errors"
	"github.com/forgegate-inc/forgegate/internal/shared/logger"
)

// MemberRepositoryImpl implements the membership.Repository interface
type MemberRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewMemberRepository creates a new member repository instance
func NewMemberRepository(db *gorm.DB, logger logger.Interface) membership.Repository {
	return &MemberRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

// Create persists a new membership grant
func (r *MemberRepositoryImpl) Create(ctx context.Context, member *membership.Member) error {
	model := &models.MemberModel{
		ActorID:      member.ActorID(),
		ResourceID:   member.ResourceID(),
		AccessLevel:  int(member.AccessLevel()),
		State:        member.State().String(),
		Source:       string(member.Source()),
		LDAPOverride: member.LDAPOverride(),
		MemberRoleID: member.MemberRoleID(),
		CreatedAt:    member.CreatedAt(),
		UpdatedAt:    member.UpdatedAt(),
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError("member already exists")
		}
		r.logger.Errorw("failed to create member",
			"actor_id", member.ActorID(),
			"resource_id", member.ResourceID(),
			"error", err)
		return fmt.Errorf("failed to create member: %w", err)
	}

	if err := member.SetID(model.ID); err != nil {
		r.logger.Errorw("failed to set member ID", "error", err)
		return fmt.Errorf("failed to set member ID: %w", err)
	}

	r.logger.Infow("member created",
		"id", model.ID,
		"actor_id", model.ActorID,
		"resource_id", model.ResourceID,
		"access_level", model.AccessLevel)

	return nil
}

// Update persists changes to an existing membership grant
func (r *MemberRepositoryImpl) Update(ctx context.Context, member *membership.Member) error {
	result := r.db.WithContext(ctx).
		Model(&models.MemberModel{}).
		Where("id = ?", member.ID()).
		Updates(map[string]interface{}{
			"access_level":   int(member.AccessLevel()),
			"state":          member.State().String(),
			"ldap_override":  member.LDAPOverride(),
			"member_role_id": member.MemberRoleID(),
			"updated_at":     member.UpdatedAt(),
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update member", "id", member.ID(), "error", result.Error)
		return fmt.Errorf("failed to update member: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("member not found")
	}
	return nil
}

// GetByID retrieves a membership grant by ID
func (r *MemberRepositoryImpl) GetByID(ctx context.Context, id uint) (*membership.Member, error) {
	var model models.MemberModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("member not found")
		}
		r.logger.Errorw("failed to get member", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return r.toAggregate(&model)
}

// GetByActorAndResources loads all of the actor's grants across the given
// resource ids in a single query
func (r *MemberRepositoryImpl) GetByActorAndResources(ctx context.Context, actorID uint, resourceIDs []uint) ([]*membership.Member, error) {
	if len(resourceIDs) == 0 {
		return nil, nil
	}

	var rows []models.MemberModel
	if err := r.db.WithContext(ctx).
		Where("actor_id = ? AND resource_id IN ?", actorID, resourceIDs).
		Find(&rows).Error; err != nil {
		r.logger.Errorw("failed to get memberships", "actor_id", actorID, "error", err)
		return nil, fmt.Errorf("failed to get memberships: %w", err)
	}

	members := make([]*membership.Member, len(rows))
	for i, row := range rows {
		member, err := r.toAggregate(&row)
		if err != nil {
			return nil, err
		}
		members[i] = member
	}
	return members, nil
}

// ListPending returns awaiting members of a resource, newest first
func (r *MemberRepositoryImpl) ListPending(ctx context.Context, resourceID uint, offset, limit int) ([]*membership.Member, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.MemberModel{}).
		Where("resource_id = ? AND state = ?", resourceID, constants.MemberStateAwaiting)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		r.logger.Errorw("failed to count pending members", "resource_id", resourceID, "error", err)
		return nil, 0, fmt.Errorf("failed to count pending members: %w", err)
	}

	var rows []models.MemberModel
	if err := query.Order("id DESC").Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		r.logger.Errorw("failed to list pending members", "resource_id", resourceID, "error", err)
		return nil, 0, fmt.Errorf("failed to list pending members: %w", err)
	}

	members := make([]*membership.Member, len(rows))
	for i, row := range rows {
		member, err := r.toAggregate(&row)
		if err != nil {
			return nil, 0, err
		}
		members[i] = member
	}
	return members, total, nil
}

// CountBillable counts active and awaiting members across a namespace
// hierarchy. Each distinct actor occupies one seat regardless of how many
// grants they hold.
func (r *MemberRepositoryImpl) CountBillable(ctx context.Context, namespaceID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.MemberModel{}).
		Distinct("actor_id").
		Where("state IN ?", []string{constants.MemberStateActive, constants.MemberStateAwaiting}).
		Where("resource_id = ? OR resource_id IN (?)",
			namespaceID,
			r.db.Model(&models.ResourceModel{}).
				Select("id").
				Where("JSON_CONTAINS(ancestor_ids, ?)", fmt.Sprintf("%d", namespaceID)),
		).
		Count(&count).Error
	if err != nil {
		r.logger.Errorw("failed to count billable members", "namespace_id", namespaceID, "error", err)
		return 0, fmt.Errorf("failed to count billable members: %w", err)
	}
	return count, nil
}

// GroupIDsForActor returns ids of groups the actor is an active member of
func (r *MemberRepositoryImpl) GroupIDsForActor(ctx context.Context, actorID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.MemberModel{}).
		Select("members.resource_id").
		Joins("JOIN resources ON resources.id = members.resource_id AND resources.kind = ?", "group").
		Where("members.actor_id = ? AND members.state = ?", actorID, constants.MemberStateActive).
		Scan(&ids).Error
	if err != nil {
		r.logger.Errorw("failed to get group ids for actor", "actor_id", actorID, "error", err)
		return nil, fmt.Errorf("failed to get group ids: %w", err)
	}
	return ids, nil
}

func (r *MemberRepositoryImpl) toAggregate(model *models.MemberModel) (*membership.Member, error) {
	member, err := membership.ReconstructMember(
		model.ID,
		model.ActorID,
		model.ResourceID,
		membership.AccessLevel(model.AccessLevel),
		membership.State(model.State),
		membership.Source(model.Source),
		model.LDAPOverride,
		model.MemberRoleID,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		r.logger.Errorw("failed to reconstruct member", "id", model.ID, "error", err)
		return nil, fmt.Errorf("failed to reconstruct member: %w", err)
	}
	return member, nil
}
