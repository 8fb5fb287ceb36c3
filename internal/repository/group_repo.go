package repository

import (
	"context"

	"gorm.io/gorm"

	"volunteerhub/internal/model"
	pkgerrors "volunteerhub/pkg/errors"
)

// GroupRepository group and membership data access
type GroupRepository interface {
	Create(ctx context.Context, group *model.Group) error
	GetByID(ctx context.Context, id string) (*model.Group, error)
	GetByName(ctx context.Context, name string) (*model.Group, error)
	List(ctx context.Context, keyword string, offset, limit int) ([]model.Group, int64, error)
	Update(ctx context.Context, group *model.Group) error
	Delete(ctx context.Context, id, deletedBy string) error

	AddMember(ctx context.Context, member *model.GroupMember) error
	GetMember(ctx context.Context, groupID, userID string) (*model.GroupMember, error)
	ListMembers(ctx context.Context, groupID string) ([]model.GroupMember, error)
	ListByUser(ctx context.Context, userID string) ([]model.GroupMember, error)
	UpdateMemberRole(ctx context.Context, groupID, userID, role string) error
	RemoveMember(ctx context.Context, groupID, userID string) error
}

type groupRepo struct {
	db *gorm.DB
}

// NewGroupRepo creates a GroupRepository
func NewGroupRepo(db *gorm.DB) GroupRepository {
	return &groupRepo{db: db}
}

const groupCountsSelect = `groups.*,
	(SELECT COUNT(*) FROM group_members gm WHERE gm.group_id = groups.group_id) AS member_count,
	(SELECT COUNT(*) FROM shifts s WHERE s.group_id = groups.group_id AND s.deleted_at IS NULL) AS shift_count`

func (r *groupRepo) Create(ctx context.Context, group *model.Group) error {
	return translateDuplicate(r.db.WithContext(ctx).Create(group).Error)
}

func (r *groupRepo) GetByID(ctx context.Context, id string) (*model.Group, error) {
	var group model.Group
	err := r.db.WithContext(ctx).
		Select(groupCountsSelect).
		Where("groups.group_id = ?", id).
		First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupRepo) GetByName(ctx context.Context, name string) (*model.Group, error) {
	var group model.Group
	err := r.db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?)", name).
		First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupRepo) List(ctx context.Context, keyword string, offset, limit int) ([]model.Group, int64, error) {
	var groups []model.Group
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Group{})
	if keyword != "" {
		db = db.Where("groups.name ILIKE ?", "%"+keyword+"%")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Select(groupCountsSelect).
		Offset(offset).Limit(limit).
		Order("groups.name ASC").
		Find(&groups).Error
	return groups, total, err
}

func (r *groupRepo) Update(ctx context.Context, group *model.Group) error {
	oldVersion := group.Version
	result := r.db.WithContext(ctx).
		Model(&model.Group{}).
		Where("group_id = ? AND version = ?", group.GroupID, oldVersion).
		Updates(map[string]interface{}{
			"name":        group.Name,
			"description": group.Description,
			"updated_by":  group.UpdatedBy,
			"version":     oldVersion + 1,
		})
	if result.Error != nil {
		return translateDuplicate(result.Error)
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	group.Version = oldVersion + 1
	return nil
}

func (r *groupRepo) Delete(ctx context.Context, id, deletedBy string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Group{}).
			Where("group_id = ?", id).
			Updates(map[string]interface{}{
				"deleted_by": deletedBy,
				"deleted_at": gorm.Expr("NOW()"),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		// shifts survive their group and become ungrouped
		if err := tx.Model(&model.Shift{}).
			Where("group_id = ?", id).
			Update("group_id", nil).Error; err != nil {
			return err
		}
		return tx.Where("group_id = ?", id).Delete(&model.GroupMember{}).Error
	})
}

func (r *groupRepo) AddMember(ctx context.Context, member *model.GroupMember) error {
	return translateDuplicate(r.db.WithContext(ctx).Create(member).Error)
}

func (r *groupRepo) GetMember(ctx context.Context, groupID, userID string) (*model.GroupMember, error) {
	var member model.GroupMember
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *groupRepo) ListMembers(ctx context.Context, groupID string) ([]model.GroupMember, error) {
	var members []model.GroupMember
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("group_id = ?", groupID).
		Order("role ASC, joined_at ASC").
		Find(&members).Error
	return members, err
}

func (r *groupRepo) ListByUser(ctx context.Context, userID string) ([]model.GroupMember, error) {
	var members []model.GroupMember
	err := r.db.WithContext(ctx).
		Preload("Group").
		Where("user_id = ?", userID).
		Order("joined_at ASC").
		Find(&members).Error
	return members, err
}

func (r *groupRepo) UpdateMemberRole(ctx context.Context, groupID, userID, role string) error {
	result := r.db.WithContext(ctx).
		Model(&model.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Update("role", role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *groupRepo) RemoveMember(ctx context.Context, groupID, userID string) error {
	result := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&model.GroupMember{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
