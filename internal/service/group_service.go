package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"volunteerhub/internal/dto"
	"volunteerhub/internal/model"
	"volunteerhub/internal/repository"
	pkgerrors "volunteerhub/pkg/errors"
)

// ── group errors ──

var (
	ErrGroupNotFound        = errors.New("group not found")
	ErrGroupNameExists      = errors.New("group name already exists")
	ErrGroupVersionConflict = errors.New("group was modified by someone else, reload and retry")
	ErrAlreadyMember        = errors.New("already a member of this group")
	ErrNotMember            = errors.New("not a member of this group")
)

// GroupService groups and their membership
type GroupService interface {
	Create(ctx context.Context, req *dto.CreateGroupRequest, callerID string) (*dto.GroupResponse, error)
	GetByID(ctx context.Context, id string) (*dto.GroupResponse, error)
	List(ctx context.Context, req *dto.GroupListRequest) ([]dto.GroupResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateGroupRequest, callerID, callerRole string) (*dto.GroupResponse, error)
	Delete(ctx context.Context, id, callerID string) error

	Join(ctx context.Context, groupID, userID string) (*dto.GroupMemberResponse, error)
	Leave(ctx context.Context, groupID, userID string) error
	ListMembers(ctx context.Context, groupID string) ([]dto.GroupMemberResponse, error)
	// SetMemberRole promotes or demotes a member. The user's global role
	// follows: holding any group ADMIN seat makes a volunteer GROUP_ADMIN.
	SetMemberRole(ctx context.Context, groupID, userID string, req *dto.SetMemberRoleRequest, callerID, callerRole string) error
	RemoveMember(ctx context.Context, groupID, userID, callerID, callerRole string) error
}

type groupService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewGroupService creates a GroupService
func NewGroupService(repo *repository.Repository, logger *zap.Logger) GroupService {
	return &groupService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *groupService) Create(ctx context.Context, req *dto.CreateGroupRequest, callerID string) (*dto.GroupResponse, error) {
	name := strings.TrimSpace(req.Name)
	if err := s.ensureNameFree(ctx, name, ""); err != nil {
		return nil, err
	}

	group := &model.Group{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
	}
	group.Audit(callerID)

	if err := s.repo.Group.Create(ctx, group); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicate) {
			return nil, ErrGroupNameExists
		}
		s.logger.Error("failed to create group", zap.Error(err))
		return nil, err
	}
	return toGroupResponse(group), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *groupService) GetByID(ctx context.Context, id string) (*dto.GroupResponse, error) {
	group, err := s.getGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	return toGroupResponse(group), nil
}

// ────────────────────── List ──────────────────────

func (s *groupService) List(ctx context.Context, req *dto.GroupListRequest) ([]dto.GroupResponse, int64, error) {
	groups, total, err := s.repo.Group.List(ctx, strings.TrimSpace(req.Keyword), req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("failed to list groups", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.GroupResponse, 0, len(groups))
	for i := range groups {
		result = append(result, *toGroupResponse(&groups[i]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *groupService) Update(ctx context.Context, id string, req *dto.UpdateGroupRequest, callerID, callerRole string) (*dto.GroupResponse, error) {
	group, err := s.getGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.isGroupAdmin(ctx, id, callerID, callerRole) {
		return nil, ErrNoPermission
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := s.ensureNameFree(ctx, name, id); err != nil {
			return nil, err
		}
		group.Name = name
	}
	if req.Description != nil {
		group.Description = strings.TrimSpace(*req.Description)
	}
	group.UpdatedBy = &callerID

	if err := s.repo.Group.Update(ctx, group); err != nil {
		switch {
		case errors.Is(err, pkgerrors.ErrDuplicate):
			return nil, ErrGroupNameExists
		case errors.Is(err, pkgerrors.ErrOptimisticLock):
			return nil, ErrGroupVersionConflict
		}
		s.logger.Error("failed to update group", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toGroupResponse(group), nil
}

// ────────────────────── Delete ──────────────────────

func (s *groupService) Delete(ctx context.Context, id, callerID string) error {
	if err := s.repo.Group.Delete(ctx, id, callerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGroupNotFound
		}
		s.logger.Error("failed to delete group", zap.String("id", id), zap.Error(err))
		return err
	}
	s.logger.Info("group deleted", zap.String("id", id), zap.String("by", callerID))
	return nil
}

// ────────────────────── Join / Leave ──────────────────────

func (s *groupService) Join(ctx context.Context, groupID, userID string) (*dto.GroupMemberResponse, error) {
	if _, err := s.getGroup(ctx, groupID); err != nil {
		return nil, err
	}
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !model.CanVolunteer(user.Role) {
		return nil, ErrNotApprovedVolunteer
	}

	member := &model.GroupMember{
		GroupID: groupID,
		UserID:  userID,
		Role:    model.GroupRoleMember,
	}
	if err := s.repo.Group.AddMember(ctx, member); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicate) {
			return nil, ErrAlreadyMember
		}
		s.logger.Error("failed to join group", zap.String("group_id", groupID), zap.Error(err))
		return nil, err
	}

	member.User = user
	return toGroupMemberResponse(member), nil
}

func (s *groupService) Leave(ctx context.Context, groupID, userID string) error {
	member, err := s.getMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if err := s.repo.Group.RemoveMember(ctx, groupID, userID); err != nil {
		s.logger.Error("failed to leave group", zap.String("group_id", groupID), zap.Error(err))
		return err
	}
	if member.Role == model.GroupRoleAdmin {
		return s.syncGlobalRole(ctx, userID, userID)
	}
	return nil
}

// ────────────────────── ListMembers ──────────────────────

func (s *groupService) ListMembers(ctx context.Context, groupID string) ([]dto.GroupMemberResponse, error) {
	if _, err := s.getGroup(ctx, groupID); err != nil {
		return nil, err
	}
	members, err := s.repo.Group.ListMembers(ctx, groupID)
	if err != nil {
		s.logger.Error("failed to list members", zap.String("group_id", groupID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.GroupMemberResponse, 0, len(members))
	for i := range members {
		result = append(result, *toGroupMemberResponse(&members[i]))
	}
	return result, nil
}

// ────────────────────── SetMemberRole / RemoveMember ──────────────────────

func (s *groupService) SetMemberRole(ctx context.Context, groupID, userID string, req *dto.SetMemberRoleRequest, callerID, callerRole string) error {
	if _, err := s.getGroup(ctx, groupID); err != nil {
		return err
	}
	if !s.isGroupAdmin(ctx, groupID, callerID, callerRole) {
		return ErrNoPermission
	}
	member, err := s.getMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if member.Role == req.Role {
		return nil
	}

	if err := s.repo.Group.UpdateMemberRole(ctx, groupID, userID, req.Role); err != nil {
		s.logger.Error("failed to change member role", zap.String("group_id", groupID), zap.Error(err))
		return err
	}
	return s.syncGlobalRole(ctx, userID, callerID)
}

func (s *groupService) RemoveMember(ctx context.Context, groupID, userID, callerID, callerRole string) error {
	if !s.isGroupAdmin(ctx, groupID, callerID, callerRole) {
		return ErrNoPermission
	}
	member, err := s.getMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if err := s.repo.Group.RemoveMember(ctx, groupID, userID); err != nil {
		s.logger.Error("failed to remove member", zap.String("group_id", groupID), zap.Error(err))
		return err
	}
	if member.Role == model.GroupRoleAdmin {
		return s.syncGlobalRole(ctx, userID, callerID)
	}
	return nil
}

// ── helpers ──

// syncGlobalRole moves a user between VOLUNTEER and GROUP_ADMIN to match
// whether they still administer any group. ADMIN and PENDING are left alone.
func (s *groupService) syncGlobalRole(ctx context.Context, userID, callerID string) error {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Role != model.RoleVolunteer && user.Role != model.RoleGroupAdmin {
		return nil
	}

	memberships, err := s.repo.Group.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	want := model.RoleVolunteer
	for _, m := range memberships {
		if m.Role == model.GroupRoleAdmin {
			want = model.RoleGroupAdmin
			break
		}
	}
	if user.Role == want {
		return nil
	}

	user.Role = want
	user.UpdatedBy = &callerID
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("failed to sync global role", zap.String("user_id", userID), zap.Error(err))
		return err
	}
	s.logger.Info("global role synced", zap.String("user_id", userID), zap.String("role", want))
	return nil
}

func (s *groupService) isGroupAdmin(ctx context.Context, groupID, userID, role string) bool {
	if role == model.RoleAdmin {
		return true
	}
	m, err := s.repo.Group.GetMember(ctx, groupID, userID)
	return err == nil && m.Role == model.GroupRoleAdmin
}

func (s *groupService) ensureNameFree(ctx context.Context, name, selfID string) error {
	existing, err := s.repo.Group.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		s.logger.Error("failed to look up group name", zap.Error(err))
		return err
	}
	if existing.GroupID != selfID {
		return ErrGroupNameExists
	}
	return nil
}

func (s *groupService) getGroup(ctx context.Context, id string) (*model.Group, error) {
	group, err := s.repo.Group.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		s.logger.Error("failed to look up group", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return group, nil
}

func (s *groupService) getMember(ctx context.Context, groupID, userID string) (*model.GroupMember, error) {
	member, err := s.repo.Group.GetMember(ctx, groupID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotMember
		}
		return nil, err
	}
	return member, nil
}

func toGroupResponse(g *model.Group) *dto.GroupResponse {
	return &dto.GroupResponse{
		ID:          g.GroupID,
		Name:        g.Name,
		Description: g.Description,
		MemberCount: g.MemberCount,
		ShiftCount:  g.ShiftCount,
		CreatedAt:   formatTime(g.CreatedAt),
		UpdatedAt:   formatTime(g.UpdatedAt),
	}
}

func toGroupMemberResponse(m *model.GroupMember) *dto.GroupMemberResponse {
	resp := &dto.GroupMemberResponse{
		UserID:   m.UserID,
		Role:     m.Role,
		JoinedAt: formatTime(m.JoinedAt),
	}
	if m.User != nil {
		resp.Name = m.User.Name
		resp.Email = m.User.Email
	}
	return resp
}
