package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"volunteerhub/internal/dto"
	"volunteerhub/internal/service"
	"volunteerhub/pkg/response"
)

// GroupHandler volunteer group endpoints
type GroupHandler struct {
	groupSvc service.GroupService
}

// NewGroupHandler creates a GroupHandler
func NewGroupHandler(groupSvc service.GroupService) *GroupHandler {
	return &GroupHandler{groupSvc: groupSvc}
}

// Create
// POST /api/v1/groups
func (h *GroupHandler) Create(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.groupSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		handleGroupError(c, err)
		return
	}

	response.Created(c, result)
}

// List
// GET /api/v1/groups?keyword=garden
func (h *GroupHandler) List(c *gin.Context) {
	var req dto.GroupListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	list, total, err := h.groupSvc.List(c.Request.Context(), &req)
	if err != nil {
		handleGroupError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Get
// GET /api/v1/groups/:id
func (h *GroupHandler) Get(c *gin.Context) {
	result, err := h.groupSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleGroupError(c, err)
		return
	}

	response.OK(c, result)
}

// Update
// PUT /api/v1/groups/:id
func (h *GroupHandler) Update(c *gin.Context) {
	callerID, callerRole, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.groupSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID, callerRole)
	if err != nil {
		handleGroupError(c, err)
		return
	}

	response.OK(c, result)
}

// Delete
// DELETE /api/v1/groups/:id
func (h *GroupHandler) Delete(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.groupSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		handleGroupError(c, err)
		return
	}

	response.OK(c, nil)
}

// Join
// POST /api/v1/groups/:id/join
func (h *GroupHandler) Join(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.groupSvc.Join(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleGroupError(c, err)
		return
	}

	response.Created(c, result)
}

// Leave
// POST /api/v1/groups/:id/leave
func (h *GroupHandler) Leave(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.groupSvc.Leave(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleGroupError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListMembers
// GET /api/v1/groups/:id/members
func (h *GroupHandler) ListMembers(c *gin.Context) {
	list, err := h.groupSvc.ListMembers(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleGroupError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// SetMemberRole
// PUT /api/v1/groups/:id/members/:user_id/role
func (h *GroupHandler) SetMemberRole(c *gin.Context) {
	callerID, callerRole, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.SetMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	err := h.groupSvc.SetMemberRole(c.Request.Context(), c.Param("id"), c.Param("user_id"), &req, callerID, callerRole)
	if err != nil {
		handleGroupError(c, err)
		return
	}

	response.OK(c, nil)
}

// RemoveMember
// DELETE /api/v1/groups/:id/members/:user_id
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	callerID, callerRole, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.groupSvc.RemoveMember(c.Request.Context(), c.Param("id"), c.Param("user_id"), callerID, callerRole); err != nil {
		handleGroupError(c, err)
		return
	}

	response.OK(c, nil)
}

func handleGroupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrGroupNotFound):
		response.NotFound(c, 15001, "group not found")
	case errors.Is(err, service.ErrGroupNameExists):
		response.Conflict(c, 15002, "group name already exists")
	case errors.Is(err, service.ErrGroupVersionConflict):
		response.Conflict(c, 15003, "group was modified by someone else, reload and retry")
	case errors.Is(err, service.ErrAlreadyMember):
		response.Conflict(c, 15004, "already a member of this group")
	case errors.Is(err, service.ErrNotMember):
		response.NotFound(c, 15005, "not a member of this group")
	case errors.Is(err, service.ErrNotApprovedVolunteer):
		response.Forbidden(c, 15006, "only approved volunteers can join groups")
	case errors.Is(err, service.ErrNoPermission):
		response.Forbidden(c, 15007, "permission denied")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 15008, "user not found")
	default:
		response.InternalError(c)
	}
}
