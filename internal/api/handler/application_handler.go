package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"volunteerhub/internal/dto"
	"volunteerhub/internal/service"
	"volunteerhub/pkg/response"
)

// ApplicationHandler volunteer application endpoints
type ApplicationHandler struct {
	appSvc service.ApplicationService
}

// NewApplicationHandler creates an ApplicationHandler
func NewApplicationHandler(appSvc service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{appSvc: appSvc}
}

// Submit resubmits an application after a rejection or withdrawal.
// POST /api/v1/applications
func (h *ApplicationHandler) Submit(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.SubmitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.appSvc.Submit(c.Request.Context(), &req, userID)
	if err != nil {
		handleApplicationError(c, err)
		return
	}

	response.Created(c, result)
}

// ListMine
// GET /api/v1/applications/mine
func (h *ApplicationHandler) ListMine(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, err := h.appSvc.ListMine(c.Request.Context(), userID)
	if err != nil {
		handleApplicationError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// Withdraw
// POST /api/v1/applications/:id/withdraw
func (h *ApplicationHandler) Withdraw(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.appSvc.Withdraw(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleApplicationError(c, err)
		return
	}

	response.OK(c, nil)
}

// List review queue
// GET /api/v1/applications?status=PENDING&page=1
func (h *ApplicationHandler) List(c *gin.Context) {
	var req dto.ApplicationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	list, total, err := h.appSvc.List(c.Request.Context(), &req)
	if err != nil {
		handleApplicationError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Get
// GET /api/v1/applications/:id
func (h *ApplicationHandler) Get(c *gin.Context) {
	result, err := h.appSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleApplicationError(c, err)
		return
	}

	response.OK(c, result)
}

// Approve promotes the applicant to VOLUNTEER.
// POST /api/v1/applications/:id/approve
func (h *ApplicationHandler) Approve(c *gin.Context) {
	h.review(c, h.appSvc.Approve)
}

// Reject
// POST /api/v1/applications/:id/reject
func (h *ApplicationHandler) Reject(c *gin.Context) {
	h.review(c, h.appSvc.Reject)
}

type reviewFunc func(ctx context.Context, id string, req *dto.ReviewApplicationRequest, reviewerID string) (*dto.ApplicationResponse, error)

func (h *ApplicationHandler) review(c *gin.Context, fn reviewFunc) {
	reviewerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ReviewApplicationRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindFailed(c, err)
			return
		}
	}

	result, err := fn(c.Request.Context(), c.Param("id"), &req, reviewerID)
	if err != nil {
		handleApplicationError(c, err)
		return
	}

	response.OK(c, result)
}

func handleApplicationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrApplicationNotFound):
		response.NotFound(c, 13001, "application not found")
	case errors.Is(err, service.ErrApplicationNotPending):
		response.Conflict(c, 13002, "application has already been reviewed")
	case errors.Is(err, service.ErrApplicationPending):
		response.Conflict(c, 13003, "you already have a pending application")
	case errors.Is(err, service.ErrAlreadyVolunteer):
		response.Conflict(c, 13004, "you are already an approved volunteer")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 13005, "user not found")
	default:
		response.InternalError(c)
	}
}
