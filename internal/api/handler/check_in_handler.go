package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"volunteerhub/internal/dto"
	"volunteerhub/internal/service"
	"volunteerhub/pkg/response"
)

// CheckInHandler attendance endpoints
type CheckInHandler struct {
	checkInSvc service.CheckInService
}

// NewCheckInHandler creates a CheckInHandler
func NewCheckInHandler(checkInSvc service.CheckInService) *CheckInHandler {
	return &CheckInHandler{checkInSvc: checkInSvc}
}

// CheckIn
// POST /api/v1/check-ins
func (h *CheckInHandler) CheckIn(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.checkInSvc.CheckIn(c.Request.Context(), &req, userID)
	if err != nil {
		handleCheckInError(c, err)
		return
	}

	response.Created(c, result)
}

// CheckOut closes the caller's open check-in.
// Body: {"check_in_id": "..."} or {"shift_id": "..."}
// POST /api/v1/check-ins/check-out
func (h *CheckInHandler) CheckOut(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CheckOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.checkInSvc.CheckOut(c.Request.Context(), &req, userID)
	if err != nil {
		handleCheckInError(c, err)
		return
	}

	response.OK(c, result)
}

// ListMine
// GET /api/v1/me/check-ins?from=2026-03-01&to=2026-03-31
func (h *CheckInHandler) ListMine(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CheckInListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	list, total, err := h.checkInSvc.ListMine(c.Request.Context(), userID, &req)
	if err != nil {
		handleCheckInError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// MySummary total hours over a date range
// GET /api/v1/me/hours?from=2026-01-01
func (h *CheckInHandler) MySummary(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.DateRangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.checkInSvc.MySummary(c.Request.Context(), userID, &req)
	if err != nil {
		handleCheckInError(c, err)
		return
	}

	response.OK(c, result)
}

// ListByShift
// GET /api/v1/shifts/:id/check-ins
func (h *CheckInHandler) ListByShift(c *gin.Context) {
	callerID, callerRole, ok := MustGetCaller(c)
	if !ok {
		return
	}

	list, err := h.checkInSvc.ListByShift(c.Request.Context(), c.Param("id"), callerID, callerRole)
	if err != nil {
		handleCheckInError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// CreateManual
// POST /api/v1/check-ins/manual
func (h *CheckInHandler) CreateManual(c *gin.Context) {
	callerID, callerRole, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.ManualCheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.checkInSvc.CreateManual(c.Request.Context(), &req, callerID, callerRole)
	if err != nil {
		handleCheckInError(c, err)
		return
	}

	response.Created(c, result)
}

// Update corrects recorded times.
// PUT /api/v1/check-ins/:id
func (h *CheckInHandler) Update(c *gin.Context) {
	callerID, callerRole, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.UpdateCheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.checkInSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID, callerRole)
	if err != nil {
		handleCheckInError(c, err)
		return
	}

	response.OK(c, result)
}

func handleCheckInError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCheckInNotFound):
		response.NotFound(c, 16001, "check-in not found")
	case errors.Is(err, service.ErrAlreadyCheckedIn):
		response.Conflict(c, 16002, "already checked in to this shift")
	case errors.Is(err, service.ErrNotCheckedIn):
		response.Conflict(c, 16003, "not checked in to this shift")
	case errors.Is(err, service.ErrAlreadyCheckedOut):
		response.Conflict(c, 16004, "already checked out of this shift")
	case errors.Is(err, service.ErrCheckInTooEarly):
		response.Conflict(c, 16005, "check-in has not opened yet for this shift")
	case errors.Is(err, service.ErrCheckInWindowClosed):
		response.Conflict(c, 16006, "check-in has closed for this shift")
	case errors.Is(err, service.ErrInvalidCheckInTimes):
		response.BadRequest(c, 16007, "check-out must be after check-in")
	case errors.Is(err, service.ErrShiftNotFound):
		response.NotFound(c, 16008, "shift not found")
	case errors.Is(err, service.ErrShiftClosed):
		response.Conflict(c, 16009, "shift is cancelled or completed")
	case errors.Is(err, service.ErrNotSignedUp):
		response.Forbidden(c, 16010, "not signed up for this shift")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 16011, "volunteer not found")
	case errors.Is(err, service.ErrInvalidDate), errors.Is(err, service.ErrInvalidDateRange):
		response.BadRequest(c, 16012, err.Error())
	case errors.Is(err, service.ErrNoPermission):
		response.Forbidden(c, 16013, "you do not manage this shift")
	case errors.Is(err, service.ErrCheckOutTarget):
		response.BadRequest(c, 16014, err.Error())
	default:
		response.InternalError(c)
	}
}
