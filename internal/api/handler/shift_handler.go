package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"volunteerhub/internal/dto"
	"volunteerhub/internal/service"
	pkgerrors "volunteerhub/pkg/errors"
	"volunteerhub/pkg/response"
)

// ShiftHandler shift and signup endpoints
type ShiftHandler struct {
	shiftSvc service.ShiftService
}

// NewShiftHandler creates a ShiftHandler
func NewShiftHandler(shiftSvc service.ShiftService) *ShiftHandler {
	return &ShiftHandler{shiftSvc: shiftSvc}
}

// ────────────────────── management ──────────────────────

// Create one shift, or a series when recurrence is set.
// POST /api/v1/shifts
func (h *ShiftHandler) Create(c *gin.Context) {
	callerID, callerRole, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.CreateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.shiftSvc.Create(c.Request.Context(), &req, callerID, callerRole)
	if err != nil {
		handleShiftError(c, err)
		return
	}

	response.Created(c, result)
}

// Update requires the version the client last read.
// PUT /api/v1/shifts/:id
func (h *ShiftHandler) Update(c *gin.Context) {
	callerID, callerRole, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.UpdateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.shiftSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID, callerRole)
	if err != nil {
		handleShiftError(c, err)
		return
	}

	response.OK(c, result)
}

// Cancel keeps the shift and its roster but closes it.
// POST /api/v1/shifts/:id/cancel
func (h *ShiftHandler) Cancel(c *gin.Context) {
	callerID, callerRole, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.CancelShiftRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindFailed(c, err)
			return
		}
	}

	result, err := h.shiftSvc.Cancel(c.Request.Context(), c.Param("id"), &req, callerID, callerRole)
	if err != nil {
		handleShiftError(c, err)
		return
	}

	response.OK(c, result)
}

// Delete
// DELETE /api/v1/shifts/:id
func (h *ShiftHandler) Delete(c *gin.Context) {
	callerID, callerRole, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.shiftSvc.Delete(c.Request.Context(), c.Param("id"), callerID, callerRole); err != nil {
		handleShiftError(c, err)
		return
	}

	response.OK(c, nil)
}

// Roster confirmed volunteers with contact details
// GET /api/v1/shifts/:id/roster
func (h *ShiftHandler) Roster(c *gin.Context) {
	callerID, callerRole, ok := MustGetCaller(c)
	if !ok {
		return
	}

	list, err := h.shiftSvc.Roster(c.Request.Context(), c.Param("id"), callerID, callerRole)
	if err != nil {
		handleShiftError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// RemoveVolunteer
// DELETE /api/v1/shifts/:id/signups/:volunteer_id
func (h *ShiftHandler) RemoveVolunteer(c *gin.Context) {
	callerID, callerRole, ok := MustGetCaller(c)
	if !ok {
		return
	}

	err := h.shiftSvc.RemoveVolunteer(c.Request.Context(), c.Param("id"), c.Param("volunteer_id"), callerID, callerRole)
	if err != nil {
		handleShiftError(c, err)
		return
	}

	response.OK(c, nil)
}

// ImportICS creates shifts from an uploaded calendar.
// POST /api/v1/shifts/import  (multipart/form-data: file, max_volunteers, group_id)
func (h *ShiftHandler) ImportICS(c *gin.Context) {
	callerID, callerRole, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.ImportShiftsRequest
	if err := c.ShouldBind(&req); err != nil {
		bindFailed(c, err)
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		bindFailed(c, err)
		return
	}
	file, err := fh.Open()
	if err != nil {
		response.BadRequest(c, 14018, "cannot open uploaded file")
		return
	}
	defer file.Close()

	result, err := h.shiftSvc.ImportICS(c.Request.Context(), file, &req, callerID, callerRole)
	if err != nil {
		handleShiftError(c, err)
		return
	}

	response.Created(c, result)
}

// ────────────────────── browsing ──────────────────────

// List
// GET /api/v1/shifts?bucket=upcoming&from=2026-03-01&to=2026-03-31&q=garden
func (h *ShiftHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ShiftListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	list, total, err := h.shiftSvc.List(c.Request.Context(), &req, userID)
	if err != nil {
		handleShiftError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Get
// GET /api/v1/shifts/:id
func (h *ShiftHandler) Get(c *gin.Context) {
	userID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	result, err := h.shiftSvc.GetByID(c.Request.Context(), c.Param("id"), userID, role)
	if err != nil {
		handleShiftError(c, err)
		return
	}

	response.OK(c, result)
}

// ────────────────────── signups ──────────────────────

// Signup
// POST /api/v1/shifts/:id/signup
func (h *ShiftHandler) Signup(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.shiftSvc.Signup(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleShiftError(c, err)
		return
	}

	response.Created(c, result)
}

// CancelSignup
// DELETE /api/v1/shifts/:id/signup
func (h *ShiftHandler) CancelSignup(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.shiftSvc.CancelSignup(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleShiftError(c, err)
		return
	}

	response.OK(c, nil)
}

// MySignups
// GET /api/v1/me/shifts?bucket=upcoming
func (h *ShiftHandler) MySignups(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.MySignupsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	list, total, err := h.shiftSvc.MySignups(c.Request.Context(), userID, &req)
	if err != nil {
		handleShiftError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// CalendarFeed iCalendar export of the caller's shifts
// GET /api/v1/me/shifts/calendar.ics
func (h *ShiftHandler) CalendarFeed(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	data, err := h.shiftSvc.CalendarFeed(c.Request.Context(), userID)
	if err != nil {
		handleShiftError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\"shifts.ics\"")
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", data)
}

func handleShiftError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrShiftNotFound):
		response.NotFound(c, 14001, "shift not found")
	case errors.Is(err, service.ErrShiftInPast):
		response.BadRequest(c, 14002, "shift must start in the future")
	case errors.Is(err, service.ErrShiftClosed):
		response.Conflict(c, 14003, "shift is cancelled or completed")
	case errors.Is(err, service.ErrShiftStarted):
		response.Conflict(c, 14004, "shift has already started")
	case errors.Is(err, service.ErrShiftFull), errors.Is(err, pkgerrors.ErrShiftFull):
		response.Conflict(c, 14005, "shift is full")
	case errors.Is(err, service.ErrShiftVersionConflict), errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 14006, "shift was modified by someone else, reload and retry")
	case errors.Is(err, service.ErrShiftHasSignups):
		response.Conflict(c, 14007, "shift has volunteers signed up, cancel it instead")
	case errors.Is(err, service.ErrCapacityBelowSignups):
		response.Conflict(c, 14008, "capacity cannot be lower than the number of volunteers signed up")
	case errors.Is(err, service.ErrAlreadySignedUp):
		response.Conflict(c, 14009, "already signed up for this shift")
	case errors.Is(err, service.ErrNotSignedUp):
		response.NotFound(c, 14010, "not signed up for this shift")
	case errors.Is(err, service.ErrCancellationWindowClosed):
		response.Conflict(c, 14011, "too close to the shift start to cancel")
	case errors.Is(err, service.ErrScheduleConflict):
		response.Conflict(c, 14012, "you are already signed up for an overlapping shift")
	case errors.Is(err, service.ErrNotApprovedVolunteer):
		response.Forbidden(c, 14013, "only approved volunteers can sign up")
	case errors.Is(err, service.ErrNoPermission):
		response.Forbidden(c, 14014, "permission denied")
	case errors.Is(err, service.ErrGroupNotFound):
		response.NotFound(c, 14015, "group not found")
	case errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrInvalidClock),
		errors.Is(err, service.ErrInvalidDateRange),
		errors.Is(err, service.ErrZeroLengthShift):
		response.BadRequest(c, 14016, err.Error())
	case errors.Is(err, service.ErrRecurrenceUnbounded),
		errors.Is(err, service.ErrTooManyOccurrences),
		errors.Is(err, service.ErrRecurrenceEmpty):
		response.BadRequest(c, 14017, err.Error())
	case errors.Is(err, service.ErrICSInvalid):
		response.ErrorWithDetails(c, http.StatusBadRequest, 14018, "calendar file could not be parsed", err.Error())
	default:
		response.InternalError(c)
	}
}
