package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"volunteerhub/internal/dto"
	"volunteerhub/internal/service"
	"volunteerhub/pkg/response"
)

// ReportHandler admin reporting endpoints
type ReportHandler struct {
	reportSvc service.ReportService
}

// NewReportHandler creates a ReportHandler
func NewReportHandler(reportSvc service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// Dashboard
// GET /api/v1/reports/dashboard
func (h *ReportHandler) Dashboard(c *gin.Context) {
	result, err := h.reportSvc.Dashboard(c.Request.Context())
	if err != nil {
		handleReportError(c, err)
		return
	}

	response.OK(c, result)
}

// VolunteerHours
// GET /api/v1/reports/volunteer-hours?from=2026-03-01&to=2026-03-31&group_id=...
func (h *ReportHandler) VolunteerHours(c *gin.Context) {
	var req dto.ReportRangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	list, err := h.reportSvc.VolunteerHours(c.Request.Context(), &req)
	if err != nil {
		handleReportError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// GroupHours
// GET /api/v1/reports/group-hours
func (h *ReportHandler) GroupHours(c *gin.Context) {
	var req dto.ReportRangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	list, err := h.reportSvc.GroupHours(c.Request.Context(), &req)
	if err != nil {
		handleReportError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// ShiftFill
// GET /api/v1/reports/shift-fill
func (h *ReportHandler) ShiftFill(c *gin.Context) {
	var req dto.ReportRangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	list, err := h.reportSvc.ShiftFill(c.Request.Context(), &req)
	if err != nil {
		handleReportError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// ExportVolunteerHours downloads the hours report as .xlsx.
// GET /api/v1/reports/volunteer-hours/export
func (h *ReportHandler) ExportVolunteerHours(c *gin.Context) {
	var req dto.ReportRangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	buf, filename, err := h.reportSvc.ExportVolunteerHours(c.Request.Context(), &req)
	if err != nil {
		handleReportError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func handleReportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDate), errors.Is(err, service.ErrInvalidDateRange):
		response.BadRequest(c, 17001, err.Error())
	case errors.Is(err, service.ErrExportGenerateFail):
		response.Error(c, http.StatusInternalServerError, 17002, "failed to generate spreadsheet")
	default:
		response.InternalError(c)
	}
}
