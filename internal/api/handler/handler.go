package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"volunteerhub/config"
	"volunteerhub/internal/service"
	"volunteerhub/pkg/response"
)

// Handler aggregates every HTTP handler.
type Handler struct {
	Auth        *AuthHandler
	User        *UserHandler
	Application *ApplicationHandler
	Shift       *ShiftHandler
	Group       *GroupHandler
	CheckIn     *CheckInHandler
	Report      *ReportHandler
}

// NewHandler wires handlers to their services.
func NewHandler(cfg *config.Config, svc *service.Service) *Handler {
	return &Handler{
		Auth:        NewAuthHandler(svc.Auth, &cfg.Auth),
		User:        NewUserHandler(svc.User),
		Application: NewApplicationHandler(svc.Application),
		Shift:       NewShiftHandler(svc.Shift),
		Group:       NewGroupHandler(svc.Group),
		CheckIn:     NewCheckInHandler(svc.CheckIn),
		Report:      NewReportHandler(svc.Report),
	}
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// bindFailed answers a request whose body or query did not bind.
func bindFailed(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "request body too large")
		return
	}
	response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "invalid request parameters", err.Error())
}
