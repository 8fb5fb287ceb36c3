package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"volunteerhub/config"
	"volunteerhub/internal/repository"
	"volunteerhub/pkg/jwt"
)

// Clock returns the current time; tests substitute a fixed one.
type Clock func() time.Time

// TokenBlacklist revoked-token store. Implemented by pkg/redis.Client;
// nil disables revocation.
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// Service aggregate entry point for all services
type Service struct {
	Auth        AuthService
	User        UserService
	Application ApplicationService
	Shift       ShiftService
	Group       GroupService
	CheckIn     CheckInService
	Report      ReportService
}

// NewService builds the Service aggregate
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) *Service {
	clock := Clock(time.Now)
	return &Service{
		Auth:        NewAuthService(cfg, repo, jwtMgr, blacklist, clock, logger),
		User:        NewUserService(repo, logger),
		Application: NewApplicationService(repo, clock, logger),
		Shift:       NewShiftService(&cfg.Shift, repo, clock, logger),
		Group:       NewGroupService(repo, logger),
		CheckIn:     NewCheckInService(&cfg.Shift, repo, clock, logger),
		Report:      NewReportService(&cfg.Shift, repo, clock, logger),
	}
}

// formatTime RFC 3339 in the zone the value carries; empty for zero values.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func minutesToHours(m int64) float64 {
	// two decimals is what the reports show
	return float64(m*100/60) / 100
}
