package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"volunteerhub/config"
	"volunteerhub/internal/dto"
	"volunteerhub/internal/model"
	"volunteerhub/internal/repository"
	pkgerrors "volunteerhub/pkg/errors"
)

// ── check-in errors ──

var (
	ErrCheckInNotFound     = errors.New("check-in not found")
	ErrAlreadyCheckedIn    = errors.New("already checked in to this shift")
	ErrNotCheckedIn        = errors.New("not checked in to this shift")
	ErrAlreadyCheckedOut   = errors.New("already checked out of this shift")
	ErrCheckInTooEarly     = errors.New("check-in has not opened yet for this shift")
	ErrCheckInWindowClosed = errors.New("check-in has closed for this shift")
	ErrInvalidCheckInTimes = errors.New("check-out must be after check-in")
	ErrCheckOutTarget      = errors.New("either check_in_id or shift_id is required")
)

// CheckInService time tracking against shifts
type CheckInService interface {
	CheckIn(ctx context.Context, req *dto.CheckInRequest, volunteerID string) (*dto.CheckInResponse, error)
	CheckOut(ctx context.Context, req *dto.CheckOutRequest, volunteerID string) (*dto.CheckInResponse, error)
	ListMine(ctx context.Context, volunteerID string, req *dto.CheckInListRequest) ([]dto.CheckInResponse, int64, error)
	MySummary(ctx context.Context, volunteerID string, req *dto.DateRangeRequest) (*dto.HoursSummaryResponse, error)
	// ListByShift, CreateManual and Update are limited to admins and to
	// group admins of the shift's group.
	ListByShift(ctx context.Context, shiftID, callerID, callerRole string) ([]dto.CheckInResponse, error)
	// CreateManual records hours on a volunteer's behalf, ignoring the check-in window.
	CreateManual(ctx context.Context, req *dto.ManualCheckInRequest, callerID, callerRole string) (*dto.CheckInResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateCheckInRequest, callerID, callerRole string) (*dto.CheckInResponse, error)
}

type checkInService struct {
	cfg    *config.ShiftConfig
	loc    *time.Location
	repo   *repository.Repository
	now    Clock
	logger *zap.Logger
}

// NewCheckInService creates a CheckInService
func NewCheckInService(cfg *config.ShiftConfig, repo *repository.Repository, clock Clock, logger *zap.Logger) CheckInService {
	return &checkInService{cfg: cfg, loc: cfg.Location(), repo: repo, now: clock, logger: logger}
}

// ────────────────────── CheckIn ──────────────────────

func (s *checkInService) CheckIn(ctx context.Context, req *dto.CheckInRequest, volunteerID string) (*dto.CheckInResponse, error) {
	shift, err := s.getShift(ctx, req.ShiftID)
	if err != nil {
		return nil, err
	}
	if shift.Status == model.ShiftCancelled {
		return nil, ErrShiftClosed
	}

	if _, err := s.repo.Signup.Get(ctx, req.ShiftID, volunteerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotSignedUp
		}
		return nil, err
	}

	// window: from check_in_early before the start until the end
	now := s.now()
	if now.Before(shift.StartTime.Add(-s.cfg.CheckInEarly)) {
		return nil, ErrCheckInTooEarly
	}
	if now.After(shift.EndTime) {
		return nil, ErrCheckInWindowClosed
	}

	checkIn := &model.CheckIn{
		ShiftID:     req.ShiftID,
		VolunteerID: volunteerID,
		CheckInTime: now,
		Source:      model.CheckInSourceSelf,
	}
	checkIn.Audit(volunteerID)

	if err := s.repo.CheckIn.Create(ctx, checkIn); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicate) {
			return nil, ErrAlreadyCheckedIn
		}
		s.logger.Error("failed to check in", zap.String("shift_id", req.ShiftID), zap.Error(err))
		return nil, err
	}

	checkIn.Shift = shift
	return s.toCheckInResponse(checkIn), nil
}

// ────────────────────── CheckOut ──────────────────────

// CheckOut closes the caller's open check-in, addressed by its id or by shift.
func (s *checkInService) CheckOut(ctx context.Context, req *dto.CheckOutRequest, volunteerID string) (*dto.CheckInResponse, error) {
	var (
		checkIn *model.CheckIn
		err     error
	)
	switch {
	case req.CheckInID != "":
		checkIn, err = s.repo.CheckIn.GetByID(ctx, req.CheckInID)
		// someone else's record looks the same as a missing one
		if err == nil && checkIn.VolunteerID != volunteerID {
			err = gorm.ErrRecordNotFound
		}
	case req.ShiftID != "":
		checkIn, err = s.repo.CheckIn.GetByShiftAndVolunteer(ctx, req.ShiftID, volunteerID)
	default:
		return nil, ErrCheckOutTarget
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotCheckedIn
		}
		s.logger.Error("failed to look up check-in",
			zap.String("check_in_id", req.CheckInID), zap.String("shift_id", req.ShiftID), zap.Error(err))
		return nil, err
	}
	if !checkIn.IsOpen() {
		return nil, ErrAlreadyCheckedOut
	}

	checkIn.Close(s.now())
	checkIn.UpdatedBy = &volunteerID

	if err := s.repo.CheckIn.Update(ctx, checkIn); err != nil {
		s.logger.Error("failed to check out", zap.String("id", checkIn.CheckInID), zap.Error(err))
		return nil, err
	}
	return s.toCheckInResponse(checkIn), nil
}

// ────────────────────── ListMine / MySummary ──────────────────────

func (s *checkInService) ListMine(ctx context.Context, volunteerID string, req *dto.CheckInListRequest) ([]dto.CheckInResponse, int64, error) {
	from, to, err := parseDateRange(req.From, req.To, s.loc)
	if err != nil {
		return nil, 0, err
	}

	checkIns, total, err := s.repo.CheckIn.ListByVolunteer(ctx, volunteerID, from, to, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("failed to list check-ins", zap.String("volunteer_id", volunteerID), zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.CheckInResponse, 0, len(checkIns))
	for i := range checkIns {
		result = append(result, *s.toCheckInResponse(&checkIns[i]))
	}
	return result, total, nil
}

func (s *checkInService) MySummary(ctx context.Context, volunteerID string, req *dto.DateRangeRequest) (*dto.HoursSummaryResponse, error) {
	from, to, err := parseDateRange(req.From, req.To, s.loc)
	if err != nil {
		return nil, err
	}

	minutes, shifts, err := s.repo.CheckIn.SummarizeVolunteer(ctx, volunteerID, from, to)
	if err != nil {
		s.logger.Error("failed to summarize hours", zap.String("volunteer_id", volunteerID), zap.Error(err))
		return nil, err
	}

	return &dto.HoursSummaryResponse{
		From:         req.From,
		To:           req.To,
		TotalMinutes: minutes,
		TotalHours:   minutesToHours(minutes),
		ShiftsWorked: shifts,
	}, nil
}

// ────────────────────── ListByShift ──────────────────────

func (s *checkInService) ListByShift(ctx context.Context, shiftID, callerID, callerRole string) ([]dto.CheckInResponse, error) {
	if _, err := s.getManagedShift(ctx, shiftID, callerID, callerRole); err != nil {
		return nil, err
	}
	checkIns, err := s.repo.CheckIn.ListByShift(ctx, shiftID)
	if err != nil {
		s.logger.Error("failed to list shift check-ins", zap.String("shift_id", shiftID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.CheckInResponse, 0, len(checkIns))
	for i := range checkIns {
		result = append(result, *s.toCheckInResponse(&checkIns[i]))
	}
	return result, nil
}

// ────────────────────── CreateManual / Update ──────────────────────

func (s *checkInService) CreateManual(ctx context.Context, req *dto.ManualCheckInRequest, callerID, callerRole string) (*dto.CheckInResponse, error) {
	shift, err := s.getManagedShift(ctx, req.ShiftID, callerID, callerRole)
	if err != nil {
		return nil, err
	}
	volunteer, err := s.repo.User.GetByID(ctx, req.VolunteerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	checkIn := &model.CheckIn{
		ShiftID:     req.ShiftID,
		VolunteerID: req.VolunteerID,
		CheckInTime: req.CheckInTime,
		Source:      model.CheckInSourceManual,
		Notes:       strings.TrimSpace(req.Notes),
	}
	if req.CheckOutTime != nil {
		if !req.CheckOutTime.After(req.CheckInTime) {
			return nil, ErrInvalidCheckInTimes
		}
		checkIn.Close(*req.CheckOutTime)
	}
	checkIn.Audit(callerID)

	if err := s.repo.CheckIn.Create(ctx, checkIn); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicate) {
			return nil, ErrAlreadyCheckedIn
		}
		s.logger.Error("failed to record manual check-in", zap.String("shift_id", req.ShiftID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("manual check-in recorded",
		zap.String("shift_id", req.ShiftID), zap.String("volunteer_id", req.VolunteerID), zap.String("by", callerID))

	checkIn.Shift = shift
	checkIn.Volunteer = volunteer
	return s.toCheckInResponse(checkIn), nil
}

func (s *checkInService) Update(ctx context.Context, id string, req *dto.UpdateCheckInRequest, callerID, callerRole string) (*dto.CheckInResponse, error) {
	checkIn, err := s.repo.CheckIn.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCheckInNotFound
		}
		s.logger.Error("failed to look up check-in", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if _, err := s.getManagedShift(ctx, checkIn.ShiftID, callerID, callerRole); err != nil {
		return nil, err
	}

	if req.CheckInTime != nil {
		checkIn.CheckInTime = *req.CheckInTime
	}
	if req.Notes != nil {
		checkIn.Notes = strings.TrimSpace(*req.Notes)
	}
	out := checkIn.CheckOutTime
	if req.CheckOutTime != nil {
		out = req.CheckOutTime
	}
	if out != nil {
		if !out.After(checkIn.CheckInTime) {
			return nil, ErrInvalidCheckInTimes
		}
		checkIn.Close(*out)
	}
	checkIn.UpdatedBy = &callerID

	if err := s.repo.CheckIn.Update(ctx, checkIn); err != nil {
		s.logger.Error("failed to update check-in", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.toCheckInResponse(checkIn), nil
}

// ── helpers ──

func (s *checkInService) getShift(ctx context.Context, id string) (*model.Shift, error) {
	shift, err := s.repo.Shift.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		s.logger.Error("failed to look up shift", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return shift, nil
}

// getManagedShift loads a shift the caller may manage attendance for.
func (s *checkInService) getManagedShift(ctx context.Context, id, callerID, callerRole string) (*model.Shift, error) {
	shift, err := s.getShift(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManageShifts(ctx, s.repo, shift.GroupID, callerID, callerRole) {
		return nil, ErrNoPermission
	}
	return shift, nil
}

func (s *checkInService) toCheckInResponse(c *model.CheckIn) *dto.CheckInResponse {
	resp := &dto.CheckInResponse{
		ID:              c.CheckInID,
		ShiftID:         c.ShiftID,
		VolunteerID:     c.VolunteerID,
		CheckInTime:     formatTime(c.CheckInTime.In(s.loc)),
		DurationMinutes: c.DurationMinutes,
		Hours:           c.Hours(),
		Source:          c.Source,
		Notes:           c.Notes,
	}
	if c.CheckOutTime != nil {
		resp.CheckOutTime = formatTime(c.CheckOutTime.In(s.loc))
	}
	if c.Shift != nil {
		resp.ShiftTitle = c.Shift.Title
	}
	if c.Volunteer != nil {
		resp.VolunteerName = c.Volunteer.Name
	}
	return resp
}
