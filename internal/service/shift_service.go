package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"volunteerhub/config"
	"volunteerhub/internal/dto"
	"volunteerhub/internal/model"
	"volunteerhub/internal/repository"
	pkgerrors "volunteerhub/pkg/errors"
)

// ── shift errors ──

var (
	ErrShiftNotFound            = errors.New("shift not found")
	ErrShiftInPast              = errors.New("shift must start in the future")
	ErrShiftClosed              = errors.New("shift is cancelled or completed")
	ErrShiftStarted             = errors.New("shift has already started")
	ErrShiftFull                = errors.New("shift is full")
	ErrShiftVersionConflict     = errors.New("shift was modified by someone else, reload and retry")
	ErrShiftHasSignups          = errors.New("shift has volunteers signed up, cancel it instead")
	ErrCapacityBelowSignups     = errors.New("capacity cannot be lower than the number of volunteers signed up")
	ErrAlreadySignedUp          = errors.New("already signed up for this shift")
	ErrNotSignedUp              = errors.New("not signed up for this shift")
	ErrCancellationWindowClosed = errors.New("too close to the shift start to cancel")
	ErrScheduleConflict         = errors.New("you are already signed up for an overlapping shift")
	ErrNotApprovedVolunteer     = errors.New("only approved volunteers can do this")
)

// ShiftService shift scheduling and signups
type ShiftService interface {
	Create(ctx context.Context, req *dto.CreateShiftRequest, callerID, callerRole string) (*dto.CreateShiftResponse, error)
	GetByID(ctx context.Context, id, viewerID, viewerRole string) (*dto.ShiftDetailResponse, error)
	List(ctx context.Context, req *dto.ShiftListRequest, viewerID string) ([]dto.ShiftResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateShiftRequest, callerID, callerRole string) (*dto.ShiftResponse, error)
	Cancel(ctx context.Context, id string, req *dto.CancelShiftRequest, callerID, callerRole string) (*dto.ShiftResponse, error)
	Delete(ctx context.Context, id, callerID, callerRole string) error

	Signup(ctx context.Context, shiftID, volunteerID string) (*dto.SignupResponse, error)
	CancelSignup(ctx context.Context, shiftID, volunteerID string) error
	// RemoveVolunteer admin removal; not bound by the cancellation cutoff.
	RemoveVolunteer(ctx context.Context, shiftID, volunteerID, callerID, callerRole string) error
	Roster(ctx context.Context, shiftID, callerID, callerRole string) ([]dto.RosterEntryResponse, error)
	MySignups(ctx context.Context, volunteerID string, req *dto.MySignupsRequest) ([]dto.ShiftResponse, int64, error)
	// CalendarFeed iCalendar document of the volunteer's shifts.
	CalendarFeed(ctx context.Context, volunteerID string) ([]byte, error)
	// ImportICS creates shifts from an uploaded iCalendar file.
	ImportICS(ctx context.Context, r io.Reader, req *dto.ImportShiftsRequest, callerID, callerRole string) (*dto.ImportShiftsResponse, error)
	CompletePastShifts(ctx context.Context) (int64, error)
}

type shiftService struct {
	cfg    *config.ShiftConfig
	loc    *time.Location
	repo   *repository.Repository
	now    Clock
	logger *zap.Logger
}

// NewShiftService creates a ShiftService
func NewShiftService(cfg *config.ShiftConfig, repo *repository.Repository, clock Clock, logger *zap.Logger) ShiftService {
	return &shiftService{cfg: cfg, loc: cfg.Location(), repo: repo, now: clock, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *shiftService) Create(ctx context.Context, req *dto.CreateShiftRequest, callerID, callerRole string) (*dto.CreateShiftResponse, error) {
	groupID := emptyToNil(req.GroupID)
	if err := s.authorizeGroup(ctx, groupID, callerID, callerRole); err != nil {
		return nil, err
	}

	start, end, err := ComposeShiftWindow(req.Date, req.StartTime, req.EndTime, s.loc)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if !start.After(now) {
		return nil, ErrShiftInPast
	}

	starts := []time.Time{start}
	var seriesID *string
	if req.Recurrence != nil {
		starts, err = ExpandRecurrence(start, req.Recurrence, s.loc, s.cfg.MaxOccurrences)
		if err != nil {
			return nil, err
		}
		id := newSeriesID()
		seriesID = &id
	}

	length := end.Sub(start)
	shifts := make([]model.Shift, 0, len(starts))
	for _, st := range starts {
		shift := model.Shift{
			Title:         strings.TrimSpace(req.Title),
			Description:   strings.TrimSpace(req.Description),
			Location:      strings.TrimSpace(req.Location),
			StartTime:     st,
			EndTime:       st.Add(length),
			MaxVolunteers: req.MaxVolunteers,
			Status:        model.ShiftOpen,
			GroupID:       groupID,
			SeriesID:      seriesID,
		}
		shift.Audit(callerID)
		shifts = append(shifts, shift)
	}

	if len(shifts) == 1 {
		err = s.repo.Shift.Create(ctx, &shifts[0])
	} else {
		err = s.repo.Shift.BatchCreate(ctx, shifts)
	}
	if err != nil {
		s.logger.Error("failed to create shifts", zap.Int("count", len(shifts)), zap.Error(err))
		return nil, err
	}

	s.logger.Info("shifts created",
		zap.Int("count", len(shifts)), zap.String("series_id", derefString(seriesID)), zap.String("by", callerID))

	resp := &dto.CreateShiftResponse{
		SeriesID: derefString(seriesID),
		Shifts:   make([]dto.ShiftResponse, 0, len(shifts)),
	}
	for i := range shifts {
		resp.Shifts = append(resp.Shifts, s.toShiftResponse(&shifts[i], now, false))
	}
	return resp, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *shiftService) GetByID(ctx context.Context, id, viewerID, viewerRole string) (*dto.ShiftDetailResponse, error) {
	shift, err := s.getShift(ctx, id)
	if err != nil {
		return nil, err
	}

	signedUp, err := s.isSignedUp(ctx, id, viewerID)
	if err != nil {
		return nil, err
	}

	resp := &dto.ShiftDetailResponse{ShiftResponse: s.toShiftResponse(shift, s.now(), signedUp)}

	if s.canManage(ctx, shift.GroupID, viewerID, viewerRole) {
		roster, err := s.roster(ctx, id)
		if err != nil {
			return nil, err
		}
		resp.Roster = roster
	}
	return resp, nil
}

// ────────────────────── List ──────────────────────

func (s *shiftService) List(ctx context.Context, req *dto.ShiftListRequest, viewerID string) ([]dto.ShiftResponse, int64, error) {
	from, to, err := parseDateRange(req.From, req.To, s.loc)
	if err != nil {
		return nil, 0, err
	}

	now := s.now()
	shifts, total, err := s.repo.Shift.List(ctx, repository.ShiftFilter{
		Bucket:  req.Bucket,
		Now:     now,
		Query:   strings.TrimSpace(req.Q),
		GroupID: req.GroupID,
		Status:  req.Status,
		From:    from,
		To:      to,
		Offset:  req.GetOffset(),
		Limit:   req.GetPageSize(),
	})
	if err != nil {
		s.logger.Error("failed to list shifts", zap.Error(err))
		return nil, 0, err
	}

	ids := make([]string, 0, len(shifts))
	for i := range shifts {
		ids = append(ids, shifts[i].ShiftID)
	}
	signed, err := s.repo.Signup.SignedUpShiftIDs(ctx, viewerID, ids)
	if err != nil {
		s.logger.Error("failed to load viewer signups", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ShiftResponse, 0, len(shifts))
	for i := range shifts {
		result = append(result, s.toShiftResponse(&shifts[i], now, signed[shifts[i].ShiftID]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *shiftService) Update(ctx context.Context, id string, req *dto.UpdateShiftRequest, callerID, callerRole string) (*dto.ShiftResponse, error) {
	shift, err := s.getShift(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeGroup(ctx, shift.GroupID, callerID, callerRole); err != nil {
		return nil, err
	}
	if shift.IsClosed() {
		return nil, ErrShiftClosed
	}
	if req.Version != shift.Version {
		return nil, ErrShiftVersionConflict
	}

	now := s.now()

	if req.Title != nil {
		shift.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		shift.Description = strings.TrimSpace(*req.Description)
	}
	if req.Location != nil {
		shift.Location = strings.TrimSpace(*req.Location)
	}

	if req.Date != nil || req.StartTime != nil || req.EndTime != nil {
		date, startClock, endClock := SplitShiftWindow(shift.StartTime, shift.EndTime, s.loc)
		if req.Date != nil {
			date = *req.Date
		}
		if req.StartTime != nil {
			startClock = *req.StartTime
		}
		if req.EndTime != nil {
			endClock = *req.EndTime
		}
		start, end, err := ComposeShiftWindow(date, startClock, endClock, s.loc)
		if err != nil {
			return nil, err
		}
		if !start.Equal(shift.StartTime) || !end.Equal(shift.EndTime) {
			if shift.HasStarted(now) {
				return nil, ErrShiftStarted
			}
			if !start.After(now) {
				return nil, ErrShiftInPast
			}
		}
		shift.StartTime, shift.EndTime = start, end
	}

	if req.MaxVolunteers != nil {
		if *req.MaxVolunteers < shift.CurrentVolunteers {
			return nil, ErrCapacityBelowSignups
		}
		shift.MaxVolunteers = *req.MaxVolunteers
		shift.SyncCapacityStatus()
	}

	if req.GroupID != nil {
		newGroup := emptyToNil(req.GroupID)
		if err := s.authorizeGroup(ctx, newGroup, callerID, callerRole); err != nil {
			return nil, err
		}
		shift.GroupID = newGroup
		shift.Group = nil
	}

	shift.UpdatedBy = &callerID
	if err := s.repo.Shift.Update(ctx, shift); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrShiftVersionConflict
		}
		s.logger.Error("failed to update shift", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	signedUp, err := s.isSignedUp(ctx, id, callerID)
	if err != nil {
		return nil, err
	}
	resp := s.toShiftResponse(shift, now, signedUp)
	return &resp, nil
}

// ────────────────────── Cancel / Delete ──────────────────────

func (s *shiftService) Cancel(ctx context.Context, id string, req *dto.CancelShiftRequest, callerID, callerRole string) (*dto.ShiftResponse, error) {
	shift, err := s.getShift(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeGroup(ctx, shift.GroupID, callerID, callerRole); err != nil {
		return nil, err
	}
	if shift.IsClosed() {
		return nil, ErrShiftClosed
	}

	shift.Status = model.ShiftCancelled
	shift.CancelReason = strings.TrimSpace(req.Reason)
	shift.UpdatedBy = &callerID

	if err := s.repo.Shift.Update(ctx, shift); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrShiftVersionConflict
		}
		s.logger.Error("failed to cancel shift", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("shift cancelled",
		zap.String("id", id), zap.Int("volunteers", shift.CurrentVolunteers), zap.String("by", callerID))

	resp := s.toShiftResponse(shift, s.now(), false)
	return &resp, nil
}

func (s *shiftService) Delete(ctx context.Context, id, callerID, callerRole string) error {
	shift, err := s.getShift(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizeGroup(ctx, shift.GroupID, callerID, callerRole); err != nil {
		return err
	}
	if shift.CurrentVolunteers > 0 && shift.Status != model.ShiftCancelled {
		return ErrShiftHasSignups
	}

	if err := s.repo.Shift.Delete(ctx, id, callerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrShiftNotFound
		}
		s.logger.Error("failed to delete shift", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Signup ──────────────────────

func (s *shiftService) Signup(ctx context.Context, shiftID, volunteerID string) (*dto.SignupResponse, error) {
	user, err := s.repo.User.GetByID(ctx, volunteerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}
	if !model.CanVolunteer(user.Role) {
		return nil, ErrNotApprovedVolunteer
	}

	shift, err := s.getShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if shift.IsClosed() {
		return nil, ErrShiftClosed
	}
	if shift.HasStarted(now) {
		return nil, ErrShiftStarted
	}

	signedUp, err := s.isSignedUp(ctx, shiftID, volunteerID)
	if err != nil {
		return nil, err
	}
	if signedUp {
		return nil, ErrAlreadySignedUp
	}
	if shift.Status == model.ShiftFull || shift.SpotsLeft() == 0 {
		return nil, ErrShiftFull
	}

	overlap, err := s.repo.Signup.HasOverlap(ctx, volunteerID, shift.StartTime, shift.EndTime, shiftID)
	if err != nil {
		s.logger.Error("failed to check schedule overlap", zap.Error(err))
		return nil, err
	}
	if overlap {
		return nil, ErrScheduleConflict
	}

	signup := &model.ShiftSignup{
		ShiftID:     shiftID,
		VolunteerID: volunteerID,
		Status:      model.SignupConfirmed,
		SignedUpAt:  now,
	}
	if err := s.repo.Signup.Create(ctx, signup); err != nil {
		switch {
		case errors.Is(err, pkgerrors.ErrShiftFull):
			return nil, ErrShiftFull
		case errors.Is(err, pkgerrors.ErrDuplicate):
			return nil, ErrAlreadySignedUp
		}
		s.logger.Error("failed to sign up",
			zap.String("shift_id", shiftID), zap.String("volunteer_id", volunteerID), zap.Error(err))
		return nil, err
	}

	// reload for the post-signup head count
	if updated, err := s.repo.Shift.GetByID(ctx, shiftID); err == nil {
		shift = updated
	} else {
		shift.CurrentVolunteers++
		shift.SyncCapacityStatus()
	}

	return &dto.SignupResponse{
		SignupID:   signup.SignupID,
		SignedUpAt: formatTime(signup.SignedUpAt),
		Shift:      s.toShiftResponse(shift, now, true),
	}, nil
}

// ────────────────────── CancelSignup ──────────────────────

func (s *shiftService) CancelSignup(ctx context.Context, shiftID, volunteerID string) error {
	shift, err := s.getShift(ctx, shiftID)
	if err != nil {
		return err
	}
	signedUp, err := s.isSignedUp(ctx, shiftID, volunteerID)
	if err != nil {
		return err
	}
	if !signedUp {
		return ErrNotSignedUp
	}
	if shift.IsClosed() {
		return ErrShiftClosed
	}
	if !s.canCancel(shift, s.now()) {
		return ErrCancellationWindowClosed
	}

	return s.releaseSpot(ctx, shiftID, volunteerID, volunteerID)
}

// ────────────────────── RemoveVolunteer ──────────────────────

func (s *shiftService) RemoveVolunteer(ctx context.Context, shiftID, volunteerID, callerID, callerRole string) error {
	shift, err := s.getShift(ctx, shiftID)
	if err != nil {
		return err
	}
	if err := s.authorizeGroup(ctx, shift.GroupID, callerID, callerRole); err != nil {
		return err
	}
	if shift.Status == model.ShiftCompleted {
		return ErrShiftClosed
	}

	if err := s.releaseSpot(ctx, shiftID, volunteerID, callerID); err != nil {
		return err
	}
	s.logger.Info("volunteer removed from shift",
		zap.String("shift_id", shiftID), zap.String("volunteer_id", volunteerID), zap.String("by", callerID))
	return nil
}

// ────────────────────── Roster ──────────────────────

func (s *shiftService) Roster(ctx context.Context, shiftID, callerID, callerRole string) ([]dto.RosterEntryResponse, error) {
	shift, err := s.getShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if !s.canManage(ctx, shift.GroupID, callerID, callerRole) {
		return nil, ErrNoPermission
	}
	return s.roster(ctx, shiftID)
}

// ────────────────────── MySignups ──────────────────────

func (s *shiftService) MySignups(ctx context.Context, volunteerID string, req *dto.MySignupsRequest) ([]dto.ShiftResponse, int64, error) {
	now := s.now()
	signups, total, err := s.repo.Signup.ListByVolunteer(ctx, volunteerID, repository.ShiftFilter{
		Bucket: req.Bucket,
		Now:    now,
		Offset: req.GetOffset(),
		Limit:  req.GetPageSize(),
	})
	if err != nil {
		s.logger.Error("failed to list signups", zap.String("volunteer_id", volunteerID), zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ShiftResponse, 0, len(signups))
	for i := range signups {
		if signups[i].Shift == nil {
			continue
		}
		result = append(result, s.toShiftResponse(signups[i].Shift, now, true))
	}
	return result, total, nil
}

// ────────────────────── CompletePastShifts ──────────────────────

func (s *shiftService) CompletePastShifts(ctx context.Context) (int64, error) {
	n, err := s.repo.Shift.CompletePast(ctx, s.now())
	if err != nil {
		s.logger.Error("failed to complete past shifts", zap.Error(err))
		return 0, err
	}
	return n, nil
}

// ── helpers ──

func (s *shiftService) getShift(ctx context.Context, id string) (*model.Shift, error) {
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

func (s *shiftService) isSignedUp(ctx context.Context, shiftID, volunteerID string) (bool, error) {
	if volunteerID == "" {
		return false, nil
	}
	_, err := s.repo.Signup.Get(ctx, shiftID, volunteerID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	s.logger.Error("failed to look up signup", zap.String("shift_id", shiftID), zap.Error(err))
	return false, err
}

func (s *shiftService) releaseSpot(ctx context.Context, shiftID, volunteerID, by string) error {
	if err := s.repo.Signup.Cancel(ctx, shiftID, volunteerID, by, s.now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotSignedUp
		}
		s.logger.Error("failed to cancel signup",
			zap.String("shift_id", shiftID), zap.String("volunteer_id", volunteerID), zap.Error(err))
		return err
	}
	return nil
}

func (s *shiftService) roster(ctx context.Context, shiftID string) ([]dto.RosterEntryResponse, error) {
	signups, err := s.repo.Signup.ListByShift(ctx, shiftID)
	if err != nil {
		s.logger.Error("failed to load roster", zap.String("shift_id", shiftID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.RosterEntryResponse, 0, len(signups))
	for _, su := range signups {
		entry := dto.RosterEntryResponse{
			SignupID:    su.SignupID,
			VolunteerID: su.VolunteerID,
			SignedUpAt:  formatTime(su.SignedUpAt),
		}
		if su.Volunteer != nil {
			entry.Name = su.Volunteer.Name
			entry.Email = su.Volunteer.Email
			entry.Phone = su.Volunteer.Phone
		}
		result = append(result, entry)
	}
	return result, nil
}

// canCancel volunteers may drop out until cancel_cutoff before the start.
func (s *shiftService) canCancel(shift *model.Shift, now time.Time) bool {
	return !shift.IsClosed() && now.Before(shift.StartTime.Add(-s.cfg.CancelCutoff))
}

func (s *shiftService) canManage(ctx context.Context, groupID *string, userID, role string) bool {
	return canManageShifts(ctx, s.repo, groupID, userID, role)
}

// canManageShifts admins manage every shift; group admins only the shifts
// of groups where they hold an ADMIN seat. Ungrouped shifts are admin-only.
func canManageShifts(ctx context.Context, repo *repository.Repository, groupID *string, userID, role string) bool {
	switch role {
	case model.RoleAdmin:
		return true
	case model.RoleGroupAdmin:
		if groupID == nil {
			return false
		}
		m, err := repo.Group.GetMember(ctx, *groupID, userID)
		return err == nil && m.Role == model.GroupRoleAdmin
	}
	return false
}

// authorizeGroup checks the group exists and the caller may manage its shifts.
func (s *shiftService) authorizeGroup(ctx context.Context, groupID *string, userID, role string) error {
	if groupID != nil {
		if _, err := s.repo.Group.GetByID(ctx, *groupID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGroupNotFound
			}
			return err
		}
	}
	if !s.canManage(ctx, groupID, userID, role) {
		return ErrNoPermission
	}
	return nil
}

func (s *shiftService) toShiftResponse(shift *model.Shift, now time.Time, signedUp bool) dto.ShiftResponse {
	date, startClock, endClock := SplitShiftWindow(shift.StartTime, shift.EndTime, s.loc)
	resp := dto.ShiftResponse{
		ID:                shift.ShiftID,
		Title:             shift.Title,
		Description:       shift.Description,
		Location:          shift.Location,
		StartTime:         formatTime(shift.StartTime.In(s.loc)),
		EndTime:           formatTime(shift.EndTime.In(s.loc)),
		Date:              date,
		StartClock:        startClock,
		EndClock:          endClock,
		MaxVolunteers:     shift.MaxVolunteers,
		CurrentVolunteers: shift.CurrentVolunteers,
		SpotsLeft:         shift.SpotsLeft(),
		Status:            shift.Status,
		Bucket:            shift.BucketAt(now),
		SeriesID:          derefString(shift.SeriesID),
		CancelReason:      shift.CancelReason,
		IsSignedUp:        signedUp,
		CanCancel:         signedUp && s.canCancel(shift, now),
		Version:           shift.Version,
	}
	if shift.Group != nil {
		resp.Group = &dto.GroupBrief{ID: shift.Group.GroupID, Name: shift.Group.Name}
	} else if shift.GroupID != nil {
		resp.Group = &dto.GroupBrief{ID: *shift.GroupID}
	}
	return resp
}

func newSeriesID() string { return uuid.NewString() }

func emptyToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
