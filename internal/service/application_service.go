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

// ── application errors ──

var (
	ErrApplicationNotFound   = errors.New("application not found")
	ErrApplicationNotPending = errors.New("application has already been reviewed")
	ErrApplicationPending    = errors.New("you already have a pending application")
	ErrAlreadyVolunteer      = errors.New("you are already an approved volunteer")
)

// ApplicationService volunteer application workflow
type ApplicationService interface {
	Submit(ctx context.Context, req *dto.SubmitApplicationRequest, applicantID string) (*dto.ApplicationResponse, error)
	ListMine(ctx context.Context, applicantID string) ([]dto.ApplicationResponse, error)
	Withdraw(ctx context.Context, id, applicantID string) error
	List(ctx context.Context, req *dto.ApplicationListRequest) ([]dto.ApplicationResponse, int64, error)
	GetByID(ctx context.Context, id string) (*dto.ApplicationResponse, error)
	Approve(ctx context.Context, id string, req *dto.ReviewApplicationRequest, reviewerID string) (*dto.ApplicationResponse, error)
	Reject(ctx context.Context, id string, req *dto.ReviewApplicationRequest, reviewerID string) (*dto.ApplicationResponse, error)
}

type applicationService struct {
	repo   *repository.Repository
	now    Clock
	logger *zap.Logger
}

// NewApplicationService creates an ApplicationService
func NewApplicationService(repo *repository.Repository, clock Clock, logger *zap.Logger) ApplicationService {
	return &applicationService{repo: repo, now: clock, logger: logger}
}

// ────────────────────── Submit ──────────────────────

func (s *applicationService) Submit(ctx context.Context, req *dto.SubmitApplicationRequest, applicantID string) (*dto.ApplicationResponse, error) {
	user, err := s.repo.User.GetByID(ctx, applicantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.Role != model.RolePending {
		return nil, ErrAlreadyVolunteer
	}

	if _, err := s.repo.Application.GetPendingByApplicant(ctx, applicantID); err == nil {
		return nil, ErrApplicationPending
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("failed to look up pending application", zap.Error(err))
		return nil, err
	}

	app := newApplication(&req.ApplicationFields)
	app.ApplicantID = applicantID
	app.Audit(applicantID)

	if err := s.repo.Application.Create(ctx, app); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicate) {
			return nil, ErrApplicationPending
		}
		s.logger.Error("failed to create application", zap.Error(err))
		return nil, err
	}

	app.Applicant = user
	return toApplicationResponse(app), nil
}

// ────────────────────── ListMine ──────────────────────

func (s *applicationService) ListMine(ctx context.Context, applicantID string) ([]dto.ApplicationResponse, error) {
	apps, err := s.repo.Application.ListByApplicant(ctx, applicantID)
	if err != nil {
		s.logger.Error("failed to list applications", zap.String("applicant_id", applicantID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.ApplicationResponse, 0, len(apps))
	for i := range apps {
		result = append(result, *toApplicationResponse(&apps[i]))
	}
	return result, nil
}

// ────────────────────── Withdraw ──────────────────────

func (s *applicationService) Withdraw(ctx context.Context, id, applicantID string) error {
	app, err := s.getApplication(ctx, id)
	if err != nil {
		return err
	}
	if app.ApplicantID != applicantID {
		// other people's applications are invisible, not forbidden
		return ErrApplicationNotFound
	}
	if app.Status != model.ApplicationPending {
		return ErrApplicationNotPending
	}

	app.Status = model.ApplicationWithdrawn
	app.UpdatedBy = &applicantID
	return s.saveStatus(ctx, app, false)
}

// ────────────────────── List ──────────────────────

func (s *applicationService) List(ctx context.Context, req *dto.ApplicationListRequest) ([]dto.ApplicationResponse, int64, error) {
	apps, total, err := s.repo.Application.List(ctx, req.Status, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("failed to list applications", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ApplicationResponse, 0, len(apps))
	for i := range apps {
		result = append(result, *toApplicationResponse(&apps[i]))
	}
	return result, total, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *applicationService) GetByID(ctx context.Context, id string) (*dto.ApplicationResponse, error) {
	app, err := s.getApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	return toApplicationResponse(app), nil
}

// ────────────────────── Approve / Reject ──────────────────────

func (s *applicationService) Approve(ctx context.Context, id string, req *dto.ReviewApplicationRequest, reviewerID string) (*dto.ApplicationResponse, error) {
	return s.review(ctx, id, model.ApplicationApproved, req, reviewerID)
}

func (s *applicationService) Reject(ctx context.Context, id string, req *dto.ReviewApplicationRequest, reviewerID string) (*dto.ApplicationResponse, error) {
	return s.review(ctx, id, model.ApplicationRejected, req, reviewerID)
}

func (s *applicationService) review(ctx context.Context, id, status string, req *dto.ReviewApplicationRequest, reviewerID string) (*dto.ApplicationResponse, error) {
	app, err := s.getApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.Status != model.ApplicationPending {
		return nil, ErrApplicationNotPending
	}

	now := s.now()
	app.Status = status
	app.ReviewedBy = &reviewerID
	app.ReviewedAt = &now
	app.ReviewNotes = strings.TrimSpace(req.Notes)
	app.UpdatedBy = &reviewerID

	if err := s.saveStatus(ctx, app, status == model.ApplicationApproved); err != nil {
		return nil, err
	}

	s.logger.Info("application reviewed",
		zap.String("id", id), zap.String("status", status), zap.String("reviewer", reviewerID))

	if status == model.ApplicationApproved && app.Applicant != nil && app.Applicant.Role == model.RolePending {
		app.Applicant.Role = model.RoleVolunteer
	}
	return toApplicationResponse(app), nil
}

// ── helpers ──

func (s *applicationService) getApplication(ctx context.Context, id string) (*model.Application, error) {
	app, err := s.repo.Application.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		s.logger.Error("failed to look up application", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return app, nil
}

// saveStatus a lost race means someone else reviewed or withdrew first.
func (s *applicationService) saveStatus(ctx context.Context, app *model.Application, approve bool) error {
	var err error
	if approve {
		err = s.repo.Application.Approve(ctx, app)
	} else {
		err = s.repo.Application.UpdateStatus(ctx, app)
	}
	if errors.Is(err, pkgerrors.ErrOptimisticLock) {
		return ErrApplicationNotPending
	}
	if err != nil {
		s.logger.Error("failed to update application", zap.String("id", app.ApplicationID), zap.Error(err))
	}
	return err
}

func newApplication(f *dto.ApplicationFields) *model.Application {
	return &model.Application{
		Motivation:            strings.TrimSpace(f.Motivation),
		Experience:            strings.TrimSpace(f.Experience),
		Availability:          strings.TrimSpace(f.Availability),
		EmergencyContactName:  strings.TrimSpace(f.EmergencyContactName),
		EmergencyContactPhone: strings.TrimSpace(f.EmergencyContactPhone),
		Status:                model.ApplicationPending,
	}
}

func toApplicationResponse(app *model.Application) *dto.ApplicationResponse {
	resp := &dto.ApplicationResponse{
		ID:                    app.ApplicationID,
		Status:                app.Status,
		Motivation:            app.Motivation,
		Experience:            app.Experience,
		Availability:          app.Availability,
		EmergencyContactName:  app.EmergencyContactName,
		EmergencyContactPhone: app.EmergencyContactPhone,
		ReviewedBy:            derefString(app.ReviewedBy),
		ReviewedAt:            formatTimePtr(app.ReviewedAt),
		ReviewNotes:           app.ReviewNotes,
		CreatedAt:             formatTime(app.CreatedAt),
	}
	if app.Applicant != nil {
		resp.Applicant = toUserResponse(app.Applicant)
	}
	return resp
}
