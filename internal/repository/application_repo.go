package repository

import (
	"context"

	"gorm.io/gorm"

	"volunteerhub/internal/model"
	pkgerrors "volunteerhub/pkg/errors"
)

// ApplicationRepository application data access
type ApplicationRepository interface {
	// CreateWithApplicant inserts a new user and their first application atomically.
	CreateWithApplicant(ctx context.Context, user *model.User, app *model.Application) error
	Create(ctx context.Context, app *model.Application) error
	GetByID(ctx context.Context, id string) (*model.Application, error)
	GetPendingByApplicant(ctx context.Context, applicantID string) (*model.Application, error)
	ListByApplicant(ctx context.Context, applicantID string) ([]model.Application, error)
	List(ctx context.Context, status string, offset, limit int) ([]model.Application, int64, error)
	// UpdateStatus moves a PENDING application to its final status.
	UpdateStatus(ctx context.Context, app *model.Application) error
	// Approve is UpdateStatus plus promoting a PENDING applicant to VOLUNTEER.
	Approve(ctx context.Context, app *model.Application) error
}

type applicationRepo struct {
	db *gorm.DB
}

// NewApplicationRepo creates an ApplicationRepository
func NewApplicationRepo(db *gorm.DB) ApplicationRepository {
	return &applicationRepo{db: db}
}

func (r *applicationRepo) CreateWithApplicant(ctx context.Context, user *model.User, app *model.Application) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return translateDuplicate(err)
		}
		app.ApplicantID = user.UserID
		app.Audit(user.UserID)
		return translateDuplicate(tx.Create(app).Error)
	})
}

func (r *applicationRepo) Create(ctx context.Context, app *model.Application) error {
	return translateDuplicate(r.db.WithContext(ctx).Create(app).Error)
}

func (r *applicationRepo) GetByID(ctx context.Context, id string) (*model.Application, error) {
	var app model.Application
	err := r.db.WithContext(ctx).
		Preload("Applicant").
		Where("application_id = ?", id).
		First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepo) GetPendingByApplicant(ctx context.Context, applicantID string) (*model.Application, error) {
	var app model.Application
	err := r.db.WithContext(ctx).
		Where("applicant_id = ? AND status = ?", applicantID, model.ApplicationPending).
		First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepo) ListByApplicant(ctx context.Context, applicantID string) ([]model.Application, error) {
	var apps []model.Application
	err := r.db.WithContext(ctx).
		Where("applicant_id = ?", applicantID).
		Order("created_at DESC").
		Find(&apps).Error
	return apps, err
}

func (r *applicationRepo) List(ctx context.Context, status string, offset, limit int) ([]model.Application, int64, error) {
	var apps []model.Application
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Application{})
	if status != "" {
		db = db.Where("status = ?", status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// oldest pending first, so the review queue is worked in order
	err := db.Preload("Applicant").
		Offset(offset).Limit(limit).
		Order("created_at ASC").
		Find(&apps).Error
	return apps, total, err
}

func (r *applicationRepo) UpdateStatus(ctx context.Context, app *model.Application) error {
	return r.updateStatus(r.db.WithContext(ctx), app)
}

func (r *applicationRepo) Approve(ctx context.Context, app *model.Application) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.updateStatus(tx, app); err != nil {
			return err
		}
		// applicants who already hold a role (e.g. an admin re-applying) keep it
		return tx.Model(&model.User{}).
			Where("user_id = ? AND role = ?", app.ApplicantID, model.RolePending).
			Updates(map[string]interface{}{
				"role":       model.RoleVolunteer,
				"updated_by": app.ReviewedBy,
				"version":    gorm.Expr("version + 1"),
			}).Error
	})
}

func (r *applicationRepo) updateStatus(db *gorm.DB, app *model.Application) error {
	oldVersion := app.Version
	result := db.Model(&model.Application{}).
		Where("application_id = ? AND version = ? AND status = ?", app.ApplicationID, oldVersion, model.ApplicationPending).
		Updates(map[string]interface{}{
			"status":       app.Status,
			"reviewed_by":  app.ReviewedBy,
			"reviewed_at":  app.ReviewedAt,
			"review_notes": app.ReviewNotes,
			"updated_by":   app.UpdatedBy,
			"version":      oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	app.Version = oldVersion + 1
	return nil
}
