package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"volunteerhub/internal/model"
	pkgerrors "volunteerhub/pkg/errors"
)

// ShiftRepository shift data access
type ShiftRepository interface {
	Create(ctx context.Context, shift *model.Shift) error
	BatchCreate(ctx context.Context, shifts []model.Shift) error
	GetByID(ctx context.Context, id string) (*model.Shift, error)
	Update(ctx context.Context, shift *model.Shift) error
	Delete(ctx context.Context, id, deletedBy string) error
	List(ctx context.Context, f ShiftFilter) ([]model.Shift, int64, error)
	// CompletePast marks OPEN/FULL shifts that ended before now as COMPLETED.
	CompletePast(ctx context.Context, now time.Time) (int64, error)
}

// SignupRepository roster data access; only CONFIRMED signups are returned
type SignupRepository interface {
	Get(ctx context.Context, shiftID, volunteerID string) (*model.ShiftSignup, error)
	ListByShift(ctx context.Context, shiftID string) ([]model.ShiftSignup, error)
	ListByVolunteer(ctx context.Context, volunteerID string, f ShiftFilter) ([]model.ShiftSignup, int64, error)
	// SignedUpShiftIDs subset of shiftIDs the volunteer holds a spot on.
	SignedUpShiftIDs(ctx context.Context, volunteerID string, shiftIDs []string) (map[string]bool, error)
	// HasOverlap reports a confirmed signup on another live shift intersecting [start, end).
	HasOverlap(ctx context.Context, volunteerID string, start, end time.Time, excludeShiftID string) (bool, error)
	// Create takes a spot and inserts the signup in one transaction.
	// Returns ErrShiftFull when no spot was available and ErrDuplicate
	// when the volunteer already holds one.
	Create(ctx context.Context, signup *model.ShiftSignup) error
	// Cancel releases the volunteer's spot in one transaction.
	Cancel(ctx context.Context, shiftID, volunteerID, cancelledBy string, at time.Time) error
}

// ── Shift Repository ──

type shiftRepo struct {
	db *gorm.DB
}

// NewShiftRepo creates a ShiftRepository
func NewShiftRepo(db *gorm.DB) ShiftRepository {
	return &shiftRepo{db: db}
}

func (r *shiftRepo) Create(ctx context.Context, shift *model.Shift) error {
	return r.db.WithContext(ctx).Create(shift).Error
}

func (r *shiftRepo) BatchCreate(ctx context.Context, shifts []model.Shift) error {
	if len(shifts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&shifts).Error
}

func (r *shiftRepo) GetByID(ctx context.Context, id string) (*model.Shift, error) {
	var shift model.Shift
	err := r.db.WithContext(ctx).
		Preload("Group").
		Where("shift_id = ?", id).
		First(&shift).Error
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

func (r *shiftRepo) Update(ctx context.Context, shift *model.Shift) error {
	oldVersion := shift.Version
	result := r.db.WithContext(ctx).
		Model(&model.Shift{}).
		Where("shift_id = ? AND version = ?", shift.ShiftID, oldVersion).
		Updates(map[string]interface{}{
			"title":          shift.Title,
			"description":    shift.Description,
			"location":       shift.Location,
			"start_time":     shift.StartTime,
			"end_time":       shift.EndTime,
			"max_volunteers": shift.MaxVolunteers,
			"status":         shift.Status,
			"group_id":       shift.GroupID,
			"cancel_reason":  shift.CancelReason,
			"updated_by":     shift.UpdatedBy,
			"version":        oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	shift.Version = oldVersion + 1
	return nil
}

func (r *shiftRepo) Delete(ctx context.Context, id, deletedBy string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Shift{}).
		Where("shift_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *shiftRepo) List(ctx context.Context, f ShiftFilter) ([]model.Shift, int64, error) {
	var shifts []model.Shift
	var total int64

	db := f.apply(r.db.WithContext(ctx).Model(&model.Shift{}))

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("Group").
		Offset(f.Offset).Limit(f.Limit).
		Order(f.order()).
		Find(&shifts).Error
	return shifts, total, err
}

func (r *shiftRepo) CompletePast(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Shift{}).
		Where("end_time < ? AND status IN ?", now, []string{model.ShiftOpen, model.ShiftFull}).
		Updates(map[string]interface{}{
			"status":  model.ShiftCompleted,
			"version": gorm.Expr("version + 1"),
		})
	return result.RowsAffected, result.Error
}

// ── Signup Repository ──

type signupRepo struct {
	db *gorm.DB
}

// NewSignupRepo creates a SignupRepository
func NewSignupRepo(db *gorm.DB) SignupRepository {
	return &signupRepo{db: db}
}

func (r *signupRepo) Get(ctx context.Context, shiftID, volunteerID string) (*model.ShiftSignup, error) {
	var signup model.ShiftSignup
	err := r.db.WithContext(ctx).
		Where("shift_id = ? AND volunteer_id = ? AND status = ?", shiftID, volunteerID, model.SignupConfirmed).
		First(&signup).Error
	if err != nil {
		return nil, err
	}
	return &signup, nil
}

func (r *signupRepo) ListByShift(ctx context.Context, shiftID string) ([]model.ShiftSignup, error) {
	var signups []model.ShiftSignup
	err := r.db.WithContext(ctx).
		Preload("Volunteer").
		Where("shift_id = ? AND status = ?", shiftID, model.SignupConfirmed).
		Order("signed_up_at ASC").
		Find(&signups).Error
	return signups, err
}

func (r *signupRepo) ListByVolunteer(ctx context.Context, volunteerID string, f ShiftFilter) ([]model.ShiftSignup, int64, error) {
	var signups []model.ShiftSignup
	var total int64

	db := r.db.WithContext(ctx).Model(&model.ShiftSignup{}).
		Joins("JOIN shifts ON shifts.shift_id = shift_signups.shift_id AND shifts.deleted_at IS NULL").
		Where("shift_signups.volunteer_id = ? AND shift_signups.status = ?", volunteerID, model.SignupConfirmed)
	db = f.apply(db)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("Shift").Preload("Shift.Group").
		Offset(f.Offset).Limit(f.Limit).
		Order(f.order()).
		Find(&signups).Error
	return signups, total, err
}

func (r *signupRepo) SignedUpShiftIDs(ctx context.Context, volunteerID string, shiftIDs []string) (map[string]bool, error) {
	out := make(map[string]bool, len(shiftIDs))
	if volunteerID == "" || len(shiftIDs) == 0 {
		return out, nil
	}

	var ids []string
	err := r.db.WithContext(ctx).Model(&model.ShiftSignup{}).
		Where("volunteer_id = ? AND status = ? AND shift_id IN ?", volunteerID, model.SignupConfirmed, shiftIDs).
		Pluck("shift_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (r *signupRepo) HasOverlap(ctx context.Context, volunteerID string, start, end time.Time, excludeShiftID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.ShiftSignup{}).
		Joins("JOIN shifts ON shifts.shift_id = shift_signups.shift_id AND shifts.deleted_at IS NULL").
		Where("shift_signups.volunteer_id = ? AND shift_signups.status = ?", volunteerID, model.SignupConfirmed).
		Where("shift_signups.shift_id <> ?", excludeShiftID).
		Where("shifts.status <> ?", model.ShiftCancelled).
		Where("shifts.start_time < ? AND shifts.end_time > ?", end, start).
		Count(&n).Error
	return n > 0, err
}

func (r *signupRepo) Create(ctx context.Context, signup *model.ShiftSignup) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// SET expressions see the pre-update row, so the CASE compares the new count.
		result := tx.Model(&model.Shift{}).
			Where("shift_id = ? AND status = ? AND current_volunteers < max_volunteers", signup.ShiftID, model.ShiftOpen).
			Updates(map[string]interface{}{
				"current_volunteers": gorm.Expr("current_volunteers + 1"),
				"status": gorm.Expr("CASE WHEN current_volunteers + 1 >= max_volunteers THEN ? ELSE ? END",
					model.ShiftFull, model.ShiftOpen),
				"version": gorm.Expr("version + 1"),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return pkgerrors.ErrShiftFull
		}
		return translateDuplicate(tx.Create(signup).Error)
	})
}

func (r *signupRepo) Cancel(ctx context.Context, shiftID, volunteerID, cancelledBy string, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.ShiftSignup{}).
			Where("shift_id = ? AND volunteer_id = ? AND status = ?", shiftID, volunteerID, model.SignupConfirmed).
			Updates(map[string]interface{}{
				"status":       model.SignupCancelled,
				"cancelled_at": at,
				"cancelled_by": cancelledBy,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Model(&model.Shift{}).
			Where("shift_id = ? AND current_volunteers > 0", shiftID).
			Updates(map[string]interface{}{
				"current_volunteers": gorm.Expr("current_volunteers - 1"),
				"status": gorm.Expr("CASE WHEN status = ? THEN ? ELSE status END",
					model.ShiftFull, model.ShiftOpen),
				"version": gorm.Expr("version + 1"),
			}).Error
	})
}
