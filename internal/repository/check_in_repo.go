package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"volunteerhub/internal/model"
)

// CheckInRepository check-in data access
type CheckInRepository interface {
	Create(ctx context.Context, checkIn *model.CheckIn) error
	GetByID(ctx context.Context, id string) (*model.CheckIn, error)
	GetByShiftAndVolunteer(ctx context.Context, shiftID, volunteerID string) (*model.CheckIn, error)
	Update(ctx context.Context, checkIn *model.CheckIn) error
	ListByVolunteer(ctx context.Context, volunteerID string, from, to *time.Time, offset, limit int) ([]model.CheckIn, int64, error)
	ListByShift(ctx context.Context, shiftID string) ([]model.CheckIn, error)
	// SummarizeVolunteer total closed minutes and number of closed check-ins.
	SummarizeVolunteer(ctx context.Context, volunteerID string, from, to *time.Time) (minutes int64, shifts int64, err error)
}

type checkInRepo struct {
	db *gorm.DB
}

// NewCheckInRepo creates a CheckInRepository
func NewCheckInRepo(db *gorm.DB) CheckInRepository {
	return &checkInRepo{db: db}
}

func (r *checkInRepo) Create(ctx context.Context, checkIn *model.CheckIn) error {
	return translateDuplicate(r.db.WithContext(ctx).Create(checkIn).Error)
}

func (r *checkInRepo) GetByID(ctx context.Context, id string) (*model.CheckIn, error) {
	var checkIn model.CheckIn
	err := r.db.WithContext(ctx).
		Preload("Shift").Preload("Volunteer").
		Where("check_in_id = ?", id).
		First(&checkIn).Error
	if err != nil {
		return nil, err
	}
	return &checkIn, nil
}

func (r *checkInRepo) GetByShiftAndVolunteer(ctx context.Context, shiftID, volunteerID string) (*model.CheckIn, error) {
	var checkIn model.CheckIn
	err := r.db.WithContext(ctx).
		Preload("Shift").
		Where("shift_id = ? AND volunteer_id = ?", shiftID, volunteerID).
		First(&checkIn).Error
	if err != nil {
		return nil, err
	}
	return &checkIn, nil
}

func (r *checkInRepo) Update(ctx context.Context, checkIn *model.CheckIn) error {
	return r.db.WithContext(ctx).
		Model(&model.CheckIn{}).
		Where("check_in_id = ?", checkIn.CheckInID).
		Updates(map[string]interface{}{
			"check_in_time":    checkIn.CheckInTime,
			"check_out_time":   checkIn.CheckOutTime,
			"duration_minutes": checkIn.DurationMinutes,
			"notes":            checkIn.Notes,
			"updated_by":       checkIn.UpdatedBy,
		}).Error
}

func (r *checkInRepo) volunteerScope(ctx context.Context, volunteerID string, from, to *time.Time) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&model.CheckIn{}).
		Where("volunteer_id = ?", volunteerID)
	if from != nil {
		db = db.Where("check_in_time >= ?", *from)
	}
	if to != nil {
		db = db.Where("check_in_time < ?", *to)
	}
	return db
}

func (r *checkInRepo) ListByVolunteer(ctx context.Context, volunteerID string, from, to *time.Time, offset, limit int) ([]model.CheckIn, int64, error) {
	var checkIns []model.CheckIn
	var total int64

	db := r.volunteerScope(ctx, volunteerID, from, to)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("Shift").
		Offset(offset).Limit(limit).
		Order("check_in_time DESC").
		Find(&checkIns).Error
	return checkIns, total, err
}

func (r *checkInRepo) ListByShift(ctx context.Context, shiftID string) ([]model.CheckIn, error) {
	var checkIns []model.CheckIn
	err := r.db.WithContext(ctx).
		Preload("Volunteer").
		Where("shift_id = ?", shiftID).
		Order("check_in_time ASC").
		Find(&checkIns).Error
	return checkIns, err
}

func (r *checkInRepo) SummarizeVolunteer(ctx context.Context, volunteerID string, from, to *time.Time) (int64, int64, error) {
	var row struct {
		Minutes int64
		Shifts  int64
	}
	err := r.volunteerScope(ctx, volunteerID, from, to).
		Where("duration_minutes IS NOT NULL").
		Select("COALESCE(SUM(duration_minutes), 0) AS minutes, COUNT(*) AS shifts").
		Scan(&row).Error
	return row.Minutes, row.Shifts, err
}
