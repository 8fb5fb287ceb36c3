package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"volunteerhub/internal/model"
)

// VolunteerHoursRow aggregated hours per volunteer
type VolunteerHoursRow struct {
	VolunteerID  string
	Name         string
	Email        string
	TotalMinutes int64
	ShiftsWorked int64
}

// GroupHoursRow aggregated hours per group
type GroupHoursRow struct {
	GroupID      string
	Name         string
	MemberCount  int64
	TotalMinutes int64
}

// ReportRepository read-only aggregate queries for admin reporting.
// All ranges are half-open: [from, to).
type ReportRepository interface {
	CountActiveVolunteers(ctx context.Context) (int64, error)
	CountPendingApplications(ctx context.Context) (int64, error)
	CountUpcomingShifts(ctx context.Context, now time.Time) (int64, error)
	CountVacantShifts(ctx context.Context, now time.Time) (int64, error)
	SumMinutes(ctx context.Context, from, to time.Time) (int64, error)
	VolunteerHours(ctx context.Context, from, to time.Time, groupID string) ([]VolunteerHoursRow, error)
	GroupHours(ctx context.Context, from, to time.Time) ([]GroupHoursRow, error)
	ShiftFill(ctx context.Context, from, to time.Time, groupID string) ([]model.Shift, error)
}

type reportRepo struct {
	db *gorm.DB
}

// NewReportRepo creates a ReportRepository
func NewReportRepo(db *gorm.DB) ReportRepository {
	return &reportRepo{db: db}
}

func (r *reportRepo) CountActiveVolunteers(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("is_active = ? AND role IN ?", true, []string{model.RoleVolunteer, model.RoleGroupAdmin}).
		Count(&n).Error
	return n, err
}

func (r *reportRepo) CountPendingApplications(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Application{}).
		Where("status = ?", model.ApplicationPending).
		Count(&n).Error
	return n, err
}

func (r *reportRepo) CountUpcomingShifts(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := ShiftFilter{Bucket: model.BucketUpcoming, Now: now}.
		apply(r.db.WithContext(ctx).Model(&model.Shift{})).
		Count(&n).Error
	return n, err
}

func (r *reportRepo) CountVacantShifts(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := ShiftFilter{Bucket: model.BucketVacant, Now: now}.
		apply(r.db.WithContext(ctx).Model(&model.Shift{})).
		Count(&n).Error
	return n, err
}

func (r *reportRepo) SumMinutes(ctx context.Context, from, to time.Time) (int64, error) {
	var minutes int64
	err := r.db.WithContext(ctx).Model(&model.CheckIn{}).
		Where("check_in_time >= ? AND check_in_time < ?", from, to).
		Select("COALESCE(SUM(duration_minutes), 0)").
		Scan(&minutes).Error
	return minutes, err
}

func (r *reportRepo) VolunteerHours(ctx context.Context, from, to time.Time, groupID string) ([]VolunteerHoursRow, error) {
	var rows []VolunteerHoursRow

	db := r.db.WithContext(ctx).Table("check_ins AS c").
		Select(`u.user_id AS volunteer_id, u.name, u.email,
			COALESCE(SUM(c.duration_minutes), 0) AS total_minutes,
			COUNT(c.check_in_id) AS shifts_worked`).
		Joins("JOIN users u ON u.user_id = c.volunteer_id AND u.deleted_at IS NULL").
		Where("c.check_in_time >= ? AND c.check_in_time < ? AND c.duration_minutes IS NOT NULL", from, to)
	if groupID != "" {
		db = db.Joins("JOIN shifts s ON s.shift_id = c.shift_id").
			Where("s.group_id = ?", groupID)
	}

	err := db.Group("u.user_id, u.name, u.email").
		Order("total_minutes DESC, u.name ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) GroupHours(ctx context.Context, from, to time.Time) ([]GroupHoursRow, error) {
	var rows []GroupHoursRow
	// hours belong to the group's current members, whichever shift they were earned on
	err := r.db.WithContext(ctx).Table("groups AS g").
		Select(`g.group_id, g.name,
			COUNT(DISTINCT gm.user_id) AS member_count,
			COALESCE(SUM(c.duration_minutes), 0) AS total_minutes`).
		Joins("LEFT JOIN group_members gm ON gm.group_id = g.group_id").
		Joins("LEFT JOIN check_ins c ON c.volunteer_id = gm.user_id AND c.check_in_time >= ? AND c.check_in_time < ?", from, to).
		Where("g.deleted_at IS NULL").
		Group("g.group_id, g.name").
		Order("total_minutes DESC, g.name ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) ShiftFill(ctx context.Context, from, to time.Time, groupID string) ([]model.Shift, error) {
	var shifts []model.Shift
	err := ShiftFilter{From: &from, To: &to, GroupID: groupID}.
		apply(r.db.WithContext(ctx).Model(&model.Shift{})).
		Where("shifts.status <> ?", model.ShiftCancelled).
		Order("shifts.start_time ASC").
		Find(&shifts).Error
	return shifts, err
}
