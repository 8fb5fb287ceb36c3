package repository

import (
	"time"

	"gorm.io/gorm"

	"volunteerhub/internal/model"
)

// ShiftFilter list filters shared by shift and signup queries. Columns are
// qualified with the shifts table so the filter also applies to joins.
type ShiftFilter struct {
	Bucket  string
	Now     time.Time
	Query   string
	GroupID string
	Status  string
	From    *time.Time // start_time >= From
	To      *time.Time // start_time < To
	Offset  int
	Limit   int
}

func (f ShiftFilter) apply(db *gorm.DB) *gorm.DB {
	switch f.Bucket {
	case model.BucketUpcoming:
		db = db.Where("shifts.start_time > ? AND shifts.status <> ?", f.Now, model.ShiftCancelled)
	case model.BucketActive:
		db = db.Where("shifts.start_time <= ? AND shifts.end_time >= ? AND shifts.status <> ?", f.Now, f.Now, model.ShiftCancelled)
	case model.BucketPast:
		db = db.Where("shifts.end_time < ?", f.Now)
	case model.BucketVacant:
		db = db.Where("shifts.start_time > ? AND shifts.status = ? AND shifts.current_volunteers < shifts.max_volunteers",
			f.Now, model.ShiftOpen)
	}
	if f.Query != "" {
		like := "%" + f.Query + "%"
		db = db.Where("(shifts.title ILIKE ? OR shifts.description ILIKE ? OR shifts.location ILIKE ?)", like, like, like)
	}
	if f.GroupID != "" {
		db = db.Where("shifts.group_id = ?", f.GroupID)
	}
	if f.Status != "" {
		db = db.Where("shifts.status = ?", f.Status)
	}
	if f.From != nil {
		db = db.Where("shifts.start_time >= ?", *f.From)
	}
	if f.To != nil {
		db = db.Where("shifts.start_time < ?", *f.To)
	}
	return db
}

// order past shifts read most recent first, everything else chronologically
func (f ShiftFilter) order() string {
	if f.Bucket == model.BucketPast {
		return "shifts.start_time DESC"
	}
	return "shifts.start_time ASC"
}
