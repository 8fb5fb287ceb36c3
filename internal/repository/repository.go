package repository

import (
	"errors"

	"gorm.io/gorm"

	pkgerrors "volunteerhub/pkg/errors"
)

// Repository aggregate entry point for all repositories
type Repository struct {
	User        UserRepository
	Application ApplicationRepository
	Shift       ShiftRepository
	Signup      SignupRepository
	Group       GroupRepository
	CheckIn     CheckInRepository
	Report      ReportRepository
}

// NewRepository builds the Repository aggregate
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:        NewUserRepo(db),
		Application: NewApplicationRepo(db),
		Shift:       NewShiftRepo(db),
		Signup:      NewSignupRepo(db),
		Group:       NewGroupRepo(db),
		CheckIn:     NewCheckInRepo(db),
		Report:      NewReportRepo(db),
	}
}

// translateDuplicate maps gorm's translated unique violation onto ErrDuplicate.
func translateDuplicate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return pkgerrors.ErrDuplicate
	}
	return err
}
