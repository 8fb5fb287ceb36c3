package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"volunteerhub/config"
	"volunteerhub/internal/dto"
	"volunteerhub/internal/repository"
)

// ── report errors ──

var (
	ErrExportGenerateFail = errors.New("failed to generate spreadsheet")
)

// ReportService admin reporting.
//
// Date ranges default to the start of the current month through now.
// Exports are returned as a buffer; the handler sets the download headers.
type ReportService interface {
	Dashboard(ctx context.Context) (*dto.DashboardResponse, error)
	VolunteerHours(ctx context.Context, req *dto.ReportRangeRequest) ([]dto.VolunteerHoursResponse, error)
	GroupHours(ctx context.Context, req *dto.ReportRangeRequest) ([]dto.GroupHoursResponse, error)
	ShiftFill(ctx context.Context, req *dto.ReportRangeRequest) ([]dto.ShiftFillResponse, error)
	// ExportVolunteerHours renders the volunteer hours report as .xlsx.
	ExportVolunteerHours(ctx context.Context, req *dto.ReportRangeRequest) (*bytes.Buffer, string, error)
}

type reportService struct {
	loc    *time.Location
	repo   *repository.Repository
	now    Clock
	logger *zap.Logger
}

// NewReportService creates a ReportService
func NewReportService(cfg *config.ShiftConfig, repo *repository.Repository, clock Clock, logger *zap.Logger) ReportService {
	return &reportService{loc: cfg.Location(), repo: repo, now: clock, logger: logger}
}

// ────────────────────── Dashboard ──────────────────────

func (s *reportService) Dashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	now := s.now()
	resp := &dto.DashboardResponse{}

	var err error
	if resp.ActiveVolunteers, err = s.repo.Report.CountActiveVolunteers(ctx); err != nil {
		return nil, s.fail("count active volunteers", err)
	}
	if resp.PendingApplications, err = s.repo.Report.CountPendingApplications(ctx); err != nil {
		return nil, s.fail("count pending applications", err)
	}
	if resp.UpcomingShifts, err = s.repo.Report.CountUpcomingShifts(ctx, now); err != nil {
		return nil, s.fail("count upcoming shifts", err)
	}
	if resp.VacantShifts, err = s.repo.Report.CountVacantShifts(ctx, now); err != nil {
		return nil, s.fail("count vacant shifts", err)
	}

	minutes, err := s.repo.Report.SumMinutes(ctx, startOfMonth(now, s.loc), now)
	if err != nil {
		return nil, s.fail("sum monthly minutes", err)
	}
	resp.HoursThisMonth = minutesToHours(minutes)

	return resp, nil
}

// ────────────────────── VolunteerHours / GroupHours ──────────────────────

func (s *reportService) VolunteerHours(ctx context.Context, req *dto.ReportRangeRequest) ([]dto.VolunteerHoursResponse, error) {
	from, to, err := s.resolveRange(&req.DateRangeRequest)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.Report.VolunteerHours(ctx, from, to, req.GroupID)
	if err != nil {
		return nil, s.fail("volunteer hours report", err)
	}

	result := make([]dto.VolunteerHoursResponse, 0, len(rows))
	for _, r := range rows {
		result = append(result, dto.VolunteerHoursResponse{
			VolunteerID:  r.VolunteerID,
			Name:         r.Name,
			Email:        r.Email,
			TotalHours:   minutesToHours(r.TotalMinutes),
			ShiftsWorked: r.ShiftsWorked,
		})
	}
	return result, nil
}

func (s *reportService) GroupHours(ctx context.Context, req *dto.ReportRangeRequest) ([]dto.GroupHoursResponse, error) {
	from, to, err := s.resolveRange(&req.DateRangeRequest)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.Report.GroupHours(ctx, from, to)
	if err != nil {
		return nil, s.fail("group hours report", err)
	}

	result := make([]dto.GroupHoursResponse, 0, len(rows))
	for _, r := range rows {
		result = append(result, dto.GroupHoursResponse{
			GroupID:     r.GroupID,
			Name:        r.Name,
			MemberCount: r.MemberCount,
			TotalHours:  minutesToHours(r.TotalMinutes),
		})
	}
	return result, nil
}

// ────────────────────── ShiftFill ──────────────────────

func (s *reportService) ShiftFill(ctx context.Context, req *dto.ReportRangeRequest) ([]dto.ShiftFillResponse, error) {
	from, to, err := s.resolveRange(&req.DateRangeRequest)
	if err != nil {
		return nil, err
	}

	shifts, err := s.repo.Report.ShiftFill(ctx, from, to, req.GroupID)
	if err != nil {
		return nil, s.fail("shift fill report", err)
	}

	result := make([]dto.ShiftFillResponse, 0, len(shifts))
	for _, sh := range shifts {
		rate := 0.0
		if sh.MaxVolunteers > 0 {
			rate = float64(sh.CurrentVolunteers*10000/sh.MaxVolunteers) / 10000
		}
		result = append(result, dto.ShiftFillResponse{
			ShiftID:           sh.ShiftID,
			Title:             sh.Title,
			StartTime:         formatTime(sh.StartTime.In(s.loc)),
			Status:            sh.Status,
			MaxVolunteers:     sh.MaxVolunteers,
			CurrentVolunteers: sh.CurrentVolunteers,
			FillRate:          rate,
		})
	}
	return result, nil
}

// ────────────────────── ExportVolunteerHours ──────────────────────
//
// Layout:
//   - row 1: title with the date range, merged across the table
//   - row 2: header
//   - row 3..n: one volunteer per row, highest hours first
//   - last row: totals

func (s *reportService) ExportVolunteerHours(ctx context.Context, req *dto.ReportRangeRequest) (*bytes.Buffer, string, error) {
	from, to, err := s.resolveRange(&req.DateRangeRequest)
	if err != nil {
		return nil, "", err
	}

	rows, err := s.VolunteerHours(ctx, req)
	if err != nil {
		return nil, "", err
	}

	fromLabel := from.Format(dateLayout)
	toLabel := to.Add(-time.Nanosecond).Format(dateLayout)

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Volunteer Hours"
	idx, _ := f.NewSheet(sheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheet, "A", "A", 28)
	f.SetColWidth(sheet, "B", "B", 32)
	f.SetColWidth(sheet, "C", "D", 14)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	f.SetCellValue(sheet, "A1", fmt.Sprintf("Volunteer hours %s to %s", fromLabel, toLabel))
	f.MergeCell(sheet, "A1", "D1")
	f.SetCellStyle(sheet, "A1", "A1", headerStyle)

	headers := []string{"Name", "Email", "Shifts", "Hours"}
	for i, h := range headers {
		f.SetCellValue(sheet, cell(colName(i), 2), h)
	}
	f.SetCellStyle(sheet, "A2", "D2", headerStyle)

	row := 3
	var totalHours float64
	var totalShifts int64
	for _, r := range rows {
		f.SetCellValue(sheet, cell("A", row), r.Name)
		f.SetCellValue(sheet, cell("B", row), r.Email)
		f.SetCellValue(sheet, cell("C", row), r.ShiftsWorked)
		f.SetCellValue(sheet, cell("D", row), r.TotalHours)
		totalHours += r.TotalHours
		totalShifts += r.ShiftsWorked
		row++
	}
	f.SetCellValue(sheet, cell("A", row), "Total")
	f.SetCellValue(sheet, cell("C", row), totalShifts)
	f.SetCellValue(sheet, cell("D", row), totalHours)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("failed to write spreadsheet", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("volunteer-hours_%s_%s.xlsx", fromLabel, toLabel)
	return buf, filename, nil
}

// ── helpers ──

// resolveRange applies the month-to-date default to missing bounds.
func (s *reportService) resolveRange(req *dto.DateRangeRequest) (time.Time, time.Time, error) {
	from, to, err := parseDateRange(req.From, req.To, s.loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	now := s.now()
	if from == nil {
		v := startOfMonth(now, s.loc)
		from = &v
	}
	if to == nil {
		v := now
		to = &v
	}
	if !from.Before(*to) {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}
	return from.In(s.loc), to.In(s.loc), nil
}

func (s *reportService) fail(what string, err error) error {
	s.logger.Error("report query failed", zap.String("query", what), zap.Error(err))
	return err
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
