package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bantay-barangay/backend/internal/backend"
	"github.com/bantay-barangay/backend/internal/logger"
	"github.com/bantay-barangay/backend/internal/models"
	"github.com/bantay-barangay/backend/internal/rawvalue"
)

var (
	ErrValidation           = errors.New("validation failed")
	ErrReportNotFound       = errors.New("report not found")
	ErrInvalidTransition    = errors.New("transition not allowed from current status")
	ErrTerminalStatus       = errors.New("report is already resolved or rejected")
	ErrEmptyResolutionNotes = errors.New("resolution notes are required")
)

const reportsPath = "reports"

// ReportService implements the report lifecycle: submission,
// status transitions and the read-side views the screens consume.
type ReportService struct {
	backend backend.Service
}

func NewReportService(b backend.Service) *ReportService {
	return &ReportService{backend: b}
}

// SubmitReportInput carries everything the capture screens collected.
// Coordinates arrive from the device or not at all; the service does
// no geolocation of its own.
type SubmitReportInput struct {
	Description     string
	ImageData       string
	Latitude        *float64
	Longitude       *float64
	LocationAddress string
}

// Reporter is the denormalized snapshot of the submitting user taken
// at submission time.
type Reporter struct {
	UserID      string
	DisplayName string
	Email       string
}

// ReporterFor snapshots a user profile for submission.
func ReporterFor(user *models.User) Reporter {
	return Reporter{
		UserID:      user.UserID,
		DisplayName: user.FullName(),
		Email:       user.Email,
	}
}

// Submit validates the input, then creates and persists a new Pending
// report for the given resident. Validation failures happen before any
// backend call.
func (s *ReportService) Submit(ctx context.Context, reporter Reporter, in SubmitReportInput) (*models.Report, error) {
	if strings.TrimSpace(in.Description) == "" {
		return nil, fmt.Errorf("%w: a description of the issue is required", ErrValidation)
	}
	if in.ImageData == "" {
		return nil, fmt.Errorf("%w: a photo of the issue is required", ErrValidation)
	}
	if in.Latitude == nil || in.Longitude == nil {
		return nil, fmt.Errorf("%w: the current location must be captured", ErrValidation)
	}

	report := &models.Report{
		ReportID:        uuid.NewString(),
		Description:     in.Description,
		ImageData:       in.ImageData,
		Latitude:        in.Latitude,
		Longitude:       in.Longitude,
		LocationAddress: in.LocationAddress,
		DateReported:    time.Now().UTC().Format(time.RFC3339Nano),
		Status:          models.StatusPending,
		ReportedBy:      reporter.UserID,
		ReporterName:    reporter.DisplayName,
		ReporterEmail:   reporter.Email,
	}

	if err := s.save(ctx, report); err != nil {
		return nil, err
	}

	logger.WithReport(report.ReportID).WithField("reported_by", report.ReportedBy).Info("Report submitted")
	return report, nil
}

// Get loads a single report by id.
func (s *ReportService) Get(ctx context.Context, reportID string) (*models.Report, error) {
	value, err := s.backend.ReadAt(ctx, reportsPath+"/"+reportID)
	if err != nil {
		return nil, err
	}
	report := rawvalue.Decode[models.Report](value)
	if report == nil {
		return nil, ErrReportNotFound
	}
	if report.ReportID == "" {
		report.ReportID = reportID
	}
	return report, nil
}

// MarkInProgress moves a Pending report to InProgress.
func (s *ReportService) MarkInProgress(ctx context.Context, reportID string) (*models.Report, error) {
	report, err := s.Get(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.Status.IsTerminal() {
		return nil, ErrTerminalStatus
	}
	if report.Status != models.StatusPending {
		return nil, ErrInvalidTransition
	}

	report.Status = models.StatusInProgress
	if err := s.save(ctx, report); err != nil {
		return nil, err
	}

	logger.WithReport(reportID).Info("Report marked in progress")
	return report, nil
}

// MarkResolved moves a Pending or InProgress report to Resolved,
// recording who resolved it, when, and the resolution notes.
func (s *ReportService) MarkResolved(ctx context.Context, reportID, resolvedBy, notes string) (*models.Report, error) {
	if strings.TrimSpace(notes) == "" {
		return nil, ErrEmptyResolutionNotes
	}

	report, err := s.Get(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.Status.IsTerminal() {
		return nil, ErrTerminalStatus
	}

	report.Status = models.StatusResolved
	report.ResolvedBy = resolvedBy
	report.DateResolved = time.Now().UTC().Format(time.RFC3339Nano)
	report.ResolutionNotes = notes
	if err := s.save(ctx, report); err != nil {
		return nil, err
	}

	logger.WithReport(reportID).WithField("resolved_by", resolvedBy).Info("Report resolved")
	return report, nil
}

// Reject moves a Pending or InProgress report to Rejected. Resolution
// fields are left untouched.
func (s *ReportService) Reject(ctx context.Context, reportID string) (*models.Report, error) {
	report, err := s.Get(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.Status.IsTerminal() {
		return nil, ErrTerminalStatus
	}

	report.Status = models.StatusRejected
	if err := s.save(ctx, report); err != nil {
		return nil, err
	}

	logger.WithReport(reportID).Info("Report rejected")
	return report, nil
}

// ListAll returns every report, newest first.
func (s *ReportService) ListAll(ctx context.Context) ([]models.Report, error) {
	value, err := s.backend.ReadAt(ctx, reportsPath)
	if err != nil {
		return nil, err
	}

	collection, ok := value.(rawvalue.Map)
	if !ok {
		return []models.Report{}, nil
	}

	reports := make([]models.Report, 0, len(collection))
	for id, child := range collection {
		report := rawvalue.Decode[models.Report](child)
		if report == nil {
			logger.WithReport(id).Warn("Skipping undecodable report record")
			continue
		}
		if report.ReportID == "" {
			report.ReportID = id
		}
		reports = append(reports, *report)
	}

	SortByDateReported(reports)
	return reports, nil
}

// ListByReporter returns the reports submitted by one user, newest
// first.
func (s *ReportService) ListByReporter(ctx context.Context, userID string) ([]models.Report, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return FilterByReporter(all, userID), nil
}

// save persists the whole record at its identity path. Transitions
// overwrite the full report; there is no partial patch and no
// concurrency guard, so the last write wins.
func (s *ReportService) save(ctx context.Context, report *models.Report) error {
	value, err := rawvalue.Encode(report)
	if err != nil {
		return err
	}
	return s.backend.WriteAt(ctx, reportsPath+"/"+report.ReportID, value)
}

// FilterByReporter is the ownership filter behind the "my reports"
// view: reports whose reportedBy exactly equals the user id.
func FilterByReporter(reports []models.Report, userID string) []models.Report {
	out := make([]models.Report, 0, len(reports))
	for _, r := range reports {
		if r.ReportedBy == userID {
			out = append(out, r)
		}
	}
	return out
}

// FilterByStatus keeps the reports in one status.
func FilterByStatus(reports []models.Report, status models.ReportStatus) []models.Report {
	out := make([]models.Report, 0, len(reports))
	for _, r := range reports {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out
}

// SortByDateReported orders reports newest first. Records with a
// missing or unparseable dateReported sort as undated, after every
// dated record.
func SortByDateReported(reports []models.Report) {
	sort.SliceStable(reports, func(i, j int) bool {
		ti, iOK := reports[i].ReportedAt()
		tj, jOK := reports[j].ReportedAt()
		if iOK && jOK {
			return ti.After(tj)
		}
		return iOK && !jOK
	})
}

// StatusCounts tallies reports per status for the official dashboard.
func StatusCounts(reports []models.Report) map[models.ReportStatus]int {
	counts := map[models.ReportStatus]int{
		models.StatusPending:    0,
		models.StatusInProgress: 0,
		models.StatusResolved:   0,
		models.StatusRejected:   0,
	}
	for _, r := range reports {
		counts[r.Status]++
	}
	return counts
}
