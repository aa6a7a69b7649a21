package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bantay-barangay/backend/internal/backend"
	"github.com/bantay-barangay/backend/internal/models"
)

func newTestBackend() backend.Service {
	store := backend.NewMemoryStore()
	return backend.NewClient(store, store, []byte("test-secret"), time.Hour)
}

func floatPtr(v float64) *float64 { return &v }

var testReporter = Reporter{
	UserID:      "user-1",
	DisplayName: "Juan Dela Cruz",
	Email:       "juan@example.com",
}

func validInput() SubmitReportInput {
	return SubmitReportInput{
		Description:     "Broken streetlight on Mabini St.",
		ImageData:       "base64-image-bytes",
		Latitude:        floatPtr(14.5995),
		Longitude:       floatPtr(120.9842),
		LocationAddress: "Mabini St., Barangay 123",
	}
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SubmitReportInput)
	}{
		{"missing description", func(in *SubmitReportInput) { in.Description = "" }},
		{"blank description", func(in *SubmitReportInput) { in.Description = "   " }},
		{"missing image", func(in *SubmitReportInput) { in.ImageData = "" }},
		{"missing latitude", func(in *SubmitReportInput) { in.Latitude = nil }},
		{"missing longitude", func(in *SubmitReportInput) { in.Longitude = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			svc := NewReportService(newTestBackend())

			in := validInput()
			tt.mutate(&in)

			if _, err := svc.Submit(ctx, testReporter, in); !errors.Is(err, ErrValidation) {
				t.Fatalf("Submit() error = %v, want ErrValidation", err)
			}

			// A rejected submission must leave the store untouched.
			all, err := svc.ListAll(ctx)
			if err != nil {
				t.Fatalf("ListAll() error = %v", err)
			}
			if len(all) != 0 {
				t.Errorf("ListAll() returned %d reports after failed submit, want 0", len(all))
			}
		})
	}
}

func TestSubmitPersistsPendingReport(t *testing.T) {
	ctx := context.Background()
	svc := NewReportService(newTestBackend())

	report, err := svc.Submit(ctx, testReporter, validInput())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if report.ReportID == "" {
		t.Error("Submit() returned report without an id")
	}
	if report.Status != models.StatusPending {
		t.Errorf("Submit() status = %q, want %q", report.Status, models.StatusPending)
	}
	if report.ReportedBy != testReporter.UserID {
		t.Errorf("Submit() reportedBy = %q, want %q", report.ReportedBy, testReporter.UserID)
	}
	if report.ReporterName != testReporter.DisplayName {
		t.Errorf("Submit() reporterName = %q, want %q", report.ReporterName, testReporter.DisplayName)
	}
	if _, ok := report.ReportedAt(); !ok {
		t.Errorf("Submit() dateReported = %q is not parseable", report.DateReported)
	}

	// Round trip: the persisted record is fetchable and owned.
	got, err := svc.Get(ctx, report.ReportID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Description != report.Description {
		t.Errorf("Get() description = %q, want %q", got.Description, report.Description)
	}
	mine, err := svc.ListByReporter(ctx, testReporter.UserID)
	if err != nil {
		t.Fatalf("ListByReporter() error = %v", err)
	}
	if len(mine) != 1 || mine[0].ReportID != report.ReportID {
		t.Errorf("ListByReporter() = %v, want the submitted report", mine)
	}
}

func TestGetUnknownReport(t *testing.T) {
	svc := NewReportService(newTestBackend())
	if _, err := svc.Get(context.Background(), "no-such-report"); !errors.Is(err, ErrReportNotFound) {
		t.Fatalf("Get() error = %v, want ErrReportNotFound", err)
	}
}

func TestStatusTransitions(t *testing.T) {
	ctx := context.Background()

	submit := func(t *testing.T, svc *ReportService) string {
		t.Helper()
		report, err := svc.Submit(ctx, testReporter, validInput())
		if err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
		return report.ReportID
	}

	t.Run("pending to in progress", func(t *testing.T) {
		svc := NewReportService(newTestBackend())
		id := submit(t, svc)

		report, err := svc.MarkInProgress(ctx, id)
		if err != nil {
			t.Fatalf("MarkInProgress() error = %v", err)
		}
		if report.Status != models.StatusInProgress {
			t.Errorf("status = %q, want %q", report.Status, models.StatusInProgress)
		}
	})

	t.Run("in progress to in progress is invalid", func(t *testing.T) {
		svc := NewReportService(newTestBackend())
		id := submit(t, svc)

		if _, err := svc.MarkInProgress(ctx, id); err != nil {
			t.Fatalf("MarkInProgress() error = %v", err)
		}
		if _, err := svc.MarkInProgress(ctx, id); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("second MarkInProgress() error = %v, want ErrInvalidTransition", err)
		}
	})

	t.Run("pending to resolved", func(t *testing.T) {
		svc := NewReportService(newTestBackend())
		id := submit(t, svc)

		report, err := svc.MarkResolved(ctx, id, "official-1", "Replaced the bulb.")
		if err != nil {
			t.Fatalf("MarkResolved() error = %v", err)
		}
		if report.Status != models.StatusResolved {
			t.Errorf("status = %q, want %q", report.Status, models.StatusResolved)
		}
		if report.ResolvedBy != "official-1" {
			t.Errorf("resolvedBy = %q, want official-1", report.ResolvedBy)
		}
		if report.ResolutionNotes != "Replaced the bulb." {
			t.Errorf("resolutionNotes = %q", report.ResolutionNotes)
		}
		if _, ok := report.ResolvedAt(); !ok {
			t.Errorf("dateResolved = %q is not parseable", report.DateResolved)
		}
	})

	t.Run("in progress to resolved", func(t *testing.T) {
		svc := NewReportService(newTestBackend())
		id := submit(t, svc)

		if _, err := svc.MarkInProgress(ctx, id); err != nil {
			t.Fatalf("MarkInProgress() error = %v", err)
		}
		if _, err := svc.MarkResolved(ctx, id, "official-1", "Fixed."); err != nil {
			t.Fatalf("MarkResolved() error = %v", err)
		}
	})

	t.Run("resolve without notes", func(t *testing.T) {
		svc := NewReportService(newTestBackend())
		id := submit(t, svc)

		if _, err := svc.MarkResolved(ctx, id, "official-1", "   "); !errors.Is(err, ErrEmptyResolutionNotes) {
			t.Fatalf("MarkResolved() error = %v, want ErrEmptyResolutionNotes", err)
		}
		// The report must still be Pending.
		report, err := svc.Get(ctx, id)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if report.Status != models.StatusPending {
			t.Errorf("status after failed resolve = %q, want Pending", report.Status)
		}
	})

	t.Run("reject from pending and in progress", func(t *testing.T) {
		svc := NewReportService(newTestBackend())
		first := submit(t, svc)
		second := submit(t, svc)

		if _, err := svc.Reject(ctx, first); err != nil {
			t.Fatalf("Reject() error = %v", err)
		}
		if _, err := svc.MarkInProgress(ctx, second); err != nil {
			t.Fatalf("MarkInProgress() error = %v", err)
		}
		if _, err := svc.Reject(ctx, second); err != nil {
			t.Fatalf("Reject() error = %v", err)
		}
	})

	t.Run("terminal reports stay terminal", func(t *testing.T) {
		svc := NewReportService(newTestBackend())
		resolved := submit(t, svc)
		rejected := submit(t, svc)

		if _, err := svc.MarkResolved(ctx, resolved, "official-1", "Done."); err != nil {
			t.Fatalf("MarkResolved() error = %v", err)
		}
		if _, err := svc.Reject(ctx, rejected); err != nil {
			t.Fatalf("Reject() error = %v", err)
		}

		for _, id := range []string{resolved, rejected} {
			if _, err := svc.MarkInProgress(ctx, id); !errors.Is(err, ErrTerminalStatus) {
				t.Errorf("MarkInProgress(%s) error = %v, want ErrTerminalStatus", id, err)
			}
			if _, err := svc.MarkResolved(ctx, id, "official-1", "again"); !errors.Is(err, ErrTerminalStatus) {
				t.Errorf("MarkResolved(%s) error = %v, want ErrTerminalStatus", id, err)
			}
			if _, err := svc.Reject(ctx, id); !errors.Is(err, ErrTerminalStatus) {
				t.Errorf("Reject(%s) error = %v, want ErrTerminalStatus", id, err)
			}
		}
	})
}

func TestFilterByReporter(t *testing.T) {
	reports := []models.Report{
		{ReportID: "a", ReportedBy: "user-1"},
		{ReportID: "b", ReportedBy: "user-2"},
		{ReportID: "c", ReportedBy: "user-1"},
		{ReportID: "d", ReportedBy: ""},
	}

	mine := FilterByReporter(reports, "user-1")
	if len(mine) != 2 {
		t.Fatalf("FilterByReporter() returned %d reports, want 2", len(mine))
	}
	for _, r := range mine {
		if r.ReportedBy != "user-1" {
			t.Errorf("FilterByReporter() kept report %s owned by %q", r.ReportID, r.ReportedBy)
		}
	}

	if got := FilterByReporter(reports, "user-3"); len(got) != 0 {
		t.Errorf("FilterByReporter() for unknown user returned %d reports, want 0", len(got))
	}
}

func TestFilterByStatus(t *testing.T) {
	reports := []models.Report{
		{ReportID: "a", Status: models.StatusPending},
		{ReportID: "b", Status: models.StatusResolved},
		{ReportID: "c", Status: models.StatusPending},
	}

	pending := FilterByStatus(reports, models.StatusPending)
	if len(pending) != 2 {
		t.Errorf("FilterByStatus(Pending) returned %d, want 2", len(pending))
	}
	if got := FilterByStatus(reports, models.StatusRejected); len(got) != 0 {
		t.Errorf("FilterByStatus(Rejected) returned %d, want 0", len(got))
	}
}

func TestSortByDateReported(t *testing.T) {
	reports := []models.Report{
		{ReportID: "old", DateReported: "2025-01-01T08:00:00Z"},
		{ReportID: "undated", DateReported: "not a timestamp"},
		{ReportID: "new", DateReported: "2025-06-15T12:30:00Z"},
		{ReportID: "missing"},
	}

	SortByDateReported(reports)

	want := []string{"new", "old", "undated", "missing"}
	for i, id := range want {
		if reports[i].ReportID != id {
			t.Errorf("reports[%d] = %s, want %s", i, reports[i].ReportID, id)
		}
	}
}

func TestStatusCounts(t *testing.T) {
	counts := StatusCounts([]models.Report{
		{Status: models.StatusPending},
		{Status: models.StatusPending},
		{Status: models.StatusResolved},
	})

	if counts[models.StatusPending] != 2 {
		t.Errorf("pending = %d, want 2", counts[models.StatusPending])
	}
	if counts[models.StatusResolved] != 1 {
		t.Errorf("resolved = %d, want 1", counts[models.StatusResolved])
	}
	// Every status is present even at zero, so the dashboard can render
	// all four tiles without nil checks.
	for _, status := range []models.ReportStatus{models.StatusInProgress, models.StatusRejected} {
		if count, ok := counts[status]; !ok || count != 0 {
			t.Errorf("counts[%s] = %d, %v; want 0, true", status, count, ok)
		}
	}
}
