package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseStatusOrDefault(t *testing.T) {
	tests := []struct {
		name     string
		raw      interface{}
		expected ReportStatus
	}{
		{"canonical pending", "Pending", StatusPending},
		{"canonical in progress", "InProgress", StatusInProgress},
		{"canonical resolved", "Resolved", StatusResolved},
		{"canonical rejected", "Rejected", StatusRejected},
		{"lowercase", "resolved", StatusResolved},
		{"uppercase", "REJECTED", StatusRejected},
		{"padded", "  InProgress  ", StatusInProgress},
		{"garbage string", "totally-unknown", StatusPending},
		{"empty string", "", StatusPending},
		{"nil", nil, StatusPending},
		{"number", 5, StatusPending},
		{"float", 1.5, StatusPending},
		{"bool", true, StatusPending},
	}

	for _, test := range tests {
		if got := ParseStatusOrDefault(test.raw); got != test.expected {
			t.Errorf("%s: expected %s, got %s", test.name, test.expected, got)
		}
	}
}

func TestStatusDecodeTotality(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		expected ReportStatus
	}{
		{"valid string", `{"status":"Resolved"}`, StatusResolved},
		{"case insensitive", `{"status":"inprogress"}`, StatusInProgress},
		{"garbage", `{"status":"whatever"}`, StatusPending},
		{"null", `{"status":null}`, StatusPending},
		{"number", `{"status":2}`, StatusPending},
		{"missing", `{}`, StatusPending},
	}

	for _, test := range tests {
		var report Report
		if err := json.Unmarshal([]byte(test.payload), &report); err != nil {
			t.Fatalf("%s: unexpected error: %v", test.name, err)
		}
		report.Normalize()
		if report.Status != test.expected {
			t.Errorf("%s: expected %s, got %s", test.name, test.expected, report.Status)
		}
	}
}

func TestStatusEncodeCanonical(t *testing.T) {
	// Whatever form a status was read in, it is written back out in
	// the canonical spelling and decodes to the same value.
	for _, input := range []string{`"Pending"`, `"pending"`, `"RESOLVED"`, `"garbage"`, `null`, `7`} {
		var status ReportStatus
		if err := json.Unmarshal([]byte(input), &status); err != nil {
			t.Fatalf("decode %s: %v", input, err)
		}

		encoded, err := json.Marshal(status)
		if err != nil {
			t.Fatalf("encode %s: %v", input, err)
		}

		var roundTripped ReportStatus
		if err := json.Unmarshal(encoded, &roundTripped); err != nil {
			t.Fatalf("re-decode %s: %v", encoded, err)
		}
		if roundTripped != status {
			t.Errorf("input %s: round trip changed %s to %s", input, status, roundTripped)
		}

		spelling := strings.Trim(string(encoded), `"`)
		switch spelling {
		case "Pending", "InProgress", "Resolved", "Rejected":
		default:
			t.Errorf("input %s: encoded form %s is not canonical", input, encoded)
		}
	}
}

func TestStatusIsTerminal(t *testing.T) {
	if StatusPending.IsTerminal() || StatusInProgress.IsTerminal() {
		t.Error("Pending and InProgress must not be terminal")
	}
	if !StatusResolved.IsTerminal() || !StatusRejected.IsTerminal() {
		t.Error("Resolved and Rejected must be terminal")
	}
}

func TestReportedAt(t *testing.T) {
	report := Report{DateReported: "2024-03-15T08:30:00Z"}
	if _, ok := report.ReportedAt(); !ok {
		t.Error("expected RFC3339 date to parse")
	}

	report.DateReported = "not a date"
	if _, ok := report.ReportedAt(); ok {
		t.Error("expected unparseable date to report as undated")
	}

	report.DateReported = ""
	if _, ok := report.ReportedAt(); ok {
		t.Error("expected empty date to report as undated")
	}
}

func TestShortDescription(t *testing.T) {
	report := Report{Description: strings.Repeat("x", 150)}
	if got := report.ShortDescription(); len(got) != 103 || !strings.HasSuffix(got, "...") {
		t.Errorf("expected truncated description, got %q", got)
	}

	report.Description = "broken streetlight"
	if got := report.ShortDescription(); got != "broken streetlight" {
		t.Errorf("expected short description unchanged, got %q", got)
	}
}
