package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

type ReportStatus string

const (
	StatusPending    ReportStatus = "Pending"
	StatusInProgress ReportStatus = "InProgress"
	StatusResolved   ReportStatus = "Resolved"
	StatusRejected   ReportStatus = "Rejected"
)

// ParseStatusOrDefault maps a raw stored value onto the status
// enumeration. Anything that is not one of the four canonical
// spellings (case-insensitive) resolves to Pending; stored records
// predating the status field must still decode.
func ParseStatusOrDefault(raw interface{}) ReportStatus {
	s, ok := raw.(string)
	if !ok {
		return StatusPending
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return StatusPending
	case "inprogress":
		return StatusInProgress
	case "resolved":
		return StatusResolved
	case "rejected":
		return StatusRejected
	}
	return StatusPending
}

// IsTerminal reports whether no further transition is allowed out of
// the status.
func (s ReportStatus) IsTerminal() bool {
	return s == StatusResolved || s == StatusRejected
}

func (s ReportStatus) String() string {
	return string(s)
}

// UnmarshalJSON never fails; undecodable input defaults to Pending.
func (s *ReportStatus) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		*s = StatusPending
		return nil
	}
	*s = ParseStatusOrDefault(raw)
	return nil
}

// MarshalJSON always writes the canonical spelling.
func (s ReportStatus) MarshalJSON() ([]byte, error) {
	out := s
	if out == "" {
		out = StatusPending
	}
	return json.Marshal(string(out))
}

// Report is a single submitted civic-issue record. Coordinates are
// pointers because reports created before geotagging carry none.
type Report struct {
	ReportID        string       `json:"reportId"`
	Description     string       `json:"description"`
	ImageData       string       `json:"imageData"`
	Latitude        *float64     `json:"latitude,omitempty"`
	Longitude       *float64     `json:"longitude,omitempty"`
	LocationAddress string       `json:"locationAddress,omitempty"`
	DateReported    string       `json:"dateReported"`
	Status          ReportStatus `json:"status"`
	ReportedBy      string       `json:"reportedBy"`
	ReporterName    string       `json:"reporterName"`
	ReporterEmail   string       `json:"reporterEmail"`
	ResolvedBy      string       `json:"resolvedBy,omitempty"`
	DateResolved    string       `json:"dateResolved,omitempty"`
	ResolutionNotes string       `json:"resolutionNotes,omitempty"`
}

// Normalize fills defaults for fields that were absent in the stored
// record. Called by the converter after decoding.
func (r *Report) Normalize() {
	if r.Status == "" {
		r.Status = StatusPending
	}
}

// ReportedAt parses the creation timestamp. The second return is
// false for records whose dateReported is missing or unparseable;
// those sort as undated.
func (r *Report) ReportedAt() (time.Time, bool) {
	return parseTimestamp(r.DateReported)
}

// ResolvedAt parses the resolution timestamp, if any.
func (r *Report) ResolvedAt() (time.Time, bool) {
	return parseTimestamp(r.DateResolved)
}

// ShortDescription truncates the description for list views.
func (r *Report) ShortDescription() string {
	if len(r.Description) > 100 {
		return r.Description[:100] + "..."
	}
	return r.Description
}

func parseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// decodeFlexible is shared by the enum unmarshalers: JSON scalars are
// decoded with UseNumber so integer and floating-point forms stay
// distinguishable.
func decodeFlexible(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}
