package stats

import (
	"fmt"
	"strings"
	"time"

	"office-attendance/internal/roster"
)

// Segment is a conjunction of attribute constraints defining an eligible
// population. Empty strings and a nil FullTime leave that attribute
// unconstrained.
type Segment struct {
	Name          string `json:"name"`
	Location      string `json:"location,omitempty"`
	WorkingStatus string `json:"workingStatus,omitempty"`
	FullTime      *bool  `json:"fullTime,omitempty"`
}

// NewSegment builds a segment whose name is derived from its constraints.
func NewSegment(location, workingStatus string, fullTime *bool) Segment {
	s := Segment{Location: location, WorkingStatus: workingStatus, FullTime: fullTime}
	s.Name = s.Tag()
	return s
}

// Tag returns the segment's stable identifier.
func (s Segment) Tag() string {
	if s.Name != "" {
		return s.Name
	}
	var parts []string
	if s.Location != "" {
		parts = append(parts, s.Location)
	}
	if s.WorkingStatus != "" {
		parts = append(parts, s.WorkingStatus)
	}
	if s.FullTime != nil {
		if *s.FullTime {
			parts = append(parts, "Full-Time")
		} else {
			parts = append(parts, "Part-Time")
		}
	}
	if len(parts) == 0 {
		return "All"
	}
	return strings.Join(parts, " / ")
}

// Reason explains an eligibility decision.
type Reason string

const (
	ReasonEligible         Reason = "eligible"
	ReasonNoProfile        Reason = "no_profile"
	ReasonNotHired         Reason = "not_hired"
	ReasonTerminated       Reason = "terminated"
	ReasonUnknownAttribute Reason = "unknown_attribute"
	ReasonLocation         Reason = "location"
	ReasonWorkingStatus    Reason = "working_status"
	ReasonNotFullTime      Reason = "not_full_time"
)

// Eligibility is the outcome of CheckEligibility.
type Eligibility struct {
	Eligible bool   `json:"eligible"`
	Reason   Reason `json:"reason"`
	Detail   string `json:"detail,omitempty"`
}

// CheckEligibility decides whether e belongs to seg on date. It depends only
// on the profile, the date and the segment, never on which dates a report
// covers. Unknown attributes count as not eligible.
func CheckEligibility(e *roster.Employee, date time.Time, seg Segment) Eligibility {
	if e == nil {
		return Eligibility{Reason: ReasonNoProfile}
	}
	if e.HireDate.IsZero() {
		return Eligibility{Reason: ReasonUnknownAttribute, Detail: "hire date unknown"}
	}
	if date.Before(e.HireDate) {
		return Eligibility{Reason: ReasonNotHired, Detail: "hired " + e.HireDate.Format(time.DateOnly)}
	}
	if end := e.EmploymentEnd(); !end.IsZero() && date.After(end) {
		detail := "left " + end.Format(time.DateOnly)
		if !e.TerminationDate.Equal(end) {
			detail = "employment window closes " + end.Format(time.DateOnly)
		}
		return Eligibility{Reason: ReasonTerminated, Detail: detail}
	}
	if seg.Location != "" {
		if e.Location == "" {
			return Eligibility{Reason: ReasonUnknownAttribute, Detail: "location unknown"}
		}
		if !sameValue(e.Location, seg.Location) {
			return Eligibility{Reason: ReasonLocation, Detail: fmt.Sprintf("location %q", e.Location)}
		}
	}
	if seg.WorkingStatus != "" {
		if e.WorkingStatus == "" {
			return Eligibility{Reason: ReasonUnknownAttribute, Detail: "working status unknown"}
		}
		if !sameValue(e.WorkingStatus, seg.WorkingStatus) {
			return Eligibility{Reason: ReasonWorkingStatus, Detail: fmt.Sprintf("working status %q", e.WorkingStatus)}
		}
	}
	if seg.FullTime != nil && e.FullTimeAsOf(date) != *seg.FullTime {
		detail := "status " + quoteOrNone(e.StatusAsOf(date))
		return Eligibility{Reason: ReasonNotFullTime, Detail: detail}
	}
	return Eligibility{Eligible: true, Reason: ReasonEligible}
}

// IsEligible reports whether e belongs to seg on date.
func IsEligible(e *roster.Employee, date time.Time, seg Segment) bool {
	return CheckEligibility(e, date, seg).Eligible
}

func sameValue(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func quoteOrNone(s string) string {
	if s == "" {
		return "none recorded"
	}
	return fmt.Sprintf("%q", s)
}
