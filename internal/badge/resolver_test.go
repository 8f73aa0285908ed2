package badge

import (
	"testing"
	"time"
)

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver(map[string]int{"Hindhaugh, Robert": 849})

	tests := []struct {
		name   string
		actor  string
		wantID int
		wantOK bool
	}{
		{"NumericPrefix", "123 Doe, John", 123, true},
		{"LeadingSpace", "  42 Smith, Jane", 42, true},
		{"Exception", "Hindhaugh, Robert", 849, true},
		{"ExceptionCaseAndSpacing", "hindhaugh,   ROBERT", 849, true},
		{"Visitor", "Cleaner 3", 0, false},
		{"Empty", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := r.Resolve(tt.actor)
			if id != tt.wantID || ok != tt.wantOK {
				t.Errorf("Resolve(%q) = (%d, %v), want (%d, %v)", tt.actor, id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestResolver_ResolveAll(t *testing.T) {
	ts := time.Date(2024, 6, 12, 9, 0, 0, 0, time.UTC)
	events := []Event{
		{RawActor: "1 A, B", Timestamp: ts},
		{RawActor: "Visitor", Timestamp: ts},
		{RawActor: "Visitor", Timestamp: ts.Add(time.Hour)},
		{RawActor: "Cleaner", Timestamp: ts},
		{RawActor: "2 C, D", Timestamp: ts},
	}

	out, res := NewResolver(nil).ResolveAll(events)
	if len(out) != 2 || res.Resolved != 2 {
		t.Fatalf("expected 2 resolved events, got %d (result %d)", len(out), res.Resolved)
	}
	if out[0].EmployeeID != 1 || out[1].EmployeeID != 2 {
		t.Errorf("unexpected ids: %d, %d", out[0].EmployeeID, out[1].EmployeeID)
	}
	if res.Dropped != 3 {
		t.Errorf("expected 3 dropped, got %d", res.Dropped)
	}
	top := res.TopUnresolved(1)
	if len(top) != 1 || top[0] != "Visitor" {
		t.Errorf("expected Visitor as top unresolved, got %v", top)
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("123 Doe, John"); got != "Doe, John" {
		t.Errorf("DisplayName = %q", got)
	}
	if got := DisplayName(" Doe, John "); got != "Doe, John" {
		t.Errorf("DisplayName without id = %q", got)
	}
}
