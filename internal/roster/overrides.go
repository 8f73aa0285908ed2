package roster

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Date is a calendar date in override files, written as YYYY-MM-DD or day-first.
type Date struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(d.Format("2006-01-02"))
}

// IdentityOverride maps a badge actor name without a numeric prefix to an id.
type IdentityOverride struct {
	Name       string `json:"name"`
	EmployeeID int    `json:"employee_id"`
}

// EmployeeOverride patches a roster profile, or backfills one when Create is
// set and no profile matches. Nil fields are left untouched.
type EmployeeOverride struct {
	EmployeeID      int     `json:"employee_id,omitempty"`
	Name            string  `json:"name,omitempty"`
	Create          bool    `json:"create,omitempty"`
	Location        *string `json:"location,omitempty"`
	WorkingStatus   *string `json:"working_status,omitempty"`
	Division        *string `json:"division,omitempty"`
	HireDate        *Date   `json:"hire_date,omitempty"`
	TerminationDate *Date   `json:"termination_date,omitempty"`
	Active          *bool   `json:"active,omitempty"`
	FullTime        *bool   `json:"full_time,omitempty"`
}

// Overrides is the externally supplied data-quality fix table.
type Overrides struct {
	Identities []IdentityOverride `json:"identities"`
	Employees  []EmployeeOverride `json:"employees"`
}

// LoadOverrides reads the override table. A missing file yields an empty table.
func LoadOverrides(path string) (*Overrides, error) {
	o := &Overrides{}
	if path == "" {
		return o, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return o, nil
		}
		return nil, fmt.Errorf("failed to read overrides %s: %w", path, err)
	}
	if err := json.Unmarshal(data, o); err != nil {
		return nil, fmt.Errorf("failed to parse overrides %s: %w", path, err)
	}
	if err := o.Validate(); err != nil {
		return nil, fmt.Errorf("invalid overrides %s: %w", path, err)
	}
	return o, nil
}

// Validate checks that every entry identifies its target.
func (o *Overrides) Validate() error {
	for i, id := range o.Identities {
		if strings.TrimSpace(id.Name) == "" || id.EmployeeID <= 0 {
			return fmt.Errorf("identity %d needs a name and a positive employee_id", i)
		}
	}
	for i, e := range o.Employees {
		if e.EmployeeID <= 0 && strings.TrimSpace(e.Name) == "" {
			return fmt.Errorf("employee override %d needs employee_id or name", i)
		}
		if e.Create && e.EmployeeID <= 0 {
			return fmt.Errorf("employee override %d creates a profile without employee_id", i)
		}
	}
	return nil
}

// IdentityMap returns the name -> id exception table for badge resolution.
func (o *Overrides) IdentityMap() map[string]int {
	if o == nil {
		return nil
	}
	m := make(map[string]int, len(o.Identities))
	for _, id := range o.Identities {
		m[id.Name] = id.EmployeeID
	}
	return m
}

func (ov EmployeeOverride) apply(e *Employee) {
	if ov.Name != "" && (e.Name == "" || ov.Create) {
		e.Name = ov.Name
	}
	if ov.Location != nil {
		e.Location = *ov.Location
	}
	if ov.WorkingStatus != nil {
		e.WorkingStatus = *ov.WorkingStatus
	}
	if ov.Division != nil {
		e.Division = *ov.Division
	}
	if ov.HireDate != nil {
		e.HireDate = ov.HireDate.Time
	}
	if ov.TerminationDate != nil {
		e.TerminationDate = ov.TerminationDate.Time
	}
	if ov.Active != nil {
		e.Active = *ov.Active
	}
	if ov.FullTime != nil {
		v := *ov.FullTime
		e.FullTimeOverride = &v
	}
}
