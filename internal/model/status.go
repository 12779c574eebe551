package model

import (
	"database/sql/driver"
	"fmt"
)

// Status is the lifecycle state of a complaint. The zero value is not a
// valid status; complaints are created as StatusNotStarted.
type Status uint8

const (
	statusUnknown Status = iota
	StatusNotStarted
	StatusProcessing
	StatusResolved
)

var ErrInvalidStatus = fmt.Errorf("status must be one of %q, %q or %q",
	StatusNotStarted, StatusProcessing, StatusResolved)

// Statuses lists every valid status in display order.
func Statuses() []Status {
	return []Status{StatusNotStarted, StatusProcessing, StatusResolved}
}

func (s Status) String() string {
	switch s {
	case StatusNotStarted:
		return "Not Started"
	case StatusProcessing:
		return "Processing"
	case StatusResolved:
		return "Resolved"
	case statusUnknown:
		return ""
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusProcessing, StatusResolved:
		return true
	case statusUnknown:
		return false
	}
	return false
}

// ParseStatus maps the stored/display form back to a Status.
func ParseStatus(v string) (Status, error) {
	for _, s := range Statuses() {
		if s.String() == v {
			return s, nil
		}
	}
	return statusUnknown, ErrInvalidStatus
}

func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, ErrInvalidStatus
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Scan implements sql.Scanner so pgx can read the status column directly.
func (s *Status) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return s.UnmarshalText([]byte(v))
	case []byte:
		return s.UnmarshalText(v)
	case nil:
		return ErrInvalidStatus
	}
	return fmt.Errorf("cannot scan %T into Status", src)
}

func (s Status) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.String(), nil
}
