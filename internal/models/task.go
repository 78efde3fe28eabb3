package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Task statuses.
const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
)

// Task is a to-do item owned by a user.
type Task struct {
	Record
	Title  string    `json:"title" validate:"required,max=50"`
	Detail string    `json:"detail,omitempty" validate:"max=50"`
	Date   *TaskDate `json:"date,omitempty"`
	Time   string    `json:"time,omitempty"`
	Status string    `json:"status" validate:"required,oneof=pending in-progress completed"`
	UserID string    `json:"userId" validate:"required"`
}

const dateOnly = "2006-01-02"

// TaskDate is a due date that accepts either a calendar date or a full RFC 3339 timestamp.
type TaskDate struct {
	time.Time
}

// NewTaskDate wraps t as a TaskDate in UTC.
func NewTaskDate(t time.Time) *TaskDate {
	return &TaskDate{Time: t.UTC()}
}

// ParseTaskDate parses "YYYY-MM-DD" or RFC 3339 input.
func ParseTaskDate(s string) (TaskDate, error) {
	if t, err := time.Parse(dateOnly, s); err == nil {
		return TaskDate{Time: t}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return TaskDate{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC 3339", s)
	}
	return TaskDate{Time: t.UTC()}, nil
}

func (d *TaskDate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := ParseTaskDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d TaskDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.UTC().Format(time.RFC3339))
}

// Scan implements sql.Scanner.
func (d *TaskDate) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		d.Time = v.UTC()
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	default:
		return fmt.Errorf("cannot scan %T into TaskDate", src)
	}
}

func (d *TaskDate) scanString(s string) error {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05", dateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("cannot parse %q as a date", s)
}

// Value implements driver.Valuer.
func (d TaskDate) Value() (driver.Value, error) {
	return d.UTC(), nil
}
