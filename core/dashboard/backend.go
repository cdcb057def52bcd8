// Package dashboard implements the students page of the dashboard: drill-down navigation
// over grades and subjects, the student list it selects, and confirmed attendance/fee/tute edits.
package dashboard

import (
	"context"

	"github.com/eduflexsms/eduflex/core/attendance"
	"github.com/eduflexsms/eduflex/core/student"
)

// Backend is the remote data source of the page.
type Backend interface {
	Grades(ctx context.Context) ([]string, error)
	Subjects(ctx context.Context) ([]student.Subject, error)
	Students(ctx context.Context, filter student.Filter) (student.Page, error)
	SetAttendance(ctx context.Context, slot attendance.Slot, status attendance.Status) error
	// ToggleRecord flips a fee/tute status and returns the value the server stored.
	ToggleRecord(ctx context.Context, ref attendance.RecordRef) (attendance.Status, error)
}

type Level uint8

const (
	LevelInfo Level = iota
	LevelError
)

func (l Level) String() string {
	if l == LevelError {
		return "error"
	}
	return "info"
}

// Notice is a user-visible message.
type Notice struct {
	Level   Level
	Message string
}

type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to a Notifier.
type NotifierFunc func(n Notice)

func (fn NotifierFunc) Notify(n Notice) { fn(n) }

type nopNotifier struct{}

func (nopNotifier) Notify(Notice) {}
