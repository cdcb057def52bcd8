package dashboard

import (
	"fmt"

	"github.com/eduflexsms/eduflex/core/attendance"
	"github.com/eduflexsms/eduflex/core/student"
)

// Change is a proposed edit of one attendance slot or one fee/tute record.
// Nothing is changed until it is passed to StudentsPage.Confirm.
type Change struct {
	Slot   attendance.Slot      // set for attendance edits
	Record attendance.RecordRef // set for fee/tute toggles
	Toggle bool

	From attendance.Status
	To   attendance.Status
}

func (ch Change) StudentID() string {
	if ch.Toggle {
		return ch.Record.StudentID
	}
	return ch.Slot.StudentID
}

// Describe renders the change for a confirmation prompt.
func (ch Change) Describe() string {
	if ch.Toggle {
		return fmt.Sprintf("set %s to %s", ch.Record, ch.To)
	}
	return fmt.Sprintf("mark %s as %s", ch.Slot, ch.To)
}

func (ch Change) get(stu *student.Student) (attendance.Status, bool) {
	if ch.Toggle {
		return stu.RecordAt(ch.Record)
	}
	return stu.AttendanceAt(ch.Slot)
}

func (ch Change) set(stu *student.Student, status attendance.Status) bool {
	if ch.Toggle {
		enr, ok := stu.Enrollment(ch.Record.Subject)
		if !ok {
			return false
		}
		enr.Month(ch.Record.Month).SetRecord(ch.Record.Type, status)
		return true
	}
	enr, ok := stu.Enrollment(ch.Slot.Subject)
	if !ok {
		return false
	}
	enr.Month(ch.Slot.Month).SetWeek(ch.Slot.Week, status)
	return true
}
