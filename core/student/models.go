package student

import (
	"strings"

	"github.com/eduflexsms/eduflex/core"
	"github.com/eduflexsms/eduflex/core/attendance"
)

type Student struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Grade    string       `json:"grade"`
	Mobile   string       `json:"mobile,omitempty"`
	Subjects []Enrollment `json:"subjects"`
}

// Enrollment holds a student's yearly records for one subject.
type Enrollment struct {
	Subject string        `json:"subject"`
	Months  []MonthRecord `json:"months"`
}

type MonthRecord struct {
	Attendance []attendance.Status `json:"attendance"`
	Fee        attendance.Status   `json:"fee"`
	Tute       attendance.Status   `json:"tute"`
}

// Enrollment returns the enrollment for subject (case-insensitive).
func (s *Student) Enrollment(subject string) (*Enrollment, bool) {
	for i := range s.Subjects {
		if strings.EqualFold(s.Subjects[i].Subject, subject) {
			return &s.Subjects[i], true
		}
	}
	return nil, false
}

// Month returns the record of the given month, growing the slice as needed.
func (e *Enrollment) Month(month int) *MonthRecord {
	for len(e.Months) <= month {
		e.Months = append(e.Months, MonthRecord{})
	}
	return &e.Months[month]
}

// Week returns the status of a week; missing weeks are Pending.
func (m MonthRecord) Week(week int) attendance.Status {
	if week < 0 || week >= len(m.Attendance) {
		return attendance.Pending
	}
	return m.Attendance[week]
}

// SetWeek sets the status of a week, growing the slice as needed.
func (m *MonthRecord) SetWeek(week int, status attendance.Status) {
	for len(m.Attendance) <= week {
		m.Attendance = append(m.Attendance, attendance.Pending)
	}
	m.Attendance[week] = status
}

// Record returns the fee or tute status.
func (m MonthRecord) Record(rt attendance.RecordType) attendance.Status {
	if rt == attendance.RecordTute {
		return m.Tute
	}
	return m.Fee
}

// SetRecord sets the fee or tute status.
func (m *MonthRecord) SetRecord(rt attendance.RecordType, status attendance.Status) {
	if rt == attendance.RecordTute {
		m.Tute = status
		return
	}
	m.Fee = status
}

// AttendanceAt returns the attendance status addressed by slot.
func (s *Student) AttendanceAt(slot attendance.Slot) (attendance.Status, bool) {
	enr, ok := s.Enrollment(slot.Subject)
	if !ok {
		return attendance.Pending, false
	}
	if slot.Month >= len(enr.Months) {
		return attendance.Pending, true
	}
	return enr.Months[slot.Month].Week(slot.Week), true
}

// RecordAt returns the fee/tute status addressed by ref.
func (s *Student) RecordAt(ref attendance.RecordRef) (attendance.Status, bool) {
	enr, ok := s.Enrollment(ref.Subject)
	if !ok {
		return attendance.Pending, false
	}
	if ref.Month >= len(enr.Months) {
		return attendance.Pending, true
	}
	return enr.Months[ref.Month].Record(ref.Type), true
}

// Clone returns a deep copy of s.
func (s Student) Clone() Student {
	if s.Subjects == nil {
		return s
	}
	subjects := make([]Enrollment, len(s.Subjects))
	for i, enr := range s.Subjects {
		subjects[i] = Enrollment{Subject: enr.Subject}
		if enr.Months == nil {
			continue
		}
		subjects[i].Months = make([]MonthRecord, len(enr.Months))
		for j, rec := range enr.Months {
			rec.Attendance = append([]attendance.Status(nil), rec.Attendance...)
			subjects[i].Months[j] = rec
		}
	}
	s.Subjects = subjects
	return s
}

type Subject struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Fee   float64 `json:"fee"`
	Color string  `json:"color,omitempty"`
}

// NewSubject contains information needed to create a new Subject.
type NewSubject struct {
	Name  string  `json:"name" validate:"required"`
	Fee   float64 `json:"fee" validate:"gte=0"`
	Color string  `json:"color" validate:"omitempty,hexcolor"`
}

func (ns *NewSubject) Clean() {
	ns.Name = core.CleanString(ns.Name)
	ns.Color = core.CleanString(ns.Color, true /* lower */)
}

// Filter selects a page of students. Empty Grade/Subject/Search do not filter.
type Filter struct {
	Page    int    `query:"page"`
	Search  string `query:"search"`
	Grade   string `query:"grade"`
	Subject string `query:"subject"`
}

func (f *Filter) Clean() {
	f.Search = core.CleanString(f.Search)
	f.Grade = core.CleanString(f.Grade)
	f.Subject = core.CleanString(f.Subject)
	if f.Page < 1 {
		f.Page = 1
	}
}

type Page struct {
	Students   []Student `json:"students"`
	TotalPages int       `json:"totalPages"`
}
