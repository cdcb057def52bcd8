package student

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eduflexsms/eduflex/core/attendance"
)

func TestSummarize(t *testing.T) {
	P, A, N := attendance.Present, attendance.Absent, attendance.Pending

	students := []Student{
		{
			ID: "s1", Name: "Amaya", Grade: "Grade 10",
			Subjects: []Enrollment{
				{Subject: "Science", Months: []MonthRecord{
					{Attendance: []attendance.Status{P, P, A, N, P}, Fee: P, Tute: P},
					{Attendance: []attendance.Status{A, A}, Fee: N},
				}},
			},
		},
		{
			ID: "s2", Name: "Nimal", Grade: "Grade 10",
			Subjects: []Enrollment{
				{Subject: "science", Months: []MonthRecord{
					{Attendance: []attendance.Status{P}, Fee: N, Tute: P},
				}},
				{Subject: "Mathematics"},
			},
		},
		{
			ID: "s3", Name: "Kasun", Grade: "Grade 11",
			Subjects: []Enrollment{{Subject: "Mathematics"}},
		},
		{
			ID: "s4", Name: "Dilini", Grade: "Grade 10",
			Subjects: []Enrollment{{Subject: "Science"}}, // no months recorded yet
		},
	}

	tests := []struct {
		name    string
		subject string
		month   int
		want    Summary
	}{
		{
			name: "science january", subject: "Science", month: 0,
			want: Summary{
				Subject: "Science", Month: 0, Students: 3,
				Present: 4, Absent: 1, Pending: 10,
				FeesPaid: 1, FeesDue: 2, TutesGiven: 2, TutesNotYet: 1,
			},
		},
		{
			name: "science february", subject: "Science", month: 1,
			want: Summary{
				Subject: "Science", Month: 1, Students: 3,
				Absent: 2, Pending: 13,
				FeesDue: 3, TutesNotYet: 3,
			},
		},
		{
			name: "mathematics", subject: "Mathematics", month: 0,
			want: Summary{
				Subject: "Mathematics", Month: 0, Students: 2,
				Pending: 10, FeesDue: 2, TutesNotYet: 2,
			},
		},
		{
			name: "unknown subject", subject: "Art", month: 0,
			want: Summary{Subject: "Art"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summarize(students, tt.subject, tt.month))
		})
	}
}

func TestSummary_AttendanceRate(t *testing.T) {
	assert.Equal(t, 0.0, Summary{Pending: 5}.AttendanceRate())
	assert.Equal(t, 0.75, Summary{Present: 3, Absent: 1, Pending: 4}.AttendanceRate())
}

func TestStudent_Records(t *testing.T) {
	stu := Student{ID: "s1", Subjects: []Enrollment{{Subject: "ICT"}}}

	got, ok := stu.AttendanceAt(attendance.Slot{StudentID: "s1", Subject: "ict", Month: 4, Week: 2})
	assert.True(t, ok)
	assert.Equal(t, attendance.Pending, got)

	_, ok = stu.AttendanceAt(attendance.Slot{StudentID: "s1", Subject: "Art"})
	assert.False(t, ok)

	enr, _ := stu.Enrollment("ICT")
	enr.Month(4).SetWeek(2, attendance.Absent)
	enr.Month(4).SetRecord(attendance.RecordTute, attendance.Present)
	assert.Len(t, enr.Months, 5)
	assert.Len(t, enr.Months[4].Attendance, 3)

	got, _ = stu.AttendanceAt(attendance.Slot{StudentID: "s1", Subject: "ICT", Month: 4, Week: 2})
	assert.Equal(t, attendance.Absent, got)
	got, _ = stu.RecordAt(attendance.RecordRef{StudentID: "s1", Subject: "ICT", Month: 4, Type: attendance.RecordTute})
	assert.Equal(t, attendance.Present, got)
	got, _ = stu.RecordAt(attendance.RecordRef{StudentID: "s1", Subject: "ICT", Month: 4, Type: attendance.RecordFee})
	assert.Equal(t, attendance.Pending, got)
}

func TestStudent_Clone(t *testing.T) {
	orig := Student{ID: "s1", Subjects: []Enrollment{{Subject: "ICT", Months: []MonthRecord{
		{Attendance: []attendance.Status{attendance.Present}},
	}}}}

	clone := orig.Clone()
	clone.Subjects[0].Months[0].SetWeek(0, attendance.Absent)
	clone.Subjects[0].Months[0].Fee = attendance.Present

	assert.Equal(t, attendance.Present, orig.Subjects[0].Months[0].Attendance[0])
	assert.Equal(t, attendance.Pending, orig.Subjects[0].Months[0].Fee)
}
