package student

import "github.com/eduflexsms/eduflex/core/attendance"

// Summary aggregates one month of one subject.
type Summary struct {
	Subject  string `json:"subject"`
	Month    int    `json:"month"`
	Students int    `json:"students"`

	Present int `json:"present"`
	Absent  int `json:"absent"`
	Pending int `json:"pending"`

	FeesPaid    int `json:"fees_paid"`
	FeesDue     int `json:"fees_due"`
	TutesGiven  int `json:"tutes_given"`
	TutesNotYet int `json:"tutes_not_yet"`
}

// AttendanceRate is the share of present slots among marked (non-pending) slots.
func (s Summary) AttendanceRate() float64 {
	marked := s.Present + s.Absent
	if marked == 0 {
		return 0
	}
	return float64(s.Present) / float64(marked)
}

// Summarize counts the attendance, fee and tute statuses of month for the students enrolled in subject.
// Every enrolled student contributes WeeksPerMonth attendance slots; missing weeks count as pending.
func Summarize(students []Student, subject string, month int) Summary {
	sum := Summary{Subject: subject, Month: month}
	for i := range students {
		enr, ok := students[i].Enrollment(subject)
		if !ok {
			continue
		}
		sum.Students++

		var rec MonthRecord
		if month >= 0 && month < len(enr.Months) {
			rec = enr.Months[month]
		}
		for week := 0; week < attendance.WeeksPerMonth; week++ {
			switch rec.Week(week) {
			case attendance.Present:
				sum.Present++
			case attendance.Absent:
				sum.Absent++
			default:
				sum.Pending++
			}
		}
		if rec.Fee == attendance.Present {
			sum.FeesPaid++
		} else {
			sum.FeesDue++
		}
		if rec.Tute == attendance.Present {
			sum.TutesGiven++
		} else {
			sum.TutesNotYet++
		}
	}
	return sum
}
