package echoapi

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/eduflexsms/eduflex/core"
	"github.com/eduflexsms/eduflex/core/attendance"
	"github.com/eduflexsms/eduflex/core/student"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	return validate.Struct(lr)
}

type TokenResponse struct {
	Token string `json:"token"`
}

type AttendanceRequest struct {
	Status string `json:"status" validate:"required,wirestatus"`
}

type AttendanceResponse struct {
	Status string `json:"status"`
}

// RecordResponse carries the new fee/tute value as a JSON boolean.
type RecordResponse struct {
	Status bool `json:"status"`
}

// Wire representation of students.
// Attendance goes out as lowercase strings and fee/tute as booleans.
type (
	studentJSON struct {
		ID       string           `json:"id"`
		Name     string           `json:"name"`
		Grade    string           `json:"grade"`
		Mobile   string           `json:"mobile,omitempty"`
		Subjects []enrollmentJSON `json:"subjects"`
	}

	enrollmentJSON struct {
		Subject string      `json:"subject"`
		Months  []monthJSON `json:"months"`
	}

	monthJSON struct {
		Attendance []string `json:"attendance"`
		Fee        bool     `json:"fee"`
		Tute       bool     `json:"tute"`
	}

	pageJSON struct {
		Students   []studentJSON `json:"students"`
		TotalPages int           `json:"totalPages"`
	}
)

func newStudentJSON(stu student.Student) studentJSON {
	out := studentJSON{
		ID:       stu.ID,
		Name:     stu.Name,
		Grade:    stu.Grade,
		Mobile:   stu.Mobile,
		Subjects: make([]enrollmentJSON, 0, len(stu.Subjects)),
	}
	for _, enr := range stu.Subjects {
		ej := enrollmentJSON{Subject: enr.Subject, Months: make([]monthJSON, 0, len(enr.Months))}
		for _, rec := range enr.Months {
			mj := monthJSON{
				Attendance: make([]string, 0, len(rec.Attendance)),
				Fee:        rec.Fee == attendance.Present,
				Tute:       rec.Tute == attendance.Present,
			}
			for _, status := range rec.Attendance {
				mj.Attendance = append(mj.Attendance, status.WireValue())
			}
			ej.Months = append(ej.Months, mj)
		}
		out.Subjects = append(out.Subjects, ej)
	}
	return out
}

func newPageJSON(page student.Page) pageJSON {
	out := pageJSON{Students: make([]studentJSON, 0, len(page.Students)), TotalPages: page.TotalPages}
	for _, stu := range page.Students {
		out.Students = append(out.Students, newStudentJSON(stu))
	}
	return out
}

// bindFilter reads the student list query parameters.
func bindFilter(ctx echo.Context) (student.Filter, error) {
	filter := student.Filter{
		Search:  ctx.QueryParam("search"),
		Grade:   ctx.QueryParam("grade"),
		Subject: ctx.QueryParam("subject"),
	}
	if p := ctx.QueryParam("page"); p != "" {
		page, err := strconv.Atoi(p)
		if err != nil {
			return student.Filter{}, core.NewValidationError(nil, core.FieldError{Field: "page", Error: "page must be a number"})
		}
		filter.Page = page
	}
	filter.Clean()
	return filter, nil
}

// intParam parses a numeric path parameter.
func intParam(ctx echo.Context, name string) (int, error) {
	v, err := strconv.Atoi(ctx.Param(name))
	if err != nil {
		return 0, core.NewValidationError(nil, core.FieldError{Field: name, Error: name + " must be a number"})
	}
	return v, nil
}
