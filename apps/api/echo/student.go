package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/eduflexsms/eduflex/core"
	"github.com/eduflexsms/eduflex/core/attendance"
	"github.com/eduflexsms/eduflex/core/student"
)

type studentApi struct {
	svc      *student.Service
	validate *validator.Validate
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *student.Service, validate *validator.Validate) {
	api := studentApi{svc: svc, validate: validate}

	ag := g.Group("", jwt)
	ag.GET("/students/grades", api.queryGrades)
	ag.GET("/students", api.queryStudents)
	ag.PATCH("/attendance/:studentId/:subject/:month/:week", api.setAttendance)
	ag.PATCH("/records/:studentId/:subject/:month/:type", api.toggleRecord)
	ag.GET("/subjects", api.querySubjects)
	ag.POST("/subjects", api.createSubject, adminMiddleware())
}

// studentError maps the lookup errors of the student store to 404s.
func studentError(err error, msg string) error {
	switch errors.Cause(err) {
	case student.ErrNotFound, student.ErrNotEnrolled:
		return notFound(errors.Cause(err))
	}
	if core.IsValidationError(err) {
		return err
	}
	return errors.Wrap(err, msg)
}

// Handlers

func (api *studentApi) queryGrades(ctx echo.Context) error {
	grades, err := api.svc.Grades(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying grades")
	}
	if grades == nil {
		grades = []string{}
	}
	return ctx.JSON(http.StatusOK, grades)
}

func (api *studentApi) queryStudents(ctx echo.Context) error {
	filter, err := bindFilter(ctx)
	if err != nil {
		return err
	}
	page, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, newPageJSON(page))
}

func (api *studentApi) setAttendance(ctx echo.Context) error {
	month, err := intParam(ctx, "month")
	if err != nil {
		return err
	}
	week, err := intParam(ctx, "week")
	if err != nil {
		return err
	}

	var data AttendanceRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AttendanceRequest")
	}
	data.Status = core.CleanString(data.Status, true /* lower */)
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	slot := attendance.Slot{
		StudentID: ctx.Param("studentId"),
		Subject:   ctx.Param("subject"),
		Month:     month,
		Week:      week,
	}
	status := attendance.Normalize(data.Status)
	if err := api.svc.SetAttendance(ctx.Request().Context(), slot, status); err != nil {
		return studentError(err, "setting attendance")
	}
	return ctx.JSON(http.StatusOK, AttendanceResponse{Status: status.WireValue()})
}

func (api *studentApi) toggleRecord(ctx echo.Context) error {
	month, err := intParam(ctx, "month")
	if err != nil {
		return err
	}
	rt, err := attendance.ParseRecordType(ctx.Param("type"))
	if err != nil {
		return notFound(err)
	}

	ref := attendance.RecordRef{
		StudentID: ctx.Param("studentId"),
		Subject:   ctx.Param("subject"),
		Month:     month,
		Type:      rt,
	}
	status, err := api.svc.ToggleRecord(ctx.Request().Context(), ref)
	if err != nil {
		return studentError(err, "toggling record")
	}
	return ctx.JSON(http.StatusOK, RecordResponse{Status: status == attendance.Present})
}

func (api *studentApi) querySubjects(ctx echo.Context) error {
	subjects, err := api.svc.Subjects(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	if subjects == nil {
		subjects = []student.Subject{}
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *studentApi) createSubject(ctx echo.Context) error {
	var data student.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	data.Clean()
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	sub, err := api.svc.CreateSubject(ctx.Request().Context(), data)
	if err != nil {
		if err == student.ErrSubjectExists {
			return core.NewValidationError(err, core.FieldError{Field: "name", Error: err.Error()})
		}
		return errors.Wrap(err, "creating subject")
	}
	return ctx.JSON(http.StatusCreated, sub)
}
