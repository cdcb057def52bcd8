package student

import (
	"context"
	"errors"

	"github.com/eduflexsms/eduflex/core"
	"github.com/eduflexsms/eduflex/core/attendance"
)

var (
	// errors
	ErrNotFound      = errors.New("student not found")
	ErrNotEnrolled   = errors.New("student is not enrolled in this subject")
	ErrSubjectExists = errors.New("a subject with this name already exists")
)

type (
	Repository interface {
		QueryGrades(ctx context.Context) ([]string, error)
		QuerySubjects(ctx context.Context) ([]Subject, error)
		CreateSubject(ctx context.Context, sub Subject) (Subject, error)
		// FilterStudents applies AND on the non-empty Filter fields, ignoring Filter.Page.
		// Filter.Search does a case-insensitive match on Student.Name or Student.ID.
		FilterStudents(ctx context.Context, filter Filter) ([]Student, error)
		GetStudent(ctx context.Context, id string) (Student, error)
		SetAttendance(ctx context.Context, slot attendance.Slot, status attendance.Status) error
		SetRecord(ctx context.Context, ref attendance.RecordRef, status attendance.Status) error
		// ToggleRecord flips the fee or tute status atomically and returns the new value.
		ToggleRecord(ctx context.Context, ref attendance.RecordRef) (attendance.Status, error)
	}

	Service struct {
		repo     Repository
		pageSize int
	}
)

func NewService(repo Repository, conf *core.Config) *Service {
	pageSize := conf.Server.PageSize
	if pageSize < 1 {
		pageSize = 10
	}
	return &Service{repo: repo, pageSize: pageSize}
}

func (svc *Service) Grades(ctx context.Context) ([]string, error) {
	return svc.repo.QueryGrades(ctx)
}

func (svc *Service) Subjects(ctx context.Context) ([]Subject, error) {
	return svc.repo.QuerySubjects(ctx)
}

func (svc *Service) CreateSubject(ctx context.Context, ns NewSubject) (Subject, error) {
	ns.Clean()
	return svc.repo.CreateSubject(ctx, Subject{Name: ns.Name, Fee: ns.Fee, Color: ns.Color})
}

// Query returns one page of the filtered students. Pages are 1-based; a page past the end is empty.
func (svc *Service) Query(ctx context.Context, filter Filter) (Page, error) {
	filter.Clean()
	all, err := svc.repo.FilterStudents(ctx, filter)
	if err != nil {
		return Page{}, err
	}

	totalPages := (len(all) + svc.pageSize - 1) / svc.pageSize
	start := (filter.Page - 1) * svc.pageSize
	if start > len(all) {
		start = len(all)
	}
	end := start + svc.pageSize
	if end > len(all) {
		end = len(all)
	}
	students := make([]Student, 0, end-start)
	students = append(students, all[start:end]...)
	return Page{Students: students, TotalPages: totalPages}, nil
}

func (svc *Service) SetAttendance(ctx context.Context, slot attendance.Slot, status attendance.Status) error {
	if err := slot.Validate(); err != nil {
		return err
	}
	return svc.repo.SetAttendance(ctx, slot, status)
}

// ToggleRecord flips a fee or tute status and returns the new value.
func (svc *Service) ToggleRecord(ctx context.Context, ref attendance.RecordRef) (attendance.Status, error) {
	if err := ref.Validate(); err != nil {
		return attendance.Pending, err
	}
	return svc.repo.ToggleRecord(ctx, ref)
}
