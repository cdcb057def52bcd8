package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/eduflexsms/eduflex/core/attendance"
	"github.com/eduflexsms/eduflex/core/student"
)

type StudentRepository struct {
	db *studentTable
}

var _ student.Repository = (*StudentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) *StudentRepository {
	return &StudentRepository{db: db.student}
}

// query returns deep copies of all students, ordered by name.
func (repo *StudentRepository) query() []student.Student {
	students := make([]student.Student, 0, len(repo.db.table))
	for _, stu := range repo.db.table {
		students = append(students, stu.Clone())
	}
	sort.Slice(students, func(i, j int) bool {
		if students[i].Name == students[j].Name {
			return students[i].ID < students[j].ID
		}
		return students[i].Name < students[j].Name
	})
	return students
}

func (repo *StudentRepository) QueryGrades(context.Context) ([]string, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	seen := make(map[string]bool)
	grades := make([]string, 0)
	for _, stu := range repo.db.table {
		if !seen[stu.Grade] {
			seen[stu.Grade] = true
			grades = append(grades, stu.Grade)
		}
	}
	sort.Strings(grades)
	return grades, nil
}

func (repo *StudentRepository) QuerySubjects(context.Context) ([]student.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subjects := make([]student.Subject, 0, len(repo.db.subjects))
	for _, sub := range repo.db.subjects {
		subjects = append(subjects, *sub)
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].Name < subjects[j].Name })
	return subjects, nil
}

func (repo *StudentRepository) CreateSubject(_ context.Context, sub student.Subject) (student.Subject, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.subjects {
		if strings.EqualFold(existing.Name, sub.Name) {
			return student.Subject{}, student.ErrSubjectExists
		}
	}
	sub.ID = uuid.NewString()
	repo.db.subjects[sub.ID] = &sub
	return sub, nil
}

// CreateStudent stores stu. It is used to seed the stand-in backend.
func (repo *StudentRepository) CreateStudent(_ context.Context, stu student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if stu.ID == "" {
		stu.ID = uuid.NewString()
	}
	stored := stu.Clone()
	repo.db.table[stu.ID] = &stored
	return stu, nil
}

func (repo *StudentRepository) FilterStudents(_ context.Context, filter student.Filter) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := repo.query()

	if filter.Grade != "" {
		var filtered []student.Student
		for _, stu := range students {
			if strings.EqualFold(stu.Grade, filter.Grade) {
				filtered = append(filtered, stu)
			}
		}
		students = filtered
	}
	if filter.Subject != "" {
		var filtered []student.Student
		for i := range students {
			if _, ok := students[i].Enrollment(filter.Subject); ok {
				filtered = append(filtered, students[i])
			}
		}
		students = filtered
	}
	// students with search keyword matching Name or ID ?
	if filter.Search != "" {
		search := strings.ToLower(filter.Search)
		var filtered []student.Student
		for _, stu := range students {
			if strings.Contains(strings.ToLower(stu.Name), search) ||
				strings.Contains(strings.ToLower(stu.ID), search) {
				filtered = append(filtered, stu)
			}
		}
		students = filtered
	}

	return students, nil
}

func (repo *StudentRepository) GetStudent(_ context.Context, id string) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if stu, ok := repo.db.table[id]; ok {
		return stu.Clone(), nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *StudentRepository) enrollment(id, subject string) (*student.Enrollment, error) {
	stu, ok := repo.db.table[id]
	if !ok {
		return nil, student.ErrNotFound
	}
	enr, ok := stu.Enrollment(subject)
	if !ok {
		return nil, student.ErrNotEnrolled
	}
	return enr, nil
}

func (repo *StudentRepository) SetAttendance(_ context.Context, slot attendance.Slot, status attendance.Status) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	enr, err := repo.enrollment(slot.StudentID, slot.Subject)
	if err != nil {
		return err
	}
	enr.Month(slot.Month).SetWeek(slot.Week, status)
	return nil
}

func (repo *StudentRepository) SetRecord(_ context.Context, ref attendance.RecordRef, status attendance.Status) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	enr, err := repo.enrollment(ref.StudentID, ref.Subject)
	if err != nil {
		return err
	}
	enr.Month(ref.Month).SetRecord(ref.Type, status)
	return nil
}

// ToggleRecord flips a fee or tute status under one write lock and returns the new value.
func (repo *StudentRepository) ToggleRecord(_ context.Context, ref attendance.RecordRef) (attendance.Status, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	enr, err := repo.enrollment(ref.StudentID, ref.Subject)
	if err != nil {
		return attendance.Pending, err
	}
	month := enr.Month(ref.Month)
	next := month.Record(ref.Type).Toggled()
	month.SetRecord(ref.Type, next)
	return next, nil
}
