package testutil

import (
	"context"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/eduflexsms/eduflex/core"
	"github.com/eduflexsms/eduflex/core/account"
	"github.com/eduflexsms/eduflex/core/attendance"
	"github.com/eduflexsms/eduflex/core/student"
)

func CreateAccount(
	t *testing.T,
	repo account.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) account.Account {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	acc := account.Account{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := acc.SetPassword(pwd); err != nil {
			t.Fatalf("createAccount() failed: %v", err)
		}
	}
	acc, err := repo.CreateAccount(context.Background(), acc)
	if err != nil {
		t.Fatalf("createAccount() failed: %v", err)
	}
	return acc
}

// StudentCreator is implemented by repositories that can store students directly.
type StudentCreator interface {
	CreateStudent(ctx context.Context, stu student.Student) (student.Student, error)
}

// CreateStudent stores a student enrolled in subjects, with January partly recorded:
// weeks 1-2 present, week 3 absent, fee paid, tute pending.
func CreateStudent(t *testing.T, repo StudentCreator, id, name, grade string, subjects ...string) student.Student {
	stu := student.Student{ID: id, Name: name, Grade: grade}
	for _, sub := range subjects {
		stu.Subjects = append(stu.Subjects, student.Enrollment{
			Subject: sub,
			Months: []student.MonthRecord{{
				Attendance: []attendance.Status{attendance.Present, attendance.Present, attendance.Absent},
				Fee:        attendance.Present,
			}},
		})
	}
	stu, err := repo.CreateStudent(context.Background(), stu)
	if err != nil {
		t.Fatalf("createStudent() failed: %v", err)
	}
	return stu
}

// NewValidator returns a validator with every custom tag of the app registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	account.InitValidators(validate, translator)
	attendance.InitValidators(validate, translator)
	return validate, translator
}
