package inmemdb

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/pkg/errors"

	"github.com/eduflexsms/eduflex/core/attendance"
	"github.com/eduflexsms/eduflex/core/student"
)

var (
	demoGrades   = []string{"Grade 06", "Grade 07", "Grade 08", "Grade 09", "Grade 10", "Grade 11"}
	demoSubjects = []student.Subject{
		{Name: "Science", Fee: 2500, Color: "#4caf50"},
		{Name: "Mathematics", Fee: 3000, Color: "#2196f3"},
		{Name: "English", Fee: 2000, Color: "#ff9800"},
		{Name: "ICT", Fee: 2200, Color: "#9c27b0"},
		{Name: "Buddhism", Fee: 1500},
	}
	demoFirstNames = []string{
		"Amaya", "Nimal", "Kasun", "Dilini", "Tharushi", "Sahan", "Ishara", "Chamod",
		"Nethmi", "Ravindu", "Sanduni", "Pasindu", "Hiruni", "Yasiru", "Kavindi", "Dinuka",
	}
	demoLastNames = []string{"Perera", "Silva", "Fernando", "Jayasinghe", "Bandara", "Wickramasinghe"}
)

// Seed fills db with demo subjects and perGrade students per grade.
// The data only depends on seed.
func Seed(ctx context.Context, db *DB, perGrade int, seed int64) error {
	rnd := rand.New(rand.NewSource(seed))
	repo := &StudentRepository{db: db.student}

	for _, sub := range demoSubjects {
		if _, err := repo.CreateSubject(ctx, sub); err != nil && err != student.ErrSubjectExists {
			return errors.Wrapf(err, "seeding subject %s", sub.Name)
		}
	}

	n := 0
	for _, grade := range demoGrades {
		for i := 0; i < perGrade; i++ {
			n++
			stu := student.Student{
				ID:     fmt.Sprintf("ST%04d", n),
				Name:   demoFirstNames[rnd.Intn(len(demoFirstNames))] + " " + demoLastNames[rnd.Intn(len(demoLastNames))],
				Grade:  grade,
				Mobile: fmt.Sprintf("07%d%07d", rnd.Intn(8), rnd.Intn(10000000)),
			}
			for _, sub := range demoSubjects {
				if rnd.Intn(3) == 0 {
					continue
				}
				stu.Subjects = append(stu.Subjects, demoEnrollment(rnd, sub.Name))
			}
			if _, err := repo.CreateStudent(ctx, stu); err != nil {
				return errors.Wrapf(err, "seeding student %s", stu.ID)
			}
		}
	}
	return nil
}

// demoEnrollment fills the first months of the year; later months stay pending.
func demoEnrollment(rnd *rand.Rand, subject string) student.Enrollment {
	statuses := []attendance.Status{attendance.Present, attendance.Present, attendance.Present, attendance.Absent, attendance.Pending}
	enr := student.Enrollment{Subject: subject}
	filled := 1 + rnd.Intn(4)
	for m := 0; m < attendance.MonthsPerYear; m++ {
		rec := enr.Month(m)
		if m >= filled {
			continue
		}
		for w := 0; w < attendance.WeeksPerMonth; w++ {
			rec.SetWeek(w, statuses[rnd.Intn(len(statuses))])
		}
		if rnd.Intn(4) != 0 {
			rec.Fee = attendance.Present
		}
		if rnd.Intn(2) == 0 {
			rec.Tute = attendance.Present
		}
	}
	return enr
}
