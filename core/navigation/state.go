// Package navigation implements the grade → subject → students drill-down state.
//
// A State is one of three variants: Grades, Subjects or Students. Transitions are
// methods on the variant they are valid for, so an invalid transition (e.g. selecting
// a subject while on the grade list) does not compile. States produced by a transition
// are committed through a Navigator.
package navigation

type View uint8

const (
	ViewGrades View = iota
	ViewSubjects
	ViewStudents
)

func (v View) String() string {
	switch v {
	case ViewGrades:
		return "grades"
	case ViewSubjects:
		return "subjects"
	case ViewStudents:
		return "students"
	}
	return "unknown"
}

// State is a navigation state. It is implemented only by Grades, Subjects and Students.
type State interface {
	View() View
	// Grade returns the selected grade; ok is false when no grade is selected.
	Grade() (grade string, ok bool)
	// Subject returns the selected subject; ok is false when no subject is selected.
	Subject() (subject string, ok bool)
	// Back returns the state reached by going back. Back on Grades returns Grades.
	Back() State

	// base is the navigator generation the state was derived from.
	base() uint64
	committed(gen uint64) State
}

// Grades is the root grade list. The zero value is the initial state.
type Grades struct {
	gen, from uint64
}

// SelectGrade drills into the subject list of a grade.
func (g Grades) SelectGrade(grade string) Subjects {
	return Subjects{grade: grade, from: g.gen}
}

// SelectAllStudents jumps to the unfiltered student list.
func (g Grades) SelectAllStudents() Students {
	return Students{all: true, from: g.gen}
}

func (g Grades) View() View { return ViewGrades }
func (g Grades) Grade() (string, bool) { return "", false }
func (g Grades) Subject() (string, bool) { return "", false }
func (g Grades) Back() State { return Grades{gen: g.gen, from: g.gen} }
func (g Grades) base() uint64 { return g.from }
func (g Grades) committed(gen uint64) State { g.gen = gen; return g }

// Subjects is the subject list of a selected grade.
type Subjects struct {
	grade     string
	gen, from uint64
}

// SelectSubject drills into the students of the selected grade taking subject.
func (s Subjects) SelectSubject(subject string) Students {
	return Students{grade: s.grade, subject: subject, from: s.gen}
}

func (s Subjects) View() View { return ViewSubjects }
func (s Subjects) Grade() (string, bool) { return s.grade, true }
func (s Subjects) Subject() (string, bool) { return "", false }
func (s Subjects) Back() State { return Grades{from: s.gen} }
func (s Subjects) base() uint64 { return s.from }
func (s Subjects) committed(gen uint64) State { s.gen = gen; return s }

// Students is the student list, either for a grade and subject or for everyone ("view all").
type Students struct {
	grade, subject string
	all            bool
	gen, from      uint64
}

// All reports whether the list was entered through SelectAllStudents.
func (s Students) All() bool { return s.all }

func (s Students) View() View { return ViewStudents }

func (s Students) Grade() (string, bool) {
	if s.all {
		return "", false
	}
	return s.grade, true
}

func (s Students) Subject() (string, bool) {
	if s.all {
		return "", false
	}
	return s.subject, true
}

func (s Students) Back() State {
	if s.all {
		return Grades{from: s.gen}
	}
	return Subjects{grade: s.grade, from: s.gen}
}

func (s Students) base() uint64 { return s.from }
func (s Students) committed(gen uint64) State { s.gen = gen; return s }

// Equal reports whether a and b describe the same view and selection.
func Equal(a, b State) bool {
	if a == nil || b == nil {
		return a == b
	}
	ag, aok := a.Grade()
	bg, bok := b.Grade()
	as, asok := a.Subject()
	bs, bsok := b.Subject()
	return a.View() == b.View() && ag == bg && aok == bok && as == bs && asok == bsok
}
