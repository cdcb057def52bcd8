package dashboard

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/eduflexsms/eduflex/core"
	"github.com/eduflexsms/eduflex/core/attendance"
	"github.com/eduflexsms/eduflex/core/navigation"
	"github.com/eduflexsms/eduflex/core/student"
)

var (
	ErrNotLoaded = errors.New("student is not in the current list")
	ErrNoSubject = errors.New("no subject selected")
)

// StudentsPage is the controller of the students page.
// It is safe for concurrent use; no lock is held during backend calls.
type StudentsPage struct {
	nav      *navigation.Navigator
	backend  Backend
	log      core.Logger
	notifier Notifier

	mu         sync.RWMutex
	grades     []string
	subjects   []student.Subject
	students   []student.Student
	totalPages int
	page       int
	search     string
	seq        uint64 // last issued student fetch
}

func NewStudentsPage(backend Backend, logger core.Logger, notifier Notifier) *StudentsPage {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	p := &StudentsPage{backend: backend, log: logger, notifier: notifier, page: 1}
	p.nav = navigation.New(navigation.WithObserver(p.onTransition))
	return p
}

// onTransition drops the student list when leaving the students view.
// Observers run outside the navigator lock, so a late call must not clear a list
// that a newer transition back into the students view already fetched.
func (p *StudentsPage) onTransition(from, to navigation.State) {
	if from.View() != navigation.ViewStudents || to.View() == navigation.ViewStudents {
		return
	}
	if p.nav.State().View() == navigation.ViewStudents {
		return
	}
	p.mu.Lock()
	p.students = nil
	p.totalPages = 0
	p.page = 1
	p.search = ""
	p.mu.Unlock()
}

// Load fetches the grade and subject lists.
func (p *StudentsPage) Load(ctx context.Context) error {
	var (
		grades   []string
		subjects []student.Subject
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		grades, err = p.backend.Grades(gctx)
		return errors.Wrap(err, "fetching grades")
	})
	g.Go(func() (err error) {
		subjects, err = p.backend.Subjects(gctx)
		return errors.Wrap(err, "fetching subjects")
	})
	if err := g.Wait(); err != nil {
		p.log.Error("loading students page", err)
		return err
	}

	p.mu.Lock()
	p.grades = grades
	p.subjects = subjects
	p.mu.Unlock()
	return nil
}

// State returns the current navigation state. Transitions passed to Navigate must be derived from it.
func (p *StudentsPage) State() navigation.State {
	return p.nav.State()
}

// Navigate commits next and fetches the student list when it enters the students view.
func (p *StudentsPage) Navigate(ctx context.Context, next navigation.State) error {
	t, err := p.nav.Go(next)
	if err != nil {
		return err
	}
	return p.entered(ctx, t)
}

func (p *StudentsPage) Back(ctx context.Context) error {
	return p.entered(ctx, p.nav.Back())
}

func (p *StudentsPage) entered(ctx context.Context, t navigation.Ticket) error {
	if t.State().View() != navigation.ViewStudents {
		return nil
	}
	p.mu.Lock()
	p.page = 1
	p.mu.Unlock()
	return p.Refresh(ctx)
}

// Search filters the student list by name or id and goes back to the first page.
func (p *StudentsPage) Search(ctx context.Context, q string) error {
	p.mu.Lock()
	p.search = strings.TrimSpace(q)
	p.page = 1
	p.mu.Unlock()
	return p.Refresh(ctx)
}

// SetPage moves to page n, clamped to [1, total pages].
func (p *StudentsPage) SetPage(ctx context.Context, n int) error {
	p.mu.Lock()
	if p.totalPages > 0 && n > p.totalPages {
		n = p.totalPages
	}
	if n < 1 {
		n = 1
	}
	p.page = n
	p.mu.Unlock()
	return p.Refresh(ctx)
}

// Refresh fetches the student list for the current state.
// A result that arrives after a transition or after a newer fetch was issued is dropped.
func (p *StudentsPage) Refresh(ctx context.Context) error {
	ticket := p.nav.Ticket()
	state := ticket.State()
	if state.View() != navigation.ViewStudents {
		return nil
	}

	p.mu.Lock()
	p.seq++
	seq := p.seq
	filter := student.Filter{Page: p.page, Search: p.search}
	p.mu.Unlock()
	filter.Grade, _ = state.Grade()
	filter.Subject, _ = state.Subject()

	page, err := p.backend.Students(ctx, filter)

	p.mu.Lock()
	defer p.mu.Unlock()
	if seq != p.seq || !p.nav.Current(ticket) {
		p.log.Debug("dropping stale student list", map[string]interface{}{
			"grade": filter.Grade, "subject": filter.Subject, "page": filter.Page,
		})
		return nil
	}
	if err != nil {
		err = errors.Wrap(err, "fetching students")
		p.log.Error("refreshing student list", err)
		return err
	}
	p.students = page.Students
	p.totalPages = page.TotalPages
	return nil
}

func (p *StudentsPage) Grades() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]string(nil), p.grades...)
}

func (p *StudentsPage) Subjects() []student.Subject {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]student.Subject(nil), p.subjects...)
}

// Students returns a copy of the loaded list.
func (p *StudentsPage) Students() []student.Student {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.studentsLocked()
}

func (p *StudentsPage) studentsLocked() []student.Student {
	if p.students == nil {
		return nil
	}
	out := make([]student.Student, len(p.students))
	for i := range p.students {
		out[i] = p.students[i].Clone()
	}
	return out
}

// Page returns the current page and the total page count of the list.
func (p *StudentsPage) Page() (page, total int) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.page, p.totalPages
}

func (p *StudentsPage) SearchTerm() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.search
}

// ProposeAttendance prepares marking slot as status.
func (p *StudentsPage) ProposeAttendance(slot attendance.Slot, status attendance.Status) (Change, error) {
	if err := slot.Validate(); err != nil {
		return Change{}, err
	}
	return p.propose(Change{Slot: slot, To: status})
}

// ProposeToggle prepares flipping a fee or tute record.
func (p *StudentsPage) ProposeToggle(ref attendance.RecordRef) (Change, error) {
	if err := ref.Validate(); err != nil {
		return Change{}, err
	}
	ref.Type, _ = attendance.ParseRecordType(string(ref.Type))
	ch, err := p.propose(Change{Record: ref, Toggle: true})
	if err != nil {
		return Change{}, err
	}
	ch.To = ch.From.Toggled()
	return ch, nil
}

func (p *StudentsPage) propose(ch Change) (Change, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	stu := p.find(ch.StudentID())
	if stu == nil {
		return Change{}, ErrNotLoaded
	}
	from, ok := ch.get(stu)
	if !ok {
		return Change{}, student.ErrNotEnrolled
	}
	ch.From = from
	return ch, nil
}

// Confirm applies ch locally, then on the backend. It returns the resulting status.
// When the backend fails, the local value goes back to ch.From unless it was replaced meanwhile.
func (p *StudentsPage) Confirm(ctx context.Context, ch Change) (attendance.Status, error) {
	p.swap(ch, nil, ch.To)

	result := ch.To
	var err error
	if ch.Toggle {
		result, err = p.backend.ToggleRecord(ctx, ch.Record)
	} else {
		err = p.backend.SetAttendance(ctx, ch.Slot, ch.To)
	}

	if err != nil {
		expect := ch.To
		p.swap(ch, &expect, ch.From)
		err = errors.Wrapf(err, "updating %s", targetOf(ch))
		p.log.Error("confirming change", err)
		p.notifier.Notify(Notice{Level: LevelError, Message: fmt.Sprintf("Could not %s. The change was undone.", ch.Describe())})
		return ch.From, err
	}

	if result != ch.To {
		expect := ch.To
		p.swap(ch, &expect, result)
	}
	return result, nil
}

// swap sets the addressed value to next if it currently holds *expect (any value when expect is nil).
func (p *StudentsPage) swap(ch Change, expect *attendance.Status, next attendance.Status) {
	p.mu.Lock()
	defer p.mu.Unlock()
	stu := p.find(ch.StudentID())
	if stu == nil {
		return
	}
	if expect != nil {
		if cur, ok := ch.get(stu); !ok || cur != *expect {
			return
		}
	}
	ch.set(stu, next)
}

func (p *StudentsPage) find(id string) *student.Student {
	for i := range p.students {
		if p.students[i].ID == id {
			return &p.students[i]
		}
	}
	return nil
}

// Summary aggregates month of the selected subject over the loaded list.
func (p *StudentsPage) Summary(month int) (student.Summary, error) {
	subject, ok := p.nav.State().Subject()
	if !ok {
		return student.Summary{}, ErrNoSubject
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return student.Summarize(p.students, subject, month), nil
}

func targetOf(ch Change) string {
	if ch.Toggle {
		return ch.Record.String()
	}
	return ch.Slot.String()
}
