package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/eduflexsms/eduflex/core/account"
	"github.com/eduflexsms/eduflex/core/attendance"
	"github.com/eduflexsms/eduflex/core/dashboard"
	"github.com/eduflexsms/eduflex/core/navigation"
	"github.com/eduflexsms/eduflex/core/student"
)

const suggestThreshold = 0.6

var (
	errNoSubject  = errors.New("select a subject first")
	errNotHere    = errors.New("not available in this view")
	errBadCommand = errors.New("bad arguments; type help")

	monthNames = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
)

type browseCommand struct {
	name  string
	usage string
	help  string
}

var browseCommands = []browseCommand{
	{"ls", "ls", "show the current list"},
	{"open", "open NAME", "open a grade, then a subject"},
	{"all", "all", "list every student (from the grade list)"},
	{"back", "back", "go up one level"},
	{"search", "search [TEXT]", "filter students by name or id"},
	{"page", "page N", "go to page N"},
	{"next", "next", "next page"},
	{"prev", "prev", "previous page"},
	{"month", "month 1-12", "month shown and edited"},
	{"mark", "mark ID WEEK present|absent|pending", "set the attendance of a week (1-5)"},
	{"fee", "fee ID", "flip the fee of the month"},
	{"tute", "tute ID", "flip the tute of the month"},
	{"summary", "summary", "totals of the month for the subject"},
	{"help", "help", "this help"},
	{"quit", "quit", "leave"},
}

func (cli *console) browseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Drill down grades, subjects and students interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return newBrowser(cli).run(cmd.Context())
		},
	}
}

// browser is the interactive drill-down session.
type browser struct {
	cli   *console
	page  *dashboard.StudentsPage
	month int // 0-11
}

func newBrowser(cli *console) *browser {
	b := &browser{cli: cli, month: int(nowFunc().Month()) - 1}
	b.page = dashboard.NewStudentsPage(cli.client, cli.logger, dashboard.NotifierFunc(b.notify))
	return b
}

func (b *browser) notify(n dashboard.Notice) {
	fmt.Fprintf(b.cli.out, "[%s] %s\n", n.Level, n.Message)
}

func (b *browser) run(ctx context.Context) error {
	if err := b.page.Load(ctx); err != nil {
		return err
	}
	fmt.Fprintf(b.cli.out, "Hello %s. Type help for the commands.\n", b.cli.identity.Name)
	b.list()

	for {
		fmt.Fprint(b.cli.out, b.prompt())
		line, err := b.cli.readLine()
		if err == io.EOF {
			fmt.Fprintln(b.cli.out)
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "reading command")
		}

		quit, err := b.exec(ctx, line)
		if err != nil {
			fmt.Fprintf(b.cli.out, "error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
}

func (b *browser) prompt() string {
	st := b.page.State()
	switch st.View() {
	case navigation.ViewSubjects:
		grade, _ := st.Grade()
		return grade + "> "
	case navigation.ViewStudents:
		grade, ok := st.Grade()
		if !ok {
			return "all students> "
		}
		subject, _ := st.Subject()
		return grade + "/" + subject + "> "
	}
	return "grades> "
}

func (b *browser) exec(ctx context.Context, line string) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	rest := strings.TrimSpace(strings.TrimPrefix(line, fields[0]))

	switch cmd {
	case "quit", "exit":
		return true, nil
	case "help":
		b.help()
	case "ls":
		b.list()
	case "open":
		err = b.open(ctx, rest)
	case "all":
		err = b.all(ctx)
	case "back":
		if err = b.page.Back(ctx); err == nil {
			b.list()
		}
	case "search":
		err = b.inStudents(func() error { return b.page.Search(ctx, rest) })
	case "page":
		n, convErr := strconv.Atoi(rest)
		if convErr != nil {
			return false, errBadCommand
		}
		err = b.inStudents(func() error { return b.page.SetPage(ctx, n) })
	case "next", "prev":
		n, _ := b.page.Page()
		if cmd == "next" {
			n++
		} else {
			n--
		}
		err = b.inStudents(func() error { return b.page.SetPage(ctx, n) })
	case "month":
		err = b.setMonth(rest)
	case "mark":
		err = b.mark(ctx, args)
	case "fee", "tute":
		err = b.toggle(ctx, attendance.RecordType(cmd), args)
	case "summary":
		err = b.summary()
	default:
		names := make([]string, 0, len(browseCommands))
		for _, c := range browseCommands {
			names = append(names, c.name)
		}
		err = unknown("command", cmd, names)
	}
	return false, err
}

func (b *browser) help() {
	tbl := newTable("COMMAND", "")
	for _, c := range browseCommands {
		tbl.addRow(c.usage, c.help)
	}
	fmt.Fprint(b.cli.out, tbl.render(b.cli.style))
}

func (b *browser) inStudents(fn func() error) error {
	if b.page.State().View() != navigation.ViewStudents {
		return errNotHere
	}
	if err := fn(); err != nil {
		return err
	}
	b.list()
	return nil
}

func (b *browser) open(ctx context.Context, name string) error {
	var next navigation.State
	switch st := b.page.State().(type) {
	case navigation.Grades:
		grade, err := pick("grade", name, b.page.Grades())
		if err != nil {
			return err
		}
		next = st.SelectGrade(grade)
	case navigation.Subjects:
		names := make([]string, 0)
		for _, sub := range b.page.Subjects() {
			names = append(names, sub.Name)
		}
		subject, err := pick("subject", name, names)
		if err != nil {
			return err
		}
		next = st.SelectSubject(subject)
	default:
		return errNotHere
	}

	if err := b.page.Navigate(ctx, next); err != nil {
		return err
	}
	b.list()
	return nil
}

func (b *browser) all(ctx context.Context) error {
	st, ok := b.page.State().(navigation.Grades)
	if !ok {
		return errNotHere
	}
	if err := b.page.Navigate(ctx, st.SelectAllStudents()); err != nil {
		return err
	}
	b.list()
	return nil
}

func (b *browser) setMonth(arg string) error {
	m, err := strconv.Atoi(arg)
	if err != nil || m < 1 || m > attendance.MonthsPerYear {
		return errors.New("month must be between 1 and 12")
	}
	b.month = m - 1
	if b.page.State().View() == navigation.ViewStudents {
		b.list()
	}
	return nil
}

func (b *browser) subject() (string, error) {
	subject, ok := b.page.State().Subject()
	if !ok {
		return "", errNoSubject
	}
	return subject, nil
}

func (b *browser) mark(ctx context.Context, args []string) error {
	subject, err := b.subject()
	if err != nil {
		return err
	}
	if len(args) != 3 {
		return errBadCommand
	}
	week, err := strconv.Atoi(args[1])
	if err != nil || week < 1 || week > attendance.WeeksPerMonth {
		return errors.Errorf("week must be between 1 and %d", attendance.WeeksPerMonth)
	}
	status, err := parseStatus(args[2])
	if err != nil {
		return err
	}

	slot := attendance.Slot{StudentID: b.studentID(args[0]), Subject: subject, Month: b.month, Week: week - 1}
	ch, err := b.page.ProposeAttendance(slot, status)
	if err != nil {
		return err
	}
	return b.confirm(ctx, ch)
}

func (b *browser) toggle(ctx context.Context, rt attendance.RecordType, args []string) error {
	subject, err := b.subject()
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return errBadCommand
	}

	ref := attendance.RecordRef{StudentID: b.studentID(args[0]), Subject: subject, Month: b.month, Type: rt}
	ch, err := b.page.ProposeToggle(ref)
	if err != nil {
		return err
	}
	return b.confirm(ctx, ch)
}

// studentID resolves id case-insensitively against the loaded students.
func (b *browser) studentID(id string) string {
	for _, stu := range b.page.Students() {
		if strings.EqualFold(stu.ID, id) {
			return stu.ID
		}
	}
	return id
}

// confirm asks before applying ch; anything but y/yes cancels.
func (b *browser) confirm(ctx context.Context, ch dashboard.Change) error {
	fmt.Fprintf(b.cli.out, "%s (now %s). Confirm? [y/N] ", ch.Describe(), ch.From)
	answer, err := b.cli.readLine()
	if err != nil && err != io.EOF {
		return errors.Wrap(err, "reading confirmation")
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
	default:
		fmt.Fprintln(b.cli.out, "Cancelled.")
		return nil
	}

	status, err := b.page.Confirm(ctx, ch)
	if err != nil {
		return err
	}
	fmt.Fprintf(b.cli.out, "Saved: %s.\n", status)
	return nil
}

func (b *browser) summary() error {
	sum, err := b.page.Summary(b.month)
	if err != nil {
		if err == dashboard.ErrNoSubject {
			return errNoSubject
		}
		return err
	}
	out := b.cli.out
	fmt.Fprintf(out, "%s, %s (%d students on this page)\n", sum.Subject, monthNames[sum.Month], sum.Students)
	fmt.Fprintf(out, "  attendance: %d present, %d absent, %d pending (%.0f%%)\n",
		sum.Present, sum.Absent, sum.Pending, sum.AttendanceRate()*100)
	fmt.Fprintf(out, "  fees:       %d paid, %d due\n", sum.FeesPaid, sum.FeesDue)
	fmt.Fprintf(out, "  tutes:      %d given, %d not yet\n", sum.TutesGiven, sum.TutesNotYet)
	return nil
}

func (b *browser) list() {
	out := b.cli.out
	st := b.page.State()
	switch st.View() {
	case navigation.ViewGrades:
		for _, g := range b.page.Grades() {
			fmt.Fprintln(out, g)
		}
		fmt.Fprintln(out, "(open GRADE, or all)")
	case navigation.ViewSubjects:
		b.cli.printSubjects(b.page.Subjects())
		fmt.Fprintln(out, "(open SUBJECT, or back)")
	case navigation.ViewStudents:
		students := b.page.Students()
		if subject, ok := st.Subject(); ok {
			fmt.Fprint(out, b.monthTable(students, subject))
		} else {
			tbl := newTable("ID", "NAME", "GRADE", "SUBJECTS")
			for _, stu := range students {
				tbl.addRow(stu.ID, stu.Name, stu.Grade, subjectNames(stu))
			}
			fmt.Fprint(out, tbl.render(b.cli.style))
		}
		n, total := b.page.Page()
		footer := pageFooter(n, total)
		if q := b.page.SearchTerm(); q != "" {
			footer += fmt.Sprintf(" (search %q)", q)
		}
		fmt.Fprintln(out, footer)
	}
}

// monthTable shows the weeks, fee and tute of the selected month.
func (b *browser) monthTable(students []student.Student, subject string) string {
	r := b.cli.style
	headers := []string{"ID", "NAME"}
	for w := 1; w <= attendance.WeeksPerMonth; w++ {
		headers = append(headers, "W"+strconv.Itoa(w))
	}
	headers = append(headers, "FEE", "TUTE")
	tbl := newTable(headers...)

	for _, stu := range students {
		enr, ok := stu.Enrollment(subject)
		if !ok {
			continue
		}
		var rec student.MonthRecord
		if b.month < len(enr.Months) {
			rec = enr.Months[b.month]
		}
		row := []string{stu.ID, stu.Name}
		for w := 0; w < attendance.WeeksPerMonth; w++ {
			row = append(row, statusCell(r, rec.Week(w)))
		}
		row = append(row,
			recordCell(r, attendance.RecordFee, rec.Fee),
			recordCell(r, attendance.RecordTute, rec.Tute),
		)
		tbl.addRow(row...)
	}
	return monthNames[b.month] + "\n" + tbl.render(r)
}

func parseStatus(s string) (attendance.Status, error) {
	switch strings.ToLower(s) {
	case "p", "present":
		return attendance.Present, nil
	case "a", "absent":
		return attendance.Absent, nil
	case "-", "pending":
		return attendance.Pending, nil
	}
	return attendance.Pending, errors.Errorf("unknown status %q; use present, absent or pending", s)
}

// pick returns the option matching name case-insensitively.
func pick(kind, name string, options []string) (string, error) {
	for _, opt := range options {
		if strings.EqualFold(opt, name) {
			return opt, nil
		}
	}
	return "", unknown(kind, name, options)
}

// unknown builds a "did you mean" error from the closest option.
func unknown(kind, name string, options []string) error {
	type scored struct {
		opt   string
		score float64
	}
	candidates := make([]scored, 0, len(options))
	for _, opt := range options {
		if score := account.Similarity(name, opt); score >= suggestThreshold {
			candidates = append(candidates, scored{opt, score})
		}
	}
	if len(candidates) == 0 {
		return errors.Errorf("unknown %s %q", kind, name)
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
	return errors.Errorf("unknown %s %q, did you mean %q?", kind, name, candidates[0].opt)
}
