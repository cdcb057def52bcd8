package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduflexsms/eduflex/core/account"
	"github.com/eduflexsms/eduflex/core/attendance"
	"github.com/eduflexsms/eduflex/core/student"
	"github.com/eduflexsms/eduflex/tests"
)

// wireStudent is the JSON the backend sends for students created by testutil.CreateStudent.
func wireStudent(stu student.Student) map[string]interface{} {
	subjects := make([]interface{}, 0, len(stu.Subjects))
	for _, enr := range stu.Subjects {
		subjects = append(subjects, map[string]interface{}{
			"subject": enr.Subject,
			"months": []interface{}{
				map[string]interface{}{
					"attendance": []string{"present", "present", "absent"},
					"fee":        true,
					"tute":       false,
				},
			},
		})
	}
	return map[string]interface{}{
		"id":       stu.ID,
		"name":     stu.Name,
		"grade":    stu.Grade,
		"subjects": subjects,
	}
}

func wirePage(totalPages int, students ...student.Student) map[string]interface{} {
	list := make([]interface{}, 0, len(students))
	for _, stu := range students {
		list = append(list, wireStudent(stu))
	}
	return map[string]interface{}{"students": list, "totalPages": totalPages}
}

type studentFixture struct {
	app                 testApp
	token               string
	adminToken          string
	amaya, kasun, nimal student.Student
}

func newStudentFixture(t *testing.T) studentFixture {
	app := setup(t)
	teacher := testutil.CreateAccount(t, app.accRepo, "Teacher", "teacher", "", "", []string{account.RoleTeacher}, true)
	admin := testutil.CreateAccount(t, app.accRepo, "Admin", "admin", "", "", []string{account.RoleAdmin}, true)

	return studentFixture{
		app:        app,
		token:      getToken(t, app, teacher),
		adminToken: getToken(t, app, admin),
		amaya:      testutil.CreateStudent(t, app.stuRepo, "ST0001", "Amaya Perera", "Grade 10", "Science", "Mathematics"),
		kasun:      testutil.CreateStudent(t, app.stuRepo, "ST0002", "Kasun Silva", "Grade 10", "Science"),
		nimal:      testutil.CreateStudent(t, app.stuRepo, "ST0003", "Nimal Fernando", "Grade 11", "Mathematics"),
	}
}

func Test_studentApi_queryGrades(t *testing.T) {
	fx := newStudentFixture(t)

	tests := []httpTest{
		{name: "auth required", path: "/api/students/grades", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "ok", path: "/api/students/grades", token: fx.token, wantCode: http.StatusOK, wantData: marchallList(t, "Grade 10", "Grade 11")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, fx.app.do(tt))
		})
	}
}

func Test_studentApi_queryStudents(t *testing.T) {
	fx := newStudentFixture(t)

	ok := func(name, path string, page map[string]interface{}) httpTest {
		return httpTest{name: name, path: path, token: fx.token, wantCode: http.StatusOK, wantData: marchallObj(t, page)}
	}

	tests := []httpTest{
		{name: "auth required", path: "/api/students", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		ok("first page", "/api/students", wirePage(2, fx.amaya, fx.kasun)),
		ok("second page", "/api/students?page=2", wirePage(2, fx.nimal)),
		ok("past the end", "/api/students?page=3", wirePage(2)),
		ok("page < 1", "/api/students?page=0", wirePage(2, fx.amaya, fx.kasun)),
		ok("grade", "/api/students?grade=grade%2011", wirePage(1, fx.nimal)),
		ok("subject", "/api/students?subject=science&grade=Grade%2010", wirePage(1, fx.amaya, fx.kasun)),
		ok("search by name", "/api/students?search=SILVA", wirePage(1, fx.kasun)),
		ok("search by id", "/api/students?search=st0003", wirePage(1, fx.nimal)),
		ok("no match", "/api/students?search=lol", wirePage(0)),
		{
			name: "bad page", path: "/api/students?page=two", token: fx.token, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"page": "page must be a number"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, fx.app.do(tt))
		})
	}
}

func Test_studentApi_setAttendance(t *testing.T) {
	fx := newStudentFixture(t)

	tests := []httpTest{
		{name: "auth required", path: "/api/attendance/ST0001/Science/0/3", body: []byte(`{"status":"present"}`), wantCode: http.StatusUnauthorized},
		{
			name: "present", path: "/api/attendance/ST0001/Science/0/3", body: []byte(`{"status":"present"}`),
			token: fx.token, wantCode: http.StatusOK, wantData: []byte(`{"status":"present"}`),
		},
		{
			name: "upper case", path: "/api/attendance/ST0001/Science/0/2", body: []byte(`{"status":"PRESENT"}`),
			token: fx.token, wantCode: http.StatusOK, wantData: []byte(`{"status":"present"}`),
		},
		{
			name: "another subject", path: "/api/attendance/ST0001/Mathematics/0/0", body: []byte(`{"status":"absent"}`),
			token: fx.token, wantCode: http.StatusOK, wantData: []byte(`{"status":"absent"}`),
		},
		{
			name: "invalid status", path: "/api/attendance/ST0001/Science/0/3", body: []byte(`{"status":"late"}`),
			token: fx.token, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"status": "status must be one of present, absent or pending"}),
		},
		{
			name: "missing status", path: "/api/attendance/ST0001/Science/0/3", body: []byte(`{}`),
			token: fx.token, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"status": "this field is required"}),
		},
		{
			name: "week out of range", path: "/api/attendance/ST0001/Science/0/5", body: []byte(`{"status":"present"}`),
			token: fx.token, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"week": "week must be between 0 and 4"}),
		},
		{
			name: "month not a number", path: "/api/attendance/ST0001/Science/jan/0", body: []byte(`{"status":"present"}`),
			token: fx.token, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"month": "month must be a number"}),
		},
		{
			name: "unknown student", path: "/api/attendance/ST9999/Science/0/0", body: []byte(`{"status":"present"}`),
			token: fx.token, wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: student.ErrNotFound.Error()}),
		},
		{
			name: "not enrolled", path: "/api/attendance/ST0002/Mathematics/0/0", body: []byte(`{"status":"present"}`),
			token: fx.token, wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: student.ErrNotEnrolled.Error()}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.method = http.MethodPatch
			checkCodeAndData(t, tt, fx.app.do(tt))
		})
	}

	stu, err := fx.app.stuRepo.GetStudent(context.Background(), "ST0001")
	require.NoError(t, err)
	sci, _ := stu.Enrollment("Science")
	assert.Equal(t, []attendance.Status{attendance.Present, attendance.Present, attendance.Present, attendance.Present}, sci.Months[0].Attendance)
	maths, _ := stu.Enrollment("Mathematics")
	assert.Equal(t, attendance.Absent, maths.Months[0].Week(0))
}

func Test_studentApi_toggleRecord(t *testing.T) {
	fx := newStudentFixture(t)

	tests := []httpTest{
		{name: "auth required", path: "/api/records/ST0001/Science/0/fee", wantCode: http.StatusUnauthorized},
		{name: "fee: paid -> unpaid", path: "/api/records/ST0001/Science/0/fee", token: fx.token, wantCode: http.StatusOK, wantData: []byte(`{"status":false}`)},
		{name: "fee: unpaid -> paid", path: "/api/records/ST0001/Science/0/fee", token: fx.token, wantCode: http.StatusOK, wantData: []byte(`{"status":true}`)},
		{name: "tute (any case)", path: "/api/records/ST0001/Science/0/TUTE", token: fx.token, wantCode: http.StatusOK, wantData: []byte(`{"status":true}`)},
		{name: "month without records", path: "/api/records/ST0001/Science/6/fee", token: fx.token, wantCode: http.StatusOK, wantData: []byte(`{"status":true}`)},
		{name: "unknown type", path: "/api/records/ST0001/Science/0/books", token: fx.token, wantCode: http.StatusNotFound},
		{
			name: "month out of range", path: "/api/records/ST0001/Science/12/fee", token: fx.token, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"month": "month must be between 0 and 11"}),
		},
		{
			name: "not enrolled", path: "/api/records/ST0003/Science/0/fee", token: fx.token, wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: student.ErrNotEnrolled.Error()}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.method = http.MethodPatch
			checkCodeAndData(t, tt, fx.app.do(tt))
		})
	}
}

func Test_studentApi_subjects(t *testing.T) {
	fx := newStudentFixture(t)

	science, err := fx.app.stuRepo.CreateSubject(context.Background(), student.Subject{Name: "Science", Fee: 2500})
	require.NoError(t, err)

	t.Run("list", func(t *testing.T) {
		tt := httpTest{path: "/api/subjects", token: fx.token, wantCode: http.StatusOK, wantData: marchallList(t, science)}
		checkCodeAndData(t, tt, fx.app.do(tt))
	})

	tests := []httpTest{
		{
			name: "admin required", body: []byte(`{"name":"ICT","fee":2200}`), token: fx.token,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "name required", body: []byte(`{"name":"  ","fee":2200}`), token: fx.adminToken,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"name": "this field is required"}),
		},
		{
			name: "duplicate", body: []byte(`{"name":"science"}`), token: fx.adminToken,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"name": student.ErrSubjectExists.Error()}),
		},
		{name: "ok", body: []byte(`{"name":" ICT ","fee":2200,"color":"#9C27B0"}`), token: fx.adminToken, wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.method = http.MethodPost
			tt.path = "/api/subjects"
			checkCodeAndData(t, tt, fx.app.do(tt))
		})
	}

	subjects, err := fx.app.stuRepo.QuerySubjects(context.Background())
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Equal(t, "ICT", subjects[0].Name)
	assert.Equal(t, "#9c27b0", subjects[0].Color)
}
