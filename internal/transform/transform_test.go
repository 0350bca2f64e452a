package transform

import (
	"encoding/json"
	"reflect"
	"testing"

	"unietl/pkg/records"
)

func validStudent(email string) records.Record {
	return records.Record{
		"first_name":      "Ada",
		"last_name":       "Lovelace",
		"email":           email,
		"phone":           "+1 555 123 4567",
		"date_of_birth":   "2000-12-10",
		"enrollment_year": "2020",
		"department_id":   "3",
		"status":          "Active",
	}
}

func TestDepartmentsValidRow(t *testing.T) {
	res := Departments([]records.Record{{
		"dept_name":        "  Computer Science  ",
		"dept_code":        "CS",
		"building":         "Science Hall",
		"established_year": "1965",
	}})
	want := Stats{Total: 1, Valid: 1}
	if res.Stats != want {
		t.Fatalf("stats = %+v, want %+v", res.Stats, want)
	}
	got := res.Rows[0]
	wantRow := records.Record{
		"dept_name":        "Computer Science",
		"dept_code":        "CS",
		"building":         "Science Hall",
		"established_year": int64(1965),
	}
	if !reflect.DeepEqual(got, wantRow) {
		t.Fatalf("row = %#v, want %#v", got, wantRow)
	}
}

func TestDepartmentsMissingRequired(t *testing.T) {
	res := Departments([]records.Record{{"dept_name": "Physics"}})
	if res.Stats.Invalid != 1 || len(res.Rows) != 0 {
		t.Fatalf("stats = %+v, rows = %d", res.Stats, len(res.Rows))
	}
	re := res.Errors[0]
	if re.Table != "department" || re.Row != 0 {
		t.Fatalf("error = %+v", re)
	}
	wantMsg := []string{"Missing required fields: dept_name or dept_code"}
	if !reflect.DeepEqual(re.Errors, wantMsg) {
		t.Fatalf("messages = %v, want %v", re.Errors, wantMsg)
	}
}

func TestDepartmentsDedup(t *testing.T) {
	res := Departments([]records.Record{
		{"dept_name": "CS first", "dept_code": "CS"},
		{"dept_name": "CS second", "dept_code": "CS"},
		{"dept_name": "Math", "dept_code": "MATH"},
	})
	want := Stats{Total: 3, Valid: 2, DuplicatesRemoved: 1}
	if res.Stats != want {
		t.Fatalf("stats = %+v, want %+v", res.Stats, want)
	}
	if got := res.Rows[0]["dept_name"]; got != "CS first" {
		t.Fatalf("kept %v, want the first occurrence", got)
	}
}

func TestStudentsCollectsAllErrors(t *testing.T) {
	bad := validStudent("not-an-email")
	bad["enrollment_year"] = "1850"
	res := Students([]records.Record{bad})
	if res.Stats.Invalid != 1 {
		t.Fatalf("stats = %+v", res.Stats)
	}
	if len(res.Errors[0].Errors) != 2 {
		t.Fatalf("want both messages collected, got %v", res.Errors[0].Errors)
	}
}

func TestStudentsDefaultStatus(t *testing.T) {
	row := validStudent("ada@example.edu")
	delete(row, "status")
	res := Students([]records.Record{row})
	if res.Stats.Valid != 1 {
		t.Fatalf("stats = %+v, errors = %v", res.Stats, res.Errors)
	}
	if got := res.Rows[0]["status"]; got != "Active" {
		t.Fatalf("status = %v, want Active", got)
	}
}

func TestStudentsInvalidExplicitStatus(t *testing.T) {
	row := validStudent("ada@example.edu")
	row["status"] = "Expelled"
	res := Students([]records.Record{row})
	if res.Stats.Invalid != 1 {
		t.Fatalf("stats = %+v", res.Stats)
	}
}

func TestStudentsRowIndexSurvivesDedup(t *testing.T) {
	res := Students([]records.Record{
		validStudent("a@example.edu"),
		validStudent("a@example.edu"),
		{"email": "broken"},
	})
	want := Stats{Total: 3, Valid: 1, Invalid: 1, DuplicatesRemoved: 1}
	if res.Stats != want {
		t.Fatalf("stats = %+v, want %+v", res.Stats, want)
	}
	// The invalid row keeps its original position in the input.
	if res.Errors[0].Row != 2 {
		t.Fatalf("error row = %d, want 2", res.Errors[0].Row)
	}
}

func TestCoursesCredits(t *testing.T) {
	res := Courses([]records.Record{
		{"course_code": "CS101", "course_name": "Intro", "credits": "3"},
		{"course_code": "CS999", "course_name": "Overload", "credits": "7"},
	})
	want := Stats{Total: 2, Valid: 1, Invalid: 1}
	if res.Stats != want {
		t.Fatalf("stats = %+v, want %+v", res.Stats, want)
	}
	if got := res.Rows[0]["credits"]; got != int64(3) {
		t.Fatalf("credits = %v (%T), want int64(3)", got, got)
	}
}

func TestClassroomsCompositeKey(t *testing.T) {
	res := Classrooms([]records.Record{
		{"building": "Science", "room_number": "101", "capacity": "40"},
		{"building": "Science", "room_number": "101", "capacity": "50"},
		{"building": "Arts", "room_number": "101"},
		{"room_number": "200"},
	})
	want := Stats{Total: 4, Valid: 2, Invalid: 1, DuplicatesRemoved: 1}
	if res.Stats != want {
		t.Fatalf("stats = %+v, want %+v", res.Stats, want)
	}
	if res.Errors[0].Key != "/200" {
		t.Fatalf("key = %q", res.Errors[0].Key)
	}
}

func TestSchedules(t *testing.T) {
	res := Schedules([]records.Record{
		{"course_id": "1", "day_of_week": "Monday", "start_time": "09:00", "end_time": "10:30", "semester": "Fall"},
		{"course_id": "1", "day_of_week": "Funday", "start_time": "09:00"},
		{"course_id": "2", "day_of_week": "Tuesday", "start_time": "25:00"},
	})
	want := Stats{Total: 3, Valid: 1, Invalid: 2}
	if res.Stats != want {
		t.Fatalf("stats = %+v, want %+v", res.Stats, want)
	}
}

func TestEnrollments(t *testing.T) {
	res := Enrollments([]records.Record{
		{"student_id": "1", "schedule_id": "2", "enrollment_date": "2024-09-01", "grade": "A-"},
		{"student_id": "x", "schedule_id": "2"},
		{"student_id": "1", "schedule_id": "2", "grade": "E"},
	})
	// Row 2 shares the natural key of row 0 and is removed before validation.
	want := Stats{Total: 3, Valid: 1, Invalid: 1, DuplicatesRemoved: 1}
	if res.Stats != want {
		t.Fatalf("stats = %+v, want %+v", res.Stats, want)
	}
	if got := res.Rows[0]["student_id"]; got != int64(1) {
		t.Fatalf("student_id = %v (%T), want int64(1)", got, got)
	}
}

func TestRowErrorJSONUsesKeyColumnName(t *testing.T) {
	cases := []struct {
		name  string
		err   RowError
		field string
	}{
		{"department", RowError{Table: "department", Field: "dept_code", Key: "CS"}, "dept_code"},
		{"student", RowError{Table: "student", Field: "email", Key: "a@x.com"}, "email"},
		{"composite", RowError{Table: "classroom", Field: "key", Key: "Science/101"}, "key"},
		{"zero value field", RowError{Table: "schedule", Key: "1/Monday/09:00"}, "key"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			data, err := json.Marshal(c.err)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var m map[string]any
			if err := json.Unmarshal(data, &m); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got := m[c.field]; got != c.err.Key {
				t.Fatalf("%s = %v, want %q in %s", c.field, got, c.err.Key, data)
			}
			if _, hasTable := m["table"]; !hasTable {
				t.Fatalf("missing table in %s", data)
			}
		})
	}
}

func TestTransformErrorFieldNames(t *testing.T) {
	dept := Departments([]records.Record{{"dept_name": "Physics"}})
	if got := dept.Errors[0].Field; got != "dept_code" {
		t.Fatalf("department field = %q, want dept_code", got)
	}
	stu := Students([]records.Record{{"email": "broken"}})
	if got := stu.Errors[0].Field; got != "email" {
		t.Fatalf("student field = %q, want email", got)
	}
}

func TestStatsAdd(t *testing.T) {
	s := Stats{Total: 1, Valid: 1}
	s.Add(Stats{Total: 2, Invalid: 1, DuplicatesRemoved: 1})
	want := Stats{Total: 3, Valid: 1, Invalid: 1, DuplicatesRemoved: 1}
	if s != want {
		t.Fatalf("sum = %+v, want %+v", s, want)
	}
}

func TestNewReportNormalizesNilErrors(t *testing.T) {
	rep := NewReport(Stats{Total: 1, Valid: 1}, nil)
	if rep.Errors == nil || len(rep.Errors) != 0 {
		t.Fatalf("errors = %#v, want empty slice", rep.Errors)
	}
	if rep.Timestamp == "" {
		t.Fatal("timestamp not set")
	}
}
