package transform

import (
	"fmt"
	"log"

	"unietl/internal/validate"
	"unietl/pkg/records"
)

// Allowed enumerations per entity. Compared on exact trimmed string form.
var (
	StudentStatuses  = []string{"Active", "Inactive", "Graduated", "Suspended"}
	InstructorRanks  = []string{"Professor", "Associate Professor", "Assistant Professor", "Lecturer", "Adjunct"}
	WeekDays         = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	Semesters        = []string{"Fall", "Spring", "Summer"}
	EnrollmentGrades = []string{"A", "A-", "B+", "B", "B-", "C+", "C", "C-", "D+", "D", "F", "W", "I"}
	timeOfDayLayout  = "15:04"
)

// Departments transforms raw department rows. Natural key: dept_code.
func Departments(rows []records.Record) Result {
	res := Result{Stats: Stats{Total: len(rows)}}
	keep, removed := DedupFirst(rows, "dept_code")
	res.Stats.DuplicatesRemoved = removed

	for _, ix := range keep {
		row := rows[ix]
		var errs []string
		if !row.Has("dept_name") || !row.Has("dept_code") {
			errs = append(errs, "Missing required fields: dept_name or dept_code")
		}
		if res.reject("department", ix, "dept_code", row.String("dept_code"), errs) {
			continue
		}
		res.accept(records.Record{
			"dept_name":        validate.CleanString(row["dept_name"], 100),
			"dept_code":        validate.CleanString(row["dept_code"], 10),
			"building":         validate.CleanString(row["building"], 50),
			"established_year": intOrNil(row["established_year"]),
		})
	}
	logOutcome("department", res)
	return res
}

// Students transforms raw student rows. Natural key: email.
func Students(rows []records.Record) Result {
	res := Result{Stats: Stats{Total: len(rows)}}
	keep, removed := DedupFirst(rows, "email")
	res.Stats.DuplicatesRemoved = removed

	for _, ix := range keep {
		row := rows[ix]
		status := row["status"]
		if !row.Has("status") {
			status = "Active"
		}

		var errs []string
		if !validate.Email(row["email"]) {
			errs = append(errs, fmt.Sprintf("Invalid email: %v", row["email"]))
		}
		if !validate.Phone(row["phone"]) {
			errs = append(errs, fmt.Sprintf("Invalid phone: %v", row["phone"]))
		}
		if !validate.Date(row["date_of_birth"], "") {
			errs = append(errs, fmt.Sprintf("Invalid date_of_birth: %v", row["date_of_birth"]))
		}
		if !validate.Year(row["enrollment_year"]) {
			errs = append(errs, fmt.Sprintf("Invalid enrollment_year: %v", row["enrollment_year"]))
		}
		if !validate.Status(status, StudentStatuses) {
			errs = append(errs, fmt.Sprintf("Invalid status: %v", row["status"]))
		}
		if res.reject("student", ix, "email", row.String("email"), errs) {
			continue
		}
		year, _ := validate.Integer(row["enrollment_year"])
		res.accept(records.Record{
			"first_name":      validate.CleanString(row["first_name"], 50),
			"last_name":       validate.CleanString(row["last_name"], 50),
			"email":           validate.CleanString(row["email"], 100),
			"phone":           validate.CleanString(row["phone"], 15),
			"date_of_birth":   validate.CleanString(row["date_of_birth"], 0),
			"enrollment_year": year,
			"department_id":   intOrNil(row["department_id"]),
			"status":          validate.CleanString(status, 20),
		})
	}
	logOutcome("student", res)
	return res
}

// Courses transforms raw course rows. Natural key: course_code.
func Courses(rows []records.Record) Result {
	res := Result{Stats: Stats{Total: len(rows)}}
	keep, removed := DedupFirst(rows, "course_code")
	res.Stats.DuplicatesRemoved = removed

	for _, ix := range keep {
		row := rows[ix]
		var errs []string
		if !validate.IntegerInRange(row["credits"], 1, 6) {
			errs = append(errs, fmt.Sprintf("Invalid credits: %v", row["credits"]))
		}
		if res.reject("course", ix, "course_code", row.String("course_code"), errs) {
			continue
		}
		credits, _ := validate.Integer(row["credits"])
		res.accept(records.Record{
			"course_code":            validate.CleanString(row["course_code"], 20),
			"course_name":            validate.CleanString(row["course_name"], 100),
			"description":            validate.CleanString(row["description"], 0),
			"credits":                credits,
			"department_id":          intOrNil(row["department_id"]),
			"prerequisite_course_id": intOrNil(row["prerequisite_course_id"]),
			"max_capacity":           intOrNil(row["max_capacity"]),
		})
	}
	logOutcome("course", res)
	return res
}

// Instructors transforms raw instructor rows. Natural key: email.
func Instructors(rows []records.Record) Result {
	res := Result{Stats: Stats{Total: len(rows)}}
	keep, removed := DedupFirst(rows, "email")
	res.Stats.DuplicatesRemoved = removed

	for _, ix := range keep {
		row := rows[ix]
		var errs []string
		if !validate.Email(row["email"]) {
			errs = append(errs, fmt.Sprintf("Invalid email: %v", row["email"]))
		}
		if !validate.Phone(row["phone"]) {
			errs = append(errs, fmt.Sprintf("Invalid phone: %v", row["phone"]))
		}
		if !validate.Date(row["hire_date"], "") {
			errs = append(errs, fmt.Sprintf("Invalid hire_date: %v", row["hire_date"]))
		}
		if row.Has("rank") && !validate.Status(row["rank"], InstructorRanks) {
			errs = append(errs, fmt.Sprintf("Invalid rank: %v", row["rank"]))
		}
		if res.reject("instructor", ix, "email", row.String("email"), errs) {
			continue
		}
		res.accept(records.Record{
			"first_name":    validate.CleanString(row["first_name"], 50),
			"last_name":     validate.CleanString(row["last_name"], 50),
			"email":         validate.CleanString(row["email"], 100),
			"phone":         validate.CleanString(row["phone"], 15),
			"hire_date":     validate.CleanString(row["hire_date"], 0),
			"rank":          validate.CleanString(row["rank"], 50),
			"department_id": intOrNil(row["department_id"]),
		})
	}
	logOutcome("instructor", res)
	return res
}

// Classrooms transforms raw classroom rows. Natural key: (building, room_number).
func Classrooms(rows []records.Record) Result {
	res := Result{Stats: Stats{Total: len(rows)}}
	keep, removed := DedupFirst(rows, "building", "room_number")
	res.Stats.DuplicatesRemoved = removed

	for _, ix := range keep {
		row := rows[ix]
		var errs []string
		if !row.Has("building") || !row.Has("room_number") {
			errs = append(errs, "Missing required fields: building or room_number")
		}
		if row.Has("capacity") && !validate.IntegerInRange(row["capacity"], 1, 10000) {
			errs = append(errs, fmt.Sprintf("Invalid capacity: %v", row["capacity"]))
		}
		key := row.String("building") + "/" + row.String("room_number")
		if res.reject("classroom", ix, "key", key, errs) {
			continue
		}
		res.accept(records.Record{
			"building":    validate.CleanString(row["building"], 50),
			"room_number": validate.CleanString(row["room_number"], 20),
			"capacity":    intOrNil(row["capacity"]),
		})
	}
	logOutcome("classroom", res)
	return res
}

// Schedules transforms raw schedule rows.
// Natural key: (course_id, day_of_week, start_time).
func Schedules(rows []records.Record) Result {
	res := Result{Stats: Stats{Total: len(rows)}}
	keep, removed := DedupFirst(rows, "course_id", "day_of_week", "start_time")
	res.Stats.DuplicatesRemoved = removed

	for _, ix := range keep {
		row := rows[ix]
		var errs []string
		if !validate.Status(row["day_of_week"], WeekDays) {
			errs = append(errs, fmt.Sprintf("Invalid day_of_week: %v", row["day_of_week"]))
		}
		if !validate.Date(row["start_time"], timeOfDayLayout) {
			errs = append(errs, fmt.Sprintf("Invalid start_time: %v", row["start_time"]))
		}
		if row.Has("end_time") && !validate.Date(row["end_time"], timeOfDayLayout) {
			errs = append(errs, fmt.Sprintf("Invalid end_time: %v", row["end_time"]))
		}
		if row.Has("semester") && !validate.Status(row["semester"], Semesters) {
			errs = append(errs, fmt.Sprintf("Invalid semester: %v", row["semester"]))
		}
		key := row.String("course_id") + "/" + row.String("day_of_week") + "/" + row.String("start_time")
		if res.reject("schedule", ix, "key", key, errs) {
			continue
		}
		res.accept(records.Record{
			"course_id":     intOrNil(row["course_id"]),
			"instructor_id": intOrNil(row["instructor_id"]),
			"classroom_id":  intOrNil(row["classroom_id"]),
			"day_of_week":   validate.CleanString(row["day_of_week"], 10),
			"start_time":    validate.CleanString(row["start_time"], 5),
			"end_time":      validate.CleanString(row["end_time"], 5),
			"semester":      validate.CleanString(row["semester"], 10),
		})
	}
	logOutcome("schedule", res)
	return res
}

// Enrollments transforms raw enrollment rows. Natural key: (student_id, schedule_id).
func Enrollments(rows []records.Record) Result {
	res := Result{Stats: Stats{Total: len(rows)}}
	keep, removed := DedupFirst(rows, "student_id", "schedule_id")
	res.Stats.DuplicatesRemoved = removed

	for _, ix := range keep {
		row := rows[ix]
		var errs []string
		if _, ok := validate.Integer(row["student_id"]); !ok {
			errs = append(errs, fmt.Sprintf("Invalid student_id: %v", row["student_id"]))
		}
		if _, ok := validate.Integer(row["schedule_id"]); !ok {
			errs = append(errs, fmt.Sprintf("Invalid schedule_id: %v", row["schedule_id"]))
		}
		if row.Has("enrollment_date") && !validate.Date(row["enrollment_date"], "") {
			errs = append(errs, fmt.Sprintf("Invalid enrollment_date: %v", row["enrollment_date"]))
		}
		if row.Has("grade") && !validate.Status(row["grade"], EnrollmentGrades) {
			errs = append(errs, fmt.Sprintf("Invalid grade: %v", row["grade"]))
		}
		key := row.String("student_id") + "/" + row.String("schedule_id")
		if res.reject("enrollment", ix, "key", key, errs) {
			continue
		}
		res.accept(records.Record{
			"student_id":      intOrNil(row["student_id"]),
			"schedule_id":     intOrNil(row["schedule_id"]),
			"enrollment_date": validate.CleanString(row["enrollment_date"], 0),
			"grade":           validate.CleanString(row["grade"], 2),
		})
	}
	logOutcome("enrollment", res)
	return res
}

// reject appends a RowError and bumps the invalid counter when errs is
// non-empty. It returns true when the row was rejected. field is the
// natural-key column name the key value serializes under.
func (r *Result) reject(table string, row int, field, key string, errs []string) bool {
	if len(errs) == 0 {
		return false
	}
	r.Errors = append(r.Errors, RowError{Table: table, Row: row, Field: field, Key: key, Errors: errs})
	r.Stats.Invalid++
	return true
}

func (r *Result) accept(rec records.Record) {
	r.Rows = append(r.Rows, rec)
	r.Stats.Valid++
}

// intOrNil coerces v to int64 or nil. Foreign keys arrive already resolved;
// garbage here is left to the database constraints rather than re-validated.
func intOrNil(v any) any {
	if n, ok := validate.Integer(v); ok {
		return n
	}
	return nil
}

func logOutcome(table string, res Result) {
	log.Printf("transform %s: total=%d valid=%d invalid=%d duplicates_removed=%d",
		table, res.Stats.Total, res.Stats.Valid, res.Stats.Invalid, res.Stats.DuplicatesRemoved)
}
