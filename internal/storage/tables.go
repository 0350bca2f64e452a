package storage

// Tables declares the seven entity tables and their natural keys. Column
// order here is statement order for every backend.
var Tables = map[string]TableSpec{
	"department": {
		Table:      "department",
		Columns:    []string{"dept_name", "dept_code", "building", "established_year"},
		KeyColumns: []string{"dept_code"},
		IDColumn:   "department_id",
	},
	"student": {
		Table:      "student",
		Columns:    []string{"first_name", "last_name", "email", "phone", "date_of_birth", "enrollment_year", "department_id", "status"},
		KeyColumns: []string{"email"},
		IDColumn:   "student_id",
	},
	"course": {
		Table:      "course",
		Columns:    []string{"course_code", "course_name", "description", "credits", "department_id", "prerequisite_course_id", "max_capacity"},
		KeyColumns: []string{"course_code"},
		IDColumn:   "course_id",
	},
	"instructor": {
		Table:      "instructor",
		Columns:    []string{"first_name", "last_name", "email", "phone", "hire_date", "rank", "department_id"},
		KeyColumns: []string{"email"},
		IDColumn:   "instructor_id",
	},
	"classroom": {
		Table:      "classroom",
		Columns:    []string{"building", "room_number", "capacity"},
		KeyColumns: []string{"building", "room_number"},
		IDColumn:   "classroom_id",
	},
	"schedule": {
		Table:      "schedule",
		Columns:    []string{"course_id", "instructor_id", "classroom_id", "day_of_week", "start_time", "end_time", "semester"},
		KeyColumns: []string{"course_id", "day_of_week", "start_time"},
		IDColumn:   "schedule_id",
	},
	"enrollment": {
		Table:      "enrollment",
		Columns:    []string{"student_id", "schedule_id", "enrollment_date", "grade"},
		KeyColumns: []string{"student_id", "schedule_id"},
		IDColumn:   "enrollment_id",
	},
}

// LoadOrder fixes parent-before-child loading so foreign keys resolve.
var LoadOrder = []string{
	"department",
	"instructor",
	"student",
	"course",
	"classroom",
	"schedule",
	"enrollment",
}
