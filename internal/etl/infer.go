package etl

import "strings"

// sheetNames maps common sheet/file names to their entity. Plural forms are
// what spreadsheet authors actually use.
var sheetNames = map[string]string{
	"departments": "department",
	"students":    "student",
	"courses":     "course",
	"instructors": "instructor",
	"classrooms":  "classroom",
	"schedules":   "schedule",
	"enrollments": "enrollment",
}

// InferTable decides which entity a dataset targets. An explicit override
// wins; otherwise distinctive column combinations are checked, then the
// sheet name, and finally the lowercased name is taken verbatim.
func InferTable(name string, columns []string, explicit string) string {
	if explicit != "" {
		return explicit
	}

	has := func(col string) bool {
		for _, c := range columns {
			if c == col {
				return true
			}
		}
		return false
	}

	switch {
	case has("dept_code") || has("dept_name"):
		return "department"
	case has("enrollment_year") || (has("email") && has("date_of_birth")):
		return "student"
	case has("course_code") || has("course_name"):
		return "course"
	case has("hire_date") && has("rank"):
		return "instructor"
	case has("room_number") || (has("building") && has("capacity")):
		return "classroom"
	case has("day_of_week") && has("start_time"):
		return "schedule"
	case has("grade") && has("schedule_id"):
		return "enrollment"
	}

	lower := strings.ToLower(strings.TrimSpace(name))
	if entity, ok := sheetNames[lower]; ok {
		return entity
	}
	return lower
}
