package sqlite

import (
	"context"
	"fmt"

	"unietl/internal/storage"
)

var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS department (
		department_id INTEGER PRIMARY KEY AUTOINCREMENT,
		dept_name TEXT NOT NULL,
		dept_code TEXT NOT NULL UNIQUE,
		building TEXT,
		established_year INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS instructor (
		instructor_id INTEGER PRIMARY KEY AUTOINCREMENT,
		first_name TEXT,
		last_name TEXT,
		email TEXT NOT NULL UNIQUE,
		phone TEXT,
		hire_date TEXT,
		rank TEXT,
		department_id INTEGER REFERENCES department(department_id)
	)`,
	`CREATE TABLE IF NOT EXISTS student (
		student_id INTEGER PRIMARY KEY AUTOINCREMENT,
		first_name TEXT,
		last_name TEXT,
		email TEXT NOT NULL UNIQUE,
		phone TEXT,
		date_of_birth TEXT,
		enrollment_year INTEGER,
		department_id INTEGER REFERENCES department(department_id),
		status TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS course (
		course_id INTEGER PRIMARY KEY AUTOINCREMENT,
		course_code TEXT NOT NULL UNIQUE,
		course_name TEXT,
		description TEXT,
		credits INTEGER,
		department_id INTEGER REFERENCES department(department_id),
		prerequisite_course_id INTEGER REFERENCES course(course_id),
		max_capacity INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS classroom (
		classroom_id INTEGER PRIMARY KEY AUTOINCREMENT,
		building TEXT NOT NULL,
		room_number TEXT NOT NULL,
		capacity INTEGER,
		UNIQUE (building, room_number)
	)`,
	`CREATE TABLE IF NOT EXISTS schedule (
		schedule_id INTEGER PRIMARY KEY AUTOINCREMENT,
		course_id INTEGER REFERENCES course(course_id),
		instructor_id INTEGER REFERENCES instructor(instructor_id),
		classroom_id INTEGER REFERENCES classroom(classroom_id),
		day_of_week TEXT,
		start_time TEXT,
		end_time TEXT,
		semester TEXT,
		UNIQUE (course_id, day_of_week, start_time)
	)`,
	`CREATE TABLE IF NOT EXISTS enrollment (
		enrollment_id INTEGER PRIMARY KEY AUTOINCREMENT,
		student_id INTEGER REFERENCES student(student_id),
		schedule_id INTEGER REFERENCES schedule(schedule_id),
		enrollment_date TEXT,
		grade TEXT,
		UNIQUE (student_id, schedule_id)
	)`,
}

func ensureSchema(ctx context.Context, repo storage.Repository) error {
	for _, stmt := range schemaDDL {
		if err := repo.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite ddl: %w", err)
		}
	}
	return nil
}
