package postgres

import (
	"context"
	"fmt"

	"unietl/internal/storage"
)

// schemaDDL creates the expected tables in foreign-key order. Statements are
// idempotent so bootstrap can run against a half-initialized database.
var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS department (
		department_id SERIAL PRIMARY KEY,
		dept_name VARCHAR(100) NOT NULL,
		dept_code VARCHAR(10) NOT NULL UNIQUE,
		building VARCHAR(50),
		established_year INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS instructor (
		instructor_id SERIAL PRIMARY KEY,
		first_name VARCHAR(50),
		last_name VARCHAR(50),
		email VARCHAR(100) NOT NULL UNIQUE,
		phone VARCHAR(15),
		hire_date DATE,
		rank VARCHAR(50),
		department_id INTEGER REFERENCES department(department_id)
	)`,
	`CREATE TABLE IF NOT EXISTS student (
		student_id SERIAL PRIMARY KEY,
		first_name VARCHAR(50),
		last_name VARCHAR(50),
		email VARCHAR(100) NOT NULL UNIQUE,
		phone VARCHAR(15),
		date_of_birth DATE,
		enrollment_year INTEGER,
		department_id INTEGER REFERENCES department(department_id),
		status VARCHAR(20)
	)`,
	`CREATE TABLE IF NOT EXISTS course (
		course_id SERIAL PRIMARY KEY,
		course_code VARCHAR(20) NOT NULL UNIQUE,
		course_name VARCHAR(100),
		description TEXT,
		credits INTEGER,
		department_id INTEGER REFERENCES department(department_id),
		prerequisite_course_id INTEGER REFERENCES course(course_id),
		max_capacity INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS classroom (
		classroom_id SERIAL PRIMARY KEY,
		building VARCHAR(50) NOT NULL,
		room_number VARCHAR(20) NOT NULL,
		capacity INTEGER,
		UNIQUE (building, room_number)
	)`,
	`CREATE TABLE IF NOT EXISTS schedule (
		schedule_id SERIAL PRIMARY KEY,
		course_id INTEGER REFERENCES course(course_id),
		instructor_id INTEGER REFERENCES instructor(instructor_id),
		classroom_id INTEGER REFERENCES classroom(classroom_id),
		day_of_week VARCHAR(10),
		start_time VARCHAR(5),
		end_time VARCHAR(5),
		semester VARCHAR(10),
		UNIQUE (course_id, day_of_week, start_time)
	)`,
	`CREATE TABLE IF NOT EXISTS enrollment (
		enrollment_id SERIAL PRIMARY KEY,
		student_id INTEGER REFERENCES student(student_id),
		schedule_id INTEGER REFERENCES schedule(schedule_id),
		enrollment_date DATE,
		grade VARCHAR(2),
		UNIQUE (student_id, schedule_id)
	)`,
}

func ensureSchema(ctx context.Context, repo storage.Repository) error {
	for _, stmt := range schemaDDL {
		if err := repo.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres ddl: %w", err)
		}
	}
	return nil
}
