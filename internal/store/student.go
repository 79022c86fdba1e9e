package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/pavelanni/attendance/internal/model"
)

const studentColumns = `id, name, class_id, active, created_at`

func scanStudent(row interface{ Scan(...any) error }) (model.Student, error) {
	var st model.Student
	err := row.Scan(&st.ID, &st.Name, &st.ClassID, &st.Active, &st.CreatedAt)
	return st, err
}

// CreateStudent inserts a student into a class.
func (s *Store) CreateStudent(st model.Student) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO students (name, class_id, active, created_at) VALUES (?, ?, ?, ?)`,
		st.Name, st.ClassID, st.Active, time.Now(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetStudent returns a student by ID, or nil when missing.
func (s *Store) GetStudent(ctx context.Context, id int64) (*model.Student, error) {
	st, err := scanStudent(s.db.QueryRowContext(ctx, `SELECT `+studentColumns+` FROM students WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// ListStudents returns every student of a class, active or not, by name.
func (s *Store) ListStudents(ctx context.Context, classID int64) ([]model.Student, error) {
	return s.queryStudents(ctx,
		`SELECT `+studentColumns+` FROM students WHERE class_id = ? ORDER BY name, id`, classID)
}

// ListActiveStudents returns the roster the wizard walks, by name.
func (s *Store) ListActiveStudents(ctx context.Context, classID int64) ([]model.Student, error) {
	return s.queryStudents(ctx,
		`SELECT `+studentColumns+` FROM students WHERE class_id = ? AND active = 1 ORDER BY name, id`, classID)
}

func (s *Store) queryStudents(ctx context.Context, query string, args ...any) ([]model.Student, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var students []model.Student
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, st)
	}
	return students, rows.Err()
}

// UpdateStudent renames a student or moves them to another class.
func (s *Store) UpdateStudent(id int64, name string, classID int64) error {
	res, err := s.db.Exec(`UPDATE students SET name = ?, class_id = ? WHERE id = ?`, name, classID, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// ToggleStudentActive flips the active flag on a student.
func (s *Store) ToggleStudentActive(id int64) error {
	_, err := s.db.Exec(`UPDATE students SET active = NOT active WHERE id = ?`, id)
	return err
}
