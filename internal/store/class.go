package store

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/pavelanni/attendance/internal/model"
)

const classColumns = `id, name, teacher_id, active, created_at`

func scanClass(row interface{ Scan(...any) error }) (model.Class, error) {
	var c model.Class
	var teacherID sql.NullInt64
	if err := row.Scan(&c.ID, &c.Name, &teacherID, &c.Active, &c.CreatedAt); err != nil {
		return c, err
	}
	if teacherID.Valid {
		id := teacherID.Int64
		c.TeacherID = &id
	}
	return c, nil
}

// CreateClass inserts a class.
func (s *Store) CreateClass(c model.Class) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO classes (name, teacher_id, active, created_at) VALUES (?, ?, ?, ?)`,
		c.Name, c.TeacherID, c.Active, time.Now(),
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	slog.Info("created class", "id", id, "name", c.Name)
	return id, nil
}

// GetClass returns a class by ID, or nil when missing.
func (s *Store) GetClass(id int64) (*model.Class, error) {
	c, err := scanClass(s.db.QueryRow(`SELECT `+classColumns+` FROM classes WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetClassByName returns a class by name, or nil when missing.
func (s *Store) GetClassByName(name string) (*model.Class, error) {
	c, err := scanClass(s.db.QueryRow(`SELECT `+classColumns+` FROM classes WHERE name = ?`, name))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListClasses returns all classes by name.
func (s *Store) ListClasses() ([]model.Class, error) {
	return s.queryClasses(`SELECT ` + classColumns + ` FROM classes ORDER BY name`)
}

// ListClassesForTeacher returns the active classes assigned to a teacher.
func (s *Store) ListClassesForTeacher(teacherID int64) ([]model.Class, error) {
	return s.queryClasses(
		`SELECT `+classColumns+` FROM classes WHERE teacher_id = ? AND active = 1 ORDER BY name`,
		teacherID,
	)
}

func (s *Store) queryClasses(query string, args ...any) ([]model.Class, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var classes []model.Class
	for rows.Next() {
		c, err := scanClass(rows)
		if err != nil {
			return nil, err
		}
		classes = append(classes, c)
	}
	return classes, rows.Err()
}

// RenameClass changes a class name.
func (s *Store) RenameClass(id int64, name string) error {
	res, err := s.db.Exec(`UPDATE classes SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// AssignTeacher sets or clears (nil) the teacher of a class.
func (s *Store) AssignTeacher(classID int64, teacherID *int64) error {
	res, err := s.db.Exec(`UPDATE classes SET teacher_id = ? WHERE id = ?`, teacherID, classID)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// ToggleClassActive flips the active flag on a class.
func (s *Store) ToggleClassActive(id int64) error {
	_, err := s.db.Exec(`UPDATE classes SET active = NOT active WHERE id = ?`, id)
	return err
}
