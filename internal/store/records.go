package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pavelanni/attendance/internal/model"
)

const attendanceColumns = `id, student_id, class_id, present, date, recorded_at`

func scanAttendance(row interface{ Scan(...any) error }) (model.AttendanceRecord, error) {
	var r model.AttendanceRecord
	err := row.Scan(&r.ID, &r.StudentID, &r.ClassID, &r.Present, &r.Date, &r.RecordedAt)
	return r, err
}

// UpsertAttendance stores the mark for a student on a date, replacing any
// earlier mark for the same pair. The class is taken from the student.
func (s *Store) UpsertAttendance(ctx context.Context, studentID int64, present bool, date string) (model.AttendanceRecord, error) {
	st, err := s.GetStudent(ctx, studentID)
	if err != nil {
		return model.AttendanceRecord{}, err
	}
	if st == nil {
		return model.AttendanceRecord{}, fmt.Errorf("student %d: %w", studentID, ErrNotFound)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO attendance (student_id, class_id, present, date, recorded_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(student_id, date) DO UPDATE SET
		   class_id = excluded.class_id,
		   present = excluded.present,
		   recorded_at = excluded.recorded_at`,
		studentID, st.ClassID, present, date, time.Now(),
	)
	if err != nil {
		return model.AttendanceRecord{}, err
	}
	return scanAttendance(s.db.QueryRowContext(ctx,
		`SELECT `+attendanceColumns+` FROM attendance WHERE student_id = ? AND date = ?`, studentID, date))
}

// ListAttendance returns the marks of a class on a date.
func (s *Store) ListAttendance(ctx context.Context, classID int64, date string) ([]model.AttendanceRecord, error) {
	return s.queryAttendance(ctx,
		`SELECT `+attendanceColumns+` FROM attendance WHERE class_id = ? AND date = ? ORDER BY id`, classID, date)
}

// ListAttendanceRange returns all marks between from and to inclusive.
func (s *Store) ListAttendanceRange(ctx context.Context, from, to string) ([]model.AttendanceRecord, error) {
	return s.queryAttendance(ctx,
		`SELECT `+attendanceColumns+` FROM attendance WHERE date >= ? AND date <= ? ORDER BY date, class_id, id`, from, to)
}

func (s *Store) queryAttendance(ctx context.Context, query string, args ...any) ([]model.AttendanceRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []model.AttendanceRecord
	for rows.Next() {
		r, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func activitySelect() string {
	return `SELECT id, class_id, date, ` + strings.Join(activityColumnList(), ", ") + `, recorded_at FROM activities`
}

func scanActivity(row interface{ Scan(...any) error }) (model.ActivityRecord, error) {
	var r model.ActivityRecord
	values := make([]int, len(model.ActivityKinds))
	dest := []any{&r.ID, &r.ClassID, &r.Date}
	for i := range values {
		dest = append(dest, &values[i])
	}
	dest = append(dest, &r.RecordedAt)
	if err := row.Scan(dest...); err != nil {
		return r, err
	}
	r.Counts = make(model.ActivityCounts, len(model.ActivityKinds))
	for i, kind := range model.ActivityKinds {
		r.Counts[kind] = values[i]
	}
	return r, nil
}

// UpsertActivity stores the activity counts of a class on a date,
// replacing any earlier record for the same pair. Missing kinds are saved as 0.
func (s *Store) UpsertActivity(ctx context.Context, classID int64, date string, counts model.ActivityCounts) (model.ActivityRecord, error) {
	cols := activityColumnList()
	full := counts.Complete()

	placeholders := strings.Repeat("?, ", len(cols))
	updates := make([]string, 0, len(cols)+1)
	for _, c := range cols {
		updates = append(updates, c+" = excluded."+c)
	}
	updates = append(updates, "recorded_at = excluded.recorded_at")

	args := []any{classID, date}
	for _, kind := range model.ActivityKinds {
		args = append(args, full[kind])
	}
	args = append(args, time.Now())

	query := `INSERT INTO activities (class_id, date, ` + strings.Join(cols, ", ") + `, recorded_at)
		 VALUES (?, ?, ` + placeholders + `?)
		 ON CONFLICT(class_id, date) DO UPDATE SET ` + strings.Join(updates, ", ")
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return model.ActivityRecord{}, err
	}
	return scanActivity(s.db.QueryRowContext(ctx, activitySelect()+` WHERE class_id = ? AND date = ?`, classID, date))
}

// GetActivity returns the activity record of a class on a date, or nil.
func (s *Store) GetActivity(ctx context.Context, classID int64, date string) (*model.ActivityRecord, error) {
	r, err := scanActivity(s.db.QueryRowContext(ctx, activitySelect()+` WHERE class_id = ? AND date = ?`, classID, date))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListActivitiesRange returns all activity records between from and to inclusive.
func (s *Store) ListActivitiesRange(ctx context.Context, from, to string) ([]model.ActivityRecord, error) {
	rows, err := s.db.QueryContext(ctx, activitySelect()+` WHERE date >= ? AND date <= ? ORDER BY date, class_id`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []model.ActivityRecord
	for rows.Next() {
		r, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// RecordDates returns the distinct dates on or after since that hold any
// attendance or activity record for a class, newest first.
func (s *Store) RecordDates(ctx context.Context, classID int64, since string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date FROM attendance WHERE class_id = ? AND date >= ?
		 UNION
		 SELECT date FROM activities WHERE class_id = ? AND date >= ?
		 ORDER BY date DESC`,
		classID, since, classID, since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}
