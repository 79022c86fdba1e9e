package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/pavelanni/attendance/internal/model"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("not found")

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every pooled connection would get its own empty in-memory database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// activityColumns maps each activity kind to its column in the activities table.
var activityColumns = map[model.ActivityKind]string{
	model.ActivityContacts:   "contacts",
	model.ActivityLiterature: "literature",
	model.ActivityVisits:     "visits",
	model.ActivityStudies:    "bible_studies",
	model.ActivityAssisted:   "people_assisted",
	model.ActivityBrought:    "people_brought",
	model.ActivityVisitors:   "visitors",
}

// activityColumnList returns the activity columns in model.ActivityKinds order.
func activityColumnList() []string {
	cols := make([]string, 0, len(model.ActivityKinds))
	for _, kind := range model.ActivityKinds {
		cols = append(cols, activityColumns[kind])
	}
	return cols
}

func (s *Store) migrate() error {
	var activityDefs strings.Builder
	for _, col := range activityColumnList() {
		activityDefs.WriteString("\t\t" + col + " INTEGER NOT NULL DEFAULT 0,\n")
	}

	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'teacher',
		active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS auth_sessions (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		created_at DATETIME NOT NULL,
		expires_at DATETIME NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS classes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		teacher_id INTEGER,
		active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (teacher_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS students (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		class_id INTEGER NOT NULL,
		active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (class_id) REFERENCES classes(id)
	);

	CREATE TABLE IF NOT EXISTS attendance (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		student_id INTEGER NOT NULL,
		class_id INTEGER NOT NULL,
		present BOOLEAN NOT NULL,
		date TEXT NOT NULL,
		recorded_at DATETIME NOT NULL,
		UNIQUE (student_id, date),
		FOREIGN KEY (student_id) REFERENCES students(id),
		FOREIGN KEY (class_id) REFERENCES classes(id)
	);
	CREATE INDEX IF NOT EXISTS idx_attendance_class_date ON attendance (class_id, date);

	CREATE TABLE IF NOT EXISTS activities (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		class_id INTEGER NOT NULL,
		date TEXT NOT NULL,
` + activityDefs.String() + `		recorded_at DATETIME NOT NULL,
		UNIQUE (class_id, date),
		FOREIGN KEY (class_id) REFERENCES classes(id)
	);

	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}
