package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pavelanni/attendance/internal/model"
)

// ImportStats reports what a roster import changed.
type ImportStats struct {
	ClassesCreated  int `json:"classes_created"`
	StudentsCreated int `json:"students_created"`
	StudentsSkipped int `json:"students_skipped"`
}

// ImportRoster creates missing classes and students. Existing students are
// matched by name within their class and left untouched. A named teacher
// must already exist and is assigned to the class.
func (s *Store) ImportRoster(ctx context.Context, entries []model.RosterImport) (ImportStats, error) {
	var stats ImportStats
	for _, e := range entries {
		name := strings.TrimSpace(e.Class)
		if name == "" {
			return stats, fmt.Errorf("roster entry without class name")
		}

		class, err := s.GetClassByName(name)
		if err != nil {
			return stats, err
		}
		if class == nil {
			id, err := s.CreateClass(model.Class{Name: name, Active: true})
			if err != nil {
				return stats, fmt.Errorf("create class %q: %w", name, err)
			}
			class = &model.Class{ID: id, Name: name, Active: true}
			stats.ClassesCreated++
		}

		if e.Teacher != "" {
			teacher, err := s.GetUserByUsername(e.Teacher)
			if err != nil {
				return stats, err
			}
			if teacher == nil {
				return stats, fmt.Errorf("class %q: teacher %q: %w", name, e.Teacher, ErrNotFound)
			}
			if err := s.AssignTeacher(class.ID, &teacher.ID); err != nil {
				return stats, err
			}
		}

		existing, err := s.ListStudents(ctx, class.ID)
		if err != nil {
			return stats, err
		}
		known := make(map[string]bool, len(existing))
		for _, st := range existing {
			known[strings.ToLower(st.Name)] = true
		}
		for _, raw := range e.Students {
			sname := strings.TrimSpace(raw)
			if sname == "" || known[strings.ToLower(sname)] {
				stats.StudentsSkipped++
				continue
			}
			if _, err := s.CreateStudent(model.Student{Name: sname, ClassID: class.ID, Active: true}); err != nil {
				return stats, fmt.Errorf("create student %q: %w", sname, err)
			}
			known[strings.ToLower(sname)] = true
			stats.StudentsCreated++
		}
	}
	slog.Info("roster imported",
		"classes_created", stats.ClassesCreated,
		"students_created", stats.StudentsCreated,
		"students_skipped", stats.StudentsSkipped)
	return stats, nil
}
