package store

import (
	"context"
	"fmt"

	"github.com/pavelanni/attendance/internal/model"
)

// ExportRange gathers every class, student and record needed to report on
// the dates from..to inclusive.
func (s *Store) ExportRange(ctx context.Context, from, to string) (*model.RecordSet, error) {
	classes, err := s.ListClasses()
	if err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}

	set := &model.RecordSet{From: from, To: to, Classes: classes}
	for _, c := range classes {
		students, err := s.ListStudents(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("list students of class %d: %w", c.ID, err)
		}
		set.Students = append(set.Students, students...)
	}

	if set.Attendance, err = s.ListAttendanceRange(ctx, from, to); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	if set.Activities, err = s.ListActivitiesRange(ctx, from, to); err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return set, nil
}
