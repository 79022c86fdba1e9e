package wizard

import (
	"context"

	"github.com/pavelanni/attendance/internal/model"
)

// Backend is the persistence collaborator the wizard reads from and writes to.
// Create operations are expected to replace any record with the same key
// (student and date for attendance, class and date for activities).
// CreateAttendanceRecord must refuse a student outside classID with
// model.ErrStudentNotInClass.
type Backend interface {
	ListActiveStudents(ctx context.Context, classID int64) ([]model.Student, error)
	GetTodayRecordStatus(ctx context.Context, classID int64, date string) (model.TodayStatus, error)
	FindRecentRecordDates(ctx context.Context, classID int64) (model.RecentDates, error)
	ListAttendance(ctx context.Context, classID int64, date string) ([]model.AttendanceRecord, error)
	ListActivities(ctx context.Context, classID int64, date string) ([]model.ActivityPayload, error)
	CreateAttendanceRecord(ctx context.Context, classID, studentID int64, present bool, date string) (model.AttendanceRecord, error)
	CreateActivityRecord(ctx context.Context, classID int64, date string, counts model.ActivityCounts) (model.ActivityPayload, error)
}
