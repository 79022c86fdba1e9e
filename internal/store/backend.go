package store

import (
	"context"
	"fmt"
	"time"

	"github.com/pavelanni/attendance/internal/model"
)

// WizardBackend serves the recording wizard from the local database.
type WizardBackend struct {
	store      *Store
	recentDays int
	now        func() time.Time
}

// NewWizardBackend returns a backend whose recent-date lookups reach back
// recentDays from now.
func NewWizardBackend(s *Store, recentDays int, now func() time.Time) *WizardBackend {
	if now == nil {
		now = time.Now
	}
	if recentDays <= 0 {
		recentDays = 7
	}
	return &WizardBackend{store: s, recentDays: recentDays, now: now}
}

func (b *WizardBackend) ListActiveStudents(ctx context.Context, classID int64) ([]model.Student, error) {
	return b.store.ListActiveStudents(ctx, classID)
}

func (b *WizardBackend) GetTodayRecordStatus(ctx context.Context, classID int64, date string) (model.TodayStatus, error) {
	var status model.TodayStatus
	records, err := b.store.ListAttendance(ctx, classID, date)
	if err != nil {
		return status, err
	}
	activity, err := b.store.GetActivity(ctx, classID, date)
	if err != nil {
		return status, err
	}
	status.AttendanceRecords = records
	if activity != nil {
		status.ActivityRecord = activity.Payload()
	}
	status.HasRecords = len(records) > 0 || activity != nil
	return status, nil
}

func (b *WizardBackend) FindRecentRecordDates(ctx context.Context, classID int64) (model.RecentDates, error) {
	since := b.now().AddDate(0, 0, -b.recentDays).Format(model.DateLayout)
	dates, err := b.store.RecordDates(ctx, classID, since)
	if err != nil {
		return model.RecentDates{}, err
	}
	return model.RecentDates{HasRecords: len(dates) > 0, DatesFound: dates}, nil
}

func (b *WizardBackend) ListAttendance(ctx context.Context, classID int64, date string) ([]model.AttendanceRecord, error) {
	return b.store.ListAttendance(ctx, classID, date)
}

func (b *WizardBackend) ListActivities(ctx context.Context, classID int64, date string) ([]model.ActivityPayload, error) {
	rec, err := b.store.GetActivity(ctx, classID, date)
	if err != nil || rec == nil {
		return nil, err
	}
	return []model.ActivityPayload{rec.Payload()}, nil
}

func (b *WizardBackend) CreateAttendanceRecord(ctx context.Context, classID, studentID int64, present bool, date string) (model.AttendanceRecord, error) {
	st, err := b.store.GetStudent(ctx, studentID)
	if err != nil {
		return model.AttendanceRecord{}, err
	}
	if st == nil {
		return model.AttendanceRecord{}, fmt.Errorf("student %d: %w", studentID, ErrNotFound)
	}
	if st.ClassID != classID {
		return model.AttendanceRecord{}, fmt.Errorf("student %d, class %d: %w", studentID, classID, model.ErrStudentNotInClass)
	}
	return b.store.UpsertAttendance(ctx, studentID, present, date)
}

func (b *WizardBackend) CreateActivityRecord(ctx context.Context, classID int64, date string, counts model.ActivityCounts) (model.ActivityPayload, error) {
	rec, err := b.store.UpsertActivity(ctx, classID, date, counts)
	if err != nil {
		return nil, err
	}
	return rec.Payload(), nil
}
