package wizard

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/pavelanni/attendance/internal/model"
)

var errBackend = errors.New("backend unavailable")

type attendanceCall struct {
	ClassID   int64
	StudentID int64
	Present   bool
	Date      string
}

type activityCall struct {
	ClassID int64
	Date    string
	Counts  model.ActivityCounts
}

// fakeBackend is an in-memory Backend that records every write.
type fakeBackend struct {
	students map[int64][]model.Student
	status   model.TodayStatus
	recent   model.RecentDates
	listed   []model.AttendanceRecord
	acts     []model.ActivityPayload

	studentsErr    error
	statusErr      error
	attendanceErr  error
	activityErr    error
	failAttendance map[int64]bool
	enrolled       map[int64]int64 // student -> class, checked on attendance writes

	attendanceCalls []attendanceCall
	activityCalls   []activityCall
	listCalls       int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		students:       make(map[int64][]model.Student),
		failAttendance: make(map[int64]bool),
		enrolled:       make(map[int64]int64),
	}
}

func (f *fakeBackend) ListActiveStudents(_ context.Context, classID int64) ([]model.Student, error) {
	if f.studentsErr != nil {
		return nil, f.studentsErr
	}
	return f.students[classID], nil
}

func (f *fakeBackend) GetTodayRecordStatus(_ context.Context, _ int64, _ string) (model.TodayStatus, error) {
	if f.statusErr != nil {
		return model.TodayStatus{}, f.statusErr
	}
	return f.status, nil
}

func (f *fakeBackend) FindRecentRecordDates(_ context.Context, _ int64) (model.RecentDates, error) {
	return f.recent, nil
}

func (f *fakeBackend) ListAttendance(_ context.Context, _ int64, _ string) ([]model.AttendanceRecord, error) {
	f.listCalls++
	return f.listed, nil
}

func (f *fakeBackend) ListActivities(_ context.Context, _ int64, _ string) ([]model.ActivityPayload, error) {
	return f.acts, nil
}

func (f *fakeBackend) CreateAttendanceRecord(_ context.Context, classID, studentID int64, present bool, date string) (model.AttendanceRecord, error) {
	if f.attendanceErr != nil || f.failAttendance[studentID] {
		return model.AttendanceRecord{}, errBackend
	}
	if other, ok := f.enrolled[studentID]; ok && other != classID {
		return model.AttendanceRecord{}, model.ErrStudentNotInClass
	}
	f.attendanceCalls = append(f.attendanceCalls, attendanceCall{classID, studentID, present, date})
	return model.AttendanceRecord{StudentID: studentID, ClassID: classID, Present: present, Date: date}, nil
}

func (f *fakeBackend) CreateActivityRecord(_ context.Context, classID int64, date string, counts model.ActivityCounts) (model.ActivityPayload, error) {
	if f.activityErr != nil {
		return nil, f.activityErr
	}
	f.activityCalls = append(f.activityCalls, activityCall{classID, date, counts})
	return model.ActivityRecord{ID: 1, ClassID: classID, Date: date, Counts: counts}.Payload(), nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func students(classID int64, names ...string) []model.Student {
	out := make([]model.Student, 0, len(names))
	for i, n := range names {
		out = append(out, model.Student{ID: int64(i + 1), Name: n, ClassID: classID, Active: true})
	}
	return out
}
