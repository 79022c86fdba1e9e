package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pavelanni/attendance/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func insertTestClass(t *testing.T, s *Store, name string, students ...string) (int64, []int64) {
	t.Helper()
	classID, err := s.CreateClass(model.Class{Name: name, Active: true})
	if err != nil {
		t.Fatalf("CreateClass: %v", err)
	}
	var ids []int64
	for _, n := range students {
		id, err := s.CreateStudent(model.Student{Name: n, ClassID: classID, Active: true})
		if err != nil {
			t.Fatalf("CreateStudent: %v", err)
		}
		ids = append(ids, id)
	}
	return classID, ids
}

func TestUserCRUD(t *testing.T) {
	s := newTestStore(t)

	count, err := s.UserCount()
	if err != nil {
		t.Fatalf("UserCount: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 users, got %d", count)
	}

	id, err := s.CreateUser(model.User{
		Username: "maria", DisplayName: "Maria", PasswordHash: "x",
		Role: model.UserRoleTeacher, Active: true,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	u, err := s.GetUserByUsername("maria")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if u == nil || u.ID != id || u.Role != model.UserRoleTeacher {
		t.Fatalf("unexpected user %+v", u)
	}

	missing, err := s.GetUserByID(9999)
	if err != nil || missing != nil {
		t.Errorf("expected nil user, got %+v (%v)", missing, err)
	}

	teachers, err := s.ListTeachers()
	if err != nil {
		t.Fatalf("ListTeachers: %v", err)
	}
	if len(teachers) != 1 {
		t.Fatalf("expected 1 teacher, got %d", len(teachers))
	}

	if err := s.ToggleUserActive(id); err != nil {
		t.Fatalf("ToggleUserActive: %v", err)
	}
	teachers, _ = s.ListTeachers()
	if len(teachers) != 0 {
		t.Errorf("inactive teacher still listed")
	}

	if err := s.UpdatePassword(9999, "y"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestClassesAndStudents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	teacherID, _ := s.CreateUser(model.User{Username: "t", DisplayName: "T", PasswordHash: "x", Role: model.UserRoleTeacher, Active: true})
	classID, ids := insertTestClass(t, s, "Jovens", "Carlos", "Ana")

	if err := s.AssignTeacher(classID, &teacherID); err != nil {
		t.Fatalf("AssignTeacher: %v", err)
	}
	mine, err := s.ListClassesForTeacher(teacherID)
	if err != nil {
		t.Fatalf("ListClassesForTeacher: %v", err)
	}
	if len(mine) != 1 || mine[0].TeacherID == nil || *mine[0].TeacherID != teacherID {
		t.Fatalf("unexpected classes %+v", mine)
	}

	if _, err := s.CreateClass(model.Class{Name: "Jovens", Active: true}); err == nil {
		t.Errorf("expected duplicate class name to fail")
	}

	active, err := s.ListActiveStudents(ctx, classID)
	if err != nil {
		t.Fatalf("ListActiveStudents: %v", err)
	}
	if len(active) != 2 || active[0].Name != "Ana" || active[1].Name != "Carlos" {
		t.Fatalf("expected roster ordered by name, got %+v", active)
	}

	if err := s.ToggleStudentActive(ids[0]); err != nil {
		t.Fatalf("ToggleStudentActive: %v", err)
	}
	active, _ = s.ListActiveStudents(ctx, classID)
	if len(active) != 1 || active[0].Name != "Ana" {
		t.Errorf("expected only Ana active, got %+v", active)
	}
	all, _ := s.ListStudents(ctx, classID)
	if len(all) != 2 {
		t.Errorf("expected 2 students overall, got %d", len(all))
	}
}

func TestAttendanceUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	classID, ids := insertTestClass(t, s, "Adultos", "Ana", "Carlos")

	rec, err := s.UpsertAttendance(ctx, ids[0], true, "2025-05-07")
	if err != nil {
		t.Fatalf("UpsertAttendance: %v", err)
	}
	if rec.ClassID != classID || !rec.Present {
		t.Errorf("unexpected record %+v", rec)
	}

	again, err := s.UpsertAttendance(ctx, ids[0], false, "2025-05-07")
	if err != nil {
		t.Fatalf("UpsertAttendance again: %v", err)
	}
	if again.ID != rec.ID || again.Present {
		t.Errorf("expected same row flipped to absent, got %+v", again)
	}

	if _, err := s.UpsertAttendance(ctx, ids[1], true, "2025-05-07"); err != nil {
		t.Fatalf("UpsertAttendance: %v", err)
	}
	list, err := s.ListAttendance(ctx, classID, "2025-05-07")
	if err != nil {
		t.Fatalf("ListAttendance: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 marks, got %d", len(list))
	}

	if _, err := s.UpsertAttendance(ctx, 9999, true, "2025-05-07"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown student, got %v", err)
	}
}

func TestActivityUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	classID, _ := insertTestClass(t, s, "Adultos")

	none, err := s.GetActivity(ctx, classID, "2025-05-07")
	if err != nil || none != nil {
		t.Fatalf("expected no activity, got %+v (%v)", none, err)
	}

	rec, err := s.UpsertActivity(ctx, classID, "2025-05-07", model.ActivityCounts{model.ActivityLiterature: 5})
	if err != nil {
		t.Fatalf("UpsertActivity: %v", err)
	}
	if rec.Counts[model.ActivityLiterature] != 5 || len(rec.Counts) != len(model.ActivityKinds) {
		t.Errorf("unexpected counts %v", rec.Counts)
	}

	rec2, err := s.UpsertActivity(ctx, classID, "2025-05-07", model.ActivityCounts{model.ActivityVisitors: 2})
	if err != nil {
		t.Fatalf("UpsertActivity again: %v", err)
	}
	if rec2.ID != rec.ID {
		t.Errorf("expected the same row, got %d and %d", rec.ID, rec2.ID)
	}
	if rec2.Counts[model.ActivityLiterature] != 0 || rec2.Counts[model.ActivityVisitors] != 2 {
		t.Errorf("expected replaced counts, got %v", rec2.Counts)
	}

	recs, err := s.ListActivitiesRange(ctx, "2025-05-01", "2025-05-31")
	if err != nil {
		t.Fatalf("ListActivitiesRange: %v", err)
	}
	if len(recs) != 1 {
		t.Errorf("expected 1 record in range, got %d", len(recs))
	}
}

func TestRecordDates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	classID, ids := insertTestClass(t, s, "Adultos", "Ana")

	s.UpsertAttendance(ctx, ids[0], true, "2025-05-03")
	s.UpsertActivity(ctx, classID, "2025-05-03", nil)
	s.UpsertActivity(ctx, classID, "2025-05-10", nil)
	s.UpsertAttendance(ctx, ids[0], true, "2025-04-01")

	dates, err := s.RecordDates(ctx, classID, "2025-05-01")
	if err != nil {
		t.Fatalf("RecordDates: %v", err)
	}
	if len(dates) != 2 || dates[0] != "2025-05-10" || dates[1] != "2025-05-03" {
		t.Errorf("unexpected dates %v", dates)
	}
}

func TestWizardBackend(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	classID, ids := insertTestClass(t, s, "Adultos", "Ana", "Carlos")
	now := func() time.Time { return time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC) }
	b := NewWizardBackend(s, 7, now)

	status, err := b.GetTodayRecordStatus(ctx, classID, "2025-05-10")
	if err != nil {
		t.Fatalf("GetTodayRecordStatus: %v", err)
	}
	if status.HasRecords {
		t.Errorf("expected no records yet")
	}

	if _, err := b.CreateAttendanceRecord(ctx, classID, ids[1], true, "2025-05-07"); err != nil {
		t.Fatalf("CreateAttendanceRecord: %v", err)
	}
	payload, err := b.CreateActivityRecord(ctx, classID, "2025-05-07", model.ActivityCounts{model.ActivityStudies: 3})
	if err != nil {
		t.Fatalf("CreateActivityRecord: %v", err)
	}
	if payload[string(model.ActivityStudies)] != 3 || payload["date"] != "2025-05-07" {
		t.Errorf("unexpected payload %v", payload)
	}

	recent, err := b.FindRecentRecordDates(ctx, classID)
	if err != nil {
		t.Fatalf("FindRecentRecordDates: %v", err)
	}
	if !recent.HasRecords || len(recent.DatesFound) != 1 || recent.DatesFound[0] != "2025-05-07" {
		t.Errorf("unexpected recent dates %+v", recent)
	}

	otherID, others := insertTestClass(t, s, "Jovens", "Bia")
	if _, err := b.CreateAttendanceRecord(ctx, classID, others[0], true, "2025-05-07"); !errors.Is(err, model.ErrStudentNotInClass) {
		t.Errorf("expected ErrStudentNotInClass, got %v", err)
	}
	if marks, _ := s.ListAttendance(ctx, otherID, "2025-05-07"); len(marks) != 0 {
		t.Errorf("expected no marks in other class, got %v", marks)
	}
	if _, err := b.CreateAttendanceRecord(ctx, classID, 9999, true, "2025-05-07"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown student, got %v", err)
	}

	status, _ = b.GetTodayRecordStatus(ctx, classID, "2025-05-07")
	if !status.HasRecords || len(status.AttendanceRecords) != 1 || status.ActivityRecord == nil {
		t.Errorf("unexpected status %+v", status)
	}

	acts, err := b.ListActivities(ctx, classID, "2025-05-08")
	if err != nil || len(acts) != 0 {
		t.Errorf("expected no activities, got %v (%v)", acts, err)
	}
}

func TestImportedFileHash(t *testing.T) {
	s := newTestStore(t)

	hash, err := s.GetImportedFileHash("/some/roster.json")
	if err != nil {
		t.Fatalf("GetImportedFileHash: %v", err)
	}
	if hash != "" {
		t.Errorf("expected empty hash, got %q", hash)
	}

	if err := s.SetImportedFileHash("/some/roster.json", "abc123"); err != nil {
		t.Fatalf("SetImportedFileHash: %v", err)
	}
	if err := s.SetImportedFileHash("/some/roster.json", "def456"); err != nil {
		t.Fatalf("SetImportedFileHash update: %v", err)
	}
	hash, _ = s.GetImportedFileHash("/some/roster.json")
	if hash != "def456" {
		t.Errorf("expected 'def456', got %q", hash)
	}
}

func TestImportRoster(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	s.CreateUser(model.User{Username: "joao", DisplayName: "João", PasswordHash: "x", Role: model.UserRoleTeacher, Active: true})

	entries := []model.RosterImport{
		{Class: "Jovens", Teacher: "joao", Students: []string{"Ana", "Carlos", " "}},
	}
	stats, err := s.ImportRoster(ctx, entries)
	if err != nil {
		t.Fatalf("ImportRoster: %v", err)
	}
	if stats.ClassesCreated != 1 || stats.StudentsCreated != 2 || stats.StudentsSkipped != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}

	entries[0].Students = []string{"ana", "Beatriz"}
	stats, err = s.ImportRoster(ctx, entries)
	if err != nil {
		t.Fatalf("ImportRoster again: %v", err)
	}
	if stats.ClassesCreated != 0 || stats.StudentsCreated != 1 || stats.StudentsSkipped != 1 {
		t.Errorf("unexpected stats on re-import %+v", stats)
	}

	_, err = s.ImportRoster(ctx, []model.RosterImport{{Class: "X", Teacher: "nobody"}})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown teacher, got %v", err)
	}
}

func TestExportRange(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	classID, ids := insertTestClass(t, s, "Adultos", "Ana", "Carlos")
	insertTestClass(t, s, "Juvenis", "Davi")

	s.UpsertAttendance(ctx, ids[0], true, "2025-05-03")
	s.UpsertAttendance(ctx, ids[1], false, "2025-05-03")
	s.UpsertAttendance(ctx, ids[0], true, "2025-07-05")
	s.UpsertActivity(ctx, classID, "2025-05-03", model.ActivityCounts{model.ActivityVisits: 1})

	set, err := s.ExportRange(ctx, "2025-04-01", "2025-06-30")
	if err != nil {
		t.Fatalf("ExportRange: %v", err)
	}
	if len(set.Classes) != 2 || len(set.Students) != 3 {
		t.Errorf("expected 2 classes and 3 students, got %d and %d", len(set.Classes), len(set.Students))
	}
	if len(set.Attendance) != 2 || len(set.Activities) != 1 {
		t.Errorf("expected 2 marks and 1 activity record, got %d and %d", len(set.Attendance), len(set.Activities))
	}
}

func TestAuthSessions(t *testing.T) {
	s := newTestStore(t)
	uid, _ := s.CreateUser(model.User{Username: "a", DisplayName: "A", PasswordHash: "x", Role: model.UserRoleAdmin, Active: true})

	token, err := s.CreateAuthSession(uid)
	if err != nil {
		t.Fatalf("CreateAuthSession: %v", err)
	}
	sess, err := s.GetAuthSession(token)
	if err != nil || sess == nil || sess.UserID != uid {
		t.Fatalf("unexpected session %+v (%v)", sess, err)
	}

	tokens, err := s.DeleteUserAuthSessions(uid)
	if err != nil {
		t.Fatalf("DeleteUserAuthSessions: %v", err)
	}
	if len(tokens) != 1 || tokens[0] != token {
		t.Errorf("unexpected removed tokens %v", tokens)
	}
	sess, _ = s.GetAuthSession(token)
	if sess != nil {
		t.Errorf("expected session to be gone")
	}
}

func TestCleanupExpiredSessions(t *testing.T) {
	s := newTestStore(t)
	uid, _ := s.CreateUser(model.User{Username: "a", DisplayName: "A", PasswordHash: "x", Role: model.UserRoleTeacher, Active: true})

	old, err := s.CreateAuthSession(uid)
	if err != nil {
		t.Fatalf("CreateAuthSession: %v", err)
	}
	if _, err := s.db.Exec(`UPDATE auth_sessions SET expires_at = ? WHERE id = ?`, time.Now().Add(-time.Minute), old); err != nil {
		t.Fatalf("expire session: %v", err)
	}
	fresh, err := s.CreateAuthSession(uid)
	if err != nil {
		t.Fatalf("CreateAuthSession: %v", err)
	}

	tokens, err := s.CleanupExpiredSessions(time.Now())
	if err != nil {
		t.Fatalf("CleanupExpiredSessions: %v", err)
	}
	if len(tokens) != 1 || tokens[0] != old {
		t.Errorf("expected only the expired token, got %v", tokens)
	}
	if sess, _ := s.GetAuthSession(fresh); sess == nil {
		t.Errorf("fresh session was removed")
	}

	tokens, err = s.CleanupExpiredSessions(time.Now())
	if err != nil || len(tokens) != 0 {
		t.Errorf("expected nothing left to clean, got %v (%v)", tokens, err)
	}
}
