package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"

	appI18n "github.com/pavelanni/attendance/internal/i18n"
	"github.com/pavelanni/attendance/internal/llm"
	"github.com/pavelanni/attendance/internal/model"
	"github.com/pavelanni/attendance/internal/store"
	"github.com/pavelanni/attendance/internal/wizard"
)

const testCSRF = "test-csrf-token"

type fixture struct {
	t       *testing.T
	store   *store.Store
	wizards *wizard.Registry
	router  http.Handler
	handler *Handler
	cfg     model.AppConfig

	adminID    int64
	teacherID  int64
	otherID    int64
	classID    int64
	otherClass int64
	studentIDs []int64
}

type fakeSummarizer struct {
	calls int
	err   error
}

func (f *fakeSummarizer) Summarize(_ context.Context, rep model.Report, lang string) (*llm.Summary, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Summary{Text: "summary of " + rep.Title + " in " + lang}, nil
}

func newFixture(t *testing.T, summarizer Summarizer) *fixture {
	t.Helper()
	require.NoError(t, appI18n.Init("en"))

	s, err := store.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	f := &fixture{t: t, store: s}
	f.cfg = model.AppConfig{Location: time.UTC, RecentDays: 7}

	f.adminID = f.createUser("admin", model.UserRoleAdmin)
	f.teacherID = f.createUser("maria", model.UserRoleTeacher)
	f.otherID = f.createUser("joao", model.UserRoleTeacher)

	f.classID, err = s.CreateClass(model.Class{Name: "Jovens", TeacherID: &f.teacherID, Active: true})
	require.NoError(t, err)
	f.otherClass, err = s.CreateClass(model.Class{Name: "Adultos", TeacherID: &f.otherID, Active: true})
	require.NoError(t, err)
	for _, name := range []string{"Ana", "Bruno"} {
		id, err := s.CreateStudent(model.Student{Name: name, ClassID: f.classID, Active: true})
		require.NoError(t, err)
		f.studentIDs = append(f.studentIDs, id)
	}

	backend := store.NewWizardBackend(s, f.cfg.RecentDays, f.cfg.Now)
	f.wizards = wizard.NewRegistry(backend, f.cfg.Today, nil)
	h := New(s, f.wizards, summarizer, f.cfg)
	f.handler = h

	r := chi.NewRouter()
	r.Use(appI18n.Middleware("en"))
	h.Routes(r)
	f.router = r
	return f
}

func (f *fixture) createUser(username string, role model.UserRole) int64 {
	f.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret-pass"), bcrypt.MinCost)
	require.NoError(f.t, err)
	id, err := f.store.CreateUser(model.User{
		Username: username, DisplayName: username, PasswordHash: string(hash),
		Role: role, Active: true,
	})
	require.NoError(f.t, err)
	return id
}

func (f *fixture) login(userID int64) string {
	f.t.Helper()
	token, err := f.store.CreateAuthSession(userID)
	require.NoError(f.t, err)
	return token
}

func (f *fixture) do(req *http.Request, session string) *httptest.ResponseRecorder {
	if session != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: session})
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

// postForm sends a CSRF-protected form post asking for a JSON answer.
func (f *fixture) postForm(path, session string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(csrfHeaderName, testCSRF)
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: testCSRF})
	return f.do(req, session)
}

func (f *fixture) postJSON(path, session string, body any) *httptest.ResponseRecorder {
	data, err := json.Marshal(body)
	require.NoError(f.t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return f.do(req, session)
}

func (f *fixture) get(path, session string) *httptest.ResponseRecorder {
	return f.do(httptest.NewRequest(http.MethodGet, path, nil), session)
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) wizard.View {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var v wizard.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func id(n int64) string { return strconv.FormatInt(n, 10) }

func TestLoginFlow(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.get("/", "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = f.get("/login", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sabbath School Attendance")

	form := url.Values{"username": {"maria"}, "password": {"wrong"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = f.do(req, "")
	assert.Equal(t, http.StatusForbidden, rec.Code, "login without CSRF token")

	rec = f.postForm("/login", "", form)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	form.Set("password", "secret-pass")
	rec = f.postForm("/login", "", form)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	var session string
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			session = c.Value
		}
	}
	require.NotEmpty(t, session)

	rec = f.get("/", session)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Jovens")
	assert.NotContains(t, rec.Body.String(), "Adultos")

	rec = f.postForm("/logout", session, nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	rec = f.get("/", session)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestCSRFMismatch(t *testing.T) {
	f := newFixture(t, nil)
	session := f.login(f.teacherID)

	req := httptest.NewRequest(http.MethodPost, "/wizard/reset", nil)
	req.Header.Set(csrfHeaderName, "other")
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: testCSRF})
	rec := f.do(req, session)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestWizardFlow(t *testing.T) {
	f := newFixture(t, nil)
	session := f.login(f.teacherID)

	v := decodeView(t, f.postForm("/wizard/class", session, url.Values{"class_id": {id(f.classID)}}))
	assert.Equal(t, f.classID, v.ClassID)
	assert.Equal(t, wizard.StepAttendance, v.Step)
	require.Len(t, v.Students, 2)
	assert.False(t, v.Editing)

	decodeView(t, f.postForm("/wizard/mark", session, url.Values{"student_id": {id(f.studentIDs[0])}, "present": {"true"}}))
	v = decodeView(t, f.postForm("/wizard/mark", session, url.Values{"student_id": {id(f.studentIDs[1])}, "present": {"false"}}))
	assert.Equal(t, wizard.StepActivities, v.Step)
	assert.Len(t, v.Attendance, 2)

	v = decodeView(t, f.postForm("/wizard/activity", session, url.Values{"kind": {string(model.ActivityVisitors)}, "value": {"3"}}))
	assert.Equal(t, 3, v.Activities[model.ActivityVisitors])

	decodeView(t, f.postForm("/wizard/calculator/open", session, url.Values{"kind": {string(model.ActivityLiterature)}}))
	for _, key := range []string{"4", "+", "5"} {
		decodeView(t, f.postForm("/wizard/calculator/key", session, url.Values{"key": {key}}))
	}
	v = decodeView(t, f.postForm("/wizard/calculator/confirm", session, nil))
	assert.Equal(t, 9, v.Activities[model.ActivityLiterature])
	assert.False(t, v.Calculator.Open)

	v = decodeView(t, f.postForm("/wizard/step/next", session, nil))
	assert.Equal(t, wizard.StepCompletion, v.Step)
	require.NotNil(t, v.Notice)
	assert.Equal(t, "success", v.Notice.Level)

	ctx := context.Background()
	marks, err := f.store.ListAttendance(ctx, f.classID, f.cfg.Today())
	require.NoError(t, err)
	assert.Len(t, marks, 2)
	act, err := f.store.GetActivity(ctx, f.classID, f.cfg.Today())
	require.NoError(t, err)
	require.NotNil(t, act)
	assert.Equal(t, 3, act.Counts[model.ActivityVisitors])
	assert.Equal(t, 9, act.Counts[model.ActivityLiterature])

	// A second login of the same teacher sees the saved records as an edit.
	other := f.login(f.teacherID)
	v = decodeView(t, f.postForm("/wizard/class", other, url.Values{"class_id": {id(f.classID)}}))
	assert.True(t, v.Editing)
	assert.Equal(t, 3, v.Activities[model.ActivityVisitors])

	rec := f.get("/wizard", session)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Jovens")
}

func TestWizardFormRedirect(t *testing.T) {
	f := newFixture(t, nil)
	session := f.login(f.teacherID)

	form := url.Values{"class_id": {id(f.classID)}}
	req := httptest.NewRequest(http.MethodPost, "/wizard/class", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(csrfHeaderName, testCSRF)
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: testCSRF})
	rec := f.do(req, session)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/wizard", rec.Header().Get("Location"))
}

func TestWizardErrors(t *testing.T) {
	f := newFixture(t, nil)
	session := f.login(f.teacherID)

	rec := f.postForm("/wizard/class", session, url.Values{"class_id": {id(f.otherClass)}})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.postForm("/wizard/class", session, url.Values{"class_id": {"9999"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.postForm("/wizard/class", session, url.Values{"class_id": {"abc"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.postForm("/wizard/mark", session, url.Values{"student_id": {id(f.studentIDs[0])}, "present": {"true"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "mark before selecting a class")

	rec = f.postForm("/wizard/activity", session, url.Values{"kind": {"dancing"}, "value": {"1"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.postForm("/wizard/resubmit", session, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.get("/wizard/state", session)
	v := decodeView(t, rec)
	assert.Equal(t, int64(0), v.ClassID)
}

func TestLogoutDropsWizard(t *testing.T) {
	f := newFixture(t, nil)
	session := f.login(f.teacherID)

	decodeView(t, f.postForm("/wizard/class", session, url.Values{"class_id": {id(f.classID)}}))
	assert.Equal(t, 1, f.wizards.Len())

	f.postForm("/logout", session, nil)
	assert.Equal(t, 0, f.wizards.Len())
}

func TestAdminOnlyRoutes(t *testing.T) {
	f := newFixture(t, nil)
	teacher := f.login(f.teacherID)
	admin := f.login(f.adminID)

	for _, path := range []string{"/admin/users", "/admin/classes", "/reports"} {
		assert.Equal(t, http.StatusForbidden, f.get(path, teacher).Code, path)
		assert.Equal(t, http.StatusOK, f.get(path, admin).Code, path)
	}
}

func TestAdminCreateUser(t *testing.T) {
	f := newFixture(t, nil)
	admin := f.login(f.adminID)

	rec := f.postForm("/admin/users", admin, url.Values{"username": {"ruth"}, "password": {"short"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.postForm("/admin/users", admin, url.Values{"username": {"ruth"}, "password": {"long-enough"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	u, err := f.store.GetUserByUsername("ruth")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, model.UserRoleTeacher, u.Role)

	rec = f.postForm("/admin/users/"+id(f.adminID)+"/toggle", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "cannot deactivate yourself")
}

func TestDeactivatedTeacherLosesSession(t *testing.T) {
	f := newFixture(t, nil)
	admin := f.login(f.adminID)
	teacher := f.login(f.teacherID)

	decodeView(t, f.postForm("/wizard/class", teacher, url.Values{"class_id": {id(f.classID)}}))

	rec := f.postForm("/admin/users/"+id(f.teacherID)+"/toggle", admin, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = f.get("/", teacher)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func seedRecords(t *testing.T, f *fixture, date string) {
	t.Helper()
	ctx := context.Background()
	_, err := f.store.UpsertAttendance(ctx, f.studentIDs[0], true, date)
	require.NoError(t, err)
	_, err = f.store.UpsertAttendance(ctx, f.studentIDs[1], false, date)
	require.NoError(t, err)
	_, err = f.store.UpsertActivity(ctx, f.classID, date, model.ActivityCounts{model.ActivityVisits: 2})
	require.NoError(t, err)
}

func TestReports(t *testing.T) {
	f := newFixture(t, nil)
	admin := f.login(f.adminID)
	seedRecords(t, f, "2026-10-10")

	rec := f.get("/reports?date=2026-10-10", admin)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Jovens")

	rec = f.get("/reports?date=10/10/2026", admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.get("/reports?trimester=2026-T9", admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.get("/reports/xlsx?trimester=2026-T4", admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "2026-T4")

	book, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer book.Close()
	assert.Len(t, book.GetSheetList(), 2)
}

func TestReportSummary(t *testing.T) {
	fake := &fakeSummarizer{}
	f := newFixture(t, fake)
	admin := f.login(f.adminID)
	seedRecords(t, f, "2026-10-10")

	rec := f.postForm("/reports/summary?date=2026-10-10", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, fake.calls)
	assert.Contains(t, rec.Body.String(), "summary of")

	fake.err = errors.New("model offline")
	rec = f.postForm("/reports/summary?date=2026-10-10", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "model offline")
}

func TestReportSummaryDisabled(t *testing.T) {
	f := newFixture(t, nil)
	admin := f.login(f.adminID)

	rec := f.postForm("/reports/summary?date=2026-10-10", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIRequiresAuth(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.get("/api/classes", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "unauthorized")
}

func TestAPIReads(t *testing.T) {
	f := newFixture(t, nil)
	teacher := f.login(f.teacherID)
	date := f.cfg.Today()
	seedRecords(t, f, date)

	rec := f.get("/api/classes", teacher)
	require.Equal(t, http.StatusOK, rec.Code)
	var classes []model.Class
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &classes))
	require.Len(t, classes, 1)
	assert.Equal(t, "Jovens", classes[0].Name)

	rec = f.get("/api/classes/"+id(f.classID)+"/students", teacher)
	require.Equal(t, http.StatusOK, rec.Code)
	var students []model.Student
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &students))
	assert.Len(t, students, 2)

	rec = f.get("/api/classes/"+id(f.classID)+"/records/today", teacher)
	require.Equal(t, http.StatusOK, rec.Code)
	var status model.TodayStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.HasRecords)
	assert.Len(t, status.AttendanceRecords, 2)

	rec = f.get("/api/classes/"+id(f.classID)+"/records/recent", teacher)
	require.Equal(t, http.StatusOK, rec.Code)
	var recent model.RecentDates
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &recent))
	assert.Equal(t, []string{date}, recent.DatesFound)

	rec = f.get("/api/classes/"+id(f.classID)+"/attendance?date="+date, teacher)
	require.Equal(t, http.StatusOK, rec.Code)
	var marks []model.AttendanceRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &marks))
	assert.Len(t, marks, 2)

	rec = f.get("/api/classes/"+id(f.classID)+"/activities?date=2000-01-01", teacher)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = f.get("/api/classes/"+id(f.classID)+"/attendance?date=yesterday", teacher)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.get("/api/classes/"+id(f.otherClass)+"/students", teacher)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAPIWrites(t *testing.T) {
	f := newFixture(t, nil)
	teacher := f.login(f.teacherID)
	date := "2026-10-10"

	rec := f.postJSON("/api/attendance", teacher, map[string]any{
		"student_id": f.studentIDs[0], "present": true, "date": date,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var mark model.AttendanceRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mark))
	assert.True(t, mark.Present)
	assert.Equal(t, f.classID, mark.ClassID)

	rec = f.postJSON("/api/attendance", teacher, map[string]any{"student_id": f.studentIDs[0], "date": date})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "present")

	rec = f.postJSON("/api/attendance", teacher, map[string]any{"student_id": 9999, "present": true, "date": date})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.postJSON("/api/activities", teacher, map[string]any{
		"class_id": f.classID, "date": date,
		"activities": map[string]any{"Visitantes": 4, "estudos_biblicos": "2"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	act, err := f.store.GetActivity(context.Background(), f.classID, date)
	require.NoError(t, err)
	require.NotNil(t, act)
	assert.Equal(t, 4, act.Counts[model.ActivityVisitors])
	assert.Equal(t, 2, act.Counts[model.ActivityStudies])
	assert.Equal(t, 0, act.Counts[model.ActivityContacts])

	rec = f.postJSON("/api/activities", teacher, map[string]any{
		"class_id": f.otherClass, "date": date, "activities": map[string]any{},
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/attendance", strings.NewReader("student_id=1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = f.do(req, teacher)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestWizardMarkOutsideClassIsNotWritten(t *testing.T) {
	f := newFixture(t, nil)
	session := f.login(f.teacherID)
	outsider, err := f.store.CreateStudent(model.Student{Name: "Carla", ClassID: f.otherClass, Active: true})
	require.NoError(t, err)

	decodeView(t, f.postForm("/wizard/class", session, url.Values{"class_id": {id(f.classID)}}))
	decodeView(t, f.postForm("/wizard/mark", session, url.Values{"student_id": {id(outsider)}, "present": {"true"}}))
	v := decodeView(t, f.postForm("/wizard/mark", session, url.Values{"student_id": {id(f.studentIDs[1])}, "present": {"true"}}))
	require.Equal(t, wizard.StepActivities, v.Step)

	v = decodeView(t, f.postForm("/wizard/step/next", session, nil))
	require.Equal(t, wizard.StepCompletion, v.Step)
	require.NotNil(t, v.LastSubmission)
	assert.Equal(t, 1, v.LastSubmission.Attendance)
	assert.Equal(t, 1, v.LastSubmission.Skipped)

	ctx := context.Background()
	foreign, err := f.store.ListAttendance(ctx, f.otherClass, f.cfg.Today())
	require.NoError(t, err)
	assert.Empty(t, foreign)
	own, err := f.store.ListAttendance(ctx, f.classID, f.cfg.Today())
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, f.studentIDs[1], own[0].StudentID)
}

func TestWizardRechecksClassBeforeSubmit(t *testing.T) {
	f := newFixture(t, nil)
	session := f.login(f.teacherID)

	decodeView(t, f.postForm("/wizard/class", session, url.Values{"class_id": {id(f.classID)}}))
	decodeView(t, f.postForm("/wizard/mark", session, url.Values{"student_id": {id(f.studentIDs[0])}, "present": {"true"}}))
	decodeView(t, f.postForm("/wizard/mark", session, url.Values{"student_id": {id(f.studentIDs[1])}, "present": {"true"}}))

	require.NoError(t, f.store.AssignTeacher(f.classID, &f.otherID))

	rec := f.postForm("/wizard/step/next", session, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = f.postForm("/wizard/activity/next", session, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	ctx := context.Background()
	marks, err := f.store.ListAttendance(ctx, f.classID, f.cfg.Today())
	require.NoError(t, err)
	assert.Empty(t, marks)
	act, err := f.store.GetActivity(ctx, f.classID, f.cfg.Today())
	require.NoError(t, err)
	assert.Nil(t, act)
}

func TestWizardResubmitAfterClassDeactivated(t *testing.T) {
	f := newFixture(t, nil)
	session := f.login(f.teacherID)

	decodeView(t, f.postForm("/wizard/class", session, url.Values{"class_id": {id(f.classID)}}))
	decodeView(t, f.postForm("/wizard/step/next", session, nil))
	v := decodeView(t, f.postForm("/wizard/step/next", session, nil))
	require.Equal(t, wizard.StepCompletion, v.Step)

	require.NoError(t, f.store.ToggleClassActive(f.classID))

	rec := f.postForm("/wizard/resubmit", session, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSweepExpiredSessionsDropsWizards(t *testing.T) {
	f := newFixture(t, nil)
	session := f.login(f.teacherID)
	decodeView(t, f.postForm("/wizard/class", session, url.Values{"class_id": {id(f.classID)}}))
	require.Equal(t, 1, f.wizards.Len())

	n, err := f.handler.SweepExpiredSessions(time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 1, f.wizards.Len())

	n, err = f.handler.SweepExpiredSessions(time.Now().Add(store.AuthSessionTTL + time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 0, f.wizards.Len())

	rec := f.get("/", session)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}
