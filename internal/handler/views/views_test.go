package views

import (
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelanni/attendance/internal/i18n"
	"github.com/pavelanni/attendance/internal/llm"
	"github.com/pavelanni/attendance/internal/model"
	"github.com/pavelanni/attendance/internal/wizard"
)

func renderCtx(t *testing.T) context.Context {
	t.Helper()
	require.NoError(t, i18n.Init("en"))
	ctx := i18n.WithLocalizer(context.Background(), i18n.NewLocalizer("en"))
	ctx = model.ContextWithBasePath(ctx, "/escola")
	ctx = model.ContextWithCSRFToken(ctx, "tok123")
	return model.ContextWithUser(ctx, &model.User{ID: 1, DisplayName: "Maria", Role: model.UserRoleTeacher})
}

func render(t *testing.T, ctx context.Context, c templ.Component) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, c.Render(ctx, &sb))
	return sb.String()
}

func TestWizardPageAttendanceStep(t *testing.T) {
	ctx := renderCtx(t)
	bruno := model.Student{ID: 2, Name: "Bruno", ClassID: 5, Active: true}
	v := wizard.View{
		Date:           "2026-10-17",
		ClassID:        5,
		Step:           wizard.StepAttendance,
		Students:       []model.Student{{ID: 1, Name: "<Ana>", ClassID: 5, Active: true}, bruno},
		RosterCursor:   1,
		CurrentStudent: &bruno,
		Attendance:     map[int64]bool{1: true},
	}
	out := render(t, ctx, WizardPage(v, []model.Class{{ID: 5, Name: "Jovens"}}))

	assert.Contains(t, out, "&lt;Ana&gt;")
	assert.NotContains(t, out, "<Ana>")
	assert.Contains(t, out, `<option value="5" selected>Jovens</option>`)
	assert.Contains(t, out, `<tr class="current"><td>Bruno</td>`)
	assert.Contains(t, out, `action="/escola/wizard/mark"`)
	assert.Contains(t, out, `name="student_id" value="2"`)
	assert.Contains(t, out, `name="csrf_token" value="tok123"`)
	assert.Contains(t, out, "Maria")
	assert.NotContains(t, out, "<script>")
}

func TestWizardPageWithoutClass(t *testing.T) {
	ctx := renderCtx(t)
	out := render(t, ctx, WizardPage(wizard.View{Date: "2026-10-17"}, nil))
	assert.Contains(t, out, "2026-10-17")
	assert.NotContains(t, out, "/wizard/step/next")
}

func TestDashboardPageEmpty(t *testing.T) {
	ctx := renderCtx(t)
	out := render(t, ctx, DashboardPage(nil, "2026-10-17"))
	assert.Contains(t, out, "No classes are assigned to you yet.")
	assert.NotContains(t, out, "<ul>")
	assert.True(t, strings.HasPrefix(out, "<!doctype html>"))
}

func TestReportsPage(t *testing.T) {
	ctx := renderCtx(t)
	rep := &model.Report{
		Title: "Sabbath 2026-10-17",
		From:  "2026-10-17",
		To:    "2026-10-17",
		Classes: []model.ClassSummary{{
			ClassID: 5, ClassName: "Jovens", Dates: []string{"2026-10-17"},
			Present: 1, Absent: 1, AttendanceRate: 0.5,
		}},
		Totals: model.ReportTotals{Present: 1, Absent: 1, AttendanceRate: 0.5},
	}

	out := render(t, ctx, ReportsPage(ReportPage{Date: "2026-10-17", Report: rep, SummaryEnabled: true}))
	assert.Contains(t, out, "Jovens")
	assert.Contains(t, out, "50.0%")
	assert.Contains(t, out, `href="/escola/reports/xlsx?date=2026-10-17"`)
	assert.Contains(t, out, `action="/escola/reports/summary?date=2026-10-17"`)

	sum := &llm.Summary{Text: "First line.\n\nSecond line.", Highlights: []string{"good turnout"}}
	out = render(t, ctx, ReportsPage(ReportPage{Trimester: "2026-T4", Report: rep, Summary: sum, SummaryEnabled: true}))
	assert.Contains(t, out, "<p>First line.</p><p>Second line.</p>")
	assert.Contains(t, out, "<li>good turnout</li>")
	assert.NotContains(t, out, "/reports/summary")
}
