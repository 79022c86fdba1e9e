// Package views holds the templ components for the HTML pages.
package views

//go:generate templ generate

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/pavelanni/attendance/internal/i18n"
	"github.com/pavelanni/attendance/internal/llm"
	"github.com/pavelanni/attendance/internal/model"
	"github.com/pavelanni/attendance/internal/wizard"
)

type hiddenField struct {
	Name, Value string
}

// path prefixes p with the configured base path.
func path(ctx context.Context, p string) templ.SafeURL {
	return templ.URL(model.BasePathFromContext(ctx) + p)
}

func idString(id int64) string { return strconv.FormatInt(id, 10) }

func activeLabel(ctx context.Context, active bool) string {
	if active {
		return i18n.T(ctx, "Active")
	}
	return i18n.T(ctx, "Inactive")
}

func percent(rate float64) string { return fmt.Sprintf("%.1f%%", rate*100) }

// ReportPage is the data behind the reports page.
type ReportPage struct {
	Date           string
	Trimester      string
	Report         *model.Report
	Summary        *llm.Summary
	SummaryEnabled bool
	Message        string
}

func (p ReportPage) query() string {
	q := url.Values{}
	if p.Trimester != "" {
		q.Set("trimester", p.Trimester)
	} else {
		q.Set("date", p.Date)
	}
	return q.Encode()
}

func paragraphs(text string) []string {
	var out []string
	for _, para := range strings.Split(text, "\n") {
		if strings.TrimSpace(para) != "" {
			out = append(out, para)
		}
	}
	return out
}

var stepTitles = map[wizard.Step]string{
	wizard.StepAttendance: "StepAttendance",
	wizard.StepActivities: "StepActivities",
	wizard.StepCompletion: "StepCompletion",
}

var keypad = [][]string{
	{"7", "8", "9", "Backspace"},
	{"4", "5", "6", "C"},
	{"1", "2", "3", "+"},
	{"0", "="},
}

func keyLabel(key string) string {
	if key == "Backspace" {
		return "⌫"
	}
	return key
}

func studentProgress(ctx context.Context, v wizard.View) string {
	return i18n.Td(ctx, "StudentProgress", map[string]any{
		"Current": min(v.RosterCursor+1, len(v.Students)),
		"Total":   len(v.Students),
	})
}

// markLabel is the recorded mark for a student, or empty when unmarked.
func markLabel(ctx context.Context, v wizard.View, studentID int64) string {
	present, ok := v.Attendance[studentID]
	switch {
	case !ok:
		return ""
	case present:
		return i18n.T(ctx, "Present")
	}
	return i18n.T(ctx, "Absent")
}

func countMarks(v wizard.View, present bool) int {
	n := 0
	for _, p := range v.Attendance {
		if p == present {
			n++
		}
	}
	return n
}
