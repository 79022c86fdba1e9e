package prompts

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strings"
	"sync"
	"text/template"
	"unicode/utf8"

	"github.com/pavelanni/attendance/internal/model"
)

// Templates holds the built-in prompt templates.
//
//go:embed templates/*.txt
var Templates embed.FS

var reportDataRegex = regexp.MustCompile(`(?i)</?\s*report-data\b[^>]*>`)

// maxFieldRunes bounds user-entered text such as class names.
const maxFieldRunes = 200

// Tone selects how long and how analytical a summary is.
type Tone string

const (
	// ToneBrief is a few sentences for announcements.
	ToneBrief Tone = "brief"
	// ToneStandard is the default weekly report.
	ToneStandard Tone = "standard"
	// ToneDetailed is a per-class review for the end of a trimester.
	ToneDetailed Tone = "detailed"
)

var validTones = map[Tone]bool{
	ToneBrief:    true,
	ToneStandard: true,
	ToneDetailed: true,
}

var (
	loadOnce  sync.Once
	loadErr   error
	templates map[Tone]*template.Template
)

// IsValidTone checks if a tone name is valid.
func IsValidTone(v string) bool {
	return validTones[Tone(v)]
}

// ActivityLine is one activity counter in the prompt.
type ActivityLine struct {
	Kind  string
	Count int
}

// ClassLine is one class in the prompt.
type ClassLine struct {
	Name       string
	Dates      string
	Present    int
	Absent     int
	Rate       string
	Activities []ActivityLine
}

// TotalsLine sums all classes in the prompt.
type TotalsLine struct {
	Present    int
	Absent     int
	Rate       string
	Activities []ActivityLine
}

// SummaryData holds template data for summary prompts.
type SummaryData struct {
	Language string
	Title    string
	From     string
	To       string
	Classes  []ClassLine
	Totals   TotalsLine
}

// Load parses the prompt templates from fsys, normally Templates.
// It uses sync.Once to ensure templates are loaded only once.
func Load(fsys fs.FS) error {
	loadOnce.Do(func() {
		templates = make(map[Tone]*template.Template)

		data, err := fs.ReadFile(fsys, "templates/data.txt")
		if err != nil {
			loadErr = errors.New("failed to read prompt file templates/data.txt: " + err.Error())
			return
		}

		for _, tone := range []Tone{ToneBrief, ToneStandard, ToneDetailed} {
			file := "templates/summary_" + string(tone) + ".txt"
			content, err := fs.ReadFile(fsys, file)
			if err != nil {
				loadErr = errors.New("failed to read prompt file " + file + ": " + err.Error())
				return
			}
			tmpl, err := template.New(string(tone)).Parse(string(content))
			if err == nil {
				_, err = tmpl.Parse(string(data))
			}
			if err != nil {
				loadErr = errors.New("failed to parse prompt template " + file + ": " + err.Error())
				return
			}
			templates[tone] = tmpl
		}
	})
	return loadErr
}

// BuildSummaryPrompt renders the system prompt asking for a summary of rep.
func BuildSummaryPrompt(tone Tone, rep model.Report, lang string) (string, error) {
	if templates == nil {
		return "", errors.New("templates not initialized: call Load first")
	}
	tmpl, ok := templates[tone]
	if !ok {
		if loadErr != nil {
			return "", fmt.Errorf("templates load failed: %w", loadErr)
		}
		return "", errors.New("invalid summary tone: " + string(tone))
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, NewSummaryData(rep, lang)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// NewSummaryData flattens a report into prompt lines.
func NewSummaryData(rep model.Report, lang string) SummaryData {
	if lang == "" {
		lang = "en"
	}
	data := SummaryData{
		Language: sanitizeField(lang),
		Title:    sanitizeField(rep.Title),
		From:     rep.From,
		To:       rep.To,
		Totals: TotalsLine{
			Present:    rep.Totals.Present,
			Absent:     rep.Totals.Absent,
			Rate:       percent(rep.Totals.AttendanceRate),
			Activities: activityLines(rep.Totals.Activities),
		},
	}
	for _, c := range rep.Classes {
		data.Classes = append(data.Classes, ClassLine{
			Name:       sanitizeField(c.ClassName),
			Dates:      strings.Join(c.Dates, ", "),
			Present:    c.Present,
			Absent:     c.Absent,
			Rate:       percent(c.AttendanceRate),
			Activities: activityLines(c.Activities),
		})
	}
	return data
}

func activityLines(counts model.ActivityCounts) []ActivityLine {
	lines := make([]ActivityLine, 0, len(model.ActivityKinds))
	for _, kind := range model.ActivityKinds {
		lines = append(lines, ActivityLine{Kind: string(kind), Count: counts.Get(kind)})
	}
	return lines
}

func percent(rate float64) string {
	return fmt.Sprintf("%.1f%%", rate*100)
}

func sanitizeField(s string) string {
	s = reportDataRegex.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) > maxFieldRunes {
		s = string([]rune(s)[:maxFieldRunes]) + "..."
	}
	return s
}
