// Package report aggregates attendance and activity records into per-class
// summaries for a single Sabbath or a whole trimester.
package report

import (
	"context"
	"fmt"
	"sort"

	"github.com/pavelanni/attendance/internal/model"
)

// Source supplies the records of a date range.
type Source interface {
	ExportRange(ctx context.Context, from, to string) (*model.RecordSet, error)
}

// ByDate reports on a single date.
func ByDate(ctx context.Context, src Source, date string) (model.Report, error) {
	d, err := model.ParseDate(date)
	if err != nil {
		return model.Report{}, err
	}
	set, err := src.ExportRange(ctx, d, d)
	if err != nil {
		return model.Report{}, fmt.Errorf("load records for %s: %w", d, err)
	}
	return Build(set, d), nil
}

// ByTrimester reports on every date of a trimester.
func ByTrimester(ctx context.Context, src Source, t model.Trimester) (model.Report, error) {
	from, to := t.Start(), t.End()
	set, err := src.ExportRange(ctx, from, to)
	if err != nil {
		return model.Report{}, fmt.Errorf("load records for %s: %w", t, err)
	}
	return Build(set, t.String()), nil
}

// Build folds a record set into a report. Classes without any record in the
// range are included only while active.
func Build(set *model.RecordSet, title string) model.Report {
	rep := model.Report{
		Title:  title,
		From:   set.From,
		To:     set.To,
		Totals: model.ReportTotals{Activities: model.ActivityCounts{}.Complete()},
	}

	studentsByClass := make(map[int64][]model.Student)
	for _, st := range set.Students {
		studentsByClass[st.ClassID] = append(studentsByClass[st.ClassID], st)
	}
	marksByClass := make(map[int64][]model.AttendanceRecord)
	for _, a := range set.Attendance {
		marksByClass[a.ClassID] = append(marksByClass[a.ClassID], a)
	}
	activitiesByClass := make(map[int64][]model.ActivityRecord)
	for _, a := range set.Activities {
		activitiesByClass[a.ClassID] = append(activitiesByClass[a.ClassID], a)
	}

	for _, c := range set.Classes {
		marks, acts := marksByClass[c.ID], activitiesByClass[c.ID]
		if !c.Active && len(marks) == 0 && len(acts) == 0 {
			continue
		}
		sum := summarizeClass(c, studentsByClass[c.ID], marks, acts)
		rep.Classes = append(rep.Classes, sum)
		rep.Totals.Present += sum.Present
		rep.Totals.Absent += sum.Absent
		rep.Totals.Activities.Add(sum.Activities)
	}
	rep.Totals.AttendanceRate = rate(rep.Totals.Present, rep.Totals.Absent)
	return rep
}

func summarizeClass(c model.Class, students []model.Student, marks []model.AttendanceRecord, acts []model.ActivityRecord) model.ClassSummary {
	sum := model.ClassSummary{
		ClassID:    c.ID,
		ClassName:  c.Name,
		Activities: model.ActivityCounts{}.Complete(),
	}

	dates := make(map[string]bool)
	tallies := make(map[int64]*model.StudentTally, len(students))
	for _, st := range students {
		tallies[st.ID] = &model.StudentTally{StudentID: st.ID, Name: st.Name}
	}

	for _, m := range marks {
		dates[m.Date] = true
		t, ok := tallies[m.StudentID]
		if !ok {
			t = &model.StudentTally{StudentID: m.StudentID, Name: fmt.Sprintf("#%d", m.StudentID)}
			tallies[m.StudentID] = t
		}
		if m.Present {
			sum.Present++
			t.Present++
		} else {
			sum.Absent++
			t.Absent++
		}
	}
	for _, a := range acts {
		dates[a.Date] = true
		sum.Activities.Add(a.Counts)
	}

	for d := range dates {
		sum.Dates = append(sum.Dates, d)
	}
	sort.Strings(sum.Dates)

	for _, t := range tallies {
		if t.Present+t.Absent == 0 {
			continue
		}
		sum.Students = append(sum.Students, *t)
	}
	sort.Slice(sum.Students, func(i, j int) bool {
		if sum.Students[i].Name != sum.Students[j].Name {
			return sum.Students[i].Name < sum.Students[j].Name
		}
		return sum.Students[i].StudentID < sum.Students[j].StudentID
	})

	sum.AttendanceRate = rate(sum.Present, sum.Absent)
	return sum
}

func rate(present, absent int) float64 {
	if present+absent == 0 {
		return 0
	}
	return float64(present) / float64(present+absent)
}
