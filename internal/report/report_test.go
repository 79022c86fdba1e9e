package report

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pavelanni/attendance/internal/i18n"
	"github.com/pavelanni/attendance/internal/model"
)

type fakeSource struct {
	set      *model.RecordSet
	err      error
	from, to string
}

func (f *fakeSource) ExportRange(_ context.Context, from, to string) (*model.RecordSet, error) {
	f.from, f.to = from, to
	if f.err != nil {
		return nil, f.err
	}
	set := *f.set
	set.From, set.To = from, to
	return &set, nil
}

func sampleSet() *model.RecordSet {
	return &model.RecordSet{
		Classes: []model.Class{
			{ID: 1, Name: "Adultos", Active: true},
			{ID: 2, Name: "Jovens", Active: true},
			{ID: 3, Name: "Antiga", Active: false},
		},
		Students: []model.Student{
			{ID: 10, Name: "Carlos", ClassID: 1},
			{ID: 11, Name: "Ana", ClassID: 1},
			{ID: 20, Name: "Davi", ClassID: 2},
		},
		Attendance: []model.AttendanceRecord{
			{StudentID: 10, ClassID: 1, Present: false, Date: "2025-05-03"},
			{StudentID: 11, ClassID: 1, Present: true, Date: "2025-05-03"},
			{StudentID: 11, ClassID: 1, Present: true, Date: "2025-05-10"},
			{StudentID: 20, ClassID: 2, Present: true, Date: "2025-05-10"},
		},
		Activities: []model.ActivityRecord{
			{ClassID: 1, Date: "2025-05-03", Counts: model.ActivityCounts{model.ActivityLiterature: 5}},
			{ClassID: 1, Date: "2025-05-10", Counts: model.ActivityCounts{model.ActivityLiterature: 2, model.ActivityVisitors: 1}},
		},
	}
}

func TestBuild(t *testing.T) {
	set := sampleSet()
	set.From, set.To = "2025-04-01", "2025-06-30"
	rep := Build(set, "2025-T2")

	require.Len(t, rep.Classes, 2, "inactive class without records is skipped")
	adults := rep.Classes[0]
	assert.Equal(t, "Adultos", adults.ClassName)
	assert.Equal(t, []string{"2025-05-03", "2025-05-10"}, adults.Dates)
	assert.Equal(t, 2, adults.Present)
	assert.Equal(t, 1, adults.Absent)
	assert.InDelta(t, 2.0/3.0, adults.AttendanceRate, 1e-9)
	assert.Equal(t, 7, adults.Activities.Get(model.ActivityLiterature))
	assert.Equal(t, 1, adults.Activities.Get(model.ActivityVisitors))
	require.Len(t, adults.Students, 2)
	assert.Equal(t, "Ana", adults.Students[0].Name)
	assert.Equal(t, 2, adults.Students[0].Present)

	youth := rep.Classes[1]
	assert.Equal(t, 0, youth.Activities.Total())
	assert.Len(t, youth.Activities, len(model.ActivityKinds))

	assert.Equal(t, 3, rep.Totals.Present)
	assert.Equal(t, 1, rep.Totals.Absent)
	assert.InDelta(t, 0.75, rep.Totals.AttendanceRate, 1e-9)
	assert.Equal(t, 7, rep.Totals.Activities.Get(model.ActivityLiterature))
}

func TestBuildEmpty(t *testing.T) {
	rep := Build(&model.RecordSet{From: "2025-05-03", To: "2025-05-03"}, "2025-05-03")
	assert.Empty(t, rep.Classes)
	assert.Zero(t, rep.Totals.AttendanceRate)
}

func TestByDate(t *testing.T) {
	src := &fakeSource{set: sampleSet()}
	rep, err := ByDate(context.Background(), src, "2025-05-10")
	require.NoError(t, err)
	assert.Equal(t, "2025-05-10", src.from)
	assert.Equal(t, "2025-05-10", src.to)
	assert.Equal(t, "2025-05-10", rep.Title)

	_, err = ByDate(context.Background(), src, "10/05/2025")
	assert.ErrorIs(t, err, model.ErrInvalidDate)

	src.err = errors.New("db down")
	_, err = ByDate(context.Background(), src, "2025-05-10")
	assert.Error(t, err)
}

func TestByTrimester(t *testing.T) {
	src := &fakeSource{set: sampleSet()}
	tri, err := model.ParseTrimester("2025-T2")
	require.NoError(t, err)

	rep, err := ByTrimester(context.Background(), src, tri)
	require.NoError(t, err)
	assert.Equal(t, "2025-04-01", src.from)
	assert.Equal(t, "2025-06-30", src.to)
	assert.Equal(t, "2025-T2", rep.Title)
}

func TestWriteXLSX(t *testing.T) {
	require.NoError(t, i18n.Init("en"))
	ctx := i18n.WithLocalizer(context.Background(), i18n.NewLocalizer("en"))

	set := sampleSet()
	set.From, set.To = "2025-05-03", "2025-05-10"
	rep := Build(set, "May")

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(ctx, &buf, rep))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "Students"}, f.GetSheetList())

	rows, err := f.GetRows("Summary")
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, "May", rows[0][0])
	assert.Equal(t, "Class", rows[2][0])
	assert.Equal(t, "Missionary contacts", rows[2][5])
	assert.Equal(t, "Adultos", rows[3][0])
	assert.Equal(t, "Total", rows[5][0])
	assert.Equal(t, "3", rows[5][2])

	students, err := f.GetRows("Students")
	require.NoError(t, err)
	assert.Len(t, students, 4)
}
