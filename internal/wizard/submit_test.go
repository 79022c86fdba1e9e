package wizard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelanni/attendance/internal/model"
)

func TestRunSagaCompensatesInReverse(t *testing.T) {
	var trail []string
	step := func(name string, fail bool) SagaStep {
		return SagaStep{
			Name: name,
			Action: func(context.Context) error {
				trail = append(trail, "do "+name)
				if fail {
					return errBackend
				}
				return nil
			},
			Compensate: func(context.Context) error {
				trail = append(trail, "undo "+name)
				return nil
			},
		}
	}

	err := RunSaga(context.Background(), quietLogger(), []SagaStep{
		step("a", false),
		{Name: "b", Action: func(context.Context) error { trail = append(trail, "do b"); return nil }},
		step("c", false),
		step("d", true),
		step("e", false),
	})

	var sagaErr *SagaError
	require.ErrorAs(t, err, &sagaErr)
	assert.Equal(t, "d", sagaErr.Step)
	assert.ErrorIs(t, err, errBackend)
	assert.Equal(t, []string{"do a", "do b", "do c", "do d", "undo c", "undo a"}, trail)
}

func TestSynchronizerOrderAndPayload(t *testing.T) {
	b := newFakeBackend()
	b.status = model.TodayStatus{HasRecords: true}
	marks := NewMarks()
	marks.Set(3, true)
	marks.Set(1, false)
	marks.Set(2, true)
	marks.Set(1, true)

	res, err := NewSynchronizer(b, quietLogger()).Submit(context.Background(), Submission{
		ClassID: 5,
		Date:    testDate,
		Marks:   marks,
		Counts:  model.ActivityCounts{model.ActivityContacts: 4},
	})
	require.NoError(t, err)
	assert.True(t, res.Existed)
	assert.Equal(t, 3, res.Attendance)
	assert.Equal(t, []attendanceCall{
		{5, 3, true, testDate},
		{5, 1, true, testDate},
		{5, 2, true, testDate},
	}, b.attendanceCalls)

	require.Len(t, b.activityCalls, 1)
	assert.Equal(t, model.ActivityCounts{model.ActivityContacts: 4}.Complete(), b.activityCalls[0].Counts)
	assert.Equal(t, 4, res.Counts[model.ActivityContacts])
}

func TestSynchronizerSkipsStudentOutsideClass(t *testing.T) {
	b := newFakeBackend()
	b.enrolled[1] = 5
	b.enrolled[9] = 6
	marks := NewMarks()
	marks.Set(1, true)
	marks.Set(9, true)

	res, err := NewSynchronizer(b, quietLogger()).Submit(context.Background(), Submission{
		ClassID: 5, Date: testDate, Marks: marks, Counts: model.ActivityCounts{},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Attendance)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, []attendanceCall{{5, 1, true, testDate}}, b.attendanceCalls)
	assert.Len(t, b.activityCalls, 1)
}

func TestSynchronizerAbortsOnAttendanceFailure(t *testing.T) {
	b := newFakeBackend()
	b.failAttendance[2] = true
	marks := NewMarks()
	marks.Set(1, true)
	marks.Set(2, true)
	marks.Set(3, true)

	res, err := NewSynchronizer(b, quietLogger()).Submit(context.Background(), Submission{
		ClassID: 5, Date: testDate, Marks: marks, Counts: model.ActivityCounts{},
	})
	require.Error(t, err)
	var sagaErr *SagaError
	require.True(t, errors.As(err, &sagaErr))
	assert.Equal(t, "attendance:2", sagaErr.Step)
	assert.Equal(t, 1, res.Attendance)
	assert.Empty(t, b.activityCalls)
}

func TestSynchronizerCheckFailure(t *testing.T) {
	b := newFakeBackend()
	b.statusErr = errBackend
	_, err := NewSynchronizer(b, quietLogger()).Submit(context.Background(), Submission{
		ClassID: 5, Date: testDate, Marks: NewMarks(), Counts: model.ActivityCounts{},
	})
	assert.ErrorIs(t, err, errBackend)
	assert.Empty(t, b.attendanceCalls)
	assert.Empty(t, b.activityCalls)
}
