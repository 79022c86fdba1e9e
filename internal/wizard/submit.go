package wizard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pavelanni/attendance/internal/model"
)

// SagaStep is one unit of a submission saga. Compensate may be nil when the
// action is an idempotent upsert that a later run will simply overwrite.
type SagaStep struct {
	Name       string
	Action     func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// SagaError reports which step of a saga failed.
type SagaError struct {
	Step string
	Err  error
}

func (e *SagaError) Error() string {
	return fmt.Sprintf("step %s: %v", e.Step, e.Err)
}

func (e *SagaError) Unwrap() error {
	return e.Err
}

// RunSaga executes steps in order. When one fails, the compensations of
// the steps already applied run in reverse order and the step error is
// returned. Compensation failures are logged, never returned.
func RunSaga(ctx context.Context, log *slog.Logger, steps []SagaStep) error {
	for i, st := range steps {
		if err := st.Action(ctx); err != nil {
			for j := i - 1; j >= 0; j-- {
				if steps[j].Compensate == nil {
					continue
				}
				if cerr := steps[j].Compensate(ctx); cerr != nil {
					log.Error("compensation failed", "step", steps[j].Name, "error", cerr)
				}
			}
			return &SagaError{Step: st.Name, Err: err}
		}
	}
	return nil
}

// Submission is what gets persisted for one class and date.
type Submission struct {
	ClassID int64
	Date    string
	Marks   *Marks
	Counts  model.ActivityCounts
}

// SubmitResult is the outcome of a successful submission.
type SubmitResult struct {
	ID         string               `json:"id"`
	Existed    bool                 `json:"existed"`
	Attendance int                  `json:"attendance"`
	Skipped    int                  `json:"skipped,omitempty"`
	Counts     model.ActivityCounts `json:"counts"`
}

// Synchronizer persists a wizard's attendance marks and activity counts.
//
// Writes are not atomic. Every create is an upsert keyed by (student, date)
// or (class, date), so a failed run may leave some rows written and a
// rerun converges on the same final state.
type Synchronizer struct {
	backend Backend
	log     *slog.Logger
}

// NewSynchronizer returns a Synchronizer writing to backend.
func NewSynchronizer(backend Backend, log *slog.Logger) *Synchronizer {
	if log == nil {
		log = slog.Default()
	}
	return &Synchronizer{backend: backend, log: log}
}

// Steps builds the saga for sub. The returned result is filled as steps run.
func (s *Synchronizer) Steps(sub Submission, res *SubmitResult) []SagaStep {
	steps := []SagaStep{{
		Name: "check-existing",
		Action: func(ctx context.Context) error {
			status, err := s.backend.GetTodayRecordStatus(ctx, sub.ClassID, sub.Date)
			if err != nil {
				return err
			}
			res.Existed = status.HasRecords
			return nil
		},
	}}

	sub.Marks.Each(func(studentID int64, present bool) {
		steps = append(steps, SagaStep{
			Name: fmt.Sprintf("attendance:%d", studentID),
			Action: func(ctx context.Context) error {
				_, err := s.backend.CreateAttendanceRecord(ctx, sub.ClassID, studentID, present, sub.Date)
				if errors.Is(err, model.ErrStudentNotInClass) {
					s.log.Warn("skipping mark for student outside class",
						"student_id", studentID, "class_id", sub.ClassID, "date", sub.Date)
					res.Skipped++
					return nil
				}
				if err != nil {
					return err
				}
				res.Attendance++
				return nil
			},
		})
	})

	payload := sub.Counts.Complete()
	steps = append(steps, SagaStep{
		Name: "activities",
		Action: func(ctx context.Context) error {
			saved, err := s.backend.CreateActivityRecord(ctx, sub.ClassID, sub.Date, payload)
			if err != nil {
				return err
			}
			res.Counts = payload
			if saved != nil {
				res.Counts = Reconcile(saved)
			}
			return nil
		},
	})
	return steps
}

// Submit runs the submission saga for sub.
func (s *Synchronizer) Submit(ctx context.Context, sub Submission) (SubmitResult, error) {
	res := SubmitResult{ID: uuid.NewString()}
	log := s.log.With("submission", res.ID, "class_id", sub.ClassID, "date", sub.Date)

	log.Info("submitting records", "attendance", sub.Marks.Len())
	if err := RunSaga(ctx, log, s.Steps(sub, &res)); err != nil {
		log.Error("submission failed", "error", err, "attendance_written", res.Attendance)
		return res, err
	}
	if res.Existed {
		log.Info("replaced existing records", "attendance", res.Attendance)
	} else {
		log.Info("submitted records", "attendance", res.Attendance)
	}
	return res, nil
}
