package wizard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryReusesSessionPerKey(t *testing.T) {
	b := newFakeBackend()
	b.students[1] = students(1, "Ana", "Carlos")
	date := testDate
	r := NewRegistry(b, func() string { return date }, quietLogger())

	require.NoError(t, r.With("alice", func(s *Session) error {
		if err := s.SelectClass(context.Background(), 1, "Juvenis"); err != nil {
			return err
		}
		s.MarkAttendance(context.Background(), 1, true)
		return nil
	}))

	var cursor int
	require.NoError(t, r.With("alice", func(s *Session) error {
		cursor = s.Roster().Cursor()
		return nil
	}))
	assert.Equal(t, 1, cursor)

	require.NoError(t, r.With("bob", func(s *Session) error {
		assert.Zero(t, s.ClassID())
		return nil
	}))
	assert.Equal(t, 2, r.Len())

	date = "2025-05-14"
	require.NoError(t, r.With("alice", func(s *Session) error {
		assert.Equal(t, "2025-05-14", s.Date())
		assert.Zero(t, s.ClassID(), "a new day starts a fresh session")
		return nil
	}))

	r.Drop("alice")
	assert.Equal(t, 1, r.Len())
}
