package model

import (
	"errors"
	"testing"
)

func TestParseTrimester(t *testing.T) {
	tests := []struct {
		in      string
		want    Trimester
		wantErr bool
	}{
		{"2025-T2", Trimester{2025, 2}, false},
		{"2025-Q4", Trimester{2025, 4}, false},
		{"2025-1", Trimester{2025, 1}, false},
		{" 2024-t3 ", Trimester{2024, 3}, false},
		{"2025-T5", Trimester{}, true},
		{"2025", Trimester{}, true},
		{"abcd-T1", Trimester{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTrimester(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTrimester) {
					t.Fatalf("ParseTrimester(%q) err = %v, want ErrInvalidTrimester", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTrimester(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseTrimester(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTrimesterBounds(t *testing.T) {
	tests := []struct {
		tri        Trimester
		start, end string
	}{
		{Trimester{2025, 1}, "2025-01-01", "2025-03-31"},
		{Trimester{2025, 2}, "2025-04-01", "2025-06-30"},
		{Trimester{2024, 3}, "2024-07-01", "2024-09-30"},
		{Trimester{2024, 4}, "2024-10-01", "2024-12-31"},
	}
	for _, tt := range tests {
		if got := tt.tri.Start(); got != tt.start {
			t.Errorf("%s Start() = %s, want %s", tt.tri, got, tt.start)
		}
		if got := tt.tri.End(); got != tt.end {
			t.Errorf("%s End() = %s, want %s", tt.tri, got, tt.end)
		}
	}

	tri, err := TrimesterOf("2025-05-07")
	if err != nil {
		t.Fatalf("TrimesterOf: %v", err)
	}
	if tri.String() != "2025-T2" {
		t.Errorf("TrimesterOf(2025-05-07) = %s, want 2025-T2", tri)
	}
}

func TestActivityCountsComplete(t *testing.T) {
	c := ActivityCounts{ActivityLiterature: 5, ActivityVisitors: -3}
	full := c.Complete()
	if len(full) != len(ActivityKinds) {
		t.Fatalf("expected %d keys, got %d", len(ActivityKinds), len(full))
	}
	for _, kind := range ActivityKinds {
		if _, ok := full[kind]; !ok {
			t.Errorf("missing key %s", kind)
		}
	}
	if full[ActivityLiterature] != 5 {
		t.Errorf("literature = %d, want 5", full[ActivityLiterature])
	}
	if full[ActivityVisitors] != 0 {
		t.Errorf("negative count should clamp to 0, got %d", full[ActivityVisitors])
	}
	if _, ok := c[ActivityContacts]; ok {
		t.Error("Complete must not mutate the receiver")
	}
}

func TestActivityRecordPayload(t *testing.T) {
	rec := ActivityRecord{ID: 1, ClassID: 2, Date: "2025-05-07", Counts: ActivityCounts{ActivityStudies: 2}}
	p := rec.Payload()
	for _, kind := range ActivityKinds {
		if _, ok := p[string(kind)]; !ok {
			t.Errorf("payload missing %s", kind)
		}
	}
	if p[string(ActivityStudies)] != 2 {
		t.Errorf("studies = %v, want 2", p[string(ActivityStudies)])
	}
}

func TestParseDate(t *testing.T) {
	if _, err := ParseDate("2025-13-01"); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}
	got, err := ParseDate("2025-05-07")
	if err != nil || got != "2025-05-07" {
		t.Errorf("ParseDate = %q, %v", got, err)
	}
}
