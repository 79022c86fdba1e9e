package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidTrimester is returned when a trimester string cannot be parsed.
var ErrInvalidTrimester = errors.New("invalid trimester, want YYYY-T1..T4")

// Trimester is a calendar quarter, the reporting period of the lesson study guide.
type Trimester struct {
	Year    int
	Quarter int // 1..4
}

// ParseTrimester accepts "2025-T2", "2025-Q2" and "2025-2".
func ParseTrimester(s string) (Trimester, error) {
	year, q, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return Trimester{}, ErrInvalidTrimester
	}
	y, err := strconv.Atoi(year)
	if err != nil || y < 1 {
		return Trimester{}, ErrInvalidTrimester
	}
	q = strings.TrimLeft(strings.ToUpper(q), "TQ")
	n, err := strconv.Atoi(q)
	if err != nil || n < 1 || n > 4 {
		return Trimester{}, ErrInvalidTrimester
	}
	return Trimester{Year: y, Quarter: n}, nil
}

// TrimesterOf returns the trimester containing the given YYYY-MM-DD date.
func TrimesterOf(date string) (Trimester, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return Trimester{}, ErrInvalidDate
	}
	return Trimester{Year: t.Year(), Quarter: (int(t.Month())-1)/3 + 1}, nil
}

// Start returns the first day of the trimester.
func (t Trimester) Start() string {
	return time.Date(t.Year, time.Month((t.Quarter-1)*3+1), 1, 0, 0, 0, 0, time.UTC).Format(DateLayout)
}

// End returns the last day of the trimester.
func (t Trimester) End() string {
	first := time.Date(t.Year, time.Month((t.Quarter-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, 3, -1).Format(DateLayout)
}

func (t Trimester) String() string {
	return fmt.Sprintf("%d-T%d", t.Year, t.Quarter)
}
