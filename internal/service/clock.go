package service

import (
	"strings"
	"time"

	apperrors "medtrack/internal/errors"
	"medtrack/internal/repository"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// calendarDay returns t's local calendar date as UTC midnight, the form
// dates are stored in.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// atTimeOfDay places now's wall-clock time on the given date.
func atTimeOfDay(date, now time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), now.Hour(), now.Minute(), now.Second(), 0, now.Location())
}

// blankToNil stores empty notes as NULL.
func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

// EventQuery narrows an event listing. A range applies only when both
// dates are given.
type EventQuery struct {
	Start        *time.Time
	End          *time.Time
	DefinitionID *uint
}

func (q EventQuery) filter() (repository.EventFilter, error) {
	f := repository.EventFilter{DefinitionID: q.DefinitionID}
	if q.Start != nil && q.End != nil {
		if q.Start.After(*q.End) {
			return f, apperrors.ErrInvalidDateRange
		}
		f.Range = &repository.DateRange{Start: *q.Start, End: *q.End}
	}
	return f, nil
}
