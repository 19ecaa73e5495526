package repository

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RecentLimit caps event listings that are not bounded by a full date range.
const RecentLimit = 100

// DateRange is an inclusive range of calendar dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// EventFilter narrows consumption and procedure record listings.
type EventFilter struct {
	// Range, when set, returns every event in it instead of the most recent ones.
	Range *DateRange
	// DefinitionID restricts events to one drug or procedure.
	DefinitionID *uint
}

// apply adds the filter to q. dateCol and defCol are qualified column names.
func (f EventFilter) apply(q *gorm.DB, dateCol, defCol string) *gorm.DB {
	if f.DefinitionID != nil {
		q = q.Where(defCol+" = ?", *f.DefinitionID)
	}
	if f.Range != nil {
		q = q.Where(dateCol+" BETWEEN ? AND ?", datatypes.Date(f.Range.Start), datatypes.Date(f.Range.End))
	} else {
		q = q.Limit(RecentLimit)
	}
	return q
}
