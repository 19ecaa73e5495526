package model

import (
	"time"

	apperrors "medtrack/internal/errors"
)

// ScheduleType discriminates how a Cadence is expressed.
type ScheduleType string

const (
	// ScheduleInterval fires every IntervalHours hours.
	ScheduleInterval ScheduleType = "interval"
	// SchedulePerDay fires TimesPerDay times per day.
	SchedulePerDay ScheduleType = "per_day"
)

// Cadence is the stored schedule configuration shared by drug and procedure
// schedules. Nothing evaluates it server side.
type Cadence struct {
	ScheduleType  ScheduleType `json:"schedule_type" gorm:"type:varchar(20);not null;check:schedule_type IN ('interval','per_day')"`
	IntervalHours *int         `json:"interval_hours"`
	TimesPerDay   *int         `json:"times_per_day"`
	Notes         *string      `json:"notes" gorm:"type:text"`
	IsActive      bool         `json:"is_active" gorm:"not null;default:true"`
}

// Normalize validates the cadence and clears the count that does not
// belong to the schedule type.
func (c *Cadence) Normalize() error {
	switch c.ScheduleType {
	case ScheduleInterval:
		if c.IntervalHours == nil || *c.IntervalHours <= 0 {
			return apperrors.ErrInvalidIntervalHours
		}
		c.TimesPerDay = nil
	case SchedulePerDay:
		if c.TimesPerDay == nil || *c.TimesPerDay <= 0 {
			return apperrors.ErrInvalidTimesPerDay
		}
		c.IntervalHours = nil
	default:
		return apperrors.ErrInvalidScheduleType
	}
	return nil
}

// DrugSchedule is the single schedule a user keeps for one drug.
type DrugSchedule struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	UserID uint `json:"user_id" gorm:"not null;uniqueIndex:idx_drug_schedules_user_drug,priority:1"`
	DrugID uint `json:"drug_id" gorm:"not null;uniqueIndex:idx_drug_schedules_user_drug,priority:2"`
	Cadence
	CreatedAt time.Time `json:"created_at"`

	DrugName string `json:"drug_name,omitempty" gorm:"->;-:migration"`

	User *User `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Drug *Drug `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// TableName overrides the table name used by DrugSchedule.
func (DrugSchedule) TableName() string { return "drug_schedules" }

// ProcedureSchedule is the single schedule a user keeps for one procedure.
type ProcedureSchedule struct {
	ID          uint `json:"id" gorm:"primaryKey"`
	UserID      uint `json:"user_id" gorm:"not null;uniqueIndex:idx_procedure_schedules_user_procedure,priority:1"`
	ProcedureID uint `json:"procedure_id" gorm:"not null;uniqueIndex:idx_procedure_schedules_user_procedure,priority:2"`
	Cadence
	CreatedAt time.Time `json:"created_at"`

	ProcedureName string `json:"procedure_name,omitempty" gorm:"->;-:migration"`

	User      *User      `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Procedure *Procedure `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// TableName overrides the table name used by ProcedureSchedule.
func (ProcedureSchedule) TableName() string { return "procedure_schedules" }
