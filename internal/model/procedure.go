package model

import (
	"time"

	"gorm.io/datatypes"
)

// Procedure is a user-defined medical procedure definition.
type Procedure struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	Name      string    `json:"name" gorm:"size:100;not null"`
	CreatedAt time.Time `json:"created_at"`

	User *User `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// TableName overrides the table name used by Procedure.
func (Procedure) TableName() string { return "medical_procedures" }

// ProcedureRecord is one performed occurrence of a procedure.
type ProcedureRecord struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	UserID        uint           `json:"user_id" gorm:"not null;index:idx_procedure_records_user_date,priority:1"`
	ProcedureID   uint           `json:"procedure_id" gorm:"not null;index"`
	ProcedureDate datatypes.Date `json:"procedure_date" gorm:"not null;index:idx_procedure_records_user_date,priority:2"`
	PerformedAt   time.Time      `json:"performed_at" gorm:"not null"`
	Notes         *string        `json:"notes" gorm:"type:text"`
	CreatedAt     time.Time      `json:"created_at"`

	ProcedureName string `json:"procedure_name,omitempty" gorm:"->;-:migration"`

	User      *User      `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Procedure *Procedure `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// TableName overrides the table name used by ProcedureRecord.
func (ProcedureRecord) TableName() string { return "procedure_records" }
