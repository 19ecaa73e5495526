package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// UnitType is the unit a drug is dosed in.
type UnitType string

const (
	UnitPills UnitType = "pills"
	UnitMg    UnitType = "mg"
)

// Valid reports whether u is one of the supported units.
func (u UnitType) Valid() bool {
	return u == UnitPills || u == UnitMg
}

// Drug is a user-defined drug definition.
type Drug struct {
	ID            uint                `json:"id" gorm:"primaryKey"`
	UserID        uint                `json:"user_id" gorm:"not null;index"`
	Name          string              `json:"name" gorm:"size:100;not null"`
	UnitType      UnitType            `json:"unit_type" gorm:"type:varchar(20);not null;check:unit_type IN ('pills','mg')"`
	DefaultDosage decimal.NullDecimal `json:"default_dosage" gorm:"type:decimal(10,2)"`
	CreatedAt     time.Time           `json:"created_at"`

	User *User `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// TableName overrides the table name used by Drug.
func (Drug) TableName() string { return "drugs" }

// Consumption is one taken dose of a drug. UnitType is stored on the event
// itself so history survives a later change of the drug's unit.
type Consumption struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	UserID          uint            `json:"user_id" gorm:"not null;index:idx_drug_consumptions_user_date,priority:1"`
	DrugID          uint            `json:"drug_id" gorm:"not null;index"`
	ConsumptionDate datatypes.Date  `json:"consumption_date" gorm:"not null;index:idx_drug_consumptions_user_date,priority:2"`
	ConsumedAt      time.Time       `json:"consumed_at" gorm:"not null"`
	Quantity        decimal.Decimal `json:"quantity" gorm:"type:decimal(10,2);not null"`
	UnitType        UnitType        `json:"unit_type" gorm:"type:varchar(20);not null;check:unit_type IN ('pills','mg')"`
	Notes           *string         `json:"notes" gorm:"type:text"`
	CreatedAt       time.Time       `json:"created_at"`

	// Populated by joined queries only.
	DrugName     string   `json:"drug_name,omitempty" gorm:"->;-:migration"`
	DrugUnitType UnitType `json:"drug_unit_type,omitempty" gorm:"->;-:migration"`

	User *User `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Drug *Drug `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// TableName overrides the table name used by Consumption.
func (Consumption) TableName() string { return "drug_consumptions" }
