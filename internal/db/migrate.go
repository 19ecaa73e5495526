package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"medtrack/internal/model"
)

// models in dependency order: parents first.
func models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Drug{},
		&model.Consumption{},
		&model.Procedure{},
		&model.ProcedureRecord{},
		&model.DrugSchedule{},
		&model.ProcedureSchedule{},
	}
}

// Migrate creates or updates every table and index.
func Migrate(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)
	if db.Dialector.Name() == "sqlite" {
		// sqlite runs on one connection; the migrator must not wait on it.
		if err := db.AutoMigrate(models()...); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
		return nil
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		return tx.AutoMigrate(models()...)
	})
	if err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Reset drops every table, children first.
func Reset(ctx context.Context, db *gorm.DB) error {
	all := models()
	m := db.WithContext(ctx).Migrator()
	for i := len(all) - 1; i >= 0; i-- {
		if err := m.DropTable(all[i]); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	return nil
}
