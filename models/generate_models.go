package models

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"gorm.io/gen"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

/*
Schema tooling.

Migrate runs at every startup and creates or extends the posts and
categories tables.

GenerateModels (GENERATE_MODELS=true) migrates and then writes typed query
helpers for every model with gorm/gen into the given directory.

ColumnMismatchReport (GENERATE_COLUMN_REPORT=true) lists columns that exist
in the database but have no field on the Go model, e.g. leftovers from an
older schema:

	--- Table: posts ---
	Found 1 columns not accounted for in model:
	  - post_url
*/

// All returns one zero value of every persisted model, in dependency order.
func All() []any {
	return []any{&Category{}, &Post{}}
}

// Migrate creates or updates the tables for all models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func GenerateModels(db *gorm.DB, outPath string) error {
	if err := db.Exec("SELECT 1").Error; err != nil {
		return fmt.Errorf("database not reachable: %w", err)
	}

	db = db.Session(&gorm.Session{
		Logger:                 db.Logger.LogMode(logger.Info),
		SkipDefaultTransaction: true,
		PrepareStmt:            false,
	})

	g := gen.NewGenerator(gen.Config{
		OutPath:           outPath,
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface,
		FieldNullable:     true,
		FieldCoverable:    true,
		FieldWithIndexTag: true,
		FieldWithTypeTag:  true,
	})
	g.UseDB(db)
	g.ApplyBasic(Category{}, Post{})

	log.Info().Msg("Starting database migration...")
	if err := Migrate(db); err != nil {
		return err
	}
	log.Info().Msg("Database migration completed successfully!")

	if _, err := LogColumnMismatchReport(db); err != nil {
		return err
	}

	g.Execute()
	log.Info().Str("outPath", outPath).Msg("Model generation complete!")
	return nil
}

// ColumnMismatchReport maps each existing table to the columns it holds that
// no model field maps to. Tables that do not exist yet are skipped.
func ColumnMismatchReport(db *gorm.DB) (map[string][]string, error) {
	report := make(map[string][]string)

	for _, model := range All() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("parse model %T: %w", model, err)
		}
		tableName := stmt.Schema.Table

		if !db.Migrator().HasTable(model) {
			continue
		}

		columnTypes, err := db.Migrator().ColumnTypes(model)
		if err != nil {
			return nil, fmt.Errorf("error querying columns for table %s: %w", tableName, err)
		}

		dbColumns := make([]string, 0, len(columnTypes))
		for _, ct := range columnTypes {
			dbColumns = append(dbColumns, ct.Name())
		}

		report[tableName] = findColumnMismatches(dbColumns, stmt.Schema.DBNames)
	}

	return report, nil
}

// LogColumnMismatchReport runs ColumnMismatchReport and prints it.
func LogColumnMismatchReport(db *gorm.DB) (int, error) {
	report, err := ColumnMismatchReport(db)
	if err != nil {
		return 0, err
	}

	tables := make([]string, 0, len(report))
	for table := range report {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	fmt.Println("=== COLUMN MISMATCH REPORT ===")
	totalMismatches := 0
	for _, table := range tables {
		mismatches := report[table]
		fmt.Printf("\n--- Table: %s ---\n", table)
		if len(mismatches) == 0 {
			fmt.Println("All columns are accounted for in the model.")
			continue
		}
		fmt.Printf("Found %d columns not accounted for in model:\n", len(mismatches))
		for _, col := range mismatches {
			fmt.Printf("  - %s\n", col)
		}
		totalMismatches += len(mismatches)
	}

	fmt.Printf("\n=== SUMMARY ===\n")
	fmt.Printf("Total mismatched columns across all tables: %d\n", totalMismatches)
	return totalMismatches, nil
}

// findColumnMismatches finds columns that exist in the database but not in the model
func findColumnMismatches(dbColumns, modelFields []string) []string {
	modelFieldSet := make(map[string]bool, len(modelFields))
	for _, field := range modelFields {
		modelFieldSet[field] = true
	}

	var mismatches []string
	for _, col := range dbColumns {
		if !modelFieldSet[col] {
			mismatches = append(mismatches, col)
		}
	}

	return mismatches
}
