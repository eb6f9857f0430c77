package database

import (
	"fmt"
	"log/slog"

	"furniture-backend/internal/config"
	"furniture-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Open connects to Postgres, migrates the schema and stores the handle in DB.
// Reference data (cutting rules, default catalog) is not touched here; that is
// cmd/migrate's job.
func Open(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	DB = db
	slog.Info("database connected, schema migrated")
	return db, nil
}

// Migrate creates or updates every table the application owns.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Size{},
		&models.Fabric{},
		&models.Color{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.CuttingRule{},
		&models.Supplier{},
		&models.SupplierProduct{},
		&models.Purchase{},
		&models.Payment{},
		&models.Inventory{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
