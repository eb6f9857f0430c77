// Package migrations holds the versioned reference-data migrations: the
// cutting rule table and the default catalog. Table structure itself comes
// from database.Migrate.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"furniture-backend/internal/catalog"
	"furniture-backend/internal/cutting"
	"furniture-backend/internal/models"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Dialector wraps a goose transaction so the migration bodies can use gorm.
type Dialector func(tx *sql.Tx) gorm.Dialector

type Runner struct {
	provider *goose.Provider
}

func New(db *sql.DB, dialect goose.Dialect, open Dialector) (*Runner, error) {
	provider, err := goose.NewProvider(dialect, db, nil,
		goose.WithGoMigrations(
			goose.NewGoMigration(1,
				&goose.GoFunc{RunTx: withGorm(open, seedCuttingRules)},
				&goose.GoFunc{RunTx: withGorm(open, dropCuttingRules)},
			),
			goose.NewGoMigration(2,
				&goose.GoFunc{RunTx: withGorm(open, seedCatalog)},
				&goose.GoFunc{RunTx: withGorm(open, dropCatalog)},
			),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	return &Runner{provider: provider}, nil
}

func (r *Runner) Up(ctx context.Context) error {
	results, err := r.provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	for _, res := range results {
		slog.Info("migration applied", "version", res.Source.Version, "duration", res.Duration)
	}
	return nil
}

func (r *Runner) Down(ctx context.Context) error {
	res, err := r.provider.Down(ctx)
	if err != nil {
		return fmt.Errorf("migrate down: %w", err)
	}
	if res != nil {
		slog.Info("migration rolled back", "version", res.Source.Version)
	}
	return nil
}

func (r *Runner) Version(ctx context.Context) (int64, error) {
	return r.provider.GetDBVersion(ctx)
}

func withGorm(open Dialector, fn func(tx *gorm.DB) error) func(context.Context, *sql.Tx) error {
	return func(ctx context.Context, sqlTx *sql.Tx) error {
		tx, err := gorm.Open(open(sqlTx), &gorm.Config{
			Logger:                 logger.Default.LogMode(logger.Warn),
			SkipDefaultTransaction: true,
		})
		if err != nil {
			return err
		}
		return fn(tx.WithContext(ctx))
	}
}

func seedCuttingRules(tx *gorm.DB) error {
	var existing int64
	if err := tx.Model(&models.CuttingRule{}).Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		slog.Warn("cutting rules already present, leaving them untouched", "rows", existing)
		return nil
	}

	rules := cutting.DefaultRules()
	if err := tx.CreateInBatches(&rules, 100).Error; err != nil {
		return fmt.Errorf("insert cutting rules: %w", err)
	}
	return nil
}

func dropCuttingRules(tx *gorm.DB) error {
	return tx.Where("1 = 1").Delete(&models.CuttingRule{}).Error
}

func seedCatalog(tx *gorm.DB) error {
	for _, p := range catalog.DefaultProducts() {
		if _, err := catalog.EnsureProduct(tx, p); err != nil {
			return fmt.Errorf("seed product %q: %w", p.Name, err)
		}
	}
	return nil
}

// dropCatalog removes the default products unless orders reference them.
func dropCatalog(tx *gorm.DB) error {
	for _, in := range catalog.DefaultProducts() {
		var p models.Product
		if err := tx.Where("name = ?", in.Name).First(&p).Error; err != nil {
			continue
		}
		var used int64
		if err := tx.Model(&models.OrderItem{}).Where("product_id = ?", p.ID).Count(&used).Error; err != nil {
			return err
		}
		if used > 0 {
			continue
		}
		if err := tx.Model(&p).Association("Sizes").Clear(); err != nil {
			return err
		}
		if err := tx.Model(&p).Association("Fabrics").Clear(); err != nil {
			return err
		}
		if err := tx.Delete(&p).Error; err != nil {
			return err
		}
	}
	return nil
}
