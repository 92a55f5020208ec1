package migrate

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/harborline/shipline-backend/pkg/config"
	"github.com/harborline/shipline-backend/pkg/db"
	"github.com/harborline/shipline-backend/pkg/db/models"
	"github.com/harborline/shipline-backend/pkg/logger"
)

// MaybeRunDev prepares the schema at boot. SQLite databases are always
// auto-migrated from the models; Postgres runs goose only in development with
// the feature flag on.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if client.Dialect() == db.DialectSQLite {
		logg.Info(ctx, "auto-migrating sqlite schema")
		return AutoMigrateModels(client.DB())
	}

	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dir": DefaultDir})
	logg.Info(ctx, "running Goose migrations (dev auto-run)")

	if err := Run(ctx, sqlDB, DefaultDir, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "Goose migrations completed")
	return nil
}

// AutoMigrateModels creates the tables from the GORM models. The Postgres
// search vector and CHECK constraint only exist in the SQL migrations.
func AutoMigrateModels(conn *gorm.DB) error {
	if err := conn.AutoMigrate(&models.User{}, &models.Vessel{}); err != nil {
		return fmt.Errorf("auto-migrating models: %w", err)
	}
	return nil
}
