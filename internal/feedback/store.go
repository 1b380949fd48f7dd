package feedback

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/lab-report-explainer/internal/database"
	"github.com/lab-report-explainer/internal/domain"
)

// Driver names accepted in configuration
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open builds the store selected by cfg. For PostgreSQL the embedded
// migrations are applied first when MigrateOnStart is set.
func Open(ctx context.Context, cfg domain.FeedbackConfig, logger *logrus.Logger) (Store, error) {
	if logger == nil {
		logger = logrus.New()
	}

	switch strings.ToLower(cfg.Driver) {
	case "", DriverSQLite:
		store, err := NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.WithField("path", cfg.SQLitePath).Info("Feedback store initialized (SQLite)")
		return store, nil

	case DriverPostgres, "postgresql":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("feedback.database_url is required for the postgres driver")
		}
		if cfg.MigrateOnStart {
			if err := migrateUp(cfg.DatabaseURL, logger); err != nil {
				return nil, err
			}
		}

		db, err := database.Open(ctx, cfg.DatabaseURL, database.PoolConfig{
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
		}, logger)
		if err != nil {
			return nil, err
		}
		store, err := NewPostgresStore(db.SQL)
		if err != nil {
			db.Close()
			return nil, err
		}
		logger.Info("Feedback store initialized (PostgreSQL)")
		return store, nil

	default:
		return nil, fmt.Errorf("unknown feedback driver: %s", cfg.Driver)
	}
}

func migrateUp(databaseURL string, logger *logrus.Logger) error {
	runner, err := database.NewMigrationRunner(databaseURL, logger)
	if err != nil {
		return err
	}
	defer runner.Close()
	return runner.Up()
}
