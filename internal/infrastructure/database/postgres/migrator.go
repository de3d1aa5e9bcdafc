package postgres

import (
	"database/sql"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/turtacn/MedReg-Intelligence/internal/config"
	"github.com/turtacn/MedReg-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MedReg-Intelligence/pkg/errors"
)

// Migrate applies all pending schema migrations from cfg.MigrationPath.
// An up-to-date schema is not an error.
func Migrate(cfg config.DatabaseConfig, log logging.Logger) error {
	db, err := sql.Open("pgx", BuildDSN(cfg))
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to open migration connection")
	}
	defer db.Close()

	driver, err := migratepgx.WithInstance(db, &migratepgx.Config{})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to prepare migration driver")
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cfg.MigrationPath), cfg.DBName, driver)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load migrations")
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "migration failed")
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to read migration version")
	}
	log.Info("database schema up to date",
		logging.Int("version", int(version)),
		logging.Bool("dirty", dirty),
	)
	return nil
}
