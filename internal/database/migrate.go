package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file" // Required for file source
	"github.com/sirupsen/logrus"
)

const migrationsDatabaseName = "cafeteria_menu"

// Migration directions accepted by Migrate
const (
	MigrateUp   = "up"
	MigrateDown = "down"
)

// RunMigrations applies every pending up migration found at sourceURL
func RunMigrations(db *sql.DB, sourceURL string, logger *logrus.Logger) error {
	return Migrate(db, sourceURL, MigrateUp, logger)
}

// Migrate moves the schema up to the latest version or down to nothing.
// An already up to date schema is not an error.
func Migrate(db *sql.DB, sourceURL, direction string, logger *logrus.Logger) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to get database instance for migrations: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(sourceURL, migrationsDatabaseName, driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	switch direction {
	case MigrateUp:
		err = m.Up()
	case MigrateDown:
		err = m.Down()
	default:
		return fmt.Errorf("unknown migration direction %q", direction)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		logger.WithField("direction", direction).Info("Database schema already up to date")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to run %s migrations: %w", direction, err)
	}

	version, dirty, verr := m.Version()
	fields := logrus.Fields{"direction": direction}
	if verr == nil {
		fields["version"] = version
		fields["dirty"] = dirty
	}
	logger.WithFields(fields).Info("Database migration was run successfully")
	return nil
}
