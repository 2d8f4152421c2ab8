package store

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5" // registers the pgx5:// driver
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/Clark-Hu/cinescope/db"
)

// Migrate applies every pending migration embedded in the db package.
func Migrate(dbURL string, logger *log.Logger) error {
	if logger == nil {
		logger = log.Default()
	}
	source, err := iofs.New(db.Migrations, "migrations")
	if err != nil {
		return fmt.Errorf("open migration source: %w", err)
	}

	target, err := migrationURL(dbURL)
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, target)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.Printf("store: closing migrator: source=%v db=%v", srcErr, dbErr)
		}
	}()

	logger.Println("store: applying database migrations")
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read migration version: %w", err)
	}
	logger.Printf("store: schema at version %d (dirty=%v)", version, dirty)
	return nil
}

// migrationURL rewrites a postgres:// DSN to the pgx5:// scheme the migrate
// driver registers.
func migrationURL(dbURL string) (string, error) {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(dbURL, prefix) {
			return "pgx5://" + strings.TrimPrefix(dbURL, prefix), nil
		}
	}
	if strings.HasPrefix(dbURL, "pgx5://") {
		return dbURL, nil
	}
	return "", fmt.Errorf("unsupported database url scheme (want postgres://)")
}
