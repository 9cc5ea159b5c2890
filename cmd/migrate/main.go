package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"fruitbox-be/internal/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
)

// migrator is the subset of *migrate.Migrate the runner drives.
type migrator interface {
	Up() error
	Steps(n int) error
	Version() (version uint, dirty bool, err error)
}

func main() {
	_ = godotenv.Load()

	mode := flag.String("mode", "up", "migration mode: up, down or version")
	dir := flag.String("dir", "migrations", "directory holding *.up.sql / *.down.sql files")
	flag.Parse()

	m, err := migrate.New("file://"+*dir, databaseURL())
	if err != nil {
		log.Fatalf("failed to open migrations: %v", err)
	}
	defer m.Close()

	if err := run(m, *mode); err != nil {
		log.Fatal(err)
	}
}

// databaseURL prefers DB_URL and falls back to the DB_* settings the server uses.
func databaseURL() string {
	if url := os.Getenv("DB_URL"); url != "" {
		return url
	}
	dbCfg := config.LoadDatabase()
	if !dbCfg.Enabled() {
		log.Fatal("DB_URL or DB_HOST/DB_NAME must be set")
	}
	return dbCfg.URL()
}

func run(m migrator, mode string) error {
	switch mode {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Println("All new migrations applied.")
	case "down":
		// Roll back only the latest migration.
		if err := m.Steps(-1); err != nil {
			if errors.Is(err, os.ErrNotExist) || errors.Is(err, migrate.ErrNilVersion) {
				fmt.Println("No migrations to roll back.")
				return nil
			}
			return fmt.Errorf("rollback failed: %w", err)
		}
		fmt.Println("Rolled back one migration.")
	case "version":
		v, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("No migrations applied.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read version: %w", err)
		}
		fmt.Printf("Version %d (dirty=%t)\n", v, dirty)
	default:
		return fmt.Errorf("unknown mode: %s (use 'up', 'down' or 'version')", mode)
	}
	return nil
}
