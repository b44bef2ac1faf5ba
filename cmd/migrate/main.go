// Command migrate applies the catalog and site preference schema.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jonesrussell/north-cloud/personalization/internal/config"
)

const (
	exitSuccess = 0
	exitFailure = 1
)

const migrationsPath = "file://migrations"

const usage = "Usage: migrate <up|down|version>"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, usage)
		return exitFailure
	}

	command := args[0]
	switch command {
	case "up", "down", "version":
	default:
		fmt.Fprintf(os.Stderr, "Invalid command: %q\n%s\n", command, usage)
		return exitFailure
	}

	cfg, err := config.Load(config.GetConfigPath("config.yml"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return exitFailure
	}

	m, err := migrate.New(migrationsPath, cfg.Database.MigrateURL())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create migrate instance: %v\n", err)
		return exitFailure
	}
	defer func() { _, _ = m.Close() }()

	if command == "version" {
		return printVersion(m)
	}

	if err := runMigration(m, command); err != nil {
		fmt.Fprintf(os.Stderr, "Migration %s failed: %v\n", command, err)
		return exitFailure
	}

	fmt.Printf("Migration %s completed successfully\n", command)
	return exitSuccess
}

func printVersion(m *migrate.Migrate) int {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Println("No migrations applied")
		return exitSuccess
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read version: %v\n", err)
		return exitFailure
	}

	fmt.Printf("Version %d (dirty: %t)\n", version, dirty)
	return exitSuccess
}

func runMigration(m *migrate.Migrate, direction string) error {
	var err error
	if direction == "up" {
		err = m.Up()
	} else {
		err = m.Down()
	}

	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Println("No migrations to apply")
		return nil
	}
	return err
}
