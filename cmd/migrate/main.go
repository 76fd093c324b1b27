package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/config"
	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/database"
)

func main() {
	dir := flag.String("dir", "./migrations", "directory holding NNNN_name.up.sql files")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = cfg.GetDSN()
	}

	db, err := database.NewDatabase(dsn)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()
	fmt.Println("Successfully connected to the database")

	if err := migrate(db.DB, *dir); err != nil {
		log.Fatal(err)
	}
	fmt.Println("All migrations completed successfully!")
}

func migrate(db *sql.DB, dir string) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version BIGINT PRIMARY KEY,
			applied_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read migrations directory: %w", err)
	}

	var migrationFiles []string
	for _, f := range files {
		if !f.IsDir() && strings.HasSuffix(f.Name(), ".up.sql") {
			migrationFiles = append(migrationFiles, f.Name())
		}
	}
	sort.Strings(migrationFiles)

	for _, filename := range migrationFiles {
		var version int64
		if _, err := fmt.Sscanf(filename, "%d", &version); err != nil {
			log.Printf("Skipping file %s: could not parse version from filename\n", filename)
			continue
		}

		var exists bool
		err = db.QueryRow("SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)", version).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check migration status for %s: %w", filename, err)
		}
		if exists {
			fmt.Printf("Migration %s already applied, skipping\n", filename)
			continue
		}

		fmt.Printf("Applying migration: %s\n", filename)
		content, err := os.ReadFile(filepath.Join(dir, filename))
		if err != nil {
			return fmt.Errorf("read migration file %s: %w", filename, err)
		}

		// One transaction per migration
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("start transaction for %s: %w", filename, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("execute migration %s: %w", filename, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES ($1)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %s: %w", filename, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", filename, err)
		}
		fmt.Printf("Successfully applied %s\n", filename)
	}
	return nil
}
