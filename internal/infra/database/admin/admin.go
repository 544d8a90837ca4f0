// Package admin holds the maintenance operations behind the --db-* flags.
package admin

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"garaadka-laundry/internal/config"
)

type Status struct {
	Driver    string
	Tables    []string
	CheckedAt time.Time
}

func Check(ctx context.Context, db *gorm.DB) (Status, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return Status{}, fmt.Errorf("get underlying connection: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return Status{}, fmt.Errorf("database unavailable: %w", err)
	}

	tables, err := userTables(db.WithContext(ctx))
	if err != nil {
		return Status{}, fmt.Errorf("list tables: %w", err)
	}

	return Status{Driver: db.Dialector.Name(), Tables: tables, CheckedAt: time.Now().UTC()}, nil
}

// DeleteAll drops every table of the current schema.
func DeleteAll(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)
	tables, err := userTables(db)
	if err != nil {
		return fmt.Errorf("list tables to drop: %w", err)
	}

	if db.Dialector.Name() == "sqlite" {
		if err := db.Exec("PRAGMA foreign_keys = OFF").Error; err != nil {
			return err
		}
		defer db.Exec("PRAGMA foreign_keys = ON")
	}

	for _, table := range tables {
		if err := db.Migrator().DropTable(table); err != nil {
			return fmt.Errorf("drop table %s: %w", table, err)
		}
	}
	return nil
}

// userTables lists tables, leaving out sqlite's internal ones.
func userTables(db *gorm.DB) ([]string, error) {
	all, err := db.Migrator().GetTables()
	if err != nil {
		return nil, err
	}
	tables := make([]string, 0, len(all))
	for _, t := range all {
		if !strings.HasPrefix(t, "sqlite_") {
			tables = append(tables, t)
		}
	}
	sort.Strings(tables)
	return tables, nil
}

type BackupOptions struct {
	Destination string
}

// Backup runs pg_dump for postgres or VACUUM INTO for sqlite.
func Backup(ctx context.Context, db *gorm.DB, cfg config.Databases, opts BackupOptions) (string, error) {
	if opts.Destination == "" {
		return "", errors.New("backup destination not set (use --local=<path>)")
	}

	destination := normalizeDestination(opts.Destination)
	if err := os.MkdirAll(filepath.Dir(destination), 0o755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}

	switch cfg.Driver {
	case "sqlite":
		if err := db.WithContext(ctx).Exec("VACUUM INTO ?", destination).Error; err != nil {
			return "", fmt.Errorf("sqlite backup failed: %w", err)
		}
		return destination, nil
	case "postgres":
		return destination, pgDump(ctx, cfg.Postgres, destination)
	default:
		return "", fmt.Errorf("backup not supported for driver %q", cfg.Driver)
	}
}

func pgDump(ctx context.Context, pg config.Postgres, destination string) error {
	if pg.DBName == "" {
		return errors.New("database name not configured")
	}

	cmd := exec.CommandContext(ctx,
		"pg_dump",
		"-h", pg.Host,
		"-p", pg.Port,
		"-U", pg.User,
		"-d", pg.DBName,
		"-F", detectFormat(destination),
		"-f", destination,
	)
	cmd.Env = append(os.Environ(), fmt.Sprintf("PGPASSWORD=%s", pg.Pwd))

	if output, err := cmd.CombinedOutput(); err != nil {
		if len(output) > 0 {
			return fmt.Errorf("pg_dump failed: %w - %s", err, strings.TrimSpace(string(output)))
		}
		return fmt.Errorf("pg_dump failed: %w", err)
	}
	return nil
}

func normalizeDestination(path string) string {
	clean := filepath.Clean(path)
	if !filepath.IsAbs(clean) {
		if cwd, err := os.Getwd(); err == nil {
			return filepath.Join(cwd, clean)
		}
	}
	return clean
}

// detectFormat maps the file extension to a pg_dump -F value.
func detectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sql":
		return "p"
	case ".tar":
		return "t"
	default:
		return "c"
	}
}
