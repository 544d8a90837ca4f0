// Package migrations applies embedded SQL files that AutoMigrate cannot express,
// such as CHECK constraints and partial indexes. Files are named YYYYMMDDHHMMSS_name.sql
// and recorded in schema_migrations once applied.
package migrations

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	SeedCategory   = "seed"
	UpdateCategory = "update"
)

//go:embed sql/seed/*.sql sql/update/*.sql
var embeddedMigrations embed.FS

type SchemaMigration struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"size:255;not null;uniqueIndex:ux_schema_migrations_name_category,priority:1"`
	Category  string    `gorm:"size:50;not null;uniqueIndex:ux_schema_migrations_name_category,priority:2"`
	AppliedAt time.Time `gorm:"not null"`
}

func (SchemaMigration) TableName() string {
	return "schema_migrations"
}

type migrationFile struct {
	Name      string
	Content   string
	Category  string
	Timestamp time.Time
}

type Manager struct {
	db     *gorm.DB
	files  fs.FS
	logger *zap.Logger
}

// NewManager uses the embedded SQL files.
func NewManager(db *gorm.DB, logger *zap.Logger) *Manager {
	return NewManagerFS(db, embeddedMigrations, logger)
}

// NewManagerFS reads sql/<category>/*.sql from files.
func NewManagerFS(db *gorm.DB, files fs.FS, logger *zap.Logger) *Manager {
	return &Manager{db: db, files: files, logger: logger}
}

func (m *Manager) ApplySeed(ctx context.Context) ([]string, error) {
	return m.apply(ctx, SeedCategory)
}

func (m *Manager) ApplyUpdate(ctx context.Context) ([]string, error) {
	return m.apply(ctx, UpdateCategory)
}

// apply runs every pending file of category in one transaction and returns their names.
func (m *Manager) apply(ctx context.Context, category string) ([]string, error) {
	files, err := m.load(category)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	var applied []string
	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(&SchemaMigration{}); err != nil {
			return fmt.Errorf("prepare schema_migrations: %w", err)
		}

		done, err := fetchApplied(tx, category)
		if err != nil {
			return err
		}

		for _, file := range files {
			if done[file.Name] {
				continue
			}
			if err := execute(tx, file); err != nil {
				return err
			}
			m.logger.Info("migration applied", zap.String("category", category), zap.String("name", file.Name))
			applied = append(applied, file.Name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return applied, nil
}

func (m *Manager) load(category string) ([]migrationFile, error) {
	switch category {
	case SeedCategory, UpdateCategory:
	default:
		return nil, fmt.Errorf("unknown migration category: %s", category)
	}
	dir := path.Join("sql", category)

	entries, err := fs.ReadDir(m.files, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read migration directory %s: %w", dir, err)
	}

	files := make([]migrationFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		name := entry.Name()
		content, err := fs.ReadFile(m.files, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}

		ts, err := parseTimestamp(name)
		if err != nil {
			return nil, err
		}

		files = append(files, migrationFile{
			Name:      name,
			Content:   string(content),
			Category:  category,
			Timestamp: ts,
		})
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].Timestamp.Equal(files[j].Timestamp) {
			return files[i].Name < files[j].Name
		}
		return files[i].Timestamp.Before(files[j].Timestamp)
	})
	return files, nil
}

func parseTimestamp(name string) (time.Time, error) {
	ts, _, ok := strings.Cut(path.Base(name), "_")
	if !ok || len(ts) != 14 {
		return time.Time{}, fmt.Errorf("migration %s does not follow YYYYMMDDHHMMSS_name.sql", name)
	}
	parsed, err := time.Parse("20060102150405", ts)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp of migration %s: %w", name, err)
	}
	return parsed, nil
}

func fetchApplied(tx *gorm.DB, category string) (map[string]bool, error) {
	var rows []SchemaMigration
	if err := tx.Where("category = ?", category).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query applied migrations (%s): %w", category, err)
	}
	applied := make(map[string]bool, len(rows))
	for _, row := range rows {
		applied[row.Name] = true
	}
	return applied, nil
}

func execute(tx *gorm.DB, file migrationFile) error {
	if err := tx.Exec(file.Content).Error; err != nil {
		return fmt.Errorf("apply migration %s: %w", file.Name, err)
	}
	record := SchemaMigration{Name: file.Name, Category: file.Category, AppliedAt: time.Now().UTC()}
	if err := tx.Create(&record).Error; err != nil {
		return fmt.Errorf("record migration %s: %w", file.Name, err)
	}
	return nil
}
