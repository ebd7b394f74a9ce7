package dao

import (
	"fmt"
	"strings"

	"github.com/aisa-it/redacteur/internal/redacteur/utils"
	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Dialector выбирает драйвер по DSN: postgres:// и postgresql:// - PostgreSQL,
// sqlite:// и file: - SQLite.
func Dialector(dsn string) (gorm.Dialector, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return utils.NewPostgresUUIDDialector(postgres.Config{DSN: dsn}), nil
	case strings.HasPrefix(dsn, "sqlite://"):
		return sqlite.Open(strings.TrimPrefix(dsn, "sqlite://")), nil
	case strings.HasPrefix(dsn, "file:"):
		return sqlite.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported database url %q", dsn)
}

// Open открывает БД и применяет миграции моделей.
func Open(dsn string, cfg *gorm.Config) (*gorm.DB, error) {
	dialector, err := Dialector(dsn)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}
