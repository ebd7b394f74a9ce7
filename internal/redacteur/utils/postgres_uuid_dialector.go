// PostgreSQL диалектор для GORM, который создает колонки uuid.UUID и uuid.NullUUID
// с нативным типом uuid вместо bytea.
package utils

import (
	"reflect"
	"strings"

	"github.com/gofrs/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/migrator"
	"gorm.io/gorm/schema"
)

var (
	uuidType     = reflect.TypeOf(uuid.UUID{})
	nullUUIDType = reflect.TypeOf(uuid.NullUUID{})
)

type PostgresUUIDDialector struct {
	*postgres.Dialector
}

func NewPostgresUUIDDialector(config postgres.Config) gorm.Dialector {
	return &PostgresUUIDDialector{
		Dialector: postgres.New(config).(*postgres.Dialector),
	}
}

func (d *PostgresUUIDDialector) Migrator(db *gorm.DB) gorm.Migrator {
	return &PostgresUUIDMigrator{
		Migrator: postgres.Migrator{
			Migrator: migrator.Migrator{
				Config: migrator.Config{
					DB:                          db,
					Dialector:                   d,
					CreateIndexAfterCreateTable: true,
				},
			},
		},
	}
}

type PostgresUUIDMigrator struct {
	postgres.Migrator
}

func isUUIDField(field *schema.Field) bool {
	t := field.FieldType
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t == uuidType || t == nullUUIDType
}

func (m *PostgresUUIDMigrator) DataTypeOf(field *schema.Field) string {
	if isUUIDField(field) {
		return "uuid"
	}
	return m.Migrator.DataTypeOf(field)
}

// AlterColumn не трогает колонки, которые уже имеют тип uuid.
func (m *PostgresUUIDMigrator) AlterColumn(value any, field string) error {
	return m.RunWithValue(value, func(stmt *gorm.Statement) error {
		f := stmt.Schema.LookUpField(field)
		if f == nil {
			return m.Migrator.AlterColumn(value, field)
		}
		if isUUIDField(f) {
			columnTypes, err := m.ColumnTypes(value)
			if err != nil {
				return err
			}
			for _, ct := range columnTypes {
				if ct.Name() == f.DBName && strings.EqualFold(ct.DatabaseTypeName(), "uuid") {
					return nil
				}
			}
		}
		return m.DB.Exec(
			"ALTER TABLE ? ALTER COLUMN ? TYPE ?",
			clause.Table{Name: stmt.Table}, clause.Column{Name: f.DBName},
			clause.Expr{SQL: m.DataTypeOf(f)},
		).Error
	})
}
