package database

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := Open(postgres.Open(cfg.DSN()), logger.Warn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	slog.Info("database connected", "host", cfg.DBHost, "name", cfg.DBName)
	return db, nil
}

// Open opens a gorm handle on any dialector and installs the shared callbacks.
// Driver errors are translated, so unique violations surface as gorm.ErrDuplicatedKey.
func Open(dialector gorm.Dialector, level logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	if err := db.Callback().Create().Before("gorm:create").Register("speakup:assign_uuid", assignUUID); err != nil {
		return nil, fmt.Errorf("failed to register uuid callback: %w", err)
	}
	return db, nil
}

// MigrateShared runs AutoMigrate for shared models.
func MigrateShared(db *gorm.DB) error {
	return db.AutoMigrate(models.Shared()...)
}

// MigrateModels runs AutoMigrate for arbitrary models (used by plugins).
func MigrateModels(db *gorm.DB, modelList []interface{}) error {
	if len(modelList) == 0 {
		return nil
	}
	return db.AutoMigrate(modelList...)
}

func Ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var uuidType = reflect.TypeOf(uuid.UUID{})

// assignUUID fills a zero uuid primary key before insert, so IDs never depend on a
// database-side default.
func assignUUID(db *gorm.DB) {
	if db.Statement.Schema == nil {
		return
	}
	field := db.Statement.Schema.LookUpField("ID")
	if field == nil || field.FieldType != uuidType {
		return
	}

	ctx := db.Statement.Context
	rv := db.Statement.ReflectValue
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			setID(ctx, db, field, reflect.Indirect(rv.Index(i)))
		}
	case reflect.Struct:
		setID(ctx, db, field, rv)
	}
}

func setID(ctx context.Context, db *gorm.DB, field *schema.Field, rv reflect.Value) {
	if _, zero := field.ValueOf(ctx, rv); zero {
		if err := field.Set(ctx, rv, uuid.New()); err != nil {
			db.AddError(err)
		}
	}
}
