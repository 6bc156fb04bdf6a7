package db

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"door-alarm-backend/config"
	"door-alarm-backend/internal/model"
)

// Init initializes the database connection and runs migrations.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(dialectorFor(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetimeMinutes > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
	}

	log.Println("Running database migrations...")
	if err := db.AutoMigrate(
		&model.Event{},
		&model.Setting{},
		&model.User{},
		&model.MailConfig{},
		&model.PushSubscription{},
	); err != nil {
		return nil, fmt.Errorf("automigrate failed: %w", err)
	}

	log.Println("Database initialization complete.")
	return db, nil
}

// dialectorFor picks the gorm driver based on the DSN shape. The embedded
// deployment uses an SQLite file; Postgres stays available for bench setups.
func dialectorFor(dsn string) gorm.Dialector {
	if strings.HasPrefix(dsn, "postgres://") || strings.Contains(dsn, "host=") {
		return postgres.Open(dsn)
	}
	return sqlite.Open(dsn)
}

// Seed ensures the default admin account and timer setting exist.
func Seed(db *gorm.DB) error {
	var adminCount int64
	if err := db.Model(&model.User{}).Where("username = ?", "admin").Count(&adminCount).Error; err != nil {
		return fmt.Errorf("check admin user: %w", err)
	}
	if adminCount == 0 {
		admin := model.User{
			Username:    "admin",
			IsAdmin:     true,
			Permissions: model.Permissions(model.AllPermissions),
		}
		// Default credential, expected to be changed after first login.
		if err := admin.SetPassword("admin"); err != nil {
			return err
		}
		if err := db.Create(&admin).Error; err != nil {
			return fmt.Errorf("create admin user: %w", err)
		}
		log.Println("Seeded default admin user")
	}

	var settingCount int64
	if err := db.Model(&model.Setting{}).Where("key = ?", model.SettingTimerDuration).Count(&settingCount).Error; err != nil {
		return fmt.Errorf("check timer setting: %w", err)
	}
	if settingCount == 0 {
		setting := model.Setting{
			Key:   model.SettingTimerDuration,
			Value: strconv.Itoa(model.DefaultTimerDurationSeconds),
		}
		if err := db.Create(&setting).Error; err != nil {
			return fmt.Errorf("create timer setting: %w", err)
		}
	}

	return nil
}
