package db

import (
	"fmt"
	"sync"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	DB      *gorm.DB
	once    sync.Once
	initErr error
)

func GetDB() *gorm.DB {
	return DB
}

// Init establishes the DB connection without running migrations. Only the
// first call connects; later calls return the same handle and error.
func Init(dbURL string) (*gorm.DB, error) {
	once.Do(func() {
		db, err := gorm.Open(postgres.Open(dbURL), &gorm.Config{
			DisableForeignKeyConstraintWhenMigrating: true,
			Logger:                                   logger.Default.LogMode(logger.Warn),
		})
		if err != nil {
			initErr = fmt.Errorf("failed to connect to database: %w", err)
			return
		}
		DB = db
	})
	return DB, initErr
}

// Close releases the pool opened by Init.
func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
