package postgres

import (
	"fmt"
	"time"

	"atlas/internal/logger"
	"atlas/internal/model"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB holds the global database connection
var DB *gorm.DB

// Init opens the database, routes gorm's logging through zap and migrates
// the continent table.
func Init(url string, log *zap.Logger) (*gorm.DB, error) {
	// Only slow queries and errors are interesting
	gormLogger := gormlogger.New(
		logger.NewPrintfAdapter(log.Named("gorm")),
		gormlogger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	db, err := gorm.Open(postgres.Open(url), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&model.ContinentPG{}); err != nil {
		return nil, fmt.Errorf("failed to migrate continent model: %w", err)
	}

	log.Info("connected to postgres")
	DB = db

	return db, nil
}

// GetDB returns the global database connection
func GetDB() *gorm.DB {
	return DB
}

// Close releases the pooled connections of the global database
func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	DB = nil
	return sqlDB.Close()
}
