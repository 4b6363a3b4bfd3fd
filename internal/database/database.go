package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/avifenesh/finding-apartment-tlv/internal/models"
)

// Database wraps the gorm connection to the listing store.
type Database struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewDatabase opens (creating if needed) the sqlite store at dbPath and runs
// schema migrations.
func NewDatabase(dbPath string, logger *logrus.Logger) (*Database, error) {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	d := &Database{db: db, logger: logger}
	if err := d.RunMigrations(); err != nil {
		return nil, err
	}
	return d, nil
}

// NewTestDB opens an in-memory store for tests.
func NewTestDB() (*Database, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	// A pooled :memory: connection would open a fresh empty database per
	// connection, so pin the pool to a single one.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	d := &Database{db: db, logger: logrus.New()}
	if err := d.RunMigrations(); err != nil {
		return nil, err
	}
	return d, nil
}

// RunMigrations brings the schema up to date.
func (d *Database) RunMigrations() error {
	if err := d.db.AutoMigrate(&models.Listing{}, &models.SessionState{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// DB exposes the underlying gorm handle for transaction-scoped work.
func (d *Database) DB() *gorm.DB {
	return d.db
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
