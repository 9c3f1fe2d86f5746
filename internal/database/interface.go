package database

import (
	"github.com/consensuslabs/pavilion-mint/internal/logger"
	"gorm.io/gorm"
)

// Service defines the interface for database operations
type Service interface {
	Connect() (*gorm.DB, error)
	Migrate(models ...interface{}) error
	Ping() error
	Close() error
}

// Logger interface for logging operations
type Logger = logger.Logger
