package database

import (
	"fmt"

	"github.com/consensuslabs/pavilion-mint/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DatabaseService implements the Service interface
type DatabaseService struct {
	config          *config.DatabaseConfig
	logger          Logger
	db              *gorm.DB
	migrationConfig *MigrationConfig
}

// NewDatabaseService creates a new database service instance
func NewDatabaseService(config *config.DatabaseConfig, logger Logger) *DatabaseService {
	return &DatabaseService{
		config: config,
		logger: logger,
	}
}

// DSN builds the postgres connection string from configuration
func DSN(cfg *config.DatabaseConfig) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=%s",
		cfg.Host,
		cfg.User,
		cfg.Password,
		cfg.Dbname,
		cfg.Port,
		cfg.Sslmode,
		cfg.Timezone,
	)
}

// Connect establishes a connection to the database
func (s *DatabaseService) Connect() (*gorm.DB, error) {
	s.logger.LogInfo("Connecting to database", map[string]interface{}{
		"host":   s.config.Host,
		"dbname": s.config.Dbname,
		"port":   s.config.Port,
	})

	db, err := gorm.Open(postgres.Open(DSN(s.config)), &gorm.Config{
		PrepareStmt: true,
		Logger:      NewGormLogger(s.logger, s.config.SlowQuery),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	if s.config.Pool.MaxOpen > 0 {
		sqlDB.SetMaxOpenConns(s.config.Pool.MaxOpen)
	}
	if s.config.Pool.MaxIdle > 0 {
		sqlDB.SetMaxIdleConns(s.config.Pool.MaxIdle)
	}

	s.migrationConfig = NewMigrationConfig(db)
	s.db = db
	return db, nil
}

// Migrate creates or updates the tables for the given models when the
// environment permits it, and records the run in schema_migrations. A run
// whose models are unchanged since the last recorded one is skipped.
func (s *DatabaseService) Migrate(models ...interface{}) error {
	if s.db == nil {
		return fmt.Errorf("database is not connected")
	}

	if err := s.migrationConfig.Permitted(); err != nil {
		s.logger.LogInfo("Skipping auto-migration", map[string]interface{}{
			"environment": s.migrationConfig.Environment,
			"reason":      err.Error(),
		})
		return nil
	}

	if err := s.migrationConfig.ensureLedger(); err != nil {
		return fmt.Errorf("failed to initialize migration tracking: %w", err)
	}

	name, digest := MigrationName(models...), SchemaDigest(models...)
	recorded, err := s.migrationConfig.applied(name)
	if err != nil {
		return fmt.Errorf("failed to check migration status: %w", err)
	}
	if recorded == digest && !s.migrationConfig.ForceRun {
		s.logger.LogInfo("Schema is up to date", map[string]interface{}{
			"migration": name,
		})
		return nil
	}

	if err := s.db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}
	if err := s.migrationConfig.record(name, digest); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}

	s.logger.LogInfo("Auto-migration completed successfully", map[string]interface{}{
		"migration": name,
		"digest":    digest[:12],
	})
	return nil
}

// MigrationHistory lists the migrations recorded in schema_migrations
func (s *DatabaseService) MigrationHistory() ([]MigrationRecord, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database is not connected")
	}
	return s.migrationConfig.History()
}

// ForceMigrations makes the next Migrate call run regardless of environment
func (s *DatabaseService) ForceMigrations() {
	if s.migrationConfig != nil {
		s.migrationConfig.ForceRun = true
	}
}

// Ping checks that the connection is alive
func (s *DatabaseService) Ping() error {
	if s.db == nil {
		return fmt.Errorf("database is not connected")
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Close closes the database connection
func (s *DatabaseService) Close() error {
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err != nil {
			return fmt.Errorf("failed to get database instance: %w", err)
		}
		if err := sqlDB.Close(); err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}
	return nil
}
