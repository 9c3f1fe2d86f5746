package database

import "time"

// MigrationRecord is one row of the schema_migrations ledger
type MigrationRecord struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"not null;uniqueIndex"` // MigrationName of the migrated models
	Hash      string    `gorm:"not null"`             // SchemaDigest of the models at the last run
	AppliedAt time.Time `gorm:"not null"`
	BatchNo   int       `gorm:"not null"`
}

// TableName specifies the table name for migration records
func (MigrationRecord) TableName() string {
	return "schema_migrations"
}
