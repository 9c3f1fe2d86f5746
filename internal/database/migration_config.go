package database

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"
)

// MigrationConfig decides whether Migrate may change the schema and keeps
// the schema_migrations ledger
type MigrationConfig struct {
	Environment string
	AutoMigrate bool
	ForceRun    bool
	db          *gorm.DB
}

// NewMigrationConfig reads ENV, AUTO_MIGRATE and FORCE_MIGRATION. Auto
// migration defaults to on in development only.
func NewMigrationConfig(db *gorm.DB) *MigrationConfig {
	env := os.Getenv("ENV")
	if env == "" {
		env = "development"
	}

	auto := env == "development"
	if v := os.Getenv("AUTO_MIGRATE"); v != "" {
		auto = v == "true"
	}

	return &MigrationConfig{
		Environment: env,
		AutoMigrate: auto,
		ForceRun:    os.Getenv("FORCE_MIGRATION") == "true",
		db:          db,
	}
}

// Permitted returns nil when schema changes may run in this environment.
// Production always needs ForceRun.
func (c *MigrationConfig) Permitted() error {
	switch {
	case c.ForceRun:
		return nil
	case c.Environment == "production":
		return fmt.Errorf("schema changes in production need FORCE_MIGRATION=true")
	case !c.AutoMigrate:
		return fmt.Errorf("auto-migration is off in %s", c.Environment)
	}
	return nil
}

// ensureLedger creates schema_migrations if it is missing
func (c *MigrationConfig) ensureLedger() error {
	if err := c.db.AutoMigrate(&MigrationRecord{}); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}
	return nil
}

// applied returns the recorded digest for name, or "" if it never ran
func (c *MigrationConfig) applied(name string) (string, error) {
	var records []MigrationRecord
	if err := c.db.Where("name = ?", name).Limit(1).Find(&records).Error; err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", nil
	}
	return records[0].Hash, nil
}

// record stores name with its digest in a new batch, or refreshes the
// digest when the models changed since the last run
func (c *MigrationConfig) record(name, digest string) error {
	var batchNo int
	if err := c.db.Model(&MigrationRecord{}).Select("COALESCE(MAX(batch_no), 0) + 1").Row().Scan(&batchNo); err != nil {
		return fmt.Errorf("failed to determine batch number: %w", err)
	}

	existing, err := c.applied(name)
	if err != nil {
		return err
	}
	if existing != "" {
		return c.db.Model(&MigrationRecord{}).Where("name = ?", name).Updates(map[string]interface{}{
			"hash":       digest,
			"applied_at": time.Now(),
			"batch_no":   batchNo,
		}).Error
	}

	return c.db.Create(&MigrationRecord{
		Name:      name,
		Hash:      digest,
		AppliedAt: time.Now(),
		BatchNo:   batchNo,
	}).Error
}

// History lists every recorded migration, oldest first
func (c *MigrationConfig) History() ([]MigrationRecord, error) {
	var records []MigrationRecord
	err := c.db.Order("applied_at").Find(&records).Error
	return records, err
}

// MigrationName derives a stable migration name from the migrated model types
func MigrationName(models ...interface{}) string {
	names := make([]string, 0, len(models))
	for _, m := range models {
		names = append(names, strings.ToLower(modelType(m).Name()))
	}
	sort.Strings(names)
	return "auto_" + strings.Join(names, "_")
}

// SchemaDigest hashes the model types with their field names, types and
// gorm tags, so a changed model shows up as a new digest
func SchemaDigest(models ...interface{}) string {
	lines := make([]string, 0, len(models))
	for _, m := range models {
		t := modelType(m)
		fields := make([]string, 0, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			fields = append(fields, fmt.Sprintf("%s %s %q", f.Name, f.Type, f.Tag.Get("gorm")))
		}
		lines = append(lines, t.Name()+"{"+strings.Join(fields, ";")+"}")
	}
	sort.Strings(lines)

	sum := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(sum[:])
}

func modelType(m interface{}) reflect.Type {
	t := reflect.TypeOf(m)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}
