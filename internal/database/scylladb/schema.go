package scylladb

import (
	"fmt"

	"github.com/gocql/gocql"
)

const (
	transitionsTable      = "mint_transitions"
	failuresByWalletTable = "mint_failures_by_wallet"
)

// SchemaManager handles ScyllaDB schema creation
type SchemaManager struct {
	session *gocql.Session
	config  Config
	logger  Logger
}

// NewSchemaManager creates a new schema manager
func NewSchemaManager(session *gocql.Session, config Config, logger Logger) *SchemaManager {
	return &SchemaManager{
		session: session,
		config:  config,
		logger:  logger,
	}
}

// CreateKeyspaceIfNotExists creates the keyspace if it doesn't exist
func (m *SchemaManager) CreateKeyspaceIfNotExists() error {
	return m.session.Query(keyspaceCQL(m.config)).Exec()
}

// InitializeSchema creates the timeline tables
func (m *SchemaManager) InitializeSchema() error {
	for _, table := range []struct {
		name string
		cql  string
	}{
		{transitionsTable, transitionsCQL},
		{failuresByWalletTable, failuresByWalletCQL},
	} {
		if err := m.session.Query(table.cql).Exec(); err != nil {
			m.logger.LogError("Failed to create table", map[string]interface{}{
				"table": table.name,
				"error": err.Error(),
			})
			return fmt.Errorf("failed to create %s: %w", table.name, err)
		}
	}

	m.logger.LogInfo("Schema initialization completed successfully", map[string]interface{}{
		"keyspace": m.config.Keyspace,
	})
	return nil
}

func keyspaceCQL(config Config) string {
	class := config.Replication.Class
	if class == "" {
		class = "SimpleStrategy"
	}
	factor := config.Replication.ReplicationFactor
	if factor <= 0 {
		factor = 1
	}
	return fmt.Sprintf(`
		CREATE KEYSPACE IF NOT EXISTS %s
		WITH REPLICATION = {
			'class': '%s',
			'replication_factor': %d
		}
	`, config.Keyspace, class, factor)
}

// Transitions of one session are clustered in the order they happened
const transitionsCQL = `
	CREATE TABLE IF NOT EXISTS mint_transitions (
		session_id text,
		at timestamp,
		id timeuuid,
		from_state text,
		to_state text,
		stage text,
		message text,
		PRIMARY KEY (session_id, at, id)
	) WITH CLUSTERING ORDER BY (at ASC, id ASC)
`

const failuresByWalletCQL = `
	CREATE TABLE IF NOT EXISTS mint_failures_by_wallet (
		wallet_address text,
		stage text,
		at timestamp,
		session_id text,
		message text,
		PRIMARY KEY ((wallet_address, stage), at, session_id)
	) WITH CLUSTERING ORDER BY (at DESC, session_id ASC)
`
