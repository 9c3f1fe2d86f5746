package scylladb

import (
	"fmt"

	"github.com/gocql/gocql"
)

// Client manages connections to ScyllaDB
type Client struct {
	config  Config
	session *gocql.Session
	logger  Logger
	schema  *SchemaManager
}

// NewClient creates a new ScyllaDB client
func NewClient(config Config, logger Logger) *Client {
	return &Client{
		config: config,
		logger: logger,
	}
}

// Connect creates the keyspace if needed, then reconnects inside it and
// initializes the tables
func (c *Client) Connect() error {
	c.logger.LogInfo("Attempting to connect to ScyllaDB", map[string]interface{}{
		"hosts":        c.config.Hosts,
		"port":         c.config.Port,
		"auth_enabled": c.config.Username != "" && c.config.Password != "",
		"keyspace":     c.config.Keyspace,
		"consistency":  c.config.Consistency,
	})

	cluster := gocql.NewCluster(c.config.Hosts...)
	if c.config.Port > 0 {
		cluster.Port = c.config.Port
	}
	cluster.Consistency = getConsistencyLevel(c.config.Consistency)
	if c.config.Username != "" && c.config.Password != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: c.config.Username,
			Password: c.config.Password,
		}
	}
	if c.config.Timeout > 0 {
		cluster.Timeout = c.config.Timeout
	}
	if c.config.ConnectTimeout > 0 {
		cluster.ConnectTimeout = c.config.ConnectTimeout
	}

	session, err := cluster.CreateSession()
	if err != nil {
		c.logger.LogError("Failed to connect to ScyllaDB", map[string]interface{}{
			"error": err.Error(),
			"hosts": c.config.Hosts,
		})
		return err
	}

	if err := NewSchemaManager(session, c.config, c.logger).CreateKeyspaceIfNotExists(); err != nil {
		session.Close()
		c.logger.LogError("Failed to create keyspace", map[string]interface{}{
			"error":    err.Error(),
			"keyspace": c.config.Keyspace,
		})
		return err
	}
	session.Close()

	cluster.Keyspace = c.config.Keyspace
	c.session, err = cluster.CreateSession()
	if err != nil {
		c.logger.LogError("Failed to connect to ScyllaDB with keyspace", map[string]interface{}{
			"error":    err.Error(),
			"keyspace": c.config.Keyspace,
		})
		return err
	}

	c.schema = NewSchemaManager(c.session, c.config, c.logger)
	if err := c.schema.InitializeSchema(); err != nil {
		c.logger.LogError("Failed to initialize schema", map[string]interface{}{
			"error":    err.Error(),
			"keyspace": c.config.Keyspace,
		})
		return err
	}

	c.logger.LogInfo("Connected to ScyllaDB", map[string]interface{}{
		"hosts":    c.config.Hosts,
		"keyspace": c.config.Keyspace,
	})
	return nil
}

// Close closes the connection to the ScyllaDB cluster
func (c *Client) Close() error {
	if c.session != nil {
		c.session.Close()
		c.logger.LogInfo("Closed connection to ScyllaDB", nil)
	}
	return nil
}

// Session returns the current database session
func (c *Client) Session() *gocql.Session {
	return c.session
}

// Ping checks if the connection is alive
func (c *Client) Ping() error {
	if c.session == nil {
		return fmt.Errorf("session is not established")
	}

	var version string
	return c.session.Query("SELECT release_version FROM system.local").Scan(&version)
}

// getConsistencyLevel converts string consistency level to gocql.Consistency
func getConsistencyLevel(level string) gocql.Consistency {
	switch level {
	case "one":
		return gocql.One
	case "quorum":
		return gocql.Quorum
	case "all":
		return gocql.All
	case "local_quorum":
		return gocql.LocalQuorum
	case "each_quorum":
		return gocql.EachQuorum
	case "local_one":
		return gocql.LocalOne
	default:
		return gocql.Quorum
	}
}
