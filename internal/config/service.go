package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ConfigService implements the Service interface
type ConfigService struct {
	logger Logger
}

// NewConfigService creates a new configuration service
func NewConfigService(logger Logger) *ConfigService {
	return &ConfigService{
		logger: logger,
	}
}

// Load loads the configuration from the specified path.
// Secrets may come from a .env file next to the config or from MINT_* variables.
func (s *ConfigService) Load(path string) (*Config, error) {
	if err := godotenv.Load(filepath.Join(path, ".env")); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	v := viper.New()
	v.AddConfigPath(path)
	if os.Getenv("ENV") == "test" {
		v.SetConfigName("config_test")
	} else {
		v.SetConfigName("config")
	}
	v.SetConfigType("yaml")
	v.SetEnvPrefix("MINT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	s.setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := s.validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := s.resolveStoragePaths(&config, path); err != nil {
		return nil, fmt.Errorf("failed to resolve storage paths: %w", err)
	}

	s.logger.LogInfo("Configuration loaded successfully", map[string]interface{}{
		"environment": config.Environment,
	})
	return &config, nil
}

// setDefaults sets default values for configuration
func (s *ConfigService) setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowedOrigins", []string{"*"})
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.timezone", "UTC")
	v.SetDefault("database.pool.maxOpen", 100)
	v.SetDefault("database.pool.maxIdle", 10)
	v.SetDefault("database.slowQuery", "200ms")
	v.SetDefault("storage.tempDir", "temp")
	v.SetDefault("storage.ipfs.apiAddress", "localhost:5001")
	v.SetDefault("storage.s3.prefix", "sources")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.latchTTL", "24h")
	v.SetDefault("video.maxSize", 1024*1024*1024) // 1GB
	v.SetDefault("video.minTitleLength", 1)
	v.SetDefault("video.maxTitleLength", 100)
	v.SetDefault("video.maxDescLength", 5000)
	v.SetDefault("video.allowedFormats", []string{".mp4", ".mov", ".webm", ".mkv", ".avi"})
	v.SetDefault("livepeer.apiURL", "https://livepeer.studio")
	v.SetDefault("livepeer.timeout", "30m")
	v.SetDefault("chain.chainID", 80001)
	v.SetDefault("chain.contractAddress", "0xA4E1d8FE768d471B048F9d73ff90ED8fcCC03643")
	v.SetDefault("chain.functionName", "mint")
	v.SetDefault("chain.explorerURL", "https://mumbai.polygonscan.com")
	v.SetDefault("mint.pollInterval", "5s")
	v.SetDefault("mint.shareURL", "https://twitter.com/intent/tweet?text=Video%20NFT%20created%20on%20Livepeer%20Studio%20app")
	v.SetDefault("mint.resumeOnBoot", true)
	v.SetDefault("auth.jwt.accessTokenTTL", "24h")
	v.SetDefault("auth.challengeTTL", "5m")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("scylladb.port", 9042)
	v.SetDefault("scylladb.keyspace", "pavilion_mint")
	v.SetDefault("scylladb.consistency", "quorum")
	v.SetDefault("scylladb.replication.class", "SimpleStrategy")
	v.SetDefault("scylladb.replication.replicationFactor", 1)
	v.SetDefault("scylladb.timeout", "5s")
	v.SetDefault("scylladb.connectTimeout", "10s")
	v.SetDefault("pulsar.operation_timeout", "30s")
	v.SetDefault("pulsar.connection_timeout", "30s")
	v.SetDefault("notification.mint_events_topic", "persistent://public/default/mint-events")
}

// validate performs validation on the configuration
func (s *ConfigService) validate(config *Config) error {
	if config.Server.Port <= 0 {
		return fmt.Errorf("invalid server port")
	}

	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.Database.Dbname == "" {
		return fmt.Errorf("database name is required")
	}

	if config.Livepeer.APIKey == "" {
		return fmt.Errorf("livepeer api key is required")
	}

	if !common.IsHexAddress(config.Chain.ContractAddress) {
		return fmt.Errorf("invalid contract address: %q", config.Chain.ContractAddress)
	}

	if config.Mint.PollInterval <= 0 {
		return fmt.Errorf("mint poll interval must be positive")
	}

	if config.Auth.JWT.Secret == "" {
		return fmt.Errorf("jwt secret is required")
	}

	if config.ScyllaDB.Enabled && len(config.ScyllaDB.Hosts) == 0 {
		return fmt.Errorf("scylladb hosts are required when scylladb is enabled")
	}

	if config.Notification.Enabled && config.Pulsar.URL == "" {
		return fmt.Errorf("pulsar url is required when notifications are enabled")
	}

	return nil
}

// resolveStoragePaths converts relative paths to absolute paths
func (s *ConfigService) resolveStoragePaths(config *Config, basePath string) error {
	tempDir := config.Storage.TempDir
	if !filepath.IsAbs(tempDir) {
		absPath, err := filepath.Abs(filepath.Join(basePath, tempDir))
		if err != nil {
			return fmt.Errorf("failed to resolve temp directory path: %w", err)
		}
		config.Storage.TempDir = absPath
	}

	return nil
}
