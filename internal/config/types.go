package config

import (
	"time"
)

// Config represents the application configuration
type Config struct {
	Environment  string             `mapstructure:"environment" yaml:"environment"`
	Server       ServerConfig       `mapstructure:"server" yaml:"server"`
	Database     DatabaseConfig     `mapstructure:"database" yaml:"database"`
	Redis        RedisConfig        `mapstructure:"redis" yaml:"redis"`
	Storage      StorageConfig      `mapstructure:"storage" yaml:"storage"`
	Logging      LoggingConfig      `mapstructure:"logging" yaml:"logging"`
	Video        VideoConfig        `mapstructure:"video" yaml:"video"`
	Livepeer     LivepeerConfig     `mapstructure:"livepeer" yaml:"livepeer"`
	Chain        ChainConfig        `mapstructure:"chain" yaml:"chain"`
	Mint         MintConfig         `mapstructure:"mint" yaml:"mint"`
	Auth         AuthConfig         `mapstructure:"auth" yaml:"auth"`
	ScyllaDB     ScyllaDBConfig     `mapstructure:"scylladb" yaml:"scylladb"`
	Pulsar       PulsarConfig       `mapstructure:"pulsar" yaml:"pulsar"`
	Notification NotificationConfig `mapstructure:"notification" yaml:"notification"`
}

// AuthConfig represents wallet token settings
type AuthConfig struct {
	JWT struct {
		Secret         string        `mapstructure:"secret"`
		AccessTokenTTL time.Duration `mapstructure:"accessTokenTTL"`
	} `mapstructure:"jwt"`
	ChallengeTTL time.Duration `mapstructure:"challengeTTL"`
}

// ServerConfig represents server configuration settings
type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// DatabaseConfig represents database configuration settings
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Dbname   string `mapstructure:"dbname"`
	Port     int    `mapstructure:"port"`
	Sslmode  string `mapstructure:"sslmode"`
	Timezone string `mapstructure:"timezone"`
	Pool     struct {
		MaxOpen int `mapstructure:"maxOpen"`
		MaxIdle int `mapstructure:"maxIdle"`
	} `mapstructure:"pool"`
	SlowQuery time.Duration `mapstructure:"slowQuery"`
}

// StorageConfig represents storage configuration settings
type StorageConfig struct {
	TempDir string     `mapstructure:"tempDir"`
	IPFS    IPFSConfig `mapstructure:"ipfs"`
	S3      S3Config   `mapstructure:"s3"`
}

// RedisConfig represents Redis configuration settings
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	LatchTTL time.Duration `mapstructure:"latchTTL"`
}

// VideoConfig represents upload validation settings
type VideoConfig struct {
	MaxSize        int64    `mapstructure:"maxSize"`
	MinTitleLength int      `mapstructure:"minTitleLength"`
	MaxTitleLength int      `mapstructure:"maxTitleLength"`
	MaxDescLength  int      `mapstructure:"maxDescLength"`
	AllowedFormats []string `mapstructure:"allowedFormats"`
}

// IPFSConfig represents the local IPFS node used to mirror exported assets
type IPFSConfig struct {
	MirrorPin  bool   `mapstructure:"mirrorPin"`
	APIAddress string `mapstructure:"apiAddress"`
}

// S3Config represents the bucket original uploads are archived to
type S3Config struct {
	Enabled         bool   `mapstructure:"enabled"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"accessKeyId"`
	SecretAccessKey string `mapstructure:"secretAccessKey"`
	UseSSL          bool   `mapstructure:"useSSL"`
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	Prefix          string `mapstructure:"prefix"`
}

// LivepeerConfig represents the media pipeline API settings
type LivepeerConfig struct {
	APIURL  string        `mapstructure:"apiURL"`
	APIKey  string        `mapstructure:"apiKey"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ChainConfig represents the NFT contract and the node used to submit calls
type ChainConfig struct {
	RPCURL          string `mapstructure:"rpcURL"`
	ChainID         int64  `mapstructure:"chainID"`
	ContractAddress string `mapstructure:"contractAddress"`
	FunctionName    string `mapstructure:"functionName"`
	MinterKey       string `mapstructure:"minterKey"`
	ExplorerURL     string `mapstructure:"explorerURL"`
}

// MintConfig represents workflow settings
type MintConfig struct {
	PollInterval time.Duration `mapstructure:"pollInterval"`
	ShareURL     string        `mapstructure:"shareURL"`
	ResumeOnBoot bool          `mapstructure:"resumeOnBoot"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	Output      string `mapstructure:"output" yaml:"output"`
	Development bool   `mapstructure:"development" yaml:"development"`

	File struct {
		Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
		Path    string `mapstructure:"path" yaml:"path"`
	} `mapstructure:"file" yaml:"file"`

	Sampling struct {
		Initial    int `mapstructure:"initial" yaml:"initial"`
		Thereafter int `mapstructure:"thereafter" yaml:"thereafter"`
	} `mapstructure:"sampling" yaml:"sampling"`
}

// ScyllaDBConfig represents the transition timeline store
type ScyllaDBConfig struct {
	Enabled     bool     `mapstructure:"enabled" yaml:"enabled"`
	Hosts       []string `mapstructure:"hosts" yaml:"hosts"`
	Port        int      `mapstructure:"port" yaml:"port"`
	Keyspace    string   `mapstructure:"keyspace" yaml:"keyspace"`
	Username    string   `mapstructure:"username" yaml:"username"`
	Password    string   `mapstructure:"password" yaml:"password"`
	Consistency string   `mapstructure:"consistency" yaml:"consistency"`
	Replication struct {
		Class             string `mapstructure:"class" yaml:"class"`
		ReplicationFactor int    `mapstructure:"replicationFactor" yaml:"replicationFactor"`
	} `mapstructure:"replication" yaml:"replication"`
	Timeout        time.Duration `mapstructure:"timeout" yaml:"timeout"`
	ConnectTimeout time.Duration `mapstructure:"connectTimeout" yaml:"connectTimeout"`
}

// PulsarConfig represents Apache Pulsar configuration settings
type PulsarConfig struct {
	URL               string        `mapstructure:"url" yaml:"url"`
	OperationTimeout  time.Duration `mapstructure:"operation_timeout" yaml:"operation_timeout"`
	ConnectionTimeout time.Duration `mapstructure:"connection_timeout" yaml:"connection_timeout"`
	AuthToken         string        `mapstructure:"auth_token" yaml:"auth_token"`
}

// NotificationConfig represents mint event publishing settings
type NotificationConfig struct {
	Enabled         bool   `mapstructure:"enabled" yaml:"enabled"`
	MintEventsTopic string `mapstructure:"mint_events_topic" yaml:"mint_events_topic"`
}
