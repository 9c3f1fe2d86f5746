package notification

import (
	"time"

	"github.com/consensuslabs/pavilion-mint/internal/config"
)

// ServiceConfig contains configuration for mint event publishing
type ServiceConfig struct {
	PulsarURL         string
	AuthToken         string
	OperationTimeout  time.Duration
	ConnectionTimeout time.Duration

	Enabled         bool
	MintEventsTopic string
}

// NewServiceConfigFromConfig creates a notification config from the application config
func NewServiceConfigFromConfig(cfg *config.Config) *ServiceConfig {
	return &ServiceConfig{
		PulsarURL:         cfg.Pulsar.URL,
		AuthToken:         cfg.Pulsar.AuthToken,
		OperationTimeout:  cfg.Pulsar.OperationTimeout,
		ConnectionTimeout: cfg.Pulsar.ConnectionTimeout,
		Enabled:           cfg.Notification.Enabled,
		MintEventsTopic:   cfg.Notification.MintEventsTopic,
	}
}

// DefaultConfig returns default configuration values
func DefaultConfig() *ServiceConfig {
	return &ServiceConfig{
		PulsarURL:         "pulsar://localhost:6650",
		OperationTimeout:  30 * time.Second,
		ConnectionTimeout: 30 * time.Second,
		Enabled:           true,
		MintEventsTopic:   "persistent://public/default/mint-events",
	}
}
