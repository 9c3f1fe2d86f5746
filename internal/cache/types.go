package cache

import "time"

// Config represents Redis configuration settings
type Config struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	LatchTTL time.Duration `mapstructure:"latchTTL"`
}
