package redis

import (
	"fmt"
	"time"

	"github.com/stratostore/go-tables/cache"
)

// Config holds Redis-specific configuration.
type Config struct {
	// Host is the Redis server hostname or IP address.
	Host string `koanf:"host"`

	// Port is the Redis server port (default 6379).
	Port int `koanf:"port"`

	// Password for Redis authentication (optional).
	Password string `koanf:"password"`

	// Database number to use (default 0).
	Database int `koanf:"database"`

	// PoolSize is the maximum number of socket connections (default 10).
	PoolSize int `koanf:"pool_size"`

	// DialTimeout bounds new connection establishment (default 5s).
	DialTimeout time.Duration `koanf:"dial_timeout"`

	// ReadTimeout bounds socket reads (default 3s).
	ReadTimeout time.Duration `koanf:"read_timeout"`

	// WriteTimeout bounds socket writes (default 3s).
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

// Address returns the host:port pair.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate fails fast on an unusable configuration and fills defaults.
func (c *Config) Validate() error {
	if c.Host == "" {
		return cache.NewConfigError("redis.host", "host is required")
	}
	if c.Port == 0 {
		c.Port = 6379
	}
	if c.Port < 0 || c.Port > 65535 {
		return cache.NewConfigError("redis.port", fmt.Sprintf("invalid port: %d", c.Port))
	}
	if c.Database < 0 || c.Database > 15 {
		return cache.NewConfigError("redis.database", fmt.Sprintf("invalid database: %d", c.Database))
	}
	if c.PoolSize == 0 {
		c.PoolSize = 10
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 3 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 3 * time.Second
	}
	return nil
}
