package config

import (
	"fmt"

	"github.com/stratostore/go-tables/auth"
	"github.com/stratostore/go-tables/cache/redis"
	"github.com/stratostore/go-tables/logger"
	"github.com/stratostore/go-tables/odata"
	"github.com/stratostore/go-tables/transport"
)

const publicEndpointSuffix = "table.core.windows.net"

// Endpoints derives the service endpoints, preferring explicit overrides
// over the well-known public endpoints of the account.
func (c *AccountConfig) Endpoints() transport.Endpoints {
	if c.Endpoint.Primary != "" {
		return transport.Endpoints{
			Primary:   c.Endpoint.Primary,
			Secondary: c.Endpoint.Secondary,
		}
	}
	return transport.Endpoints{
		Primary:   fmt.Sprintf("https://%s.%s", c.Name, publicEndpointSuffix),
		Secondary: fmt.Sprintf("https://%s-secondary.%s", c.Name, publicEndpointSuffix),
	}
}

// Credential builds the request signer, or the anonymous signer when no key
// is configured.
func (c *AccountConfig) Credential() (transport.Signer, error) {
	if c.Key == "" {
		return transport.AnonymousSigner{}, nil
	}
	cred, err := auth.NewSharedKeyCredential(c.Name, c.Key)
	if err != nil {
		return nil, err
	}
	return cred, nil
}

// PayloadFormat returns the configured OData metadata level.
func (c *ClientConfig) PayloadFormat() odata.Format {
	return odata.Format(c.Format)
}

// LocationMode maps the configured location to the transport mode.
func (c *ClientConfig) LocationMode() transport.LocationMode {
	switch c.Location {
	case "secondary":
		return transport.SecondaryOnly
	case "primary-then-secondary":
		return transport.PrimaryThenSecondary
	default:
		return transport.PrimaryOnly
	}
}

// RetryPolicy builds the configured retry policy.
func (c *RetryConfig) RetryPolicy() transport.RetryPolicy {
	switch c.Policy {
	case "none":
		return transport.NoRetry{}
	case "linear":
		return transport.LinearRetry{
			Delay:       c.Delay.Base,
			MaxAttempts: c.Attempts,
		}
	default:
		return transport.ExponentialRetry{
			BaseDelay:   c.Delay.Base,
			MaxDelay:    c.Delay.Max,
			MaxAttempts: c.Attempts,
		}
	}
}

// RedisConfig maps the cache section onto the Redis client configuration.
// Returns nil when the cache is disabled.
func (c *CacheConfig) RedisConfig() *redis.Config {
	if !c.Enabled {
		return nil
	}
	return &redis.Config{
		Host:     c.Host,
		Port:     c.Port,
		Password: c.Password,
		Database: c.Database,
	}
}

// NewLogger builds a logger from the log section.
func (c *LogConfig) NewLogger() logger.Logger {
	return logger.New(c.Level, c.Pretty)
}
