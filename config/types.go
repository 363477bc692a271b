package config

import "time"

// Config is the full client configuration. Sections cover the storage
// account identity, client behavior, retry strategy, the optional retrieve
// cache and logging.
type Config struct {
	Account AccountConfig `koanf:"account" json:"account" yaml:"account" toml:"account" mapstructure:"account"`
	Client  ClientConfig  `koanf:"client" json:"client" yaml:"client" toml:"client" mapstructure:"client"`
	Retry   RetryConfig   `koanf:"retry" json:"retry" yaml:"retry" toml:"retry" mapstructure:"retry"`
	Cache   CacheConfig   `koanf:"cache" json:"cache" yaml:"cache" toml:"cache" mapstructure:"cache"`
	Log     LogConfig     `koanf:"log" json:"log" yaml:"log" toml:"log" mapstructure:"log"`
}

// AccountConfig identifies the storage account and its endpoints. When the
// endpoint section is empty the well-known public endpoints are derived
// from the account name.
type AccountConfig struct {
	Name     string         `koanf:"name" json:"name" yaml:"name" toml:"name" mapstructure:"name" validate:"required"`
	Key      string         `koanf:"key" json:"key" yaml:"key" toml:"key" mapstructure:"key"`
	Endpoint EndpointConfig `koanf:"endpoint" json:"endpoint" yaml:"endpoint" toml:"endpoint" mapstructure:"endpoint"`
}

// EndpointConfig overrides the service endpoints, for emulators and
// sovereign clouds.
type EndpointConfig struct {
	Primary   string `koanf:"primary" json:"primary" yaml:"primary" toml:"primary" mapstructure:"primary" validate:"omitempty,url"`
	Secondary string `koanf:"secondary" json:"secondary" yaml:"secondary" toml:"secondary" mapstructure:"secondary" validate:"omitempty,url"`
}

// ClientConfig holds per-request behavior defaults.
type ClientConfig struct {
	// Format selects the OData JSON metadata level.
	Format string `koanf:"format" json:"format" yaml:"format" toml:"format" mapstructure:"format" validate:"oneof=nometadata minimalmetadata fullmetadata"`

	// Location selects which endpoints reads may use. Writes always go to
	// the primary.
	Location string `koanf:"location" json:"location" yaml:"location" toml:"location" mapstructure:"location" validate:"oneof=primary secondary primary-then-secondary"`

	// Timeout bounds one Execute call including retries.
	Timeout time.Duration `koanf:"timeout" json:"timeout" yaml:"timeout" toml:"timeout" mapstructure:"timeout" validate:"min=0"`
}

// RetryConfig holds the retry strategy for transient failures.
type RetryConfig struct {
	Policy   string        `koanf:"policy" json:"policy" yaml:"policy" toml:"policy" mapstructure:"policy" validate:"oneof=none linear exponential"`
	Attempts int           `koanf:"attempts" json:"attempts" yaml:"attempts" toml:"attempts" mapstructure:"attempts" validate:"min=0,max=10"`
	Delay    DelayConfig   `koanf:"delay" json:"delay" yaml:"delay" toml:"delay" mapstructure:"delay"`
}

// DelayConfig holds the backoff bounds.
type DelayConfig struct {
	Base time.Duration `koanf:"base" json:"base" yaml:"base" toml:"base" mapstructure:"base" validate:"min=0"`
	Max  time.Duration `koanf:"max" json:"max" yaml:"max" toml:"max" mapstructure:"max" validate:"min=0"`
}

// CacheConfig holds the optional Redis-backed retrieve cache settings. The
// cache is enabled only when explicitly configured.
type CacheConfig struct {
	Enabled  bool          `koanf:"enabled" json:"enabled" yaml:"enabled" toml:"enabled" mapstructure:"enabled"`
	Host     string        `koanf:"host" json:"host" yaml:"host" toml:"host" mapstructure:"host"`
	Port     int           `koanf:"port" json:"port" yaml:"port" toml:"port" mapstructure:"port" validate:"min=0,max=65535"`
	Password string        `koanf:"password" json:"password" yaml:"password" toml:"password" mapstructure:"password"`
	Database int           `koanf:"database" json:"database" yaml:"database" toml:"database" mapstructure:"database" validate:"min=0"`
	TTL      time.Duration `koanf:"ttl" json:"ttl" yaml:"ttl" toml:"ttl" mapstructure:"ttl" validate:"min=0"`
}

// LogConfig holds logging preferences.
type LogConfig struct {
	Level  string `koanf:"level" json:"level" yaml:"level" toml:"level" mapstructure:"level" validate:"oneof=trace debug info warn error"`
	Pretty bool   `koanf:"pretty" json:"pretty" yaml:"pretty" toml:"pretty" mapstructure:"pretty"`
}
