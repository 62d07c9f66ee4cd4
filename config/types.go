package config

import (
	"time"

	"github.com/knadh/koanf/v2"
)

// Supported database vendors.
const (
	MySQL  = "mysql"
	MSSQL  = "mssql"
	SQLite = "sqlite"
)

const (
	defaultSlowQueryThreshold = 200 * time.Millisecond
	defaultMaxQueryLength     = 1000
	defaultMaxConnections     = 25
	defaultIdleConnections    = 2
)

// Config is the root configuration for bricksql tools and embedding applications.
type Config struct {
	App      AppConfig      `koanf:"app" json:"app" yaml:"app" mapstructure:"app"`
	Log      LogConfig      `koanf:"log" json:"log" yaml:"log" mapstructure:"log"`
	Database DatabaseConfig `koanf:"database" json:"database" yaml:"database" mapstructure:"database"`
	Schema   SchemaConfig   `koanf:"schema" json:"schema" yaml:"schema" mapstructure:"schema"`

	k *koanf.Koanf
}

// AppConfig identifies the running application in logs.
type AppConfig struct {
	Name    string `koanf:"name" json:"name" yaml:"name" mapstructure:"name" validate:"required"`
	Version string `koanf:"version" json:"version" yaml:"version" mapstructure:"version"`
	Env     string `koanf:"env" json:"env" yaml:"env" mapstructure:"env"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `koanf:"level" json:"level" yaml:"level" mapstructure:"level" validate:"oneof=trace debug info warn error"`
	Pretty bool   `koanf:"pretty" json:"pretty" yaml:"pretty" mapstructure:"pretty"`
}

// DatabaseConfig holds connection and query-rendering settings.
type DatabaseConfig struct {
	Type             string `koanf:"type" json:"type" yaml:"type" mapstructure:"type" validate:"omitempty,oneof=mysql mssql sqlite"`
	Host             string `koanf:"host" json:"host" yaml:"host" mapstructure:"host"`
	Port             int    `koanf:"port" json:"port" yaml:"port" mapstructure:"port" validate:"gte=0,lte=65535"`
	Database         string `koanf:"database" json:"database" yaml:"database" mapstructure:"database"`
	Username         string `koanf:"username" json:"username" yaml:"username" mapstructure:"username"`
	Password         string `koanf:"password" json:"-" yaml:"password" mapstructure:"password"`
	Path             string `koanf:"path" json:"path" yaml:"path" mapstructure:"path"`
	ConnectionString string `koanf:"connectionstring" json:"-" yaml:"connectionstring" mapstructure:"connectionstring"`

	// QuoteIdentifiers quotes table and field names with the vendor's quote style.
	QuoteIdentifiers  bool `koanf:"quoteidentifiers" json:"quoteidentifiers" yaml:"quoteidentifiers" mapstructure:"quoteidentifiers"`
	StrictParentheses bool `koanf:"strictparentheses" json:"strictparentheses" yaml:"strictparentheses" mapstructure:"strictparentheses"`

	Pool  PoolConfig  `koanf:"pool" json:"pool" yaml:"pool" mapstructure:"pool"`
	Query QueryConfig `koanf:"query" json:"query" yaml:"query" mapstructure:"query"`
}

// PoolConfig holds database/sql pool settings.
type PoolConfig struct {
	Max      PoolMaxConfig  `koanf:"max" json:"max" yaml:"max" mapstructure:"max"`
	Idle     PoolIdleConfig `koanf:"idle" json:"idle" yaml:"idle" mapstructure:"idle"`
	Lifetime LifetimeConfig `koanf:"lifetime" json:"lifetime" yaml:"lifetime" mapstructure:"lifetime"`
}

// PoolMaxConfig holds maximum connections settings.
type PoolMaxConfig struct {
	Connections int `koanf:"connections" json:"connections" yaml:"connections" mapstructure:"connections" validate:"gte=0"`
}

// PoolIdleConfig holds idle connections settings.
type PoolIdleConfig struct {
	// Connections kept warm in the pool; zero keeps the database/sql default.
	Connections int           `koanf:"connections" json:"connections" yaml:"connections" mapstructure:"connections" validate:"gte=0"`
	Time        time.Duration `koanf:"time" json:"time" yaml:"time" mapstructure:"time" validate:"gte=0"`
}

// LifetimeConfig holds connection lifetime settings.
type LifetimeConfig struct {
	Max time.Duration `koanf:"max" json:"max" yaml:"max" mapstructure:"max" validate:"gte=0"`
}

// QueryConfig holds settings related to query logging and slow query detection.
type QueryConfig struct {
	Slow SlowQueryConfig `koanf:"slow" json:"slow" yaml:"slow" mapstructure:"slow"`
	Log  QueryLogConfig  `koanf:"log" json:"log" yaml:"log" mapstructure:"log"`
}

// SlowQueryConfig holds settings for slow query detection.
type SlowQueryConfig struct {
	Threshold time.Duration `koanf:"threshold" json:"threshold" yaml:"threshold" mapstructure:"threshold" validate:"gte=0"`
}

// QueryLogConfig holds settings for query logging.
type QueryLogConfig struct {
	Parameters bool `koanf:"parameters" json:"parameters" yaml:"parameters" mapstructure:"parameters"`
	MaxLength  int  `koanf:"maxlength" json:"maxlength" yaml:"maxlength" mapstructure:"maxlength" validate:"gte=0"`
}

// SchemaConfig declares tables and their ordered field lists.
type SchemaConfig struct {
	Tables map[string][]string `koanf:"tables" json:"tables" yaml:"tables" mapstructure:"tables" validate:"dive,keys,required,endkeys,min=1,dive,required"`
}
