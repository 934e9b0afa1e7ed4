package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Datadog  DatadogConfig  `mapstructure:"datadog"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig selects the document store backend.
// URL is only required for the postgres driver.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=postgres memory"`
	URL    string `mapstructure:"url"    validate:"required_if=Driver postgres"`
	// AutoMigrate applies pending migrations when the server starts.
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	BcryptCost           int    `mapstructure:"bcrypt_cost"            validate:"gte=4,lte=31"`
}

// LoggerConfig lists the log transports to initialize, in order.
type LoggerConfig struct {
	Transports []string `mapstructure:"transports" validate:"dive,oneof=console datadog kafka"`
}

// DatadogConfig configures the Datadog log transport. Values are read again
// through the Provider by the transport probe, so nothing here is required.
type DatadogConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Site     string `mapstructure:"site"`
	Service  string `mapstructure:"service"`
	LogLevel string `mapstructure:"log_level"`
}

// KafkaConfig configures the Kafka log transport.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}
