// api/config/config.go
package config

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Configuration stores all the configurations
type Configuration struct {
	Server        ServerConfiguration
	Neo4j         DatabaseConfiguration
	Redis         RedisConfiguration
	Elasticsearch ElasticsearchConfiguration
	Auth          AuthConfiguration
	Webhook       WebhookConfiguration
	RateLimit     RateLimitConfiguration
	CORS          CORSConfiguration
	Log           LogConfiguration
}

// ServerConfiguration stores the port and other web server settings
type ServerConfiguration struct {
	Host           string
	Port           string
	RequestTimeout time.Duration
}

// DatabaseConfiguration stores data for database connection
type DatabaseConfiguration struct {
	URI string
}

// RedisConfiguration stores data for Redis connection
type RedisConfiguration struct {
	Addr            string
	DefaultCacheTTL string
}

// ElasticsearchConfiguration stores data for Elasticsearch connection
type ElasticsearchConfiguration struct {
	URL string
}

// AuthConfiguration stores the token signer and legacy admin key settings
// of spec.md §6.
type AuthConfiguration struct {
	AdminAPIKey        string
	JWTPrivateKey      string
	JWTAlgorithm       string
	JWTAgentExpireSecs int
	JWTAdminExpireSecs int
}

// WebhookConfiguration stores the outbound approval-event delivery settings.
type WebhookConfiguration struct {
	URL    string
	Secret string
}

// RateLimitConfiguration stores the bucketed limiter's on/off switch and
// backing store URI. The limiter does not read StorageURI: it always uses
// the main Redis client (db.RedisClient).
type RateLimitConfiguration struct {
	Enabled    bool
	StorageURI string
}

// CORSConfiguration stores the allowed origin list, comma-separated in the
// raw setting.
type CORSConfiguration struct {
	Origins []string
}

// LogConfiguration stores the structured logger's verbosity and encoding.
// The logger itself reads its level only from the LOG_LEVEL environment
// variable; these values are not passed to logging.InitLogger.
type LogConfiguration struct {
	Level  string
	Format string
	File   string
}

var config *Configuration

// InitConfig loads configuration from config/config.yaml (if present),
// environment variables, and the flat defaults of spec.md §6. Existing
// dotted neo4j.*/redis.*/elasticsearch.* keys are preserved because db.go
// and redis.go read them directly via viper.
func InitConfig() error {
	viper.AddConfigPath("config")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()

	viper.SetDefault("host", "0.0.0.0")
	viper.SetDefault("port", "8080")
	viper.SetDefault("request_timeout", "30s")

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("neo4j.uri", "bolt://localhost:7687")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("elasticsearch.url", "http://localhost:9200")
	viper.SetDefault("redis.defaultCacheTTL", "10m")
	viper.SetDefault("log.file", "logging/api.log")

	viper.SetDefault("database_url", "")
	viper.SetDefault("admin_api_key", "")
	viper.SetDefault("jwt_private_key", "")
	viper.SetDefault("jwt_algorithm", "RS256")
	viper.SetDefault("jwt_agent_expire_seconds", 3600)
	viper.SetDefault("jwt_admin_expire_seconds", 28800)
	viper.SetDefault("webhook_url", "")
	viper.SetDefault("webhook_secret", "")
	viper.SetDefault("rate_limit_enabled", true)
	viper.SetDefault("rate_limit_storage_uri", "")
	viper.SetDefault("cors_origins", "")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "json")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found. Using default settings and environment variables.")
		} else {
			return err
		}
	}

	if err := viper.Unmarshal(&config); err != nil {
		return err
	}

	config.Server.Host = viper.GetString("host")
	if p := viper.GetString("port"); p != "" {
		config.Server.Port = p
	} else {
		config.Server.Port = viper.GetString("server.port")
	}
	config.Server.RequestTimeout = viper.GetDuration("request_timeout")

	config.Auth.AdminAPIKey = viper.GetString("admin_api_key")
	config.Auth.JWTPrivateKey = viper.GetString("jwt_private_key")
	config.Auth.JWTAlgorithm = viper.GetString("jwt_algorithm")
	config.Auth.JWTAgentExpireSecs = viper.GetInt("jwt_agent_expire_seconds")
	config.Auth.JWTAdminExpireSecs = viper.GetInt("jwt_admin_expire_seconds")

	config.Webhook.URL = viper.GetString("webhook_url")
	config.Webhook.Secret = viper.GetString("webhook_secret")

	config.RateLimit.Enabled = viper.GetBool("rate_limit_enabled")
	config.RateLimit.StorageURI = viper.GetString("rate_limit_storage_uri")

	config.Log.Level = viper.GetString("log_level")
	config.Log.Format = viper.GetString("log_format")
	config.Log.File = viper.GetString("log.file")

	if origins := viper.GetString("cors_origins"); origins != "" {
		config.CORS.Origins = splitCSV(origins)
	}

	return validate(config)
}

func splitCSV(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}

// validate enforces the "non-zero exit on configuration validation failure
// at startup" rule of spec.md §6.
func validate(c *Configuration) error {
	switch c.Auth.JWTAlgorithm {
	case "RS256":
	default:
		return fmt.Errorf("unsupported jwt_algorithm %q: only RS256 is implemented", c.Auth.JWTAlgorithm)
	}
	if c.Auth.JWTAgentExpireSecs <= 0 {
		return fmt.Errorf("jwt_agent_expire_seconds must be positive")
	}
	if c.Auth.JWTAdminExpireSecs <= 0 {
		return fmt.Errorf("jwt_admin_expire_seconds must be positive")
	}
	return nil
}

// GetConfig returns the loaded configuration
func GetConfig() *Configuration {
	return config
}

// GetString retrieves a string value from the configuration
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt retrieves an integer value from the configuration
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool retrieves a boolean value from the configuration
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetFloat64 retrieves a float64 value from the configuration
func GetFloat64(key string) float64 {
	return viper.GetFloat64(key)
}
