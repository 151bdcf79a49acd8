package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	MediaBackendFS = "fs"
	MediaBackendS3 = "s3"
)

// Config holds all runtime settings, read from the environment
type Config struct {
	ServerPort string `env:"SERVER_PORT" envDefault:"8080"`
	GinMode    string `env:"GIN_MODE" envDefault:"debug"`

	DB DBConfig

	JWTSecret          string `env:"JWT_SECRET_KEY,required,notEmpty"`
	JWTExpirationHours int64  `env:"JWT_EXPIRATION_HOURS" envDefault:"0"` // 0 disables expiry

	Media MediaConfig

	PhoneDefaultRegion string `env:"PHONE_DEFAULT_REGION"`

	LoginRatePerMinute int `env:"LOGIN_RATE_PER_MINUTE" envDefault:"20"`
	LoginRateBurst     int `env:"LOGIN_RATE_BURST" envDefault:"5"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	CORSAllowOrigins []string `env:"CORS_ALLOW_ORIGINS" envSeparator:"," envDefault:"*"`

	// TrustedProxies lists proxy IPs or CIDRs whose X-Forwarded-For is believed.
	// Empty means the client IP is always the socket peer.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`
}

// MediaConfig selects and configures photo storage
type MediaConfig struct {
	Backend        string `env:"MEDIA_BACKEND" envDefault:"fs"`
	Root           string `env:"MEDIA_ROOT" envDefault:"media"`
	URL            string `env:"MEDIA_URL" envDefault:"/media/"`
	MaxUploadBytes int64  `env:"MEDIA_MAX_UPLOAD_BYTES" envDefault:"5242880"`

	S3Bucket    string `env:"S3_BUCKET"`
	S3Region    string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3PublicURL string `env:"S3_PUBLIC_URL"`
}

// Load reads an optional .env file and parses the environment into a Config
func Load(envFiles ...string) (*Config, error) {
	// A missing .env is fine, the process environment still applies
	_ = godotenv.Load(envFiles...)

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ToolConfig is the subset of settings command-line tools need. It has no
// JWT or media settings.
type ToolConfig struct {
	DB DBConfig

	PhoneDefaultRegion string `env:"PHONE_DEFAULT_REGION"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`
}

// LoadTool reads an optional .env file and parses the environment into a ToolConfig
func LoadTool(envFiles ...string) (*ToolConfig, error) {
	_ = godotenv.Load(envFiles...)

	cfg := &ToolConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.DB.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if err := c.DB.validate(); err != nil {
		return err
	}
	switch c.Media.Backend {
	case MediaBackendFS:
	case MediaBackendS3:
		if c.Media.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET must be set when MEDIA_BACKEND=s3")
		}
	default:
		return fmt.Errorf("unknown MEDIA_BACKEND %q", c.Media.Backend)
	}
	if c.LoginRatePerMinute <= 0 || c.LoginRateBurst <= 0 {
		return fmt.Errorf("LOGIN_RATE_PER_MINUTE and LOGIN_RATE_BURST must be positive")
	}
	return nil
}
