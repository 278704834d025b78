// Package config reads process settings from the environment, after loading
// an optional .env file.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	StorageGCS = "gcs"
	StorageR2  = "r2"
)

type Config struct {
	Server  ServerConfig
	Mongo   MongoConfig
	JWT     JWTConfig
	Storage StorageConfig
	Admin   AdminConfig
}

type ServerConfig struct {
	Port           string   `env:"PORT" envDefault:"8080"`
	AppEnv         string   `env:"APP_ENV" envDefault:"production"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`

	// Login attempts per second and burst allowed per client IP. Zero disables.
	LoginRPS   float64 `env:"LOGIN_RATE_PER_SEC" envDefault:"0.5"`
	LoginBurst int     `env:"LOGIN_RATE_BURST" envDefault:"5"`
}

type MongoConfig struct {
	URI      string `env:"MONGODB_URI,required,notEmpty"`
	Database string `env:"DATABASE_NAME,required,notEmpty"`
}

type JWTConfig struct {
	Secret           string `env:"JWT_SECRET,required,notEmpty"`
	AccessTTLMinutes int    `env:"ACCESS_TOKEN_TTL_MINUTES" envDefault:"15"`
}

func (c JWTConfig) AccessTTL() time.Duration {
	if c.AccessTTLMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(c.AccessTTLMinutes) * time.Minute
}

type StorageConfig struct {
	Driver          string `env:"STORAGE_DRIVER" envDefault:"gcs"`
	GCSBucket       string `env:"GCS_BUCKET"`
	CredentialsFile string `env:"CREDENTIALS_FILE_LOCATION"`

	R2Bucket       string `env:"R2_BUCKET"`
	R2AccessKey    string `env:"R2_ACCESS_KEY_ID"`
	R2SecretKey    string `env:"R2_SECRET_ACCESS_KEY"`
	R2Endpoint     string `env:"R2_ENDPOINT"`
	R2PublicDomain string `env:"R2_PUBLIC_DOMAIN"`

	MaxUploadSizeMB int `env:"MAX_UPLOAD_SIZE_MB" envDefault:"50"`
	MaxProdImages   int `env:"MAX_PROD_IMAGES" envDefault:"8"`
}

func (c StorageConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadSizeMB) << 20
}

// AdminConfig seeds the first merchant account. Seeding is skipped when
// either credential is blank.
type AdminConfig struct {
	Email    string `env:"ADMIN_EMAIL"`
	Password string `env:"ADMIN_PASSWORD"`
	StoreID  string `env:"ADMIN_STORE_ID" envDefault:"default"`
}

func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development"
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case StorageGCS:
		if c.Storage.GCSBucket == "" {
			return fmt.Errorf("GCS_BUCKET is required for storage driver %q", c.Storage.Driver)
		}
	case StorageR2:
		s := c.Storage
		if s.R2Bucket == "" || s.R2AccessKey == "" || s.R2SecretKey == "" || s.R2Endpoint == "" {
			return fmt.Errorf("missing R2 env vars (R2_BUCKET, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY, R2_ENDPOINT)")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.Storage.MaxProdImages <= 0 {
		c.Storage.MaxProdImages = 8
	}
	return nil
}

// Load reads the server configuration.
func Load() (*Config, error) {
	_ = godotenv.Load()
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// CLIConfig is what catalogctl needs to reach the API.
type CLIConfig struct {
	APIURL   string `env:"CATALOG_API_URL" envDefault:"http://localhost:8080"`
	Token    string `env:"CATALOG_TOKEN"`
	Email    string `env:"CATALOG_EMAIL"`
	Password string `env:"CATALOG_PASSWORD"`
	Debug    bool   `env:"CATALOG_DEBUG"`
}

func LoadCLI() (*CLIConfig, error) {
	_ = godotenv.Load()
	cfg := &CLIConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Token == "" && (cfg.Email == "" || cfg.Password == "") {
		return nil, fmt.Errorf("set CATALOG_TOKEN or both CATALOG_EMAIL and CATALOG_PASSWORD")
	}
	return cfg, nil
}
