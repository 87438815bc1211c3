package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port         string   `env:"PORT,          default=5000"`
	Env          string   `env:"ENV,           default=development"`
	JWTSecret    string   `env:"JWT_SECRET"`
	LogLevel     string   `env:"LOG_LEVEL,     default=info"`
	UploadsDir   string   `env:"UPLOADS_DIR,   default=./uploads"`
	CORSOrigins  []string `env:"CORS_ORIGINS,  default=http://localhost:5173"`
	AuditWorkers int      `env:"AUDIT_WORKERS, default=4"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=mealbridge"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}
