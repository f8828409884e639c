package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const defaultConfigPath = "./config/local.yaml"

type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"prod"`
	DataDir    string `yaml:"data_dir" env:"DATA_DIR" env-required:"true"`
	HTTPServer `yaml:"http_server"`

	JWTSecret   string   `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	CORSOrigins []string `yaml:"cors_origins" env:"CORS_ORIGINS" env-separator:","`
	ErrorLog    string   `yaml:"error_log" env:"ERROR_LOG" env-default:"errors.log"`

	Holidays         []string `yaml:"holidays" env:"HOLIDAYS" env-separator:","`
	DailyTargetHours float64  `yaml:"daily_target_hours" env:"DAILY_TARGET_HOURS" env-default:"8"`

	Replica Replica `yaml:"replica"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:4001"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// Replica is the optional MySQL reporting copy of the aggregation index.
// An empty DSN disables it.
type Replica struct {
	DSN string `yaml:"dsn" env:"REPLICA_DSN"`
}

// MustConfig reads CONFIG_PATH, falling back to ./config/local.yaml.
func MustConfig() *Config {
	cfg, err := Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = defaultConfigPath
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
