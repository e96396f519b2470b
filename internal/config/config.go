package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App      App      `yaml:"app"`
	HTTP     HTTP     `yaml:"http"`
	Metrics  Metrics  `yaml:"metrics"`
	Log      Log      `yaml:"log"`
	Postgres Postgres `yaml:"postgres"`
	Redis    Redis    `yaml:"redis"`
	Kafka    Kafka    `yaml:"kafka"`
	Outbox   Outbox   `yaml:"outbox"`
	Cache    Cache    `yaml:"cache"`
	Services Services `yaml:"services"`
}

type App struct {
	Name    string `yaml:"name" env:"APP_NAME" env-default:"socialnet"`
	Version string `yaml:"version" env:"APP_VERSION" env-default:"1.0.0"`
}

type HTTP struct {
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
}

type Metrics struct {
	Port string `yaml:"port" env:"METRICS_PORT" env-default:"9090"`
}

type Log struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

type Postgres struct {
	Host     string `yaml:"host" env:"POSTGRES_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"POSTGRES_USER" env-default:"user"`
	Password string `yaml:"password" env:"POSTGRES_PASSWORD" env-default:"password"`
	DBName   string `yaml:"dbname" env:"POSTGRES_DB" env-default:"socialnet"`
}

type Redis struct {
	Addr string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
}

type Kafka struct {
	Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS" env-default:"localhost:9092"`
}

// Outbox toggles transactional event publishing. Disabled, events are published
// fire-and-forget after the local commit; enabled, they are written to the
// outbox table in the same transaction and relayed by cmd/outbox.
type Outbox struct {
	Enabled      bool          `yaml:"enabled" env:"OUTBOX_ENABLED" env-default:"false"`
	PollInterval time.Duration `yaml:"poll_interval" env:"OUTBOX_POLL_INTERVAL" env-default:"2s"`
	BatchSize    int           `yaml:"batch_size" env:"OUTBOX_BATCH_SIZE" env-default:"50"`
}

type Cache struct {
	TTL time.Duration `yaml:"ttl" env:"CACHE_TTL" env-default:"10m"`
}

// Services holds the base URLs for the synchronous existence-check and cascade
// calls between services.
type Services struct {
	Users         string `yaml:"users" env:"USERS_URL" env-default:"http://localhost:8081"`
	Posts         string `yaml:"posts" env:"POSTS_URL" env-default:"http://localhost:8082"`
	Comments      string `yaml:"comments" env:"COMMENTS_URL" env-default:"http://localhost:8083"`
	Likes         string `yaml:"likes" env:"LIKES_URL" env-default:"http://localhost:8084"`
	Subscriptions string `yaml:"subscriptions" env:"SUBSCRIPTIONS_URL" env-default:"http://localhost:8085"`
	Media         string `yaml:"media" env:"MEDIA_URL" env-default:"http://localhost:8086"`
}

func New() (*Config, error) {
	cfg := &Config{}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		// fallback to env vars if file not found
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("config error: %w", err)
		}
	} else {
		// Allow env vars to override config file
		cleanenv.ReadEnv(cfg)
	}

	return cfg, nil
}
