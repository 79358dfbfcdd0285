// Package config предоставляет структуры и функции для загрузки конфигурации сервиса
package config

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Драйверы хранилища.
const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// Config общая структура для хранения настроек
type Config struct {
	Env             string `yaml:"env" env:"ENV" env-default:"local"`
	HTTPServer      `yaml:"http_server"`
	Storage         `yaml:"storage"`
	RedisConnection `yaml:"redis_connection"`
	RabbitMQ        `yaml:"rabbitmq"`
	Stripe          `yaml:"stripe"`
	Auth            `yaml:"auth"`
	RadioBrowser    `yaml:"radio_browser"`
	RateLimit       `yaml:"rate_limit"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// Storage настройки хранилища документов
type Storage struct {
	StorageDriver           string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"postgres"`
	StorageConnectionString string `yaml:"dsn" env:"STORAGE_DSN"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	TxMaxRetries            int    `yaml:"tx_max_retries" env-default:"10"`
}

// RedisConnection структура для настройки подключения к redis. Пустой адрес отключает кэш.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// RabbitMQ настройки брокера событий. Пустой URL включает доставку событий внутри процесса.
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"url" env:"RABBITMQ_URL"`
	RabbitMQMaxRetries int           `yaml:"max_retries" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
	RabbitMQPrefetch   int           `yaml:"prefetch" env-default:"10"`
}

// Stripe настройки провайдера платежей
type Stripe struct {
	StripeSecretKey     string                `yaml:"secret_key" env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string                `yaml:"webhook_secret" env:"STRIPE_WEBHOOK_SECRET"`
	SuccessURL          string                `yaml:"success_url" env-default:"http://localhost:5173/?success=true"`
	CancelURL           string                `yaml:"cancel_url" env-default:"http://localhost:5173/?canceled=true"`
	ReturnURL           string                `yaml:"return_url" env-default:"http://localhost:5173/"`
	Plans               map[string]PlanConfig `yaml:"plans"`
}

// PlanConfig тариф каталога: цена у провайдера и режим оплаты
type PlanConfig struct {
	PriceID string `yaml:"price_id"`
	Mode    string `yaml:"mode"`
}

// Auth настройки проверки токенов провайдера идентификации
type Auth struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"1h"`
	Issuer       string        `yaml:"issuer"`
}

// RadioBrowser настройки каталога станций
type RadioBrowser struct {
	RadioBrowserURL     string        `yaml:"url" env-default:"https://de1.api.radio-browser.info/json"`
	RadioBrowserTimeout time.Duration `yaml:"timeout" env-default:"10s"`
	UserAgent           string        `yaml:"user_agent" env-default:"RestaurantRadio/1.0"`
}

// RateLimit настройки ограничения частоты запросов
type RateLimit struct {
	RPS   float64 `yaml:"rps" env-default:"10"`
	Burst int     `yaml:"burst" env-default:"20"`
}

// Load читает конфиг из файла path и переменных окружения.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("file: %s - does not exist", path)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad загружает конфиг по пути из CONFIG_PATH и завершает процесс при ошибке.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

func (c *Config) validate() error {
	switch c.StorageDriver {
	case StorageDriverPostgres:
		if c.StorageConnectionString == "" {
			return fmt.Errorf("storage dsn is required for driver %q", c.StorageDriver)
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
	for name, plan := range c.Plans {
		if plan.PriceID == "" {
			return fmt.Errorf("plan %q: price_id is required", name)
		}
		if plan.Mode != "payment" && plan.Mode != "subscription" {
			return fmt.Errorf("plan %q: unknown mode %q", name, plan.Mode)
		}
	}
	return nil
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}

func (c *Config) String() string {
	plans := make([]string, 0, len(c.Plans))
	for name, p := range c.Plans {
		plans = append(plans, fmt.Sprintf("%s=%s/%s", name, p.PriceID, p.Mode))
	}
	sort.Strings(plans)

	return fmt.Sprintf(
		"Env: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"Storage:\n"+
			"  Driver: %s\n"+
			"  DSN: %s\n"+
			"  TxMaxRetries: %d\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  Password: %s\n"+
			"  DB: %d\n"+
			"RabbitMQ:\n"+
			"  URL: %s\n"+
			"  Prefetch: %d\n"+
			"Stripe:\n"+
			"  SecretKey: %s\n"+
			"  WebhookSecret: %s\n"+
			"  Plans: %s\n"+
			"Auth:\n"+
			"  JWTSecretKey: %s\n"+
			"  Issuer: %s\n"+
			"RadioBrowser:\n"+
			"  URL: %s\n"+
			"RateLimit:\n"+
			"  RPS: %g\n"+
			"  Burst: %d\n",
		c.Env,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.StorageDriver,
		mask(c.StorageConnectionString),
		c.TxMaxRetries,
		c.AddressRedis,
		mask(c.Password),
		c.DB,
		mask(c.RabbitMQURL),
		c.RabbitMQPrefetch,
		mask(c.StripeSecretKey),
		mask(c.StripeWebhookSecret),
		strings.Join(plans, ", "),
		mask(c.JWTSecretKey),
		c.Issuer,
		c.RadioBrowserURL,
		c.RPS,
		c.Burst,
	)
}
