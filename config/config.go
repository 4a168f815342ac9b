package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Gateway  GatewayConfig  `yaml:"gateway"`
	Auth     AuthConfig     `yaml:"auth"`
	Booking  BookingConfig  `yaml:"booking"`
	Worker   WorkerConfig   `yaml:"worker"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
	Migrate  bool   `yaml:"migrate"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers     []string `yaml:"brokers"`
	EventsTopic string   `yaml:"events_topic"`
	GroupID     string   `yaml:"group_id"`
}

type GatewayConfig struct {
	ServerKey      string `yaml:"server_key"`
	Production     bool   `yaml:"production"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

func (g GatewayConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

type BookingConfig struct {
	EventCacheTTLSeconds  int `yaml:"event_cache_ttl_seconds"`
	PaymentLockTTLSeconds int `yaml:"payment_lock_ttl_seconds"`
}

type WorkerConfig struct {
	SweepMinutes        int `yaml:"sweep_minutes"`
	StaleSessionMinutes int `yaml:"stale_session_minutes"`
}

// secrets are never expected in the YAML file of a deployed service.
type secrets struct {
	GatewayServerKey string `envconfig:"GATEWAY_SERVER_KEY"`
	JWTSecret        string `envconfig:"JWT_SECRET"`
	DBPassword       string `envconfig:"DB_PASSWORD"`
}

const envPrefix = "TICKETING"

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	cfg.ApplyDefaults()

	return &cfg, nil
}

func (c *Config) applyEnv() error {
	var s secrets
	if err := envconfig.Process(envPrefix, &s); err != nil {
		return err
	}
	if s.GatewayServerKey != "" {
		c.Gateway.ServerKey = s.GatewayServerKey
	}
	if s.JWTSecret != "" {
		c.Auth.JWTSecret = s.JWTSecret
	}
	if s.DBPassword != "" {
		c.Database.Password = s.DBPassword
	}
	return nil
}

func (c *Config) ApplyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.Gateway.TimeoutSeconds <= 0 {
		c.Gateway.TimeoutSeconds = 20
	}
	if c.Booking.EventCacheTTLSeconds <= 0 {
		c.Booking.EventCacheTTLSeconds = 60
	}
	if c.Booking.PaymentLockTTLSeconds <= 0 {
		c.Booking.PaymentLockTTLSeconds = 30
	}
	// the payment lock must outlive the gateway call it guards
	if c.Booking.PaymentLockTTLSeconds <= c.Gateway.TimeoutSeconds {
		c.Booking.PaymentLockTTLSeconds = c.Gateway.TimeoutSeconds + 10
	}
	if c.Worker.SweepMinutes <= 0 {
		c.Worker.SweepMinutes = 5
	}
	if c.Worker.StaleSessionMinutes <= 0 {
		c.Worker.StaleSessionMinutes = 15
	}
	if c.Kafka.EventsTopic == "" {
		c.Kafka.EventsTopic = "ticketing.events"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "ticketing-worker"
	}
}
