package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var (
	ErrMissingKeySecret = errors.New("RAZORPAY_KEY_SECRET is not set")
	ErrMissingKeyID     = errors.New("RAZORPAY_KEY_ID is not set")
)

const (
	defaultPort           = "5000"
	defaultGatewayTimeout = 15 * time.Second
	defaultOrderTTL       = 30 * time.Minute
	defaultSweepInterval  = 5 * time.Minute
	defaultTokenTTL       = 12 * time.Hour
	defaultOrderTopic     = "order-status"
)

type Config struct {
	AppPort string
	AppEnv  string

	Razorpay RazorpayConfig
	Database DatabaseConfig
	Kafka    KafkaConfig
	Admin    AdminConfig

	OrderTTL      time.Duration
	SweepInterval time.Duration
}

// RazorpayConfig holds the gateway credentials. KeySecret is server-side only.
type RazorpayConfig struct {
	KeyID     string
	KeySecret string
	Timeout   time.Duration
}

type DatabaseConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
}

type KafkaConfig struct {
	Brokers    []string
	OrderTopic string
}

type AdminConfig struct {
	Email        string
	PasswordHash string
	JWTSecret    string
	TokenTTL     time.Duration
}

// Load reads configuration from the environment (and .env when present).
// It fails when the gateway credentials are missing, since verification
// would otherwise reject every payment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppPort: getEnv("PORT", defaultPort),
		AppEnv:  os.Getenv("APP_ENV"),
		Razorpay: RazorpayConfig{
			KeyID:     strings.TrimSpace(os.Getenv("RAZORPAY_KEY_ID")),
			KeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
		},
		Database: LoadDatabase(),
		Kafka: KafkaConfig{
			Brokers:    splitList(os.Getenv("KAFKA_BROKERS")),
			OrderTopic: getEnv("KAFKA_ORDER_TOPIC", defaultOrderTopic),
		},
		Admin: AdminConfig{
			Email:        strings.TrimSpace(os.Getenv("ADMIN_EMAIL")),
			PasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
			JWTSecret:    os.Getenv("JWT_SECRET"),
		},
	}

	if cfg.Razorpay.KeySecret == "" {
		return nil, ErrMissingKeySecret
	}
	if cfg.Razorpay.KeyID == "" {
		return nil, ErrMissingKeyID
	}

	var err error
	if cfg.Razorpay.Timeout, err = getDuration("GATEWAY_TIMEOUT", defaultGatewayTimeout); err != nil {
		return nil, err
	}
	if cfg.OrderTTL, err = getDuration("ORDER_TTL", defaultOrderTTL); err != nil {
		return nil, err
	}
	if cfg.SweepInterval, err = getDuration("SWEEP_INTERVAL", defaultSweepInterval); err != nil {
		return nil, err
	}
	if cfg.Admin.TokenTTL, err = getDuration("ADMIN_TOKEN_TTL", defaultTokenTTL); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadConfig is Load for process startup: any error is fatal.
func LoadConfig() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	return cfg
}

func LoadDatabase() DatabaseConfig {
	return DatabaseConfig{
		Host:     os.Getenv("DB_HOST"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		Name:     os.Getenv("DB_NAME"),
		Port:     getEnv("DB_PORT", "5432"),
	}
}

// Enabled reports whether enough settings exist to open the order store.
func (d DatabaseConfig) Enabled() bool {
	return d.Host != "" && d.Name != ""
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		d.Host, d.User, d.Password, d.Name, d.Port,
	)
}

// URL is the postgres:// form used by the migration runner.
func (d DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + d.Port,
		Path:     "/" + d.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, raw)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
