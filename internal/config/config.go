package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"sync"
	"time"
)

var cfg *Config
var once sync.Once

// Config is the configuration for the application
type Config struct {
	Server
	PostgreSQL
	Process
	Ledger
	Stripe
	Redis
	Log
}

// Process configures the background sweep of stale pending donations.
type Process struct {
	Interval    string `env:"SWEEP_INTERVAL" envDefault:"5m"`
	StaleAfter  string `env:"SWEEP_STALE_AFTER" envDefault:"30m"`
	BatchSize   string `env:"SWEEP_BATCH" envDefault:"50"`
	ExpireAfter string `env:"SWEEP_EXPIRE_AFTER" envDefault:"24h"`
}

// SweepInterval returns the pause between sweeps.
func (p Process) SweepInterval() time.Duration {
	return parseDuration(p.Interval, 5*time.Minute)
}

// StaleDuration returns how old a pending donation must be before the sweep looks at it.
func (p Process) StaleDuration() time.Duration {
	return parseDuration(p.StaleAfter, 30*time.Minute)
}

// ExpireDuration returns the age after which an unpaid authorization is cancelled and its
// donation failed.
func (p Process) ExpireDuration() time.Duration {
	return parseDuration(p.ExpireAfter, 24*time.Hour)
}

// Batch returns the maximum number of donations examined per sweep.
func (p Process) Batch() int {
	return parseInt(p.BatchSize, 50)
}

// Ledger tunes the reconciliation transaction.
type Ledger struct {
	MaxTxRetries string `env:"LEDGER_MAX_TX_RETRIES" envDefault:"10"`
}

// Retries returns how many times a serialization failure is retried before giving up.
func (l Ledger) Retries() int {
	return parseInt(l.MaxTxRetries, 10)
}

// Server is the configuration for the server
type Server struct {
	Port string `env:"PORT" envDefault:"8080"`
}

// Addr returns the address for the server
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%s", "0.0.0.0", s.Port)
}

// PostgreSQL is the configuration for the database
type PostgreSQL struct {
	Driver          string `env:"DB_DRIVER" envDefault:"postgres"`
	Host            string `env:"DB_HOST" envDefault:"localhost"`
	Port            string `env:"DB_PORT" envDefault:"5432"`
	Database        string `env:"DB_DATABASE" envDefault:"donation_ledger"`
	Username        string `env:"DB_USERNAME" envDefault:"donation_ledger"`
	Password        string `env:"DB_PASSWORD" envDefault:"donation_ledger"`
	SSLMode         string `env:"DB_SSLMODE" envDefault:"disable"`
	MaxConnAttempts string `env:"DB_MAX_CONN_ATTEMPTS" envDefault:"5"`
}

// DSN returns the DSN for the database
func (c PostgreSQL) DSN() string {
	return fmt.Sprintf("%s://%s:%s@%s:%s/%s?sslmode=%s",
		c.Driver,
		c.Username,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
		c.SSLMode,
	)
}

// Stripe holds the payment processor credentials.
type Stripe struct {
	SecretKey     string `env:"STRIPE_SECRET_KEY" envDefault:""`
	WebhookSecret string `env:"STRIPE_WEBHOOK_SECRET" envDefault:""`
}

// Redis configures notification fan-out.
type Redis struct {
	URL             string `env:"REDIS_URL" envDefault:"redis://127.0.0.1:6379"`
	InboxSize       string `env:"NOTIFICATION_INBOX_SIZE" envDefault:"100"`
	MaxConnAttempts string `env:"REDIS_MAX_CONN_ATTEMPTS" envDefault:"5"`
}

func (r Redis) Attempts() int {
	return parseInt(r.MaxConnAttempts, 5)
}

// Inbox returns how many notifications are kept per recipient.
func (r Redis) Inbox() int64 {
	return int64(parseInt(r.InboxSize, 100))
}

type Log struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
	File  string `env:"LOG_FILE" envDefault:""`
}

// Load loads the configuration from environment variables
func Load() *Config {
	once.Do(func() {
		cfg = fromEnv()
	})

	return cfg
}

// fromEnv fills every string field of every section from its env tag.
func fromEnv() *Config {
	c := &Config{}
	cfgType := reflect.TypeOf(*c)
	cfgValue := reflect.ValueOf(c).Elem()

	for i := 0; i < cfgType.NumField(); i++ {
		field := cfgType.Field(i)
		fieldValue := cfgValue.Field(i)
		for j := 0; j < field.Type.NumField(); j++ {
			subField := field.Type.Field(j)
			value := getEnv(subField.Tag.Get("env"), subField.Tag.Get("envDefault"))

			fieldValue.Field(j).SetString(value)
		}
	}

	return c
}

// getEnv retrieves the value of the environment variable named by the key or returns the defaultValue if not set
func getEnv(key, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = defaultValue
	}
	return value
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseInt(value string, fallback int) int {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
