package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug       bool   `mapstructure:"debug"`
	Environment string `mapstructure:"environment"` // e.g. production, staging
	SentryDSN   string `mapstructure:"sentry_dsn"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadHost        string        `mapstructure:"read_host"`
	ReadPort        int           `mapstructure:"read_port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`  // e.g. "5m", "1h"
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"` // e.g. "10m"
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // in seconds
}

// AuthConfig holds token and cookie configuration
type AuthConfig struct {
	JWTPrivateKey     string        `mapstructure:"jwt_private_key"`
	JWTPublicKey      string        `mapstructure:"jwt_public_key"`
	Issuer            string        `mapstructure:"issuer"`
	AccessTokenTTL    time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL   time.Duration `mapstructure:"refresh_token_ttl"`
	RefreshCookieName string        `mapstructure:"refresh_cookie_name"`
	CSRFCookieName    string        `mapstructure:"csrf_cookie_name"`
	CookieDomain      string        `mapstructure:"cookie_domain"`
	CookieSecure      bool          `mapstructure:"cookie_secure"`
}

// CORSConfig holds allowed origins for the dashboard
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// StripeConfig holds Stripe checkout configuration
type StripeConfig struct {
	SecretKey     string `mapstructure:"secret_key"`
	WebhookSecret string `mapstructure:"webhook_secret"`
	PriceID       string `mapstructure:"price_id"`
	SuccessURL    string `mapstructure:"success_url"`
	CancelURL     string `mapstructure:"cancel_url"`
}

// EmailTemplates maps logical email kinds to provider template identifiers
type EmailTemplates struct {
	Welcome        string `mapstructure:"welcome"`
	CoverageAlert  string `mapstructure:"coverage_alert"`
	PaymentReceipt string `mapstructure:"payment_receipt"`
}

// EmailConfig holds outbound email configuration
type EmailConfig struct {
	Provider            string         `mapstructure:"provider"` // postmark or sendgrid
	FromAddress         string         `mapstructure:"from_address"`
	FromName            string         `mapstructure:"from_name"`
	PostmarkServerToken string         `mapstructure:"postmark_server_token"`
	PostmarkStream      string         `mapstructure:"postmark_stream"`
	SendGridAPIKey      string         `mapstructure:"sendgrid_api_key"`
	Sandbox             bool           `mapstructure:"sandbox"`
	Templates           EmailTemplates `mapstructure:"templates"`
}

// CompetitorServiceConfig holds the hotel competitor service client configuration
type CompetitorServiceConfig struct {
	URL     string        `mapstructure:"url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// PricingConfig holds pricing engine configuration
type PricingConfig struct {
	HorizonDays int    `mapstructure:"horizon_days"`
	Schedule    string `mapstructure:"schedule"`
}

// NotificationsConfig holds coverage trigger configuration
type NotificationsConfig struct {
	Schedule    string        `mapstructure:"schedule"`
	HorizonDays int           `mapstructure:"horizon_days"`
	Cooldown    time.Duration `mapstructure:"cooldown"`
	Expiry      time.Duration `mapstructure:"expiry"`
}

// WorkerConfig holds worker configuration
type WorkerConfig struct {
	WorkerPoolSize  int `mapstructure:"pool_size"`
	WorkerQueueSize int `mapstructure:"queue_size"`
}

// APIConfig holds configuration for API server
type APIConfig struct {
	BaseConfig        `mapstructure:",squash"`
	Server            ServerConfig            `mapstructure:"server"`
	Database          DatabaseConfig          `mapstructure:"database"`
	Auth              AuthConfig              `mapstructure:"auth"`
	CORS              CORSConfig              `mapstructure:"cors"`
	Stripe            StripeConfig            `mapstructure:"stripe"`
	Email             EmailConfig             `mapstructure:"email"`
	CompetitorService CompetitorServiceConfig `mapstructure:"competitor_service"`
	Pricing           PricingConfig           `mapstructure:"pricing"`
	Notifications     NotificationsConfig     `mapstructure:"notifications"`
}

// SweeperConfig holds configuration for the sweeper program
type SweeperConfig struct {
	BaseConfig    `mapstructure:",squash"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Email         EmailConfig         `mapstructure:"email"`
	Pricing       PricingConfig       `mapstructure:"pricing"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Worker        WorkerConfig        `mapstructure:"worker"`
}

// CLIConfig holds configuration for the management commands
type CLIConfig struct {
	BaseConfig    `mapstructure:",squash"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Email         EmailConfig         `mapstructure:"email"`
	Pricing       PricingConfig       `mapstructure:"pricing"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
}

// LoadAPIConfig loads configuration for API server
func LoadAPIConfig(configFile string, envPath string) (*APIConfig, error) {
	v := configureViper("api", configFile, envPath)

	// Set defaults
	v.SetDefault("debug", false)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 40)
	v.SetDefault("server.idle_timeout", 120)
	setDatabaseDefaults(v)
	v.SetDefault("auth.issuer", "dynamic-pricing")
	v.SetDefault("auth.access_token_ttl", "15m")
	v.SetDefault("auth.refresh_token_ttl", "720h")
	v.SetDefault("auth.refresh_cookie_name", "refresh_token")
	v.SetDefault("auth.csrf_cookie_name", "csrftoken")
	v.SetDefault("auth.cookie_secure", true)
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})
	setEmailDefaults(v)
	v.SetDefault("competitor_service.timeout", "30s")
	setPricingDefaults(v)
	setNotificationDefaults(v)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg APIConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateDatabase(cfg.Database); err != nil {
		return nil, err
	}
	if cfg.Auth.JWTPrivateKey == "" || cfg.Auth.JWTPublicKey == "" {
		return nil, errors.New("auth.jwt_private_key and auth.jwt_public_key are required")
	}

	return &cfg, nil
}

// LoadSweeperConfig loads configuration for the sweeper program
func LoadSweeperConfig(configFile string, envPath string) (*SweeperConfig, error) {
	v := configureViper("sweeper", configFile, envPath)

	// Set defaults
	setDatabaseDefaults(v)
	v.SetDefault("database.max_open_conns", 5)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.conn_max_idle_time", "10m")
	setEmailDefaults(v)
	setPricingDefaults(v)
	setNotificationDefaults(v)
	v.SetDefault("worker.pool_size", 8)
	v.SetDefault("worker.queue_size", 256)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg SweeperConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateDatabase(cfg.Database); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadCLIConfig loads configuration for dpctl
func LoadCLIConfig(configFile string, envPath string) (*CLIConfig, error) {
	v := configureViper("dpctl", configFile, envPath)

	setDatabaseDefaults(v)
	setEmailDefaults(v)
	setPricingDefaults(v)
	setNotificationDefaults(v)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg CLIConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateDatabase(cfg.Database); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDatabaseDefaults(v *viper.Viper) {
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
}

func setEmailDefaults(v *viper.Viper) {
	v.SetDefault("email.provider", "postmark")
	v.SetDefault("email.from_name", "Dynamic Pricing")
	v.SetDefault("email.postmark_stream", "outbound")
	v.SetDefault("email.templates.welcome", "welcome")
	v.SetDefault("email.templates.coverage_alert", "coverage-alert")
	v.SetDefault("email.templates.payment_receipt", "payment-receipt")
}

func setPricingDefaults(v *viper.Viper) {
	v.SetDefault("pricing.horizon_days", 365)
	v.SetDefault("pricing.schedule", "15 */6 * * *")
}

func setNotificationDefaults(v *viper.Viper) {
	v.SetDefault("notifications.schedule", "@every 1h")
	v.SetDefault("notifications.horizon_days", 90)
	v.SetDefault("notifications.cooldown", "24h")
	v.SetDefault("notifications.expiry", "168h")
}

// readConfig reads the config file, tolerating its absence so env-only deployments work
func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

func validateDatabase(db DatabaseConfig) error {
	if db.Host == "" {
		return errors.New("database.host is required")
	}
	if db.DBName == "" {
		return errors.New("database.dbname is required")
	}
	return nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		v.AddConfigPath("config/")
	}

	v.SetEnvPrefix("DP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"environment",
		"sentry_dsn",
		// Database
		"database.host",
		"database.port",
		"database.read_host",
		"database.read_port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		// Auth
		"auth.jwt_private_key",
		"auth.jwt_public_key",
		"auth.issuer",
		"auth.access_token_ttl",
		"auth.refresh_token_ttl",
		"auth.refresh_cookie_name",
		"auth.csrf_cookie_name",
		"auth.cookie_domain",
		"auth.cookie_secure",
		// CORS
		"cors.allowed_origins",
		// Stripe
		"stripe.secret_key",
		"stripe.webhook_secret",
		"stripe.price_id",
		"stripe.success_url",
		"stripe.cancel_url",
		// Email
		"email.provider",
		"email.from_address",
		"email.from_name",
		"email.postmark_server_token",
		"email.postmark_stream",
		"email.sendgrid_api_key",
		"email.sandbox",
		"email.templates.welcome",
		"email.templates.coverage_alert",
		"email.templates.payment_receipt",
		// Competitor service
		"competitor_service.url",
		"competitor_service.token",
		"competitor_service.timeout",
		// Pricing
		"pricing.horizon_days",
		"pricing.schedule",
		// Notifications
		"notifications.schedule",
		"notifications.horizon_days",
		"notifications.cooldown",
		"notifications.expiry",
		// Worker
		"worker.pool_size",
		"worker.queue_size",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// ReadDSN returns the read-replica database connection string.
// If ReadPort is not configured, it falls back to Port.
func (c *DatabaseConfig) ReadDSN() string {
	port := c.ReadPort
	if port == 0 {
		port = c.Port
	}

	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.ReadHost, port, c.User, c.Password, c.DBName, c.SSLMode)
}
