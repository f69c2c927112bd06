package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeys = `
auth:
  jwt_private_key: "private"
  jwt_public_key: "public"
`

func TestLoadAPIConfig(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		expectError bool
		validate    func(*testing.T, *APIConfig)
	}{
		{
			name: "valid config file",
			configFile: `
debug: true
sentry_dsn: "https://sentry.example.com"
server:
  host: 127.0.0.1
  port: 9000
database:
  host: localhost
  port: 5433
  read_host: replica
  user: testuser
  password: testpass
  dbname: pricing
auth:
  jwt_private_key: "private"
  jwt_public_key: "public"
  access_token_ttl: 5m
  cookie_secure: false
cors:
  allowed_origins: ["https://app.example.com"]
stripe:
  secret_key: sk_test_123
  webhook_secret: whsec_123
  price_id: price_123
email:
  provider: sendgrid
  sendgrid_api_key: SG.key
competitor_service:
  url: https://competitors.example.com
  token: secret
  timeout: 10s
`,
			validate: func(t *testing.T, cfg *APIConfig) {
				assert.True(t, cfg.Debug)
				assert.Equal(t, "https://sentry.example.com", cfg.SentryDSN)
				assert.Equal(t, "127.0.0.1", cfg.Server.Host)
				assert.Equal(t, 9000, cfg.Server.Port)
				assert.Equal(t, 5433, cfg.Database.Port)
				assert.Equal(t, "replica", cfg.Database.ReadHost)
				assert.Equal(t, 5*time.Minute, cfg.Auth.AccessTokenTTL)
				assert.False(t, cfg.Auth.CookieSecure)
				assert.Equal(t, []string{"https://app.example.com"}, cfg.CORS.AllowedOrigins)
				assert.Equal(t, "sk_test_123", cfg.Stripe.SecretKey)
				assert.Equal(t, "sendgrid", cfg.Email.Provider)
				assert.Equal(t, "SG.key", cfg.Email.SendGridAPIKey)
				assert.Equal(t, "https://competitors.example.com", cfg.CompetitorService.URL)
				assert.Equal(t, 10*time.Second, cfg.CompetitorService.Timeout)
			},
		},
		{
			name: "config with defaults",
			configFile: `
database:
  host: localhost
  dbname: pricing
` + testKeys,
			validate: func(t *testing.T, cfg *APIConfig) {
				assert.Equal(t, "0.0.0.0", cfg.Server.Host)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "disable", cfg.Database.SSLMode)
				assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL)
				assert.Equal(t, 720*time.Hour, cfg.Auth.RefreshTokenTTL)
				assert.Equal(t, "refresh_token", cfg.Auth.RefreshCookieName)
				assert.Equal(t, "csrftoken", cfg.Auth.CSRFCookieName)
				assert.True(t, cfg.Auth.CookieSecure)
				assert.Equal(t, "postmark", cfg.Email.Provider)
				assert.Equal(t, "welcome", cfg.Email.Templates.Welcome)
				assert.Equal(t, 30*time.Second, cfg.CompetitorService.Timeout)
				assert.Equal(t, 365, cfg.Pricing.HorizonDays)
				assert.Equal(t, 24*time.Hour, cfg.Notifications.Cooldown)
			},
		},
		{
			name: "missing jwt keys",
			configFile: `
database:
  host: localhost
  dbname: pricing
`,
			expectError: true,
		},
		{
			name: "missing database host",
			configFile: `
database:
  dbname: pricing
` + testKeys,
			expectError: true,
		},
		{
			name: "invalid yaml",
			configFile: `
				database:
				  host: localhost
				  port: invalid
			`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configFile := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(configFile, []byte(tt.configFile), 0600))

			cfg, err := LoadAPIConfig(configFile, t.TempDir())

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cfg)
			tt.validate(t, cfg)
		})
	}
}

func TestLoadSweeperConfig(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	content := `
database:
  host: localhost
  dbname: pricing
notifications:
  schedule: "@every 30m"
  horizon_days: 60
worker:
  pool_size: 4
`
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0600))

	cfg, err := LoadSweeperConfig(configFile, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Database.MaxOpenConns)
	assert.Equal(t, time.Hour, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, "@every 30m", cfg.Notifications.Schedule)
	assert.Equal(t, 60, cfg.Notifications.HorizonDays)
	assert.Equal(t, 168*time.Hour, cfg.Notifications.Expiry)
	assert.Equal(t, "15 */6 * * *", cfg.Pricing.Schedule)
	assert.Equal(t, 4, cfg.Worker.WorkerPoolSize)
	assert.Equal(t, 256, cfg.Worker.WorkerQueueSize)
}

func TestLoadCLIConfig(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("database:\n  host: db\n  dbname: pricing\n"), 0600))

	cfg, err := LoadCLIConfig(configFile, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, 90, cfg.Notifications.HorizonDays)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	tests := []struct {
		name     string
		config   DatabaseConfig
		expected string
		read     string
	}{
		{
			name: "complete config",
			config: DatabaseConfig{
				Host:     "localhost",
				Port:     5432,
				ReadHost: "replica",
				ReadPort: 6432,
				User:     "testuser",
				Password: "testpass",
				DBName:   "testdb",
				SSLMode:  "require",
			},
			expected: "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=require",
			read:     "host=replica port=6432 user=testuser password=testpass dbname=testdb sslmode=require",
		},
		{
			name: "read port falls back to port",
			config: DatabaseConfig{
				Host:     "localhost",
				Port:     5432,
				ReadHost: "replica",
				User:     "user",
				Password: "p@ssw0rd!",
				DBName:   "db",
				SSLMode:  "disable",
			},
			expected: "host=localhost port=5432 user=user password=p@ssw0rd! dbname=db sslmode=disable",
			read:     "host=replica port=5432 user=user password=p@ssw0rd! dbname=db sslmode=disable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.config.DSN())
			assert.Equal(t, tt.read, tt.config.ReadDSN())
		})
	}
}

func TestConfigWithEnvironmentVariables(t *testing.T) {
	tmpDir := t.TempDir()

	envDir := filepath.Join(tmpDir, "env")
	require.NoError(t, os.MkdirAll(envDir, 0750))

	// godotenv.Overload writes into the process environment
	envKeys := []string{
		"DP_DEBUG", "DP_DATABASE_HOST", "DP_DATABASE_PORT", "DP_DATABASE_DBNAME",
		"DP_AUTH_JWT_PRIVATE_KEY", "DP_AUTH_JWT_PUBLIC_KEY", "DP_STRIPE_SECRET_KEY",
	}
	t.Cleanup(func() {
		for _, k := range envKeys {
			_ = os.Unsetenv(k)
		}
	})

	envContent := `DP_DEBUG=true
DP_DATABASE_HOST=env-host
DP_DATABASE_PORT=6543
DP_DATABASE_DBNAME=env-db
DP_AUTH_JWT_PRIVATE_KEY=env-private
DP_AUTH_JWT_PUBLIC_KEY=env-public
`
	require.NoError(t, os.WriteFile(filepath.Join(envDir, ".env"), []byte(envContent), 0600))
	// per-service local file wins over the shared one
	require.NoError(t, os.WriteFile(filepath.Join(envDir, ".env.api.local"), []byte("DP_STRIPE_SECRET_KEY=sk_local\n"), 0600))

	configPath := filepath.Join(tmpDir, "config.yaml")
	configFile := `
debug: false
database:
  host: file-host
  port: 5432
  dbname: file-db
`
	require.NoError(t, os.WriteFile(configPath, []byte(configFile), 0600))

	cfg, err := LoadAPIConfig(configPath, envDir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.True(t, cfg.Debug)
	assert.Equal(t, "env-host", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "env-db", cfg.Database.DBName)
	assert.Equal(t, "env-private", cfg.Auth.JWTPrivateKey)
	assert.Equal(t, "sk_local", cfg.Stripe.SecretKey)
}
