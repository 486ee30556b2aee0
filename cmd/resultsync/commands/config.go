package commands

import (
	"fmt"
	"os"
	"strings"
	"time"

	"resultsync-backend/internal/components/telemetry"
	"resultsync-backend/internal/scrapers/erp"
	"resultsync-backend/lib/configutil"
	"resultsync-backend/pkg/migrations"
)

const envPrefix = "RESULTSYNC"

type PortalConfig struct {
	BaseUrl           string              `json:"base_url" envconfig:"BASE_URL"`
	Username          string              `json:"username" envconfig:"USERNAME"`
	Password          string              `json:"password" envconfig:"PASSWORD"`
	Headless          *bool               `json:"headless" envconfig:"HEADLESS"`
	NoSandbox         bool                `json:"no_sandbox" envconfig:"NO_SANDBOX"`
	ChromePath        string              `json:"chrome_path" envconfig:"CHROME_PATH"`
	SkipProbe         bool                `json:"skip_probe" envconfig:"SKIP_PROBE"`
	LoginTimeout      configutil.Duration `json:"login_timeout" envconfig:"LOGIN_TIMEOUT"`
	IdleWindow        configutil.Duration `json:"idle_window" envconfig:"IDLE_WINDOW"`
	LoginAttempts     int                 `json:"login_attempts" envconfig:"LOGIN_ATTEMPTS" validate:"gte=0"`
	RequestTimeout    configutil.Duration `json:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
	RetryCount        *int                `json:"retry_count" envconfig:"RETRY_COUNT" validate:"omitempty,gte=0"`
	RequestsPerSecond float64             `json:"requests_per_second" envconfig:"REQUESTS_PER_SECOND" validate:"gte=0"`
}

type DatabaseConfig struct {
	Driver string `json:"driver" envconfig:"DRIVER" validate:"omitempty,oneof=sqlite libsql postgres"`
	Url    string `json:"url" envconfig:"URL"`
	File   string `json:"file" envconfig:"FILE"`
}

type ServerConfig struct {
	Port int `json:"port" envconfig:"PORT" validate:"gte=0,lte=65535"`
}

type TelemetryConfig struct {
	telemetry.OtelConfig
	Verbose bool `json:"verbose" envconfig:"VERBOSE"`
}

type Config struct {
	Portal    PortalConfig    `json:"portal" envconfig:"PORTAL"`
	Database  DatabaseConfig  `json:"database" envconfig:"DATABASE"`
	Server    ServerConfig    `json:"server" envconfig:"SERVER"`
	Telemetry TelemetryConfig `json:"telemetry" envconfig:"TELEMETRY"`
}

// LoadConfig reads the config file at path, then `.env` and the environment.
func LoadConfig(path string) (Config, error) {
	cfg, err := configutil.Load[Config](path, envPrefix)
	if err != nil {
		return cfg, err
	}
	// hosted databases are usually handed over in this variable
	if cfg.Database.Url == "" && cfg.Database.File == "" {
		cfg.Database.Url = os.Getenv("DATABASE_URL")
	}
	err = configutil.ApplyDefaults(&cfg, defaultConfig())
	if err != nil {
		return cfg, fmt.Errorf("apply defaults: %w", err)
	}
	err = configutil.Validate(cfg)
	if err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func defaultConfig() Config {
	headless := true
	retries := 2
	return Config{
		Portal: PortalConfig{
			BaseUrl:           erp.DefaultBaseUrl,
			Headless:          &headless,
			LoginTimeout:      configutil.Duration(time.Minute),
			IdleWindow:        configutil.Duration(500 * time.Millisecond),
			LoginAttempts:     1,
			RequestTimeout:    configutil.Duration(30 * time.Second),
			RetryCount:        &retries,
			RequestsPerSecond: 2,
		},
		Server: ServerConfig{Port: 8000},
	}
}

// Credentials returns the portal login, it fails if the username or password is missing.
func (p PortalConfig) Credentials() (erp.Credentials, error) {
	creds := erp.Credentials{
		BaseUrl:  p.BaseUrl,
		Username: p.Username,
		Password: p.Password,
	}
	err := configutil.Validate(creds)
	if err != nil {
		return creds, fmt.Errorf("portal credentials: %w", err)
	}
	return creds, nil
}

func (p PortalConfig) BrowserOptions() erp.BrowserOptions {
	return erp.BrowserOptions{
		Headless:   *p.Headless,
		NoSandbox:  p.NoSandbox,
		ChromePath: p.ChromePath,
		SkipProbe:  p.SkipProbe,
		Timeout:    p.LoginTimeout.Std(),
		IdleWindow: p.IdleWindow.Std(),
		Attempts:   p.LoginAttempts,
	}
}

func (p PortalConfig) ClientOptions() erp.ClientOptions {
	return erp.ClientOptions{
		BaseUrl:           p.BaseUrl,
		Timeout:           p.RequestTimeout.Std(),
		RetryCount:        *p.RetryCount,
		RequestsPerSecond: p.RequestsPerSecond,
	}
}

// Source resolves the driver and data source name of the database. Without an
// explicit driver, postgres urls select postgres, other urls select libsql and
// anything else is a local sqlite file.
func (d DatabaseConfig) Source() (driver, dsn string) {
	switch {
	case d.Driver == migrations.DriverSqlite || (d.Driver == "" && d.Url == ""):
		if d.File == "" {
			return migrations.DriverSqlite, "resultsync.db"
		}
		return migrations.DriverSqlite, d.File
	case d.Driver != "":
		return d.Driver, d.Url
	case strings.HasPrefix(d.Url, "postgres://"), strings.HasPrefix(d.Url, "postgresql://"):
		return migrations.DriverPostgres, d.Url
	default:
		return migrations.DriverLibsql, d.Url
	}
}
