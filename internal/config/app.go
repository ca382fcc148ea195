package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const appName = "countryfx"

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

type HTTPServer struct {
	Port                     string `mapstructure:"port"`
	ReadHeaderTimeoutSeconds int    `mapstructure:"read_header_timeout_seconds"`
	ShutdownTimeoutSeconds   int    `mapstructure:"shutdown_timeout_seconds"`
}

func (c HTTPServer) ReadHeaderTimeout() time.Duration {
	return secondsOr(c.ReadHeaderTimeoutSeconds, 10*time.Second)
}

func (c HTTPServer) ShutdownTimeout() time.Duration {
	return secondsOr(c.ShutdownTimeoutSeconds, 10*time.Second)
}

func secondsOr(seconds int, fallback time.Duration) time.Duration {
	if seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

type DbServer struct {
	Driver      string `mapstructure:"driver"`
	Host        string `mapstructure:"host"`
	Port        string `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Pass        string `mapstructure:"pass"`
	Name        string `mapstructure:"name"`
	MaxConns    int32  `mapstructure:"max_conns"`
	SQLitePath  string `mapstructure:"sqlite_path"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

func (config *DbServer) GetConnectionStr() string {
	switch config.Driver {
	case DriverMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&loc=UTC",
			config.User, config.Pass, config.Host, config.Port, config.Name)
	case DriverSQLite:
		return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", config.SQLitePath)
	default:
		return fmt.Sprintf(
			"user=%s password=%s host=%s port=%s dbname=%s sslmode=disable",
			config.User, config.Pass, config.Host, config.Port, config.Name,
		)
	}
}

type HTTPClient struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

func (c HTTPClient) Timeout() time.Duration {
	return secondsOr(c.TimeoutSeconds, 10*time.Second)
}

type Sources struct {
	CountriesURL string `mapstructure:"countries_url"`
	RatesURL     string `mapstructure:"rates_url"`
	BaseCurrency string `mapstructure:"base_currency"`
}

type Refresh struct {
	BatchSize        int    `mapstructure:"batch_size"`
	IntervalSeconds  int    `mapstructure:"interval_seconds"`
	CacheTTLHours    int    `mapstructure:"cache_ttl_hours"`
	GDPSeed          uint64 `mapstructure:"gdp_seed"`
	SchedulerEnabled bool   `mapstructure:"scheduler_enabled"`
}

func (r Refresh) Interval() time.Duration {
	return time.Duration(r.IntervalSeconds) * time.Second
}

func (r Refresh) CacheTTL() time.Duration {
	return time.Duration(r.CacheTTLHours) * time.Hour
}

type Summary struct {
	Path   string `mapstructure:"path"`
	Format string `mapstructure:"format"`
	TopN   int    `mapstructure:"top_n"`
}

type Logging struct {
	Level string `mapstructure:"level"`
}

type AppConfig struct {
	HTTPServer HTTPServer `mapstructure:"http_server"`
	DbServer   DbServer   `mapstructure:"db_server"`
	HTTPClient HTTPClient `mapstructure:"http_client"`
	Sources    Sources    `mapstructure:"sources"`
	Refresh    Refresh    `mapstructure:"refresh"`
	Summary    Summary    `mapstructure:"summary"`
	Logging    Logging    `mapstructure:"logging"`
}

// Init loads .env and config.yaml from the working directory when present,
// then overlays environment variables. Both files are optional.
func Init() (*AppConfig, error) {
	return Load(".env", "config.yaml")
}

func Load(envFile, configFile string) (*AppConfig, error) {
	var cfg AppConfig

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	setDefaults(v)
	bindEnv(v)

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http_server.port", "8080")
	v.SetDefault("http_server.read_header_timeout_seconds", 10)
	v.SetDefault("http_server.shutdown_timeout_seconds", 10)

	v.SetDefault("db_server.driver", DriverPostgres)
	v.SetDefault("db_server.host", "localhost")
	v.SetDefault("db_server.max_conns", 10)
	v.SetDefault("db_server.sqlite_path", filepath.Join(xdg.DataHome, appName, appName+".db"))
	v.SetDefault("db_server.auto_migrate", true)

	v.SetDefault("http_client.timeout_seconds", 10)

	v.SetDefault("sources.countries_url", "https://restcountries.com/v2/all?fields=name,capital,region,population,flag,currencies")
	v.SetDefault("sources.rates_url", "https://api.exchangerate-api.com/v4/latest/")
	v.SetDefault("sources.base_currency", "USD")

	v.SetDefault("refresh.batch_size", 100)
	v.SetDefault("refresh.interval_seconds", 24*60*60)
	v.SetDefault("refresh.cache_ttl_hours", 7*24)
	v.SetDefault("refresh.gdp_seed", 0)
	v.SetDefault("refresh.scheduler_enabled", false)

	v.SetDefault("summary.path", filepath.Join(xdg.CacheHome, appName, "summary.txt"))
	v.SetDefault("summary.format", "text")
	v.SetDefault("summary.top_n", 5)

	v.SetDefault("logging.level", "info")
}

func bindEnv(v *viper.Viper) {
	// http server env vars
	_ = v.BindEnv("http_server.port", "HTTP_PORT", "PORT")

	// db server env vars
	_ = v.BindEnv("db_server.driver", "DB_DRIVER")
	_ = v.BindEnv("db_server.host", "DB_HOST")
	_ = v.BindEnv("db_server.port", "DB_PORT")
	_ = v.BindEnv("db_server.user", "DB_USER")
	_ = v.BindEnv("db_server.pass", "DB_PASS")
	_ = v.BindEnv("db_server.name", "DB_NAME")
	_ = v.BindEnv("db_server.max_conns", "DB_MAX_CONNS")
	_ = v.BindEnv("db_server.sqlite_path", "DB_SQLITE_PATH")
	_ = v.BindEnv("db_server.auto_migrate", "DB_AUTO_MIGRATE")

	// http client env vars
	_ = v.BindEnv("http_client.timeout_seconds", "HTTP_CLIENT_TIMEOUT_SECONDS")

	// sources
	_ = v.BindEnv("sources.countries_url", "COUNTRIES_API_URL")
	_ = v.BindEnv("sources.rates_url", "EXCHANGE_RATE_API_URL")
	_ = v.BindEnv("sources.base_currency", "BASE_CURRENCY")

	// refresh pipeline
	_ = v.BindEnv("refresh.batch_size", "REFRESH_BATCH_SIZE")
	_ = v.BindEnv("refresh.interval_seconds", "REFRESH_INTERVAL_SECONDS")
	_ = v.BindEnv("refresh.cache_ttl_hours", "RATE_CACHE_TTL_HOURS")
	_ = v.BindEnv("refresh.gdp_seed", "GDP_SEED")
	_ = v.BindEnv("refresh.scheduler_enabled", "REFRESH_SCHEDULER_ENABLED")

	_ = v.BindEnv("summary.path", "SUMMARY_PATH")
	_ = v.BindEnv("summary.format", "SUMMARY_FORMAT")
	_ = v.BindEnv("summary.top_n", "SUMMARY_TOP_N")

	_ = v.BindEnv("logging.level", "LOG_LEVEL")
}

func (c *AppConfig) validate() error {
	switch c.DbServer.Driver {
	case DriverPostgres, DriverMySQL, DriverSQLite:
	default:
		return fmt.Errorf("unsupported db driver %q", c.DbServer.Driver)
	}
	switch strings.ToLower(c.Summary.Format) {
	case "text", "html", "csv", "markdown":
	default:
		return fmt.Errorf("unsupported summary format %q", c.Summary.Format)
	}
	if strings.TrimSpace(c.Sources.CountriesURL) == "" || strings.TrimSpace(c.Sources.RatesURL) == "" {
		return errors.New("sources.countries_url and sources.rates_url are required")
	}
	return nil
}
