package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"booking-gateway/core/constants"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Database  DatabaseConfig  `mapstructure:"database"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Calendar  CalendarConfig  `mapstructure:"calendar"`
	GoogleAPI GoogleAPIConfig `mapstructure:"google"`
	CalDAV    CalDAVConfig    `mapstructure:"caldav"`
	Queue     QueueConfig     `mapstructure:"queue"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	BodyLimit       string        `mapstructure:"body_limit"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// AdminKey and AdminSubjects gate the calendar status and refresh
	// routes. With neither set those routes reject every caller.
	AdminKey      string   `mapstructure:"admin_key"`
	AdminSubjects []string `mapstructure:"admin_subjects"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RateLimitConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	MaxRequests  int64         `mapstructure:"max_requests"`
	Window       time.Duration `mapstructure:"window"`
	StoreTimeout time.Duration `mapstructure:"store_timeout"`
	FailOpen     bool          `mapstructure:"fail_open"`
	KeyHeader    string        `mapstructure:"key_header"`
	TrustXFF     bool          `mapstructure:"trust_xff"`
	JWTSecret    string        `mapstructure:"jwt_secret"`
	Prefix       string        `mapstructure:"prefix"`
}

type CalendarConfig struct {
	Provider            string        `mapstructure:"provider"`
	CalendarID          string        `mapstructure:"calendar_id"`
	InitTimeout         time.Duration `mapstructure:"init_timeout"`
	AuthTimeout         time.Duration `mapstructure:"auth_timeout"`
	AvailabilityTimeout time.Duration `mapstructure:"availability_timeout"`
	CreationTimeout     time.Duration `mapstructure:"creation_timeout"`
	RefreshCron         string        `mapstructure:"refresh_cron"`
	DefaultTimezone     string        `mapstructure:"default_timezone"`
}

type GoogleAPIConfig struct {
	CredentialsFile string `mapstructure:"credentials_file"`
	Subject         string `mapstructure:"subject"`
	ClientID        string `mapstructure:"client_id"`
	ClientSecret    string `mapstructure:"client_secret"`
	RefreshToken    string `mapstructure:"refresh_token"`
	Endpoint        string `mapstructure:"endpoint"`
}

type CalDAVConfig struct {
	URL          string `mapstructure:"url"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	CalendarPath string `mapstructure:"calendar_path"`
}

type QueueConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	Concurrency int  `mapstructure:"concurrency"`
}

var (
	instance *Config
	mu       sync.RWMutex
)

// Init loads configuration from an optional file, .env and the environment.
// Environment keys use "_" in place of "." (RATELIMIT_MAX_REQUESTS).
func Init(configFile string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	Set(cfg)
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 7070)
	v.SetDefault("server.body_limit", "64K")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.admin_key", "")
	v.SetDefault("server.admin_subjects", []string{})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.dial_timeout", 2*time.Second)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "bookings")
	v.SetDefault("database.sslmode", constants.DatabaseSSLMode)

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.max_requests", constants.RateLimitMaxRequests)
	v.SetDefault("ratelimit.window", constants.RateLimitWindow)
	v.SetDefault("ratelimit.store_timeout", constants.RateLimitStoreTimeout)
	v.SetDefault("ratelimit.fail_open", true)
	v.SetDefault("ratelimit.key_header", "X-Api-Key")
	v.SetDefault("ratelimit.trust_xff", false)
	v.SetDefault("ratelimit.jwt_secret", "")
	v.SetDefault("ratelimit.prefix", constants.RedisKeyRateLimit)

	v.SetDefault("calendar.provider", constants.ProviderMemory)
	v.SetDefault("calendar.calendar_id", "primary")
	v.SetDefault("calendar.init_timeout", constants.AuthInitTimeout)
	v.SetDefault("calendar.auth_timeout", constants.AuthTimeout)
	v.SetDefault("calendar.availability_timeout", constants.AvailabilityTimeout)
	v.SetDefault("calendar.creation_timeout", constants.CreationTimeout)
	v.SetDefault("calendar.refresh_cron", "")
	v.SetDefault("calendar.default_timezone", "UTC")

	v.SetDefault("google.credentials_file", "")
	v.SetDefault("google.subject", "")
	v.SetDefault("google.client_id", "")
	v.SetDefault("google.client_secret", "")
	v.SetDefault("google.refresh_token", "")
	v.SetDefault("google.endpoint", "")

	v.SetDefault("caldav.url", "")
	v.SetDefault("caldav.username", "")
	v.SetDefault("caldav.password", "")
	v.SetDefault("caldav.calendar_path", "")

	v.SetDefault("queue.enabled", false)
	v.SetDefault("queue.concurrency", 5)
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.RateLimit.MaxRequests <= 0 {
		return fmt.Errorf("ratelimit.max_requests must be > 0")
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("ratelimit.window must be > 0")
	}
	if c.RateLimit.StoreTimeout <= 0 {
		return fmt.Errorf("ratelimit.store_timeout must be > 0")
	}

	switch c.Calendar.Provider {
	case constants.ProviderGoogle:
		if c.GoogleAPI.CredentialsFile == "" && c.GoogleAPI.RefreshToken == "" {
			return fmt.Errorf("google.credentials_file or google.refresh_token is required for the google provider")
		}
	case constants.ProviderCalDAV:
		if c.CalDAV.URL == "" {
			return fmt.Errorf("caldav.url is required for the caldav provider")
		}
	case constants.ProviderMemory:
	default:
		return fmt.Errorf("unknown calendar.provider %q", c.Calendar.Provider)
	}

	for name, d := range map[string]time.Duration{
		"calendar.init_timeout":         c.Calendar.InitTimeout,
		"calendar.auth_timeout":         c.Calendar.AuthTimeout,
		"calendar.availability_timeout": c.Calendar.AvailabilityTimeout,
		"calendar.creation_timeout":     c.Calendar.CreationTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be > 0", name)
		}
	}

	if c.Queue.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required when queue.enabled=true")
	}
	return nil
}

func Set(cfg *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = cfg
}

func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	if instance == nil {
		panic("config not initialized")
	}
	return instance
}

func GetSafe() (*Config, bool) {
	mu.RLock()
	defer mu.RUnlock()
	return instance, instance != nil
}
