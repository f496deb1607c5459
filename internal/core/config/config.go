package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host              string `mapstructure:"host"`
	Port              int    `mapstructure:"port"`
	ReadTimeoutSec    int    `mapstructure:"read_timeout_sec"`
	WriteTimeoutSec   int    `mapstructure:"write_timeout_sec"`
	IdleTimeoutSec    int    `mapstructure:"idle_timeout_sec"`
	RequestTimeoutSec int    `mapstructure:"request_timeout_sec"`
	MaxBodyBytes      int64  `mapstructure:"max_body_bytes"`
	MaxConcurrency    int64  `mapstructure:"max_concurrency"`
}

type App struct {
	Name  string `mapstructure:"name"`
	Env   string `mapstructure:"env"`
	HTTP  HTTP   `mapstructure:"http"`
	Admin HTTP   `mapstructure:"admin"`
}

type LogFile struct {
	Enable     bool   `mapstructure:"enable"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type Log struct {
	Level string  `mapstructure:"level"`
	JSON  bool    `mapstructure:"json"`
	File  LogFile `mapstructure:"file"`
}

type JWT struct {
	Secret            string `mapstructure:"secret"`
	Issuer            string `mapstructure:"issuer"`
	AccessTokenTTLMin int    `mapstructure:"access_token_ttl_min"`
	LeewaySec         int    `mapstructure:"leeway_sec"`
}

type Redis struct {
	Addr             string `mapstructure:"addr"`
	Password         string `mapstructure:"password"`
	DB               int    `mapstructure:"db"`
	TokenCacheTTLSec int    `mapstructure:"token_cache_ttl_sec"`
}

type DB struct {
	Driver             string `mapstructure:"driver"`
	DSN                string `mapstructure:"dsn"`
	Username           string `mapstructure:"username"`
	Password           string `mapstructure:"password"`
	MaxOpenConns       int    `mapstructure:"max_open_conns"`
	MaxIdleConns       int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMin int    `mapstructure:"conn_max_lifetime_min"`
	AutoMigrate        bool   `mapstructure:"auto_migrate"`
	LogLevel           string `mapstructure:"log_level"`
}

type Reaper struct {
	IntervalSec     int `mapstructure:"interval_sec"`
	RetentionDays   int `mapstructure:"retention_days"`
	SweepTimeoutSec int `mapstructure:"sweep_timeout_sec"`
}

type Events struct {
	AMQPURL string `mapstructure:"amqp_url"`
	Queue   string `mapstructure:"queue"`
}

type Security struct {
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

type Config struct {
	App      App      `mapstructure:"app"`
	Log      Log      `mapstructure:"log"`
	JWT      JWT      `mapstructure:"jwt"`
	DB       DB       `mapstructure:"db"`
	Redis    Redis    `mapstructure:"redis"`
	Reaper   Reaper   `mapstructure:"reaper"`
	Events   Events   `mapstructure:"events"`
	Security Security `mapstructure:"security"`
}

const MinSecretLen = 32

var ErrInvalid = errors.New("invalid config")

func setDefaults(v *viper.Viper) {
	for k, val := range map[string]any{
		"app.name":                      "auth-service",
		"app.env":                       "local",
		"app.http.host":                 "0.0.0.0",
		"app.http.port":                 8080,
		"app.http.read_timeout_sec":     5,
		"app.http.write_timeout_sec":    10,
		"app.http.idle_timeout_sec":     60,
		"app.http.request_timeout_sec":  10,
		"app.http.max_body_bytes":       1 << 20,
		"app.http.max_concurrency":      300,
		"app.admin.host":                "127.0.0.1",
		"app.admin.port":                8081,
		"app.admin.read_timeout_sec":    5,
		"app.admin.write_timeout_sec":   10,
		"app.admin.idle_timeout_sec":    60,
		"app.admin.request_timeout_sec": 30,
		"app.admin.max_body_bytes":      1 << 20,
		"app.admin.max_concurrency":     50,
		"log.level":                     "info",
		"log.json":                      false,
		"log.file.enable":               false,
		"log.file.filename":             "logs/auth.log",
		"log.file.max_size_mb":          100,
		"log.file.max_backups":          7,
		"log.file.max_age_days":         30,
		"log.file.compress":             true,
		"jwt.secret":                    "",
		"jwt.issuer":                    "auth-service",
		"jwt.access_token_ttl_min":      60,
		"jwt.leeway_sec":                0,
		"db.driver":                     "sqlite",
		"db.dsn":                        "file:auth.db?_busy_timeout=5000",
		"db.username":                   "",
		"db.password":                   "",
		"db.max_open_conns":             20,
		"db.max_idle_conns":             10,
		"db.conn_max_lifetime_min":      30,
		"db.auto_migrate":               true,
		"db.log_level":                  "warn",
		"redis.addr":                    "",
		"redis.password":                "",
		"redis.db":                      0,
		"redis.token_cache_ttl_sec":     30,
		"reaper.interval_sec":           3600,
		"reaper.retention_days":         30,
		"reaper.sweep_timeout_sec":      60,
		"events.amqp_url":               "",
		"events.queue":                  "auth.events",
		"security.bcrypt_cost":          12,
	} {
		v.SetDefault(k, val)
	}
}

// Load reads the YAML file at path (CONFIG_PATH, then ./configs/config.local.yaml
// when empty) and applies APP_* env overrides, e.g. APP_JWT_SECRET. A missing
// file is tolerated when path was not given explicitly.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		explicit = path != ""
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	var errs []error
	if len(c.JWT.Secret) < MinSecretLen {
		errs = append(errs, fmt.Errorf("jwt.secret must be at least %d characters", MinSecretLen))
	}
	if c.JWT.AccessTokenTTLMin <= 0 {
		errs = append(errs, errors.New("jwt.access_token_ttl_min must be positive"))
	}
	if c.JWT.LeewaySec < 0 {
		errs = append(errs, errors.New("jwt.leeway_sec must not be negative"))
	}
	if c.Reaper.IntervalSec <= 0 {
		errs = append(errs, errors.New("reaper.interval_sec must be positive"))
	}
	if c.Reaper.RetentionDays <= 0 {
		errs = append(errs, errors.New("reaper.retention_days must be positive"))
	}
	if c.Reaper.SweepTimeoutSec <= 0 {
		errs = append(errs, errors.New("reaper.sweep_timeout_sec must be positive"))
	}
	switch c.DB.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("db.driver %q is not one of postgres, mysql, sqlite", c.DB.Driver))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

func (j JWT) AccessTTL() time.Duration { return time.Duration(j.AccessTokenTTLMin) * time.Minute }
func (j JWT) Leeway() time.Duration    { return time.Duration(j.LeewaySec) * time.Second }

func (r Redis) Enabled() bool                { return r.Addr != "" }
func (r Redis) TokenCacheTTL() time.Duration { return time.Duration(r.TokenCacheTTLSec) * time.Second }

func (r Reaper) Interval() time.Duration     { return time.Duration(r.IntervalSec) * time.Second }
func (r Reaper) Retention() time.Duration    { return time.Duration(r.RetentionDays) * 24 * time.Hour }
func (r Reaper) SweepTimeout() time.Duration { return time.Duration(r.SweepTimeoutSec) * time.Second }

func (e Events) Enabled() bool { return e.AMQPURL != "" }

func (h HTTP) Timeouts() (read, write, idle time.Duration) {
	return time.Duration(h.ReadTimeoutSec) * time.Second,
		time.Duration(h.WriteTimeoutSec) * time.Second,
		time.Duration(h.IdleTimeoutSec) * time.Second
}

func (h HTTP) RequestTimeout() time.Duration { return time.Duration(h.RequestTimeoutSec) * time.Second }
