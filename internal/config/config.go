package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "GARAADKA"

type Config struct {
	App       App       `mapstructure:"app"`
	Log       Log       `mapstructure:"log"`
	Server    Server    `mapstructure:"server"`
	Databases Databases `mapstructure:"databases"`
	Security  Security  `mapstructure:"security"`
	Cors      Cors      `mapstructure:"cors"`
	Audit     Audit     `mapstructure:"audit"`
	Outbox    Outbox    `mapstructure:"outbox"`
	Kafka     Kafka     `mapstructure:"kafka"`
	Redis     Redis     `mapstructure:"redis"`
	SMTP      SMTP      `mapstructure:"smtp"`
	CashClose CashClose `mapstructure:"cash_close"`
	Test      Test      `mapstructure:"test"`
}

type App struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Access bool   `mapstructure:"access"`
}

type Server struct {
	HTTP struct {
		Port int `mapstructure:"port"`
	} `mapstructure:"http"`
}

type Databases struct {
	Driver   string   `mapstructure:"driver"`
	Postgres Postgres `mapstructure:"postgres"`
	SQLite   SQLite   `mapstructure:"sqlite"`
}

type Postgres struct {
	Host         string `mapstructure:"host"`
	Port         string `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Pwd          string `mapstructure:"pwd"`
	DBName       string `mapstructure:"db_name"`
	SSLMode      string `mapstructure:"ssl_mode"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type SQLite struct {
	Path string `mapstructure:"path"`
}

type Security struct {
	JWTAccessSecret    string  `mapstructure:"jwt_access_secret"`
	JWTAccessExpiryMin int64   `mapstructure:"jwt_access_expiry_min"`
	LoginRatePerSec    float64 `mapstructure:"login_rate_per_sec"`
	LoginBurst         int     `mapstructure:"login_burst"`
}

type Cors struct {
	Origins []string `mapstructure:"origins"`
}

type Audit struct {
	RetentionDays        int `mapstructure:"retention_days"`
	CleanupIntervalHours int `mapstructure:"cleanup_interval_hours"`
	ExportLimit          int `mapstructure:"export_limit"`
}

type Outbox struct {
	Broker          string `mapstructure:"broker"`
	Topic           string `mapstructure:"topic"`
	PollIntervalSec int    `mapstructure:"poll_interval_sec"`
	BatchSize       int    `mapstructure:"batch_size"`
}

type Kafka struct {
	Brokers []string `mapstructure:"brokers"`
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SMTP struct {
	Host       string `mapstructure:"host"`
	Port       string `mapstructure:"port"`
	Username   string `mapstructure:"username"`
	Password   string `mapstructure:"password"`
	Encryption string `mapstructure:"encryption"`
	Address    string `mapstructure:"address"`
}

type CashClose struct {
	ReportTo string `mapstructure:"report_to"`
}

type Test struct {
	Ngrok struct {
		Live  bool   `mapstructure:"live"`
		Token string `mapstructure:"token"`
	} `mapstructure:"ngrok"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "garaadka-laundry")
	v.SetDefault("app.env", "dev")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.access", false)
	v.SetDefault("server.http.port", 5000)
	v.SetDefault("databases.driver", "postgres")
	v.SetDefault("databases.postgres.host", "localhost")
	v.SetDefault("databases.postgres.port", "5432")
	v.SetDefault("databases.postgres.user", "postgres")
	v.SetDefault("databases.postgres.pwd", "")
	v.SetDefault("databases.postgres.db_name", "laundry")
	v.SetDefault("databases.postgres.ssl_mode", "disable")
	v.SetDefault("databases.postgres.max_open_conns", 10)
	v.SetDefault("databases.sqlite.path", "laundry.db")
	v.SetDefault("security.jwt_access_secret", "")
	v.SetDefault("security.jwt_access_expiry_min", 1440)
	v.SetDefault("security.login_rate_per_sec", 1)
	v.SetDefault("security.login_burst", 5)
	v.SetDefault("cors.origins", []string{"*"})
	v.SetDefault("audit.retention_days", 365)
	v.SetDefault("audit.cleanup_interval_hours", 24)
	v.SetDefault("audit.export_limit", 10000)
	v.SetDefault("outbox.broker", "log")
	v.SetDefault("outbox.topic", "laundry.audit")
	v.SetDefault("outbox.poll_interval_sec", 5)
	v.SetDefault("outbox.batch_size", 100)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", "")
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.encryption", "")
	v.SetDefault("smtp.address", "")
	v.SetDefault("cash_close.report_to", "")
	v.SetDefault("test.ngrok.live", false)
	v.SetDefault("test.ngrok.token", "")
}

// Load reads .env, configs.json (from paths, or "." and "/etc/") and GARAADKA_* variables,
// in increasing order of precedence. A missing config file is not an error.
func Load(paths ...string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("configs")
	v.SetConfigType("json")
	if len(paths) == 0 {
		paths = []string{".", "/etc/"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("fatal error in configuration file: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode configuration: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.App.Env {
	case "dev", "prod":
	default:
		return fmt.Errorf("invalid app.env %q, must be 'dev' or 'prod'", c.App.Env)
	}
	switch c.Databases.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported databases.driver %q", c.Databases.Driver)
	}
	if c.Security.JWTAccessSecret == "" {
		return errors.New("security.jwt_access_secret cannot be empty")
	}
	if c.Security.JWTAccessExpiryMin <= 0 {
		return errors.New("security.jwt_access_expiry_min must be positive")
	}
	switch c.Outbox.Broker {
	case "log", "kafka", "redis":
	default:
		return fmt.Errorf("unsupported outbox.broker %q", c.Outbox.Broker)
	}
	return nil
}

func (c Config) AccessExpiry() time.Duration {
	return time.Duration(c.Security.JWTAccessExpiryMin) * time.Minute
}

func (c Config) OutboxPollInterval() time.Duration {
	if c.Outbox.PollIntervalSec <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.Outbox.PollIntervalSec) * time.Second
}

func (c Config) AuditCleanupInterval() time.Duration {
	if c.Audit.CleanupIntervalHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Audit.CleanupIntervalHours) * time.Hour
}

func (c Config) MailerEnabled() bool {
	return c.SMTP.Host != "" && c.SMTP.Address != ""
}
