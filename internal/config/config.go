package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"TodoAPI/internal/utils"

	"github.com/go-sql-driver/mysql"
	"github.com/ilyakaznacheev/cleanenv"
)

// durationSeconds parses env as time.Duration: "10s", "5m" or bare number = seconds (e.g. "10" -> 10s).
type durationSeconds time.Duration

func (d *durationSeconds) UnmarshalEnvironment(data string) error {
	v, err := utils.ParseDurationEnv(data)
	if err != nil {
		return err
	}
	*d = durationSeconds(v)
	return nil
}

func (d durationSeconds) Duration() time.Duration { return time.Duration(d) }

// Supported DB_DRIVER values.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite3"
)

type Config struct {
	App  AppConfig
	HTTP HTTPConfig
	DB   DBConfig
	Log  LogConfig
}

type AppConfig struct {
	Env     string `env:"APP_ENV" env-default:"dev"`
	Version string `env:"VERSION" env-default:"dev"`
}

type HTTPConfig struct {
	Port string `env:"HTTP_PORT" env-default:"8080"`

	// Значение: "10s", "5m" или число секунд без суффикса (например 10).
	ReadTimeout     durationSeconds `env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    durationSeconds `env:"HTTP_WRITE_TIMEOUT" env-default:"10s"`
	IdleTimeout     durationSeconds `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout durationSeconds `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`

	AllowOrigins []string `env:"CORS_ALLOW_ORIGINS" env-separator:"," env-default:"*"`
}

// DBConfig is consumed by the persistence gateway only.
type DBConfig struct {
	Driver string `env:"DB_DRIVER" env-default:"postgres"`

	// Postgres
	PGDSN string `env:"PG_DSN"`

	// MySQL
	Host      string `env:"DB_HOST" env-default:"localhost"`
	Port      string `env:"DB_PORT" env-default:"3306"`
	User      string `env:"DB_USER" env-default:"root"`
	Password  string `env:"DB_PASSWORD"`
	Name      string `env:"DB_DATABASE" env-default:"todo_db"`
	Charset   string `env:"DB_CHARSET" env-default:"utf8mb4"`
	Collation string `env:"DB_COLLATION" env-default:"utf8mb4_unicode_ci"`

	// SQLite
	SQLitePath string `env:"SQLITE_PATH" env-default:"todo.db"`

	PoolSize        int             `env:"DB_POOL_SIZE" env-default:"10"`
	MinConns        int             `env:"DB_MIN_CONNS" env-default:"2"`
	MaxConnIdleTime durationSeconds `env:"DB_CONN_MAX_IDLE_TIME" env-default:"5m"`
	MaxConnLifetime durationSeconds `env:"DB_CONN_MAX_LIFETIME" env-default:"30m"`
	ConnectTimeout  durationSeconds `env:"DB_CONNECT_TIMEOUT" env-default:"30s"`

	MigrateOnStart bool `env:"DB_MIGRATE_ON_START" env-default:"true"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" env-default:"info"`
	Format string `env:"LOG_FORMAT" env-default:"text"`
}

// Load reads configuration from the environment. When envFile names an existing
// .env file its variables are exported into the process environment first.
func Load(envFile string) (Config, error) {
	var cfg Config
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := cleanenv.ReadConfig(envFile, &cfg); err != nil {
				return Config{}, fmt.Errorf("read %s: %w", envFile, err)
			}
			return cfg, cfg.validate()
		}
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.DB.Driver {
	case DriverPostgres:
		if c.DB.PGDSN == "" {
			return errors.New("PG_DSN is required when DB_DRIVER=postgres")
		}
	case DriverMySQL:
		if c.DB.Host == "" || c.DB.Name == "" {
			return errors.New("DB_HOST and DB_DATABASE are required when DB_DRIVER=mysql")
		}
	case DriverSQLite:
		if c.DB.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required when DB_DRIVER=sqlite3")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be one of postgres, mysql, sqlite3, got %q", c.DB.Driver)
	}
	if c.DB.PoolSize <= 0 {
		return fmt.Errorf("DB_POOL_SIZE must be positive, got %d", c.DB.PoolSize)
	}
	return nil
}

// SQLDriver is the database/sql driver name registered for the configured backend.
func (c DBConfig) SQLDriver() string {
	if c.Driver == DriverPostgres {
		return "pgx"
	}
	return c.Driver
}

// Dialect is the goose dialect name for the configured backend.
func (c DBConfig) Dialect() string { return c.Driver }

// DSN builds the connection string for the configured backend.
func (c DBConfig) DSN() string {
	switch c.Driver {
	case DriverMySQL:
		return c.mysqlDSN()
	case DriverSQLite:
		return sqliteDSN(c.SQLitePath)
	default:
		return c.PGDSN
	}
}

func (c DBConfig) mysqlDSN() string {
	mc := mysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.Host, c.Port)
	mc.DBName = c.Name
	mc.Collation = c.Collation
	mc.ParseTime = true
	// RowsAffected must count matched rows, not changed ones.
	mc.ClientFoundRows = true
	mc.Loc = time.UTC
	mc.Timeout = c.ConnectTimeout.Duration()
	if c.Charset != "" {
		mc.Params = map[string]string{"charset": c.Charset}
	}
	return mc.FormatDSN()
}

func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return "file:" + path + sep + "_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"
}
