package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	// MaxDocumentBytes caps an uploaded import body.
	MaxDocumentBytes int64 `mapstructure:"max_document_bytes"`
	// ImportRateLimit is imports per minute per organization; 0 disables it.
	ImportRateLimit int `mapstructure:"import_rate_limit"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Supported database drivers.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	SQLitePath      string `mapstructure:"sqlite_path"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

// GetDSN builds the driver specific connection string.
func (d *DatabaseConfig) GetDSN() string {
	switch d.Driver {
	case DriverPostgres:
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			d.Host, d.Port, d.Username, d.Password, d.Database)
	case DriverSQLite:
		return SQLiteDSN(d.SQLitePath)
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			d.Username, d.Password, d.Host, d.Port, d.Database)
	}
}

// SQLiteDSN returns a DSN with foreign keys enforced and writers serialized
// through immediate transactions.
func SQLiteDSN(path string) string {
	if path == "" {
		path = "curriculum.db"
	}
	return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=10000&_txlock=immediate", path)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// Lock backends for import serialization.
const (
	LockBackendMemory   = "memory"
	LockBackendRedis    = "redis"
	LockBackendAdvisory = "advisory"
)

type ImportConfig struct {
	LockBackend              string        `mapstructure:"lock_backend"`
	LockTimeout              time.Duration `mapstructure:"lock_timeout"`
	LockTTL                  time.Duration `mapstructure:"lock_ttl"`
	LockRetryInterval        time.Duration `mapstructure:"lock_retry_interval"`
	TransactionTimeout       time.Duration `mapstructure:"transaction_timeout"`
	CreateMissingTechniques  bool          `mapstructure:"create_missing_techniques"`
	SelfCheck                bool          `mapstructure:"self_check"`
	DefaultLessonMinutes     int           `mapstructure:"default_lesson_minutes"`
	DefaultAllocationMinutes int           `mapstructure:"default_allocation_minutes"`
	BatchWorkers             int           `mapstructure:"batch_workers"`
}
