package persistence

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// PostgresConfig holds the connection settings of the reporting database
type PostgresConfig struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
}

// DSN renders the key/value connection string understood by pgx
func (c PostgresConfig) DSN() string {
	dsn := fmt.Sprintf("host=%s port=%s dbname=%s user=%s sslmode=disable", c.Host, c.Port, c.Database, c.User)
	if c.Password != "" {
		dsn += " password=" + quoteDSNValue(c.Password)
	}
	return dsn
}

var dsnValueEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// quoteDSNValue single-quotes a value for a key/value connection string.
func quoteDSNValue(v string) string {
	return "'" + dsnValueEscaper.Replace(v) + "'"
}

// NewPostgresDB opens a gorm connection and checks it is reachable
func NewPostgresDB(cfg PostgresConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}
