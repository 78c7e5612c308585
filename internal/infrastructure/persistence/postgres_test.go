package persistence

import (
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresConfig_DSN(t *testing.T) {
	cfg := PostgresConfig{Host: "localhost", Port: "5432", Database: "flightdb", User: "postgres"}
	assert.Equal(t, "host=localhost port=5432 dbname=flightdb user=postgres sslmode=disable", cfg.DSN())

	cfg.Password = "secret"
	assert.Equal(t, "host=localhost port=5432 dbname=flightdb user=postgres sslmode=disable password='secret'", cfg.DSN())
}

func TestPostgresConfig_DSNKeepsSpecialCharactersInPassword(t *testing.T) {
	for _, password := range []string{"two words", `it's`, `back\slash`, "a=b"} {
		t.Run(password, func(t *testing.T) {
			cfg := PostgresConfig{Host: "db", Port: "5432", Database: "flightdb", User: "postgres", Password: password}

			parsed, err := pgconn.ParseConfig(cfg.DSN())
			require.NoError(t, err)
			assert.Equal(t, password, parsed.Password)
			assert.Equal(t, "flightdb", parsed.Database)
		})
	}
}
