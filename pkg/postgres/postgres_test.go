package postgres

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tech-advisor/pkg/config"
)

func TestDSN(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Host: "db", Port: "5432", User: "advisor", Password: "secret", DBName: "tech_advisor", SSLMode: "disable",
	}
	dsn := DSN(cfg)
	assert.Equal(t, "host=db port=5432 user=advisor password=secret dbname=tech_advisor sslmode=disable", dsn)

	parsed, err := pgxpool.ParseConfig(dsn)
	require.NoError(t, err)
	assert.Equal(t, "db", parsed.ConnConfig.Host)
	assert.Equal(t, uint16(5432), parsed.ConnConfig.Port)
	assert.Equal(t, "tech_advisor", parsed.ConnConfig.Database)
}
