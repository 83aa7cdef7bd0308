package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ebhath/ebhath-api/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "ebhath",
		Password: "secret",
		Name:     "applications",
		SSLMode:  "require",
	})
	assert.Equal(t, "host=db.internal port=5433 user=ebhath password=secret dbname=applications sslmode=require connect_timeout=5 application_name=ebhath-api", dsn)
}
