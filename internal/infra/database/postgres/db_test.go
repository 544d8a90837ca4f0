package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"garaadka-laundry/internal/config"
)

func TestBuildDSN(t *testing.T) {
	cfg := config.Postgres{Host: "db", Port: "5432", User: "laundry", Pwd: "pw", DBName: "shop", SSLMode: "require"}

	dsn := BuildDSN(cfg, zap.NewNop())

	assert.Equal(t, "host=db port=5432 user=laundry password=pw dbname=shop sslmode=require TimeZone=UTC", dsn)
}

func TestBuildDSN_Defaults(t *testing.T) {
	dsn := BuildDSN(config.Postgres{Host: "db", Port: "5432", SSLMode: "sometimes"}, zap.NewNop())

	assert.Contains(t, dsn, "dbname=laundry")
	assert.Contains(t, dsn, "sslmode=disable")
}
