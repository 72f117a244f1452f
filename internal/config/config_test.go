package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr())
	assert.True(t, decimal.NewFromInt(1000).Equal(cfg.Pricing.FreeShippingThreshold))
	assert.True(t, decimal.NewFromInt(60).Equal(cfg.Pricing.ShippingFee))
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, []string{"localhost:9092", "localhost:9093", "localhost:9094"}, cfg.Kafka.Brokers)
	assert.Equal(t, "order-topic", cfg.Kafka.OrderTopic)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MYSQL_HOST", "db.internal")
	t.Setenv("MYSQL_NAME", "shop")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("PRICING_FREE_SHIPPING_THRESHOLD", "1500.50")
	t.Setenv("PRICING_SHIPPING_FEE", "80")
	t.Setenv("JWT_EXPIRATION", "2h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.MySQL.Host)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "1500.5", cfg.Pricing.FreeShippingThreshold.String())
	assert.Equal(t, "80", cfg.Pricing.ShippingFee.String())
	assert.Equal(t, 2*time.Hour, cfg.JWT.Expiration)
	assert.Contains(t, cfg.MySQL.DSN(), "tcp(db.internal:3306)/shop")
	assert.Contains(t, cfg.MySQL.DSN(), "parseTime=true")
}

func TestLoadRejectsBadPricing(t *testing.T) {
	t.Setenv("PRICING_SHIPPING_FEE", "sixty")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("PRICING_SHIPPING_FEE", "-1")
	_, err = Load()
	assert.Error(t, err)
}
