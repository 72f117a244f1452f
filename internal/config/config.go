package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port string
}

func (s ServerConfig) Addr() string {
	return ":" + s.Port
}

type MySQLConfig struct {
	Host     string
	Port     string
	User     string
	Pass     string
	Name     string
	Retries  int
	MaxConns int
}

// DSN builds a go-sql-driver DSN with parseTime enabled so DATETIME columns scan into time.Time.
func (m MySQLConfig) DSN() string {
	c := mysql.NewConfig()
	c.User = m.User
	c.Passwd = m.Pass
	c.Net = "tcp"
	c.Addr = fmt.Sprintf("%s:%s", m.Host, m.Port)
	c.DBName = m.Name
	c.ParseTime = true
	c.Loc = time.Local
	return c.FormatDSN()
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers         []string
	OrderTopic      string
	GroupID         string
	ConsumerEnabled bool
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

// PricingConfig holds the shipping rule applied to every order.
type PricingConfig struct {
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
}

type RateLimitConfig struct {
	Rate      float64
	Burst     int
	ExpiresIn time.Duration
}

type CacheConfig struct {
	ProductTTL     time.Duration
	IdempotencyTTL time.Duration
}

type Config struct {
	Server    ServerConfig
	MySQL     MySQLConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	JWT       JWTConfig
	Pricing   PricingConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")

	v.SetDefault("mysql.host", "127.0.0.1")
	v.SetDefault("mysql.port", "3306")
	v.SetDefault("mysql.user", "root")
	v.SetDefault("mysql.pass", "")
	v.SetDefault("mysql.name", "storefront")
	v.SetDefault("mysql.retries", 10)
	v.SetDefault("mysql.max_conns", 25)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("kafka.brokers", "localhost:9092,localhost:9093,localhost:9094")
	v.SetDefault("kafka.order_topic", "order-topic")
	v.SetDefault("kafka.group_id", "storefront-cache-group")
	v.SetDefault("kafka.consumer_enabled", true)

	v.SetDefault("jwt.secret", "your-secret-key-change-in-production")
	v.SetDefault("jwt.expiration", 24*time.Hour)

	v.SetDefault("pricing.free_shipping_threshold", "1000")
	v.SetDefault("pricing.shipping_fee", "60")

	v.SetDefault("rate_limit.rate", 10)
	v.SetDefault("rate_limit.burst", 30)
	v.SetDefault("rate_limit.expires_in", 3*time.Minute)

	v.SetDefault("cache.product_ttl", time.Minute)
	v.SetDefault("cache.idempotency_ttl", 24*time.Hour)
}

// Load reads configuration from the environment. Keys map to upper-case
// variables with dots replaced by underscores, e.g. mysql.host -> MYSQL_HOST.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	threshold, err := decimal.NewFromString(v.GetString("pricing.free_shipping_threshold"))
	if err != nil {
		return nil, fmt.Errorf("invalid pricing.free_shipping_threshold: %w", err)
	}
	fee, err := decimal.NewFromString(v.GetString("pricing.shipping_fee"))
	if err != nil {
		return nil, fmt.Errorf("invalid pricing.shipping_fee: %w", err)
	}
	if threshold.IsNegative() || fee.IsNegative() {
		return nil, fmt.Errorf("pricing values must not be negative")
	}

	cfg := &Config{
		Server: ServerConfig{Port: v.GetString("server.port")},
		MySQL: MySQLConfig{
			Host:     v.GetString("mysql.host"),
			Port:     v.GetString("mysql.port"),
			User:     v.GetString("mysql.user"),
			Pass:     v.GetString("mysql.pass"),
			Name:     v.GetString("mysql.name"),
			Retries:  v.GetInt("mysql.retries"),
			MaxConns: v.GetInt("mysql.max_conns"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Kafka: KafkaConfig{
			Brokers:         splitBrokers(v.GetString("kafka.brokers")),
			OrderTopic:      v.GetString("kafka.order_topic"),
			GroupID:         v.GetString("kafka.group_id"),
			ConsumerEnabled: v.GetBool("kafka.consumer_enabled"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("jwt.secret"),
			Expiration: v.GetDuration("jwt.expiration"),
		},
		Pricing: PricingConfig{
			FreeShippingThreshold: threshold,
			ShippingFee:           fee,
		},
		RateLimit: RateLimitConfig{
			Rate:      v.GetFloat64("rate_limit.rate"),
			Burst:     v.GetInt("rate_limit.burst"),
			ExpiresIn: v.GetDuration("rate_limit.expires_in"),
		},
		Cache: CacheConfig{
			ProductTTL:     v.GetDuration("cache.product_ttl"),
			IdempotencyTTL: v.GetDuration("cache.idempotency_ttl"),
		},
	}
	return cfg, nil
}

func splitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
