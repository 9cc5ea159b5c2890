package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("RAZORPAY_KEY_ID", "rzp_test_key")
	t.Setenv("RAZORPAY_KEY_SECRET", "rzp_secret")
}

func TestLoad(t *testing.T) {
	t.Run("Success loading from env", func(t *testing.T) {
		setRequired(t)
		t.Setenv("PORT", "8080")
		t.Setenv("APP_ENV", "test")
		t.Setenv("DB_HOST", "localhost")
		t.Setenv("DB_USER", "testuser")
		t.Setenv("DB_PASSWORD", "testpass")
		t.Setenv("DB_NAME", "testdb")
		t.Setenv("DB_PORT", "5433")
		t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
		t.Setenv("GATEWAY_TIMEOUT", "3s")
		t.Setenv("ORDER_TTL", "1h")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.AppPort)
		assert.Equal(t, "test", cfg.AppEnv)
		assert.Equal(t, "rzp_test_key", cfg.Razorpay.KeyID)
		assert.Equal(t, "rzp_secret", cfg.Razorpay.KeySecret)
		assert.Equal(t, 3*time.Second, cfg.Razorpay.Timeout)
		assert.Equal(t, time.Hour, cfg.OrderTTL)
		assert.Equal(t, defaultSweepInterval, cfg.SweepInterval)
		assert.True(t, cfg.Database.Enabled())
		assert.Equal(t, "5433", cfg.Database.Port)
		assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
		assert.True(t, cfg.Kafka.Enabled())
	})

	t.Run("Defaults", func(t *testing.T) {
		setRequired(t)
		t.Setenv("PORT", "")
		t.Setenv("DB_HOST", "")
		t.Setenv("KAFKA_BROKERS", "")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "5000", cfg.AppPort)
		assert.Equal(t, 15*time.Second, cfg.Razorpay.Timeout)
		assert.Equal(t, defaultOrderTopic, cfg.Kafka.OrderTopic)
		assert.False(t, cfg.Database.Enabled())
		assert.False(t, cfg.Kafka.Enabled())
	})

	t.Run("Missing secret", func(t *testing.T) {
		t.Setenv("RAZORPAY_KEY_ID", "rzp_test_key")
		t.Setenv("RAZORPAY_KEY_SECRET", "")

		cfg, err := Load()
		assert.Nil(t, cfg)
		assert.ErrorIs(t, err, ErrMissingKeySecret)
	})

	t.Run("Missing key id", func(t *testing.T) {
		t.Setenv("RAZORPAY_KEY_ID", "")
		t.Setenv("RAZORPAY_KEY_SECRET", "rzp_secret")

		_, err := Load()
		assert.ErrorIs(t, err, ErrMissingKeyID)
	})

	t.Run("Invalid duration", func(t *testing.T) {
		setRequired(t)
		t.Setenv("GATEWAY_TIMEOUT", "soon")

		_, err := Load()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "GATEWAY_TIMEOUT")
	})

	t.Run("Negative duration", func(t *testing.T) {
		setRequired(t)
		t.Setenv("SWEEP_INTERVAL", "-1m")

		_, err := Load()
		assert.Error(t, err)
	})
}

func TestDatabaseConfig(t *testing.T) {
	d := DatabaseConfig{Host: "db", User: "fruit", Password: "p@ss", Name: "fruitbox", Port: "5432"}

	assert.Equal(t, "host=db user=fruit password=p@ss dbname=fruitbox port=5432 sslmode=disable", d.DSN())
	assert.Equal(t, "postgres://fruit:p%40ss@db:5432/fruitbox?sslmode=disable", d.URL())
}
