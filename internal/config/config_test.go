package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"SERVER_PORT", "CACHE_TTL_SECONDS", "AUTO_MIGRATE", "ALLOWED_ORIGINS", "RATE_LIMIT_PER_MINUTE", "TRUSTED_PROXIES"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.True(t, cfg.AutoMigrate)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
	assert.Nil(t, cfg.AllowedOrigins)
	assert.Nil(t, cfg.TrustedProxies)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CACHE_TTL_SECONDS", "30")
	t.Setenv("AUTO_MIGRATE", "false")
	t.Setenv("MAX_DB_CONNS", "not-a-number")
	t.Setenv("ALLOWED_ORIGINS", " http://a.test , ,http://b.test")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.168.1.1")

	cfg := Load()

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.False(t, cfg.AutoMigrate)
	assert.Equal(t, int32(16), cfg.MaxDBConns)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.1"}, cfg.TrustedProxies)
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "course:3:seats", CacheKey.CourseSeatsChannel(3))
	assert.NotEqual(t, CacheKey.CourseListKey(), CacheKey.CourseListGenerationKey())
	assert.Equal(t, "ratelimit:10.0.0.1:42", CacheKey.RateLimitKey("10.0.0.1", 42))
}
