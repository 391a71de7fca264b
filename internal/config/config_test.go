package config

import (
	"testing"
	"time"
)

func TestLoadRateLimitConfig(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want func(RateLimitConfig) bool
	}{
		{"defaults", nil, func(c RateLimitConfig) bool {
			return c.Enabled && c.Capacity == 120 && c.RefillTokens == 2 && c.RefillInterval == time.Second && c.Prefix == "rl"
		}},
		{"burst overrides capacity", map[string]string{"RATE_LIMIT_BURST": "10"}, func(c RateLimitConfig) bool {
			return c.Capacity == 10
		}},
		{"refill every", map[string]string{"RATE_LIMIT_REFILL_EVERY": "3s", "RATE_LIMIT_REFILL_TOKENS": "9"}, func(c RateLimitConfig) bool {
			return c.RefillTokens == 1 && c.RefillInterval == 3*time.Second
		}},
		{"ttl raised to five intervals", map[string]string{"RATE_LIMIT_REFILL_INTERVAL": "1m", "RATE_LIMIT_TTL": "1m"}, func(c RateLimitConfig) bool {
			return c.TTL == 5*time.Minute
		}},
		{"bad values fall back", map[string]string{"RATE_LIMIT_ENABLED": "maybe", "RATE_LIMIT_CAPACITY": "0"}, func(c RateLimitConfig) bool {
			return c.Enabled && c.Capacity == 1
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if got := LoadRateLimitConfig(); !tt.want(got) {
				t.Errorf("unexpected config: %+v", got)
			}
		})
	}
}

func TestLoadLiveFeedConfig(t *testing.T) {
	t.Setenv("AMQP_URL", "amqp://fallback/")
	cfg := LoadLiveFeedConfig()
	if cfg.AMQPURL != "amqp://fallback/" {
		t.Errorf("expected AMQP_URL fallback, got %q", cfg.AMQPURL)
	}
	if cfg.StreamKey != "matches.updates" || cfg.Queue != "scoring.events" || !cfg.WebSocket {
		t.Errorf("unexpected defaults: %+v", cfg)
	}

	t.Setenv("RABBITMQ_URL", "amqp://primary/")
	t.Setenv("LIVE_SUMMARY_TTL_LIVE", "2h")
	t.Setenv("LIVE_SUMMARY_TTL_FINAL", "1h")
	cfg = LoadLiveFeedConfig()
	if cfg.AMQPURL != "amqp://primary/" {
		t.Errorf("expected RABBITMQ_URL to win, got %q", cfg.AMQPURL)
	}
	if cfg.TTLFinal != 2*time.Hour {
		t.Errorf("final TTL must not be shorter than live TTL, got %v", cfg.TTLFinal)
	}
}

func TestLoadRedisConfig(t *testing.T) {
	t.Setenv("REDIS_ADDR", "cache:6380")
	if got := LoadRedisConfig().Addr; got != "cache:6380" {
		t.Errorf("expected REDIS_ADDR, got %q", got)
	}
	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_PORT", "6379")
	t.Setenv("REDIS_TLS", "1")
	cfg := LoadRedisConfig()
	if cfg.Addr != "redis:6379" || !cfg.TLS {
		t.Errorf("expected host/port with TLS, got %+v", cfg)
	}
}

func TestLoadCacheConfig(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head ,")
	cfg := LoadCacheConfig()
	if len(cfg.Methods) != 2 || !cfg.Methods["GET"] || !cfg.Methods["HEAD"] {
		t.Errorf("unexpected methods: %v", cfg.Methods)
	}
}
