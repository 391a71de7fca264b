package config

import "time"

// LiveFeedConfig controls how score updates leave the process after each
// scoring operation.
type LiveFeedConfig struct {
	Enabled bool // master switch for Redis summary, stream and RabbitMQ events

	StreamKey    string        // Redis stream receiving one entry per update
	StreamMaxLen int64         // approximate cap on stream length
	TTLLive      time.Duration // summary key TTL while a match is live or paused
	TTLFinal     time.Duration // summary key TTL once a match is completed

	AMQPURL string // RabbitMQ connection URL; empty disables the queue
	Queue   string // durable queue for scoring events
	LogDir  string // directory where the consumer appends scoring.log

	WebSocket bool // serve the /v1/live feed
}

// LoadLiveFeedConfig reads the live feed settings.  RABBITMQ_URL wins over
// AMQP_URL when both are present.
func LoadLiveFeedConfig() LiveFeedConfig {
	url := envStr("RABBITMQ_URL", "")
	if url == "" {
		url = envStr("AMQP_URL", "")
	}
	cfg := LiveFeedConfig{
		Enabled:      envBool("LIVE_FEED_ENABLED", true),
		StreamKey:    envStr("LIVE_STREAM_KEY", "matches.updates"),
		StreamMaxLen: int64(envInt("LIVE_STREAM_MAXLEN", 10000)),
		TTLLive:      envDur("LIVE_SUMMARY_TTL_LIVE", 6*time.Hour),
		TTLFinal:     envDur("LIVE_SUMMARY_TTL_FINAL", 72*time.Hour),
		AMQPURL:      url,
		Queue:        envStr("SCORING_QUEUE", "scoring.events"),
		LogDir:       envStr("SCORING_LOG_DIR", "logs"),
		WebSocket:    envBool("LIVE_WS_ENABLED", true),
	}
	if cfg.TTLLive <= 0 {
		cfg.TTLLive = 6 * time.Hour
	}
	if cfg.TTLFinal < cfg.TTLLive {
		cfg.TTLFinal = cfg.TTLLive
	}
	return cfg
}
