package types

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// API tier
	APIPort         uint `envconfig:"API_PORT" default:"8001"`
	ReadTimeoutSec  uint `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`

	// Bearer token signing
	TokenSecret string `envconfig:"TOKEN_SECRET"`
	TokenTTLMin uint   `envconfig:"TOKEN_TTL_MIN" default:"1440"` // 24h

	// Web tier
	WebPort         uint   `envconfig:"WEB_PORT" default:"8080"`
	APIBaseURL      string `envconfig:"API_BASE_URL" default:"http://127.0.0.1:8001"`
	PollIntervalSec uint   `envconfig:"POLL_INTERVAL_SEC" default:"10"`

	// Session cookies, 24h to match the token TTL
	CookieMaxAgeSec int `envconfig:"COOKIE_MAX_AGE_SEC" default:"86400"`

	// Cookie encryption keys (base64 encoded)
	// openssl rand -base64 32
	// to generate values
	CookieHashKey  string `envconfig:"COOKIE_HASH_KEY"`  // 32 or 64 bytes
	CookieBlockKey string `envconfig:"COOKIE_BLOCK_KEY"` // 16, 24, or 32 bytes

	// Beneficiary photo storage
	PhotoBucket string `envconfig:"PHOTO_BUCKET"`
	PhotoRegion string `envconfig:"PHOTO_REGION" default:"eu-west-3"`
}
