package constants

import "time"

const (
	UsernameMinLength  = 1
	UsernameMaxLength  = 16
	PasswordMinLength  = 5
	PasswordMaxLength  = 72
	JWTSecretMinLength = 32

	DefaultMaxRequestSize = 1 << 20

	DBPoolMaxOpenConns    = 25
	DBPoolMinOpenConns    = 5
	DBPoolConnMaxLifetime = time.Hour
	DBPoolConnMaxIdleTime = 30 * time.Minute
	DBPoolHealthCheck     = time.Minute
	DBPoolConnectTimeout  = 5 * time.Second
	DBPoolMaxAttempts     = 10
	DBPoolRetryDelay      = time.Second
	DBPoolMetricsInterval = 30 * time.Second

	ServerReadHeaderTimeout = 10 * time.Second
	ServerReadTimeout       = 30 * time.Second
	ServerWriteTimeout      = 30 * time.Second
	ServerIdleTimeout       = 120 * time.Second

	ShutdownTimeout = 30 * time.Second
	DrainTimeout    = 10 * time.Second

	MojangBaseURL        = "https://api.mojang.com"
	MojangRequestTimeout = 10 * time.Second

	RateLimitRequestsPerSecond = 10
	RateLimitBurst             = 20
	RateLimitCleanupInterval   = 5 * time.Minute

	DefaultHTTPPort       = "8000"
	DefaultRequestTimeout = 10 * time.Second
	DefaultTokenTTL       = 24 * time.Hour
)

type TraceIDKeyType string

const TraceIDKey TraceIDKeyType = "trace_id"
