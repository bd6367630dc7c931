package constants

import "time"

const (
	DefaultTimeout        = 30 * time.Second
	DefaultRequestTimeout = 45 * time.Second

	// Calendar stage budgets.
	AuthInitTimeout     = 5 * time.Second
	AuthTimeout         = 8 * time.Second
	AvailabilityTimeout = 10 * time.Second
	CreationTimeout     = 15 * time.Second

	RateLimitStoreTimeout = 150 * time.Millisecond
	RateLimitMaxRequests  = 50
	RateLimitWindow       = time.Minute

	DatabaseSSLMode         = "disable"
	DatabaseMaxOpenConns    = 10
	DatabaseMaxIdleConns    = 5
	DatabaseConnMaxLifetime = 30 // minutes
)

const (
	RedisKeyRateLimit = "ratelimit:booking"
)

const (
	HeaderRequestID          = "X-Request-ID"
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRetryAfter         = "Retry-After"
	HeaderAdminKey           = "X-Admin-Key"
	ContextIdentity          = "identity"
)

const (
	ProviderGoogle = "google"
	ProviderCalDAV = "caldav"
	ProviderMemory = "memory"
)

const (
	TaskBookingRecord = "booking:record"
	QueueDefault      = "default"
)
