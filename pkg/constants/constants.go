// Package constants defines system-wide constants for the oral risk screening service.
// This package provides type-safe constant definitions used across all modules.
package constants

import "time"

// ================================================================================
// Service Identity
// ================================================================================

const (
	// ServiceName is the name reported to tracing and logging backends
	ServiceName = "oralrisk"

	// EnvPrefix is the prefix for environment variable overrides
	EnvPrefix = "ORALRISK"
)

// ================================================================================
// Risk Labels
// ================================================================================

// RiskLabel is a class emitted by the classifier
type RiskLabel string

const (
	// RiskLow is assigned when at most one risk factor is present
	RiskLow RiskLabel = "low"

	// RiskMedium is assigned when two or three risk factors are present
	RiskMedium RiskLabel = "medium"

	// RiskHigh is assigned when four or more risk factors are present
	RiskHigh RiskLabel = "high"
)

// ================================================================================
// Login Types
// ================================================================================

// LoginType selects the account identifier used for lookup
type LoginType string

const (
	// LoginTypeUsername looks accounts up by username (default)
	LoginTypeUsername LoginType = "username"

	// LoginTypeEmail looks accounts up by email address
	LoginTypeEmail LoginType = "email"

	// LoginTypePhone looks accounts up by phone number
	LoginTypePhone LoginType = "phone"
)

// ParseLoginType maps a form value onto a LoginType, defaulting to username.
func ParseLoginType(s string) LoginType {
	switch LoginType(s) {
	case LoginTypeEmail:
		return LoginTypeEmail
	case LoginTypePhone:
		return LoginTypePhone
	default:
		return LoginTypeUsername
	}
}

// ================================================================================
// Storage Backends
// ================================================================================

// StorageBackend names a persistence implementation
type StorageBackend string

const (
	// StorageMemory keeps everything in process memory
	StorageMemory StorageBackend = "memory"

	// StorageCSV persists to flat CSV files
	StorageCSV StorageBackend = "csv"

	// StorageSQL persists through gorm (sqlite or postgres)
	StorageSQL StorageBackend = "sql"
)

// SessionBackend names a session store implementation
type SessionBackend string

const (
	// SessionMemory keeps sessions in an in-process cache
	SessionMemory SessionBackend = "memory"

	// SessionRedis keeps sessions in redis
	SessionRedis SessionBackend = "redis"
)

// ================================================================================
// HTTP Session / Token Constants
// ================================================================================

const (
	// SessionCookieName is the cookie carrying the opaque session id
	SessionCookieName = "oralrisk_session"

	// DefaultSessionTTL is how long an idle session stays valid
	DefaultSessionTTL = 12 * time.Hour

	// DefaultTokenTTL is the lifetime of API bearer tokens
	DefaultTokenTTL = 1 * time.Hour

	// TokenIssuer is the iss claim for API bearer tokens
	TokenIssuer = "oralrisk"

	// BearerPrefix is the Authorization header scheme
	BearerPrefix = "Bearer "

	// DefaultBcryptCost matches bcrypt.DefaultCost
	DefaultBcryptCost = 10
)

// ================================================================================
// Events
// ================================================================================

const (
	// EventPredictionCreated is emitted after a prediction is stored
	EventPredictionCreated = "prediction.created"
)

// ================================================================================
// Log Level Constants
// ================================================================================

// LogLevel represents the severity level of log messages
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// ================================================================================
// Context Keys
// ================================================================================

// ContextKey represents keys used in context.Context
type ContextKey string

const (
	// ContextKeyRequestID is the key for request ID in context
	ContextKeyRequestID ContextKey = "request_id"

	// ContextKeyTraceID is the key for distributed trace ID in context
	ContextKeyTraceID ContextKey = "trace_id"

	// ContextKeyUsername is the key for the authenticated username
	ContextKeyUsername ContextKey = "username"

	// ContextKeySessionID is the key for the server-side session id
	ContextKeySessionID ContextKey = "session_id"
)
