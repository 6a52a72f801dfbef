package constants

import "time"

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	NotifyTimeout      = 15 * time.Second
	RequestTimeout     = 30 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	// SweepWorkers bounds per-user concurrency inside one sweep so the
	// stats provider is not hammered by a large roster.
	SweepWorkers = 4
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	ChartWidth  = 800
	ChartHeight = 400
)
