package config

import "time"

const (
	// SessionSweepInterval defines how often idle page sessions are collected
	SessionSweepInterval = time.Minute

	// MemoryReportInterval defines how often runtime memory stats are logged
	MemoryReportInterval = 30 * time.Second

	// CacheOpTimeout bounds a single Redis round trip
	CacheOpTimeout = 2 * time.Second

	// StoreOpTimeout bounds a single Postgres query
	StoreOpTimeout = 5 * time.Second

	// ActivationTimeout bounds membership, selection and metadata resolution
	// for one entity activation
	ActivationTimeout = 15 * time.Second
)
