package schema

import (
	"errors"
	"time"
)

// ServiceConfig defines defaults and limits for the core service.
type ServiceConfig struct {
	// MaxConcurrent caps the number of prompts in flight across all sessions.
	MaxConcurrent int
	// ConflictWindow bounds how far apart two file touches may be and still
	// count as overlapping work.
	ConflictWindow time.Duration
	// DefaultProvider is bound to sessions created without one.
	DefaultProvider ProviderID
	// SessionNameMax truncates display names; SessionNameSuffix marks the cut.
	SessionNameMax    int
	SessionNameSuffix string
	// HistoryMaxEntries bounds the per-session prompt recall ring.
	HistoryMaxEntries int
}

const (
	// DefaultMaxConcurrent is the default global in-flight cap.
	DefaultMaxConcurrent = 3
	// DefaultConflictWindow is the default overlap window for file touches.
	DefaultConflictWindow = 30 * time.Second
	// DefaultHistoryMaxEntries is the default prompt recall depth.
	DefaultHistoryMaxEntries = 200
	// DefaultSessionNameMax bounds display names unless configured.
	DefaultSessionNameMax = 24
	// DefaultSessionNameSuffix marks truncated display names.
	DefaultSessionNameSuffix = "$"
)

// NormalizeServiceConfig applies defaults and validates the config.
func NormalizeServiceConfig(cfg ServiceConfig) (ServiceConfig, error) {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultMaxConcurrent
	}
	if cfg.ConflictWindow <= 0 {
		cfg.ConflictWindow = DefaultConflictWindow
	}
	if cfg.SessionNameMax <= 0 {
		cfg.SessionNameMax = DefaultSessionNameMax
	}
	if cfg.SessionNameSuffix == "" {
		cfg.SessionNameSuffix = DefaultSessionNameSuffix
	}
	if cfg.HistoryMaxEntries <= 0 {
		cfg.HistoryMaxEntries = DefaultHistoryMaxEntries
	}
	if cfg.SessionNameMax <= len(cfg.SessionNameSuffix) {
		return ServiceConfig{}, errors.New("session name max must exceed suffix length")
	}
	return cfg, nil
}
