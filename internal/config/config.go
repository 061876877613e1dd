package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"
	defaultPort       = 8080
	defaultEnv        = "development"
	defaultOrigin     = "https://solar-nova.online"

	defaultOnlineTTLSeconds         = 60
	defaultActivityWindowSeconds    = 300
	defaultBroadcastIntervalSeconds = 2
)

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int                   `yaml:"port"`
	Env            string                `yaml:"env"` // "development" | "production"
	AllowedOrigins []string              `yaml:"allowed_origins"`
	Presence       PresenceRuntimeConfig `yaml:"presence"`
}

// PresenceRuntimeConfig tunes the presence engine. All values are seconds.
type PresenceRuntimeConfig struct {
	OnlineTTL         int `yaml:"online_ttl"`
	ActivityWindow    int `yaml:"activity_window"`
	BroadcastInterval int `yaml:"broadcast_interval"`
	// SweepAfter drops records whose last_seen is older than this many
	// seconds. 0 disables the sweep and records stay in memory forever.
	SweepAfter int `yaml:"sweep_after"`
}

type rawAppConfig struct {
	Port               int               `yaml:"port"`
	Env                string            `yaml:"env"`
	NodeEnv            string            `yaml:"node_env"`
	AllowedOrigins     []string          `yaml:"allowed_origins"`
	CORSAllowedOrigins []string          `yaml:"cors_allowed_origins"`
	CORSAllowOrigin    string            `yaml:"cors_allow_origin"`
	Presence           rawPresenceConfig `yaml:"presence"`
}

type rawPresenceConfig struct {
	OnlineTTL            *int `yaml:"online_ttl"`
	LastSeenTTLSeconds   *int `yaml:"last_seen_ttl_seconds"`
	ActivityWindow       *int `yaml:"activity_window"`
	IdleThresholdSeconds *int `yaml:"idle_threshold_seconds"`
	BroadcastInterval    *int `yaml:"broadcast_interval"`
	SSEIntervalSeconds   *int `yaml:"sse_broadcast_interval_seconds"`
	SweepAfter           *int `yaml:"sweep_after"`
}

// Load reads the YAML config at path. A missing file is not an error: the
// service is deployable with defaults only, matching the original
// env-driven deployment.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	cfg := defaultAppConfig()

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	raw := rawAppConfig{}
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse config file %q: %w", path, err)
	}

	applyRawAppConfig(&cfg, raw)
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d in %q, expected 1-65535", cfg.Port, path)
	}
	if cfg.Presence.OnlineTTL < 1 {
		return nil, fmt.Errorf("invalid presence.online_ttl %d in %q, expected >= 1", cfg.Presence.OnlineTTL, path)
	}
	if cfg.Presence.ActivityWindow < 1 {
		return nil, fmt.Errorf("invalid presence.activity_window %d in %q, expected >= 1", cfg.Presence.ActivityWindow, path)
	}
	if cfg.Presence.BroadcastInterval < 1 {
		return nil, fmt.Errorf("invalid presence.broadcast_interval %d in %q, expected >= 1", cfg.Presence.BroadcastInterval, path)
	}
	if cfg.Presence.SweepAfter < 0 {
		return nil, fmt.Errorf("invalid presence.sweep_after %d in %q, expected >= 0", cfg.Presence.SweepAfter, path)
	}
	if cfg.Presence.SweepAfter > 0 && cfg.Presence.SweepAfter < cfg.Presence.OnlineTTL {
		return nil, fmt.Errorf("presence.sweep_after %d in %q must not be below presence.online_ttl %d",
			cfg.Presence.SweepAfter, path, cfg.Presence.OnlineTTL)
	}

	return &cfg, nil
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		Port:           defaultPort,
		Env:            defaultEnv,
		AllowedOrigins: []string{defaultOrigin},
		Presence: PresenceRuntimeConfig{
			OnlineTTL:         defaultOnlineTTLSeconds,
			ActivityWindow:    defaultActivityWindowSeconds,
			BroadcastInterval: defaultBroadcastIntervalSeconds,
		},
	}
}

func applyRawAppConfig(cfg *AppConfig, raw rawAppConfig) {
	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	if v := strings.TrimSpace(raw.Env); v != "" {
		cfg.Env = v
	}
	if v := strings.TrimSpace(raw.NodeEnv); v != "" {
		cfg.Env = v
	}

	switch {
	case raw.AllowedOrigins != nil:
		cfg.AllowedOrigins = normalizeOrigins(raw.AllowedOrigins)
	case raw.CORSAllowedOrigins != nil:
		cfg.AllowedOrigins = normalizeOrigins(raw.CORSAllowedOrigins)
	case strings.TrimSpace(raw.CORSAllowOrigin) != "":
		cfg.AllowedOrigins = normalizeOrigins([]string{raw.CORSAllowOrigin})
	}

	p := &cfg.Presence
	if raw.Presence.OnlineTTL != nil {
		p.OnlineTTL = *raw.Presence.OnlineTTL
	}
	if raw.Presence.LastSeenTTLSeconds != nil {
		p.OnlineTTL = *raw.Presence.LastSeenTTLSeconds
	}
	if raw.Presence.ActivityWindow != nil {
		p.ActivityWindow = *raw.Presence.ActivityWindow
	}
	if raw.Presence.IdleThresholdSeconds != nil {
		p.ActivityWindow = *raw.Presence.IdleThresholdSeconds
	}
	if raw.Presence.BroadcastInterval != nil {
		p.BroadcastInterval = *raw.Presence.BroadcastInterval
	}
	if raw.Presence.SSEIntervalSeconds != nil {
		p.BroadcastInterval = *raw.Presence.SSEIntervalSeconds
	}
	if raw.Presence.SweepAfter != nil {
		p.SweepAfter = *raw.Presence.SweepAfter
	}

	cfg.Env = normalizeEnv(cfg.Env)
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(env string) string {
	trimmed := strings.ToLower(strings.TrimSpace(env))
	if trimmed == "" {
		return defaultEnv
	}
	return trimmed
}

func (c *AppConfig) IsDev() bool {
	return strings.EqualFold(c.Env, defaultEnv)
}
