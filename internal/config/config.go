// Package config loads and saves hypr-layoutd's runtime configuration: the
// debounce window, cache TTLs, stage retry timing, and socket path
// overrides, all centralised in one struct so timing constants never
// get hardcoded at their call sites. Loading/saving uses YAML with an
// atomic rename-based write and falls back to defaults on a missing file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"
)

const maxConfigFileBytes int64 = 1 << 20 // 1MB

// Config is hypr-layoutd's runtime configuration.
type Config struct {
	// ControlSocketPath is the controller's own Unix-socket path.
	ControlSocketPath string `yaml:"control_socket_path" json:"control_socket_path"`

	// StageDebounce is the minimum spacing between processed
	// openwindow/closewindow events in the stage controller. Source
	// material observed values between 1ms and 100ms; 100ms is the
	// default here.
	StageDebounce time.Duration `yaml:"stage_debounce" json:"stage_debounce"`

	// CacheTTL is the cache's default TTL for clients/monitors query
	// results.
	CacheTTL time.Duration `yaml:"cache_ttl" json:"cache_ttl"`

	// StageRetryAttempts/StageRetrySpacing govern the retry when a
	// position ledger fails to grow after applying a stage layout.
	StageRetryAttempts int           `yaml:"stage_retry_attempts" json:"stage_retry_attempts"`
	StageRetrySpacing  time.Duration `yaml:"stage_retry_spacing" json:"stage_retry_spacing"`

	// RecentFocusStackSize is loaded and saved but not read by the daemon:
	// the `toggle` strategy's recent-focus history is fixed at 20 entries
	// (recentFocusStackSize in internal/control).
	RecentFocusStackSize int `yaml:"recent_focus_stack_size" json:"recent_focus_stack_size"`

	// NotifyTimeoutMS is the default notification timeout.
	NotifyTimeoutMS int `yaml:"notify_timeout_ms" json:"notify_timeout_ms"`

	// NeighborThresholdPx is the pixel tolerance used by neighbor
	// detection, exposed here so it can be tuned without a rebuild.
	NeighborThresholdPx int `yaml:"neighbor_threshold_px" json:"neighbor_threshold_px"`

	// StageGroupSize is the max windows per stage-manager group.
	StageGroupSize int `yaml:"stage_group_size" json:"stage_group_size"`

	// NotifySuppressWindow bounds how often the same logging component
	// (the bracketed tag at the start of a log message, e.g.
	// "[stagectl]") can raise a desktop notification. Without it, a
	// background worker retrying through internal/supervise's backoff
	// would pop one notification per attempt.
	NotifySuppressWindow time.Duration `yaml:"notify_suppress_window" json:"notify_suppress_window"`
}

// DefaultConfig returns hypr-layoutd's built-in defaults.
func DefaultConfig() Config {
	return Config{
		ControlSocketPath:    "/tmp/hyprland_controller.sock",
		StageDebounce:        100 * time.Millisecond,
		CacheTTL:             1 * time.Second,
		StageRetryAttempts:   5,
		StageRetrySpacing:    1 * time.Second,
		RecentFocusStackSize: 20,
		NotifyTimeoutMS:      2000,
		NeighborThresholdPx:  50,
		StageGroupSize:       10,
		NotifySuppressWindow: 30 * time.Second,
	}
}

// DefaultPath resolves the config file path under XDG_CONFIG_HOME, falling
// back to ~/.config, and then os.TempDir() if the home directory cannot be
// resolved.
func DefaultPath() string {
	base := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME"))
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			base = os.TempDir()
		} else {
			base = filepath.Join(home, ".config")
		}
	}
	return filepath.Join(base, "hypr-layoutd", "config.yaml")
}

// Load reads the config file at path. If the file does not exist, defaults
// are returned without error. Zero-value fields after parsing are filled
// from DefaultConfig so a partial user file only overrides what it sets.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, errors.New("config path required")
	}

	raw, err := readLimitedFile(path, maxConfigFileBytes)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if len(raw) == 0 {
		return cfg, nil
	}

	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parse config %s: %w", path, err)
	}
	applyZeroDefaults(&cfg)
	return cfg, nil
}

// applyZeroDefaults fills any zero-valued field left after YAML unmarshal
// with its built-in default, so a sparse user config.yaml is valid.
func applyZeroDefaults(cfg *Config) {
	d := DefaultConfig()
	if cfg.ControlSocketPath == "" {
		cfg.ControlSocketPath = d.ControlSocketPath
	}
	if cfg.StageDebounce <= 0 {
		cfg.StageDebounce = d.StageDebounce
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = d.CacheTTL
	}
	if cfg.StageRetryAttempts <= 0 {
		cfg.StageRetryAttempts = d.StageRetryAttempts
	}
	if cfg.StageRetrySpacing <= 0 {
		cfg.StageRetrySpacing = d.StageRetrySpacing
	}
	if cfg.RecentFocusStackSize <= 0 {
		cfg.RecentFocusStackSize = d.RecentFocusStackSize
	}
	if cfg.NotifyTimeoutMS <= 0 {
		cfg.NotifyTimeoutMS = d.NotifyTimeoutMS
	}
	if cfg.NeighborThresholdPx <= 0 {
		cfg.NeighborThresholdPx = d.NeighborThresholdPx
	}
	if cfg.StageGroupSize <= 0 {
		cfg.StageGroupSize = d.StageGroupSize
	}
	if cfg.NotifySuppressWindow <= 0 {
		cfg.NotifySuppressWindow = d.NotifySuppressWindow
	}
}

// Save validates cfg, fills defaults, and atomically writes it to path.
func Save(path string, cfg Config) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("config path required")
	}
	applyZeroDefaults(&cfg)

	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("save config: marshal: %w", err)
	}
	return atomicWrite(path, raw)
}

// atomicWrite writes data via temp-file + rename in the same directory,
// guaranteeing readers never observe a partially written config.
func atomicWrite(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err = os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("save config: mkdir: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".config.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("save config: create temp: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpPath)
		}
	}()

	if err = tmpFile.Chmod(0o600); err != nil {
		tmpFile.Close()
		return fmt.Errorf("save config: chmod temp: %w", err)
	}
	if _, err = tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("save config: write: %w", err)
	}
	if err = tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("save config: sync: %w", err)
	}
	if err = tmpFile.Close(); err != nil {
		return fmt.Errorf("save config: close: %w", err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("save config: rename: %w", err)
	}
	return nil
}

func readLimitedFile(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() > limit {
		return nil, fmt.Errorf("config file %s exceeds %d bytes", path, limit)
	}

	buf := make([]byte, info.Size())
	if _, err := f.Read(buf); err != nil && info.Size() > 0 {
		return nil, err
	}
	return buf, nil
}
