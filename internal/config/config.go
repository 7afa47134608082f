// Copyright (c) 2025 The chatraghu-tui Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/raghunandan-r/chatraghu-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete chatraghu configuration.
type Config struct {
	Remote RemoteConfig `toml:"remote"`
	Store  StoreConfig  `toml:"store"`
	UI     UIConfig     `toml:"ui"`
	Log    LogConfig    `toml:"log"`
}

// RemoteConfig controls the AI chat backend.
type RemoteConfig struct {
	// Enabled is the feature flag. When false every unknown input gets the
	// "command not found" reply.
	Enabled bool `toml:"enabled"`

	// Endpoint receives the chat POST. Relative values resolve against
	// ui.site_url.
	Endpoint string `toml:"endpoint"`

	// HealthURL is probed to decide reachability. Empty means always
	// reachable.
	HealthURL string `toml:"health_url"`

	TimeoutSecs        int `toml:"timeout_secs"`
	HealthIntervalSecs int `toml:"health_interval_secs"`
}

// StoreConfig controls persistence.
type StoreConfig struct {
	// Path of the SQLite database. "memory" keeps state in-process only.
	Path string `toml:"path"`
}

// UIConfig controls presentation.
type UIConfig struct {
	PrefixLabel string `toml:"prefix_label"`
	SiteURL     string `toml:"site_url"`
	Plain       bool   `toml:"plain"`
	FrameMS     int    `toml:"frame_ms"`
}

// LogConfig controls diagnostics. Logs never go to the terminal the UI
// draws on.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// MemoryStore is the store.path value for an in-process store.
const MemoryStore = "memory"

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Remote: RemoteConfig{
			Enabled:            true,
			Endpoint:           "/api/chat?protocol=data",
			TimeoutSecs:        15,
			HealthIntervalSecs: 30,
		},
		UI: UIConfig{
			PrefixLabel: "›",
			SiteURL:     "http://localhost:3000",
			FrameMS:     16,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Timeout returns the stream idle deadline.
func (r RemoteConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSecs) * time.Second
}

// HealthInterval returns the polling period.
func (r RemoteConfig) HealthInterval() time.Duration {
	return time.Duration(r.HealthIntervalSecs) * time.Second
}

// FrameInterval returns the render coalescing window.
func (u UIConfig) FrameInterval() time.Duration {
	return time.Duration(u.FrameMS) * time.Millisecond
}

// EndpointURL resolves the endpoint against the site URL.
func (c *Config) EndpointURL() (string, error) {
	return c.resolve(c.Remote.Endpoint)
}

// HealthCheckURL resolves the health URL against the site URL. Empty stays
// empty.
func (c *Config) HealthCheckURL() (string, error) {
	if c.Remote.HealthURL == "" {
		return "", nil
	}
	return c.resolve(c.Remote.HealthURL)
}

func (c *Config) resolve(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.IsAbs() {
		return u.String(), nil
	}
	base, err := url.Parse(c.UI.SiteURL)
	if err != nil || !base.IsAbs() {
		return "", fmt.Errorf("cannot resolve %q without an absolute ui.site_url", raw)
	}
	return base.ResolveReference(u).String(), nil
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// Dir returns the chatraghu configuration directory.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".chatraghu"), nil
}

// Path returns the default config file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DefaultStorePath returns the default database path.
func DefaultStorePath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "state.db"), nil
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load reads the default config file. A missing file yields the defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		return cfg, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads path over the defaults. A missing file is not an error.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to the default config file.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveTo(cfg, path)
}

// SaveTo writes cfg to path atomically with owner-only permissions.
func SaveTo(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# chatraghu configuration file\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError is one invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors collects every invalid field.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var validLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "warning": true, "error": true,
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg})
	}

	if c.Remote.TimeoutSecs <= 0 {
		add("remote.timeout_secs", "must be positive")
	}
	if c.Remote.HealthIntervalSecs < 0 {
		add("remote.health_interval_secs", "must not be negative")
	}
	if c.Remote.Enabled {
		if c.Remote.Endpoint == "" {
			add("remote.endpoint", "required when remote.enabled is true")
		} else if u, err := c.EndpointURL(); err != nil {
			add("remote.endpoint", err.Error())
		} else if !isHTTP(u) {
			add("remote.endpoint", "must be an http or https URL")
		}
	}
	if u, err := c.HealthCheckURL(); err != nil {
		add("remote.health_url", err.Error())
	} else if u != "" && !isHTTP(u) {
		add("remote.health_url", "must be an http or https URL")
	}
	if c.UI.SiteURL != "" {
		if u, err := url.Parse(c.UI.SiteURL); err != nil || !u.IsAbs() {
			add("ui.site_url", "must be an absolute URL")
		}
	}
	if c.UI.FrameMS < 0 {
		add("ui.frame_ms", "must not be negative")
	}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		add("log.level", fmt.Sprintf("unknown level %q", c.Log.Level))
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func isHTTP(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// SetDefaults fills empty fields that have no meaningful zero value.
func (c *Config) SetDefaults() {
	d := Default()
	if c.Remote.TimeoutSecs == 0 {
		c.Remote.TimeoutSecs = d.Remote.TimeoutSecs
	}
	if c.UI.PrefixLabel == "" {
		c.UI.PrefixLabel = d.UI.PrefixLabel
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies CHATRAGHU_* variables:
//   - CHATRAGHU_AI: remote.enabled (1/true/yes)
//   - CHATRAGHU_ENDPOINT: remote.endpoint
//   - CHATRAGHU_HEALTH_URL: remote.health_url
//   - CHATRAGHU_TIMEOUT: remote.timeout_secs
//   - CHATRAGHU_STORE: store.path
//   - CHATRAGHU_SITE_URL: ui.site_url
//   - CHATRAGHU_PLAIN: ui.plain
//   - CHATRAGHU_LOG_LEVEL: log.level
//   - CHATRAGHU_LOG_FILE: log.file
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("CHATRAGHU_AI"); v != "" {
		c.Remote.Enabled = parseBool(v)
	}
	if v := os.Getenv("CHATRAGHU_ENDPOINT"); v != "" {
		c.Remote.Endpoint = v
	}
	if v := os.Getenv("CHATRAGHU_HEALTH_URL"); v != "" {
		c.Remote.HealthURL = v
	}
	if v := os.Getenv("CHATRAGHU_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Remote.TimeoutSecs = n
		}
	}
	if v := os.Getenv("CHATRAGHU_STORE"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("CHATRAGHU_SITE_URL"); v != "" {
		c.UI.SiteURL = v
	}
	if v := os.Getenv("CHATRAGHU_PLAIN"); v != "" {
		c.UI.Plain = parseBool(v)
	}
	if v := os.Getenv("CHATRAGHU_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("CHATRAGHU_LOG_FILE"); v != "" {
		c.Log.File = v
	}
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get returns the value at a dotted TOML key such as "remote.endpoint".
func (c *Config) Get(key string) (any, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set assigns a value at a dotted TOML key. String values are converted to
// the field's type.
func (c *Config) Set(key string, value any) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	return setFieldValue(field, value)
}

// Keys returns every dotted key in declaration order.
func Keys() []string {
	var keys []string
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		section := t.Field(i)
		for j := 0; j < section.Type.NumField(); j++ {
			keys = append(keys, tomlName(section)+"."+tomlName(section.Type.Field(j)))
		}
	}
	return keys
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return reflect.Value{}, fmt.Errorf("invalid key %q: want section.name", key)
	}
	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		next, ok := fieldByTOML(v, part)
		if !ok {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		v = next
	}
	return v, nil
}

func fieldByTOML(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if strings.EqualFold(tomlName(t.Field(i)), name) {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func tomlName(f reflect.StructField) string {
	if tag, _, _ := strings.Cut(f.Tag.Get("toml"), ","); tag != "" {
		return tag
	}
	return strings.ToLower(f.Name)
}

func setFieldValue(field reflect.Value, value any) error {
	if s, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(s)
			return nil
		case reflect.Int:
			n, err := strconv.Atoi(strings.TrimSpace(s))
			if err != nil {
				return fmt.Errorf("invalid integer value: %w", err)
			}
			field.SetInt(int64(n))
			return nil
		case reflect.Bool:
			field.SetBool(parseBool(s))
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return errors.New("cannot assign nil")
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) && val.Kind() != reflect.String {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// Clone returns a copy. Config holds only value fields.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the process-wide configuration, loading it on first use.
// Load failures fall back to the defaults.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil || cfg == nil {
			cfg = Default()
		}
		globalConfigMu.Lock()
		if globalConfig == nil {
			globalConfig = cfg
		}
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal replaces the process-wide configuration.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting clears the process-wide configuration.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
