// Copyright (c) 2025 The chatraghu-tui Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// clearEnv blanks every override so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CHATRAGHU_AI", "CHATRAGHU_ENDPOINT", "CHATRAGHU_HEALTH_URL", "CHATRAGHU_TIMEOUT",
		"CHATRAGHU_STORE", "CHATRAGHU_SITE_URL", "CHATRAGHU_PLAIN",
		"CHATRAGHU_LOG_LEVEL", "CHATRAGHU_LOG_FILE",
	} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
}

func TestConfig_Default(t *testing.T) {
	cfg := Default()

	if !cfg.Remote.Enabled {
		t.Error("remote should be enabled by default")
	}
	if cfg.Remote.Timeout() != 15*time.Second {
		t.Errorf("Timeout = %v, want 15s", cfg.Remote.Timeout())
	}
	if cfg.UI.FrameInterval() != 16*time.Millisecond {
		t.Errorf("FrameInterval = %v, want 16ms", cfg.UI.FrameInterval())
	}
	if cfg.UI.PrefixLabel != "›" {
		t.Errorf("PrefixLabel = %q", cfg.UI.PrefixLabel)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}

	got, err := cfg.EndpointURL()
	if err != nil {
		t.Fatal(err)
	}
	if got != "http://localhost:3000/api/chat?protocol=data" {
		t.Errorf("EndpointURL = %q", got)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if *cfg != *Default() {
		t.Errorf("got %+v, want defaults", cfg)
	}
}

func TestLoadFromPath_OverlaysFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `
[remote]
enabled = false
endpoint = "https://api.example.com/chat"
timeout_secs = 30

[ui]
plain = true
`)

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Remote.Enabled {
		t.Error("remote.enabled should be false")
	}
	if cfg.Remote.Endpoint != "https://api.example.com/chat" {
		t.Errorf("endpoint = %q", cfg.Remote.Endpoint)
	}
	if cfg.Remote.TimeoutSecs != 30 {
		t.Errorf("timeout = %d", cfg.Remote.TimeoutSecs)
	}
	if !cfg.UI.Plain {
		t.Error("ui.plain should be true")
	}
	// Untouched keys keep their defaults.
	if cfg.UI.PrefixLabel != "›" || cfg.Log.Level != "info" {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadFromPath_BadTOML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, "[remote\nenabled = ")
	if _, err := LoadFromPath(path); err == nil {
		t.Error("expected decode error")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("CHATRAGHU_AI", "0")
	t.Setenv("CHATRAGHU_ENDPOINT", "https://x.dev/chat")
	t.Setenv("CHATRAGHU_TIMEOUT", "5")
	t.Setenv("CHATRAGHU_STORE", MemoryStore)
	t.Setenv("CHATRAGHU_PLAIN", "yes")
	t.Setenv("CHATRAGHU_LOG_LEVEL", "debug")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Remote.Enabled {
		t.Error("CHATRAGHU_AI=0 should disable remote")
	}
	if cfg.Remote.Endpoint != "https://x.dev/chat" {
		t.Errorf("endpoint = %q", cfg.Remote.Endpoint)
	}
	if cfg.Remote.TimeoutSecs != 5 {
		t.Errorf("timeout = %d", cfg.Remote.TimeoutSecs)
	}
	if cfg.Store.Path != MemoryStore {
		t.Errorf("store = %q", cfg.Store.Path)
	}
	if !cfg.UI.Plain {
		t.Error("plain should be set")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("level = %q", cfg.Log.Level)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero timeout", func(c *Config) { c.Remote.TimeoutSecs = 0 }, "remote.timeout_secs"},
		{"negative interval", func(c *Config) { c.Remote.HealthIntervalSecs = -1 }, "remote.health_interval_secs"},
		{"missing endpoint", func(c *Config) { c.Remote.Endpoint = "" }, "remote.endpoint"},
		{"ftp endpoint", func(c *Config) { c.Remote.Endpoint = "ftp://x/chat" }, "remote.endpoint"},
		{"relative without site", func(c *Config) { c.UI.SiteURL = "" }, "remote.endpoint"},
		{"bad health url", func(c *Config) { c.Remote.HealthURL = "ws://x/health" }, "remote.health_url"},
		{"relative site", func(c *Config) { c.UI.SiteURL = "example.com" }, "ui.site_url"},
		{"negative frame", func(c *Config) { c.UI.FrameMS = -5 }, "ui.frame_ms"},
		{"unknown level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verrs ValidateErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("Validate() = %v, want ValidateErrors", err)
			}
			found := false
			for _, e := range verrs {
				if e.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("no error for %s in %v", tt.field, verrs)
			}
		})
	}
}

func TestConfig_DisabledRemoteSkipsEndpointCheck(t *testing.T) {
	cfg := Default()
	cfg.Remote.Enabled = false
	cfg.Remote.Endpoint = ""
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestSaveTo_RoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Remote.HealthURL = "/api/health"
	cfg.UI.SiteURL = "https://raghu.example.com"
	if err := SaveTo(cfg, path); err != nil {
		t.Fatal(err)
	}

	got, err := LoadFromPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if *got != *cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, cfg)
	}

	health, err := got.HealthCheckURL()
	if err != nil || health != "https://raghu.example.com/api/health" {
		t.Errorf("HealthCheckURL = %q, %v", health, err)
	}
}

func TestConfig_GetSet(t *testing.T) {
	cfg := Default()

	if err := cfg.Set("remote.timeout_secs", "42"); err != nil {
		t.Fatal(err)
	}
	if err := cfg.Set("ui.plain", "true"); err != nil {
		t.Fatal(err)
	}
	if err := cfg.Set("log.level", "warn"); err != nil {
		t.Fatal(err)
	}
	if err := cfg.Set("ui.frame_ms", 8); err != nil {
		t.Fatal(err)
	}

	v, err := cfg.Get("remote.timeout_secs")
	if err != nil || v != 42 {
		t.Errorf("Get timeout = %v, %v", v, err)
	}
	if !cfg.UI.Plain || cfg.Log.Level != "warn" || cfg.UI.FrameMS != 8 {
		t.Errorf("Set did not apply: %+v", cfg)
	}

	for _, key := range []string{"remote.nope", "bogus.enabled", "remote", "a.b.c"} {
		if _, err := cfg.Get(key); err == nil {
			t.Errorf("Get(%q) should fail", key)
		}
	}
	if err := cfg.Set("remote.timeout_secs", "soon"); err == nil {
		t.Error("Set with bad int should fail")
	}
}

func TestKeys(t *testing.T) {
	keys := Keys()
	want := map[string]bool{"remote.enabled": true, "store.path": true, "ui.frame_ms": true, "log.file": true}
	for _, k := range keys {
		delete(want, k)
		if _, err := Default().Get(k); err != nil {
			t.Errorf("key %q not gettable: %v", k, err)
		}
	}
	if len(want) > 0 {
		t.Errorf("missing keys: %v", want)
	}
}

// =============================================================================
// GLOBAL
// =============================================================================

func TestConfig_ConcurrentAccess(t *testing.T) {
	ResetGlobalForTesting()
	defer ResetGlobalForTesting()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetGlobal(Default())
		}()
		go func() {
			defer wg.Done()
			if Global() == nil {
				t.Error("Global() returned nil")
			}
		}()
	}
	wg.Wait()
}

func TestConfig_SetGlobalOverwrites(t *testing.T) {
	ResetGlobalForTesting()
	defer ResetGlobalForTesting()

	cfg := Default()
	cfg.UI.PrefixLabel = "$"
	SetGlobal(cfg)
	if Global().UI.PrefixLabel != "$" {
		t.Errorf("Global().UI.PrefixLabel = %q", Global().UI.PrefixLabel)
	}
}

// =============================================================================
// WATCH
// =============================================================================

func TestWatch_ReloadsOnWrite(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, "[remote]\nenabled = true\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *Config, 4)
	if err := Watch(ctx, path, func(c *Config) { got <- c }); err != nil {
		t.Fatal(err)
	}

	writeFile(t, path, "[remote]\nenabled = false\n")

	select {
	case cfg := <-got:
		if cfg.Remote.Enabled {
			t.Error("reloaded config should have remote disabled")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no reload observed")
	}
}

func TestWatch_SkipsInvalidFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *Config, 4)
	if err := Watch(ctx, path, func(c *Config) { got <- c }); err != nil {
		t.Fatal(err)
	}

	writeFile(t, path, "[remote]\ntimeout_secs = -1\n")
	select {
	case cfg := <-got:
		t.Fatalf("invalid config delivered: %+v", cfg)
	case <-time.After(500 * time.Millisecond):
	}

	writeFile(t, path, "[ui]\nplain = true\n")
	select {
	case cfg := <-got:
		if !cfg.UI.Plain {
			t.Error("expected plain = true")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no reload observed")
	}
}
