// Copyright (c) 2025 The chatraghu-tui Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and saves chatraghu settings.
//
// # Key Types
//
//   - Config: all settings, one struct per TOML table
//   - RemoteConfig: chat endpoint, health probe, timeouts
//   - UIConfig: presentation options
//
// # Configuration Precedence
//
// Settings are resolved from (highest first):
//   - Command-line flags (applied by the cli package)
//   - Environment variables (CHATRAGHU_*)
//   - ~/.chatraghu/config.toml
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	timeout := cfg.Remote.Timeout()
//
// Reload on edit:
//
//	err := config.Watch(ctx, path, func(cfg *config.Config) { ... })
package config
