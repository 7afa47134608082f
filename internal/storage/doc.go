// Copyright (c) 2025 The chatraghu-tui Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists small string values across runs.
//
// # Key Types
//
//   - Store: key/value interface
//   - SQLiteStore: Store backed by a single SQLite file
//   - MemoryStore: in-process Store, used when no path is configured
//   - Persister: debounced save/load of the scrollback under one key
//
// # Usage
//
// Open the store and restore the previous session:
//
//	store, err := storage.OpenSQLite(path)
//	p := storage.NewPersister(store)
//	lines := p.Load(ctx)
//
// Feed every published snapshot to the persister:
//
//	p.Observe(snap)
//
// # Storage Location
//
// The default database lives at ~/.chatraghu/state.db.
package storage
