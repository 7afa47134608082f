// Copyright (c) 2025 The chatraghu-tui Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/raghunandan-r/chatraghu-tui/internal/logging"
	"github.com/raghunandan-r/chatraghu-tui/internal/storage"
)

// ResolveID returns the stored thread identifier, creating and storing a new
// one on first use. If the store fails, a fresh identifier is returned and
// used for the rest of the process.
func ResolveID(ctx context.Context, store storage.Store) string {
	log := logging.Ctx(ctx)

	if store != nil {
		id, err := store.Get(ctx, storage.KeyThreadID)
		switch {
		case err == nil && strings.TrimSpace(id) != "":
			return id
		case err != nil && !errors.Is(err, storage.ErrNotFound):
			log.Warn("thread id lookup failed", "err", err)
		}
	}

	id := uuid.NewString()
	if store != nil {
		if err := store.Set(ctx, storage.KeyThreadID, id); err != nil {
			log.Warn("thread id save failed", "err", err)
		}
	}
	log.Debug("new thread id", "id", id)
	return id
}
