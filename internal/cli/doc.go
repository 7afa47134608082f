// Copyright (c) 2025 The chatraghu-tui Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the chatraghu command line.
//
// Commands:
//
//	chatraghu                  interactive session (full screen or plain)
//	chatraghu ask <message>    run one input and print the reply
//	chatraghu config ...       inspect or edit ~/.chatraghu/config.toml
//	chatraghu version          print build information
//
// Global flags override the config file for a single run:
//
//	--config PATH     config file to read
//	--endpoint URL    chat endpoint
//	--no-ai           commands only, never call the backend
//	--plain           line-oriented UI even on a terminal
//	--store PATH      state database, or "memory"
//	--log-level LVL   debug, info, warn or error
package cli
