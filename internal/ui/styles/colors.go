// Copyright (c) 2025 The chatraghu-tui Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling for the chatraghu terminal.
// All colors use Lip Gloss AdaptiveColor for automatic light/dark detection.
package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// ACCENT COLORS
// =============================================================================

// Orange - prompt and prefix label
var Orange = lipgloss.AdaptiveColor{Light: "#AF3A03", Dark: "#FE8019"}

// Aqua - banner and links
var Aqua = lipgloss.AdaptiveColor{Light: "#427B58", Dark: "#8EC07C"}

// Green - online indicator
var Green = lipgloss.AdaptiveColor{Light: "#79740E", Dark: "#B8BB26"}

// Red - errors and the offline indicator
var Red = lipgloss.AdaptiveColor{Light: "#9D0006", Dark: "#FB4934"}

// Yellow - spinner
var Yellow = lipgloss.AdaptiveColor{Light: "#B57614", Dark: "#FABD2F"}

// =============================================================================
// TEXT AND SURFACE COLORS
// =============================================================================

// Foreground - body text
var Foreground = lipgloss.AdaptiveColor{Light: "#3C3836", Dark: "#EBDBB2"}

// Muted - hints, descriptions, placeholder
var Muted = lipgloss.AdaptiveColor{Light: "#7C6F64", Dark: "#A89984"}

// Surface - shortcut chip border
var Surface = lipgloss.AdaptiveColor{Light: "#D5C4A1", Dark: "#3C3836"}
