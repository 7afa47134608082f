// Copyright (c) 2025 The chatraghu-tui Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package scrollback

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"unicode/utf8"
)

// =============================================================================
// SEGMENTS
// =============================================================================

// SegmentKind distinguishes text from the prefix marker.
type SegmentKind uint8

const (
	KindText   SegmentKind = iota // Literal text
	KindPrefix                    // Response label placeholder
)

// prefixType is the persisted discriminator for prefix markers.
const prefixType = "prefix"

// ErrBadSegment is returned when a persisted segment is neither a string nor a
// prefix object.
var ErrBadSegment = errors.New("scrollback: unrecognized segment")

// Segment is one piece of a line: Text(string) or Prefix.
type Segment struct {
	Kind SegmentKind
	Text string
}

// Text returns a text segment.
func Text(s string) Segment {
	return Segment{Kind: KindText, Text: s}
}

// Prefix returns a prefix marker segment.
func Prefix() Segment {
	return Segment{Kind: KindPrefix}
}

// IsPrefix reports whether the segment is the prefix marker.
func (s Segment) IsPrefix() bool {
	return s.Kind == KindPrefix
}

// Len returns the number of characters the segment counts against the budget.
// Prefix markers count as zero.
func (s Segment) Len() int {
	if s.Kind == KindPrefix {
		return 0
	}
	return utf8.RuneCountInString(s.Text)
}

type prefixJSON struct {
	Type string `json:"type"`
}

// MarshalJSON encodes text as a JSON string and the prefix as {"type":"prefix"}.
func (s Segment) MarshalJSON() ([]byte, error) {
	if s.Kind == KindPrefix {
		return json.Marshal(prefixJSON{Type: prefixType})
	}
	return json.Marshal(s.Text)
}

// UnmarshalJSON accepts the two encodings produced by MarshalJSON.
func (s *Segment) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ErrBadSegment
	}

	switch data[0] {
	case '"':
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*s = Text(text)
		return nil
	case '{':
		var obj prefixJSON
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		if obj.Type != prefixType {
			return ErrBadSegment
		}
		*s = Prefix()
		return nil
	}
	return ErrBadSegment
}

// =============================================================================
// LINES
// =============================================================================

// Line is an ordered sequence of segments.
type Line []Segment

// Chars returns the sum of the text segment lengths.
func (l Line) Chars() int {
	n := 0
	for _, seg := range l {
		n += seg.Len()
	}
	return n
}

// HasPrefix reports whether the line contains a prefix marker.
func (l Line) HasPrefix() bool {
	for _, seg := range l {
		if seg.IsPrefix() {
			return true
		}
	}
	return false
}

// Render joins the line's text, substituting label for each prefix marker.
func (l Line) Render(label string) string {
	var sb strings.Builder
	for _, seg := range l {
		if seg.IsPrefix() {
			sb.WriteString(label)
			continue
		}
		sb.WriteString(seg.Text)
	}
	return sb.String()
}

// String returns the line's text with prefix markers omitted.
func (l Line) String() string {
	return l.Render("")
}
