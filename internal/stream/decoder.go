// Copyright (c) 2025 The chatraghu-tui Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"bytes"
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	// dataField is the record token carrying a payload.
	dataField = "data:"

	// doneMarker ends the stream cleanly.
	doneMarker = "[DONE]"
)

// =============================================================================
// LINE DECODER
// =============================================================================

// lineDecoder turns raw body chunks into complete lines. UTF-8 decoding is
// stateful, so a multi-byte character split across chunks is reassembled;
// invalid bytes become U+FFFD.
type lineDecoder struct {
	t    transform.Transformer
	src  []byte // bytes not yet decoded
	text []byte // decoded bytes not yet split into lines
	dst  []byte
}

func newLineDecoder() *lineDecoder {
	return &lineDecoder{
		t:   unicode.UTF8.NewDecoder(),
		dst: make([]byte, 4096),
	}
}

// Write decodes p and returns every line completed by it, without the
// terminating newline.
func (d *lineDecoder) Write(p []byte) []string {
	d.src = append(d.src, p...)
	d.decode(false)
	return d.lines()
}

// Close flushes the decoder and returns the remaining lines, including a final
// unterminated one.
func (d *lineDecoder) Close() []string {
	d.decode(true)
	out := d.lines()
	if len(d.text) > 0 {
		out = append(out, string(d.text))
		d.text = d.text[:0]
	}
	return out
}

func (d *lineDecoder) decode(atEOF bool) {
	for {
		nDst, nSrc, err := d.t.Transform(d.dst, d.src, atEOF)
		d.text = append(d.text, d.dst[:nDst]...)
		d.src = append(d.src[:0], d.src[nSrc:]...)

		if errors.Is(err, transform.ErrShortDst) {
			if nDst == 0 && nSrc == 0 {
				d.dst = make([]byte, 2*len(d.dst))
			}
			continue
		}
		// nil, or ErrShortSrc holding an incomplete trailing sequence.
		return
	}
}

func (d *lineDecoder) lines() []string {
	var out []string
	for {
		i := bytes.IndexByte(d.text, '\n')
		if i < 0 {
			return out
		}
		out = append(out, string(d.text[:i]))
		d.text = append(d.text[:0], d.text[i+1:]...)
	}
}

// =============================================================================
// RECORD PARSING
// =============================================================================

// parseRecord extracts the payload of one line. ok is false for lines that
// carry nothing; done is true for the end-of-stream marker.
func parseRecord(line string) (payload string, ok, done bool) {
	// Trailing spaces belong to the payload.
	line = strings.TrimLeft(strings.TrimSuffix(line, "\r"), " \t")
	if !strings.HasPrefix(line, dataField) {
		return "", false, false
	}
	// Skip exactly one separator character after the field name.
	rest := line[len(dataField):]
	_, size := utf8.DecodeRuneInString(rest)
	payload = rest[size:]
	if payload == "" {
		return "", false, false
	}
	if payload == doneMarker {
		return "", false, true
	}
	return payload, true, false
}
