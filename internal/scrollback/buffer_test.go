// Copyright (c) 2025 The chatraghu-tui Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package scrollback

import (
	"encoding/json"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sumText recomputes the character count from scratch.
func sumText(lines []Line) int {
	n := 0
	for _, line := range lines {
		n += line.Chars()
	}
	return n
}

// =============================================================================
// APPEND TESTS
// =============================================================================

func TestBuffer_NewIsSingleEmptyLine(t *testing.T) {
	b := NewBuffer()
	require.Equal(t, 1, b.Len())
	assert.True(t, b.IsEmpty())
	assert.Equal(t, 0, b.TotalChars())
}

func TestBuffer_AppendTextSplitsOnNewline(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"no newline", "hello", []string{"hello"}},
		{"trailing newline", "hello\n", []string{"hello", ""}},
		{"blank line kept", "a\n\nb", []string{"a", "", "b"}},
		{"leading newline", "\nbio", []string{"", "bio"}},
		{"only newlines", "\n\n", []string{"", "", ""}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := NewBuffer()
			b.AppendText(tc.input)

			var got []string
			for _, line := range b.Lines() {
				got = append(got, line.String())
			}
			assert.Equal(t, tc.want, got)
			assert.Equal(t, sumText(b.Lines()), b.TotalChars())
		})
	}
}

func TestBuffer_AppendTextExtendsCurrentLine(t *testing.T) {
	b := NewBuffer()
	b.AppendText("> ")
	b.AppendText("whoami")

	require.Equal(t, 1, b.Len())
	assert.Equal(t, Line{Text("> "), Text("whoami")}, b.Current())
	assert.Equal(t, 8, b.TotalChars())
}

func TestBuffer_CountsRunesNotBytes(t *testing.T) {
	b := NewBuffer()
	b.AppendText("世界→")
	assert.Equal(t, 3, b.TotalChars())
}

func TestBuffer_AppendPrefixOnEmptyLineReusesIt(t *testing.T) {
	b := NewBuffer()
	b.AppendPrefix()

	require.Equal(t, 1, b.Len())
	assert.Equal(t, Line{Prefix()}, b.Current())
	assert.Equal(t, 0, b.TotalChars())
}

func TestBuffer_AppendPrefixOnNonEmptyLineStartsNewLine(t *testing.T) {
	b := NewBuffer()
	b.AppendText("> hi")
	b.AppendPrefix()

	require.Equal(t, 2, b.Len())
	lines := b.Lines()
	assert.Equal(t, Line{Text("> hi")}, lines[0])
	assert.Equal(t, Line{Prefix()}, lines[1])
}

func TestBuffer_AppendPrefixAfterPrefixStartsNewLine(t *testing.T) {
	b := NewBuffer()
	b.AppendPrefix()
	b.AppendPrefix()
	assert.Equal(t, 2, b.Len())
}

func TestBuffer_AppendNewlineIsUnconditional(t *testing.T) {
	b := NewBuffer()
	b.AppendNewline()
	b.AppendNewline()
	assert.Equal(t, 3, b.Len())
}

func TestBuffer_ClearIsIdempotent(t *testing.T) {
	b := NewBuffer()
	b.AppendText("one\ntwo")
	b.AppendPrefix()

	b.Clear()
	once := b.Lines()
	b.Clear()

	assert.Equal(t, once, b.Lines())
	assert.True(t, b.IsEmpty())
	assert.Equal(t, 0, b.TotalChars())
}

// =============================================================================
// EVICTION TESTS
// =============================================================================

func TestBuffer_EvictsOldestLinesOverCap(t *testing.T) {
	b := NewBufferWithCap(10)
	b.AppendText("aaaa\n")
	b.AppendText("bbbb\n")
	b.AppendText("cccc")

	assert.LessOrEqual(t, b.TotalChars(), 10)
	lines := b.Lines()
	assert.Equal(t, "bbbb", lines[0].String())
	assert.Equal(t, 1, b.Evicted())
	assert.Equal(t, sumText(lines), b.TotalChars())
}

func TestBuffer_EvictionKeepsOneOversizedLine(t *testing.T) {
	b := NewBufferWithCap(4)
	b.AppendText(strings.Repeat("x", 20))

	require.Equal(t, 1, b.Len())
	assert.Equal(t, 20, b.TotalChars())
}

func TestBuffer_ApplyEvictsOnceAtBatchEnd(t *testing.T) {
	ops := []Op{TextOp("12345"), NewlineOp(), PrefixOp(), TextOp("678"), NewlineOp(), TextOp("90")}

	batched := NewBufferWithCap(6)
	batched.Apply(ops...)

	assert.LessOrEqual(t, batched.TotalChars(), 6)
	assert.Equal(t, sumText(batched.Lines()), batched.TotalChars())
	assert.Equal(t, "90", batched.Current().String())
}

func TestBuffer_RandomSequencesKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	words := []string{"a", "hello", "\n", "x\ny", "世界", "", "\n\n", strings.Repeat("z", 37)}

	for round := 0; round < 50; round++ {
		b := NewBufferWithCap(64)
		for i := 0; i < 200; i++ {
			switch rng.Intn(3) {
			case 0:
				b.AppendText(words[rng.Intn(len(words))])
			case 1:
				b.AppendPrefix()
			case 2:
				b.AppendNewline()
			}
			require.GreaterOrEqual(t, b.Len(), 1)
			require.Equal(t, sumText(b.Lines()), b.TotalChars())
			if b.Len() > 1 {
				require.LessOrEqual(t, b.TotalChars(), 64)
			}
		}
	}
}

func TestBuffer_DefaultCap(t *testing.T) {
	b := NewBuffer()
	chunk := strings.Repeat("y", 1023) + "\n"
	for i := 0; i < 1024; i++ {
		b.AppendText(chunk)
	}
	assert.Equal(t, 524288, b.Cap())
	assert.LessOrEqual(t, b.TotalChars(), 524288)
	assert.Greater(t, b.Evicted(), 0)
}

// =============================================================================
// RESTORE / JSON TESTS
// =============================================================================

func TestBuffer_RestoreRecountsChars(t *testing.T) {
	b := NewBuffer()
	b.Restore([]Line{{Text("> hi")}, {Prefix(), Text(" hello")}, {}})

	assert.Equal(t, 3, b.Len())
	assert.Equal(t, 10, b.TotalChars())
	assert.Equal(t, 0, b.Evicted())
}

func TestBuffer_RestoreEmptyClears(t *testing.T) {
	b := NewBuffer()
	b.AppendText("data")
	b.Restore(nil)
	assert.True(t, b.IsEmpty())
}

func TestSegment_JSONMatchesPersistedFormat(t *testing.T) {
	lines := []Line{{Text("> hi")}, {Prefix(), Text(" hey")}}

	data, err := json.Marshal(lines)
	require.NoError(t, err)
	assert.JSONEq(t, `[["> hi"],[{"type":"prefix"}," hey"]]`, string(data))

	var back []Line
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, lines, back)
}

func TestSegment_UnmarshalRejectsUnknownShapes(t *testing.T) {
	for _, raw := range []string{`[[42]]`, `[[{"type":"banner"}]]`, `[[null]]`} {
		var lines []Line
		assert.Error(t, json.Unmarshal([]byte(raw), &lines), raw)
	}
}

func TestLine_Render(t *testing.T) {
	line := Line{Prefix(), Text(" hello")}
	assert.Equal(t, "raghu› hello", line.Render("raghu›"))
	assert.Equal(t, " hello", line.String())
	assert.True(t, line.HasPrefix())
}
