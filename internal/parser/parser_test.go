package parser

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineReader_Lines(t *testing.T) {
	input := "IIII\n!!!!\n5555\n"
	p := NewLineReader(strings.NewReader(input))

	for _, want := range []string{"IIII", "!!!!", "5555"} {
		line, err := p.Next()
		require.NoError(t, err)
		assert.Equal(t, want, string(line))
	}

	_, err := p.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestLineReader_NoTrailingNewline(t *testing.T) {
	p := NewLineReader(strings.NewReader("IIII\n!!!!"))

	line, err := p.Next()
	require.NoError(t, err)
	assert.Equal(t, "IIII", string(line))

	line, err = p.Next()
	require.NoError(t, err)
	assert.Equal(t, "!!!!", string(line))

	_, err = p.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestLineReader_WindowsLineEndings(t *testing.T) {
	p := NewLineReader(strings.NewReader("IIII\r\n!!!!\r\n"))

	line, err := p.Next()
	require.NoError(t, err)
	assert.Equal(t, "IIII", string(line))

	line, err = p.Next()
	require.NoError(t, err)
	assert.Equal(t, "!!!!", string(line))
}

func TestLineReader_BlankLinesKept(t *testing.T) {
	lines, err := ReadAll(strings.NewReader("II\n\nII\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"II", "", "II"}, lines)
}

func TestLineReader_VeryLongLine(t *testing.T) {
	long := strings.Repeat("I", 3<<20)
	lines, err := ReadAll(strings.NewReader(long + "\n!\n"))
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Len(t, lines[0], len(long))
	assert.Equal(t, "!", lines[1])
}

func TestReadAll_Empty(t *testing.T) {
	lines, err := ReadAll(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestFASTQ_QualityLines(t *testing.T) {
	input := `@SEQ_1
AAAA
+
!!!!
@SEQ_2 description
CCCCCC
+SEQ_2 description
######
`
	p := NewFASTQ(strings.NewReader(input))

	qual, err := p.Next()
	require.NoError(t, err)
	assert.Equal(t, "!!!!", string(qual))

	qual, err = p.Next()
	require.NoError(t, err)
	assert.Equal(t, "######", string(qual))

	_, err = p.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestFASTQ_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"missing @", "SEQ\nACGT\n+\nIIII\n", "header line must start with @"},
		{"missing +", "@SEQ\nACGT\n-\nIIII\n", "separator line must start with +"},
		{"length mismatch", "@SEQ\nACGT\n+\nIII\n", "lengths must match"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFASTQ(strings.NewReader(tt.input)).Next()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestFASTQ_Truncated(t *testing.T) {
	_, err := NewFASTQ(strings.NewReader("@SEQ\nACGT\n")).Next()
	require.Error(t, err)
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
}

func TestSourceImplementations(t *testing.T) {
	var _ Source = NewLineReader(strings.NewReader(""))
	var _ Source = NewFASTQ(strings.NewReader(""))
}
