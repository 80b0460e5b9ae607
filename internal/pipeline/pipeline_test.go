package pipeline

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danmuck/dgramchunk/internal/chunker"
	"github.com/danmuck/dgramchunk/internal/protocol"
	"github.com/danmuck/dgramchunk/internal/testutil/testlog"
)

func TestReadLinesSkipsBlankAndNumbers(t *testing.T) {
	texts, err := ReadLines(strings.NewReader("alpha\r\n\n  \nbeta\n"))
	require.NoError(t, err)
	assert.Equal(t, []protocol.Text{{ID: 1, Content: "alpha"}, {ID: 2, Content: "beta"}}, texts)
}

func TestPackUnpackTexts(t *testing.T) {
	testlog.Start(t)
	texts, err := ReadLines(strings.NewReader(strings.Repeat("some line of text\n", 40)))
	require.NoError(t, err)

	datagrams, err := PackTexts(texts, 128)
	require.NoError(t, err)
	require.Greater(t, len(datagrams), 1)

	out, err := UnpackTexts(datagrams)
	require.NoError(t, err)
	assert.Equal(t, texts, out)
}

func TestPackTextsItemTooLarge(t *testing.T) {
	testlog.Start(t)
	_, err := PackTexts([]protocol.Text{{ID: 1, Content: strings.Repeat("x", 64)}}, 32)
	assert.ErrorIs(t, err, chunker.ErrItemTooLarge)
}

func TestUnpackTextsMalformed(t *testing.T) {
	testlog.Start(t)
	_, err := UnpackTexts([][]byte{{0xff, 0xfe, 0xfd}})
	assert.Error(t, err)
}

func TestWriteLines(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLines(&buf, []protocol.Text{{ID: 1, Content: "a"}, {ID: 2, Content: "b"}}))
	assert.Equal(t, "1\ta\n2\tb\n", buf.String())
}
