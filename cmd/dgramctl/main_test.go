package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danmuck/dgramchunk/internal/chunker"
	"github.com/danmuck/dgramchunk/internal/protocol/frame"
	"github.com/danmuck/dgramchunk/internal/testutil/testlog"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestPackUnpackThroughDatagramFile(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "dgramctl.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("max_datagram_size = 48\n"), 0o600))
	inPath := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(inPath, []byte("alpha\nbravo charlie delta echo\nfoxtrot\n"), 0o600))
	packed := filepath.Join(dir, "out.dgram")

	_, err := run(t, "--config", cfgPath, "pack", "--in", inPath, "--out", packed)
	require.NoError(t, err)

	f, err := os.Open(packed)
	require.NoError(t, err)
	datagrams, err := frame.ReadAll(f, frame.LimitsFor(48))
	require.NoError(t, f.Close())
	require.NoError(t, err)
	// 11 + 30 bytes share the first datagram, 13 does not fit after them
	require.Len(t, datagrams, 2)

	out, err := run(t, "--config", cfgPath, "unpack", "--in", packed)
	require.NoError(t, err)
	assert.Equal(t, "1\talpha\n2\tbravo charlie delta echo\n3\tfoxtrot\n", out)
}

func TestPackRejectsOversizeLine(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "dgramctl.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("max_datagram_size = 16\n"), 0o600))
	inPath := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(inPath, []byte(strings.Repeat("x", 32)+"\n"), 0o600))

	_, err := run(t, "--config", cfgPath, "pack", "--in", inPath, "--out", filepath.Join(dir, "out.dgram"))
	assert.ErrorIs(t, err, chunker.ErrItemTooLarge)
}

func TestConfigInitAndValidate(t *testing.T) {
	testlog.Start(t)
	cfgPath := filepath.Join(t.TempDir(), "dgramctl.toml")

	out, err := run(t, "config", "init", "--out", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, cfgPath)

	out, err = run(t, "--config", cfgPath, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "max_datagram_size=1200")

	_, err = run(t, "config", "init", "--out", cfgPath)
	assert.Error(t, err)
}
