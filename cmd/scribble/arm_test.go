package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArmDisarmRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Token.sol")

	original := []byte("contract Token { uint x; }")
	instrumented := []byte("contract Token is __scribble_ReentrancyUtils { uint x; }")
	require.NoError(t, os.WriteFile(path, original, 0o644))
	require.NoError(t, os.WriteFile(path+".instrumented", instrumented, 0o644))

	require.NoError(t, runArm([]string{path}))

	armed, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, instrumented, armed)
	saved, err := os.ReadFile(path + ".original")
	require.NoError(t, err)
	assert.Equal(t, original, saved)

	// Disarm restores the exact original bytes and removes the copies.
	require.NoError(t, runDisarm([]string{path}, false))
	restored, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, restored)
	_, err = os.Stat(path + ".original")
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(path + ".instrumented")
	assert.True(t, os.IsNotExist(err))
}

func TestDisarmKeepInstrumented(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Token.sol")

	require.NoError(t, os.WriteFile(path, []byte("armed"), 0o644))
	require.NoError(t, os.WriteFile(path+".original", []byte("original"), 0o644))
	require.NoError(t, os.WriteFile(path+".instrumented", []byte("armed"), 0o644))

	require.NoError(t, runDisarm([]string{path}, true))

	restored, _ := os.ReadFile(path)
	assert.Equal(t, []byte("original"), restored)
	kept, err := os.ReadFile(path + ".instrumented")
	require.NoError(t, err)
	assert.Equal(t, []byte("armed"), kept)
}

func TestDoubleArmRefused(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Token.sol")

	require.NoError(t, os.WriteFile(path, []byte("src"), 0o644))
	require.NoError(t, os.WriteFile(path+".original", []byte("src"), 0o644))
	require.NoError(t, os.WriteFile(path+".instrumented", []byte("instr"), 0o644))

	err := runArm([]string{path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disarm before re-arming")
}

func TestDisarmWithoutArmFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Token.sol")
	require.NoError(t, os.WriteFile(path, []byte("src"), 0o644))

	err := runDisarm([]string{path}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "was "+path+" armed?")
}
