package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectPragmas(t *testing.T) {
	source := `// SPDX-License-Identifier: MIT
pragma solidity ^0.8.0;
pragma solidity >=0.8.4 <0.9.0;
contract C {}`

	assert.Equal(t, []string{"^0.8.0", ">=0.8.4 <0.9.0"}, DetectPragmas(source))
	assert.Empty(t, DetectPragmas("contract C {}"))
}

func TestExplicitFlagWins(t *testing.T) {
	v, err := Select("0.7.6", map[string][]string{"a.sol": {"^0.8.0"}})
	require.NoError(t, err)
	assert.Equal(t, "0.7.6", v.String())

	_, err = Select("not-a-version", nil)
	assert.Error(t, err)
}

func TestAutoPicksNewestSatisfying(t *testing.T) {
	v, err := Select("auto", map[string][]string{
		"a.sol": {"^0.8.0"},
		"b.sol": {">=0.8.4 <0.8.20"},
	})
	require.NoError(t, err)
	assert.Equal(t, "0.8.19", v.String())
}

func TestConflictingMajorsAreAmbiguous(t *testing.T) {
	_, err := Select("", map[string][]string{
		"old.sol": {"^0.7.0"},
		"new.sol": {"^0.8.0"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "old.sol: ^0.7.0")
	assert.Contains(t, err.Error(), "new.sol: ^0.8.0")
	assert.Contains(t, err.Error(), "--compiler-version")
}
