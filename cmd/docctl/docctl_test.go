package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSequenceParse(t *testing.T) {
	out, err := run(t, "sequence", "parse", "VF2025-0007")
	require.NoError(t, err)
	assert.Contains(t, out, "kind:     invoice")
	assert.Contains(t, out, "year:     2025")
	assert.Contains(t, out, "sequence: 7")
	assert.Contains(t, out, "variable symbol: 20250007")

	out, err = run(t, "sequence", "parse", "BG2024-0123")
	require.NoError(t, err)
	assert.Contains(t, out, "kind:     quote")
	assert.NotContains(t, out, "variable symbol")
}

func TestSequenceParse_Invalid(t *testing.T) {
	_, err := run(t, "sequence", "parse", "XX2025-0001")
	assert.Error(t, err)
}

func TestParseKindYear(t *testing.T) {
	kind, year, err := parseKindYear("invoice", "2025")
	require.NoError(t, err)
	assert.Equal(t, "invoice", string(kind))
	assert.Equal(t, 2025, year)

	_, _, err = parseKindYear("receipt", "2025")
	assert.Error(t, err)
	_, _, err = parseKindYear("quote", "25")
	assert.Error(t, err)
}

func TestSchemaPrint(t *testing.T) {
	out, err := run(t, "schema", "print")
	require.NoError(t, err)
	assert.Contains(t, out, "CREATE TABLE")
}

func TestTokenIssue(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-test-secret-test-secret")
	out, err := run(t, "token", "--user", "u-1", "--ttl", "5m")
	require.NoError(t, err)
	assert.Contains(t, out, "expires")
	assert.Regexp(t, `^[\w-]+\.[\w-]+\.[\w-]+\n`, out)
}

func TestTokenIssue_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := run(t, "token")
	assert.Error(t, err)
}
