package main

import (
	"bytes"
	"testing"

	"order-tracker/internal/features/orders/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Flags(t *testing.T) {
	for _, name := range []string{"phone", "order", "env-dir"} {
		require.NotNil(t, rootCmd.Flags().Lookup(name), "missing --%s flag", name)
	}
	assert.Equal(t, ".", rootCmd.Flags().Lookup("env-dir").DefValue)
	assert.Equal(t, "lookup", rootCmd.Use)
}

func TestRunLookup_MissingFlags(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"--env-dir", t.TempDir()})

	err := rootCmd.Execute()

	assert.ErrorContains(t, err, "required flag")
}

func TestRunLookup_InvalidPhone(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"--phone", "123", "--order", "ST-1001", "--env-dir", t.TempDir()})

	err := rootCmd.Execute()

	assert.ErrorIs(t, err, domain.ErrInvalidPhone)
}
