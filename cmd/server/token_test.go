package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/befriend-app/befriend-backend/internal/infrastructure/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenCommand(t *testing.T) {
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs([]string{"token", "uid-42", "--secret", testSecret, "--name", "Grace", "--env-file", "does-not-exist.env"})
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))

	id, err := identity.NewHMACVerifier(testSecret).Verify(context.Background(), strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "uid-42", id.UID)
	assert.Equal(t, "Grace", id.Name)
	assert.Contains(t, errOut.String(), "expires at")
}

func TestTokenCommandRejectsShortSecret(t *testing.T) {
	t.Setenv("AUTH_HMAC_SECRET", "")
	rootCmd.SetArgs([]string{"token", "uid-42", "--secret", "short", "--env-file", "does-not-exist.env"})
	assert.Error(t, rootCmd.ExecuteContext(context.Background()))
}
