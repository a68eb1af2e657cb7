package config

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func clearTokenEnv(t *testing.T) {
	t.Helper()
	for _, name := range TokenEnvVars {
		t.Setenv(name, "")
	}
}

func TestResolveCredentialsPrecedence(t *testing.T) {
	clearTokenEnv(t)
	requested := useSecret(t, aws.String(`{"github_token":"from-secret"}`), nil)
	file := AuthConfig{Token: strPtr("from-file"), Secret: strPtr("ghuls")}
	ctx := context.Background()

	got, err := ResolveCredentials(ctx, Credentials{Token: "from-flag"}, file)
	require.NoError(t, err)
	assert.Equal(t, Credentials{Token: "from-flag", Source: SourceFlag}, got)

	t.Setenv("GITHUB_TOKEN", "from-env")
	got, err = ResolveCredentials(ctx, Credentials{}, file)
	require.NoError(t, err)
	assert.Equal(t, Credentials{Token: "from-env", Source: SourceEnv}, got)

	t.Setenv("GITHUB_TOKEN", "")
	got, err = ResolveCredentials(ctx, Credentials{}, file)
	require.NoError(t, err)
	assert.Equal(t, Credentials{Token: "from-file", Source: SourceFile}, got)

	file.Token = nil
	got, err = ResolveCredentials(ctx, Credentials{}, file)
	require.NoError(t, err)
	assert.Equal(t, Credentials{Token: "from-secret", Source: SourceSecret}, got)
	assert.Equal(t, []string{"ghuls"}, *requested)
}

func TestResolveCredentialsBasic(t *testing.T) {
	clearTokenEnv(t)
	file := AuthConfig{User: strPtr("file-user"), Pass: strPtr("file-pass")}

	got, err := ResolveCredentials(context.Background(), Credentials{User: "flag-user"}, file)
	require.NoError(t, err)
	assert.Equal(t, Credentials{User: "flag-user", Pass: "file-pass", Source: SourceBasic}, got)
}

func TestResolveCredentialsNone(t *testing.T) {
	clearTokenEnv(t)
	got, err := ResolveCredentials(context.Background(), Credentials{}, AuthConfig{})
	require.NoError(t, err)
	assert.Equal(t, SourceNone, got.Source)
	assert.Empty(t, got.Token)
}

func TestResolveCredentialsSecretError(t *testing.T) {
	clearTokenEnv(t)
	useSecret(t, nil, errors.New("throttled"))
	_, err := ResolveCredentials(context.Background(), Credentials{}, AuthConfig{Secret: strPtr("ghuls")})
	assert.Error(t, err)
}
