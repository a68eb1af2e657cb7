package config

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockSecretsManager simulates the behavior of the Secrets Manager client.
type MockSecretsManager struct {
	GetSecretValueFunc func(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

func (m *MockSecretsManager) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	return m.GetSecretValueFunc(ctx, params, optFns...)
}

func useSecret(t *testing.T, secret *string, err error) *[]string {
	t.Helper()
	var requested []string
	mockSM := &MockSecretsManager{
		GetSecretValueFunc: func(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
			requested = append(requested, aws.ToString(params.SecretId))
			if err != nil {
				return nil, err
			}
			return &secretsmanager.GetSecretValueOutput{SecretString: secret}, nil
		},
	}
	original := SecretManagerFunc
	t.Cleanup(func() { SecretManagerFunc = original })
	SecretManagerFunc = func(context.Context, string) (SecretsManagerInterface, error) {
		return mockSM, nil
	}
	return &requested
}

func TestSecretToken(t *testing.T) {
	requested := useSecret(t, aws.String(`{"github_token":"mock_token"}`), nil)

	token, err := SecretToken(context.Background(), "ghuls/prod", "")
	require.NoError(t, err)
	assert.Equal(t, "mock_token", token)
	assert.Equal(t, []string{"ghuls/prod"}, *requested)
}

func TestSecretTokenErrors(t *testing.T) {
	useSecret(t, nil, errors.New("access denied"))
	_, err := SecretToken(context.Background(), "s", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")

	useSecret(t, aws.String("not json"), nil)
	_, err = SecretToken(context.Background(), "s", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal secret")

	useSecret(t, aws.String(`{"other":"x"}`), nil)
	_, err = SecretToken(context.Background(), "s", "")
	assert.ErrorIs(t, err, ErrEmptySecret)

	useSecret(t, nil, nil)
	_, err = SecretToken(context.Background(), "s", "")
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestSecretManagerFuncRegion(t *testing.T) {
	original := loadAWSConfig
	t.Cleanup(func() { loadAWSConfig = original })

	var got awsconfig.LoadOptions
	loadAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		for _, fn := range optFns {
			if err := fn(&got); err != nil {
				return aws.Config{}, err
			}
		}
		return aws.Config{Region: got.Region}, nil
	}
	svc, err := SecretManagerFunc(context.Background(), "eu-west-1")
	require.NoError(t, err)
	assert.NotNil(t, svc)
	assert.Equal(t, "eu-west-1", got.Region)

	loadAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no profile")
	}
	_, err = SecretManagerFunc(context.Background(), "")
	assert.Error(t, err)
}
