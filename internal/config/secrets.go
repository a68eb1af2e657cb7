package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// ErrEmptySecret is returned when a secret carries no token.
var ErrEmptySecret = errors.New("secret has no github_token")

// SecretsManagerInterface is the subset of the Secrets Manager client in use.
type SecretsManagerInterface interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

type secretPayload struct {
	GitHubToken string `json:"github_token"`
}

var loadAWSConfig = awsconfig.LoadDefaultConfig

// SecretManagerFunc builds the Secrets Manager client for a region. An empty
// region uses the shared AWS configuration.
var SecretManagerFunc = func(ctx context.Context, region string) (SecretsManagerInterface, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := loadAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return secretsmanager.NewFromConfig(cfg), nil
}

// SecretToken reads a JSON secret of the form {"github_token": "..."}.
func SecretToken(ctx context.Context, name, region string) (string, error) {
	svc, err := SecretManagerFunc(ctx, region)
	if err != nil {
		return "", err
	}
	result, err := svc.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		return "", fmt.Errorf("failed to retrieve secret %s: %w", name, err)
	}
	if result.SecretString == nil {
		return "", fmt.Errorf("secret %s: %w", name, ErrEmptySecret)
	}
	var payload secretPayload
	if err := json.Unmarshal([]byte(*result.SecretString), &payload); err != nil {
		return "", fmt.Errorf("failed to unmarshal secret %s: %w", name, err)
	}
	if payload.GitHubToken == "" {
		return "", fmt.Errorf("secret %s: %w", name, ErrEmptySecret)
	}
	return payload.GitHubToken, nil
}
