package secrets

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// ManagerSource reads the credential from AWS Secrets Manager.
// Region is optional; when empty the SDK's default resolution applies
// (env, shared config, IMDS).
type ManagerSource struct {
	SecretID string
	Region   string
}

func (s *ManagerSource) Credential(ctx context.Context) (string, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if s.Region != "" {
		opts = append(opts, awsconfig.WithRegion(s.Region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("load aws config: %w", err)
	}

	client := secretsmanager.NewFromConfig(cfg)
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(s.SecretID),
	})
	if err != nil {
		return "", fmt.Errorf("get secret %s: %w", s.SecretID, err)
	}

	if out.SecretString == nil {
		return "", fmt.Errorf("secret %s has no string value", s.SecretID)
	}
	v := strings.TrimSpace(*out.SecretString)
	if v == "" {
		return "", fmt.Errorf("secret %s is empty", s.SecretID)
	}
	return v, nil
}
