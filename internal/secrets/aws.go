package secrets

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/mwhite7112/woodpantry-pickle/internal/config"
)

type secretValueGetter interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSSource reads the key from AWS Secrets Manager.
type AWSSource struct {
	cfg    config.AWSSecretConfig
	client secretValueGetter
}

func NewAWSSource(ctx context.Context, cfg config.AWSSecretConfig) (*AWSSource, error) {
	if cfg.Region == "" {
		return nil, fmt.Errorf("%w: AWS_REGION is required", ErrMisconfigured)
	}
	if cfg.SecretID == "" {
		return nil, fmt.Errorf("%w: AWS_SECRET_ID is required", ErrMisconfigured)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	if cfg.RoleARN != "" {
		creds := stscreds.NewAssumeRoleProvider(sts.NewFromConfig(awsCfg), cfg.RoleARN)
		awsCfg.Credentials = aws.NewCredentialsCache(creds)
	}

	return &AWSSource{cfg: cfg, client: secretsmanager.NewFromConfig(awsCfg)}, nil
}

func (s *AWSSource) Name() string { return "aws_secretsmanager:" + s.cfg.SecretID }

func (s *AWSSource) APIKey(ctx context.Context) (string, error) {
	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(s.cfg.SecretID),
	})
	if err != nil {
		return "", fmt.Errorf("get secret value: %w", err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("%w: secret has no string value", ErrNotFound)
	}

	field := s.cfg.Field
	if field == "" {
		field = config.DefaultSecretField
	}
	return fieldFromJSON(*out.SecretString, field)
}
