// Package awsclient builds the shared AWS session used by the DynamoDB store
// and the S3 publisher.
package awsclient

import (
	"fmt"

	"github.com/birlikkoshan/todo-serverless/internal/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
)

// NewSession creates a session for cfg. Static credentials are used when set,
// otherwise the SDK default chain (env, shared config, instance/function role).
func NewSession(cfg config.AWSConfig) (*session.Session, error) {
	sess, err := session.NewSession(awsConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return sess, nil
}

func awsConfig(cfg config.AWSConfig) *aws.Config {
	c := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		c.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken)
	}
	// Local emulators (DynamoDB Local, MinIO, LocalStack) don't do virtual-host buckets.
	if cfg.Endpoint != "" {
		c.Endpoint = aws.String(cfg.Endpoint)
		c.S3ForcePathStyle = aws.Bool(true)
	}
	return c
}
