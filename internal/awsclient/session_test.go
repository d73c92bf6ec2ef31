package awsclient

import (
	"testing"

	"github.com/birlikkoshan/todo-serverless/internal/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAWSConfigDefaults(t *testing.T) {
	c := awsConfig(config.AWSConfig{Region: "eu-west-1"})
	assert.Equal(t, "eu-west-1", aws.StringValue(c.Region))
	assert.Nil(t, c.Credentials)
	assert.Nil(t, c.Endpoint)
	assert.Nil(t, c.S3ForcePathStyle)
}

func TestAWSConfigLocalEndpoint(t *testing.T) {
	c := awsConfig(config.AWSConfig{
		Region:          "us-east-1",
		Endpoint:        "http://localhost:8000",
		AccessKeyID:     "local",
		SecretAccessKey: "local",
	})
	assert.Equal(t, "http://localhost:8000", aws.StringValue(c.Endpoint))
	assert.True(t, aws.BoolValue(c.S3ForcePathStyle))

	require.NotNil(t, c.Credentials)
	v, err := c.Credentials.Get()
	require.NoError(t, err)
	assert.Equal(t, "local", v.AccessKeyID)
}

func TestNewSession(t *testing.T) {
	sess, err := NewSession(config.AWSConfig{Region: "us-east-1", AccessKeyID: "a", SecretAccessKey: "b"})
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", aws.StringValue(sess.Config.Region))
}
