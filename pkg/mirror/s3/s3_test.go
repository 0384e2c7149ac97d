package s3

import (
	"context"
	"testing"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"
)

func TestNewS3Mirror_RequiresClient(t *testing.T) {
	_, err := NewS3Mirror(context.Background(), S3MirrorConfig{Bucket: "nospace"})
	require.ErrorContains(t, err, "client is required")
}

func TestNewS3Mirror_RequiresBucket(t *testing.T) {
	// The bucket check fires before anything touches the network, so an
	// unconfigured client is fine here.
	client := awss3.New(awss3.Options{})

	_, err := NewS3Mirror(context.Background(), S3MirrorConfig{Client: client})
	require.ErrorContains(t, err, "bucket name is required")
}
