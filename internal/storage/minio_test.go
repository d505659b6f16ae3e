package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/devfolio/portfolio/backend/internal/config"
)

func TestNewMinIOStorage_RequiresEndpointAndBucket(t *testing.T) {
	_, err := NewMinIOStorage(context.Background(), config.MinIOConfig{Bucket: "b"})
	require.ErrorContains(t, err, "MINIO_ENDPOINT")

	_, err = NewMinIOStorage(context.Background(), config.MinIOConfig{Endpoint: "localhost:9000"})
	require.ErrorContains(t, err, "MINIO_BUCKET")
}
