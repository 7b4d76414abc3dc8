package corpus

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMinIOStoreIntegration requires a running MinIO instance and is
// skipped otherwise.
func TestMinIOStoreIntegration(t *testing.T) {
	ctx := context.Background()

	client, err := minio.New("localhost:9000", &minio.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	if err != nil {
		t.Skipf("minio client creation failed: %v", err)
	}
	if _, err := client.ListBuckets(ctx); err != nil {
		t.Skipf("minio not available: %v", err)
	}

	const bucket = "sparsego-test"
	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	store := MinIO(client, bucket, "corpus-test")
	payload := []byte("hello minio matrix")
	require.NoError(t, store.Put(ctx, "m.bin", bytes.NewReader(payload), int64(len(payload))))

	blob, err := store.Open(ctx, "m.bin")
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), blob.Size())

	buf := make([]byte, 5)
	_, err = blob.ReadAt(buf, 6)
	require.NoError(t, err)
	assert.Equal(t, "minio", string(buf))

	data, err := io.ReadAll(blob.Reader())
	require.NoError(t, err)
	assert.Equal(t, payload, data)
	require.NoError(t, blob.Close())

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, names, "m.bin")

	_, err = store.Open(ctx, "absent.bin")
	assert.ErrorIs(t, err, ErrNotFound)
}
