package corpus

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 implements S3Client over an in-memory object map. GetObject
// honors Range headers so the downloader and blob ReadAt paths behave
// like the real service.
type fakeS3 struct {
	objects  map[string][]byte
	pageSize int
	gets     int
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, pageSize: 1000}
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{ContentLength: aws.Int64(int64(len(data)))}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	f.gets++
	body := data
	if r := aws.ToString(in.Range); r != "" {
		var start, end int64
		if _, err := fmt.Sscanf(r, "bytes=%d-%d", &start, &end); err != nil {
			return nil, fmt.Errorf("bad range %q", r)
		}
		if end >= int64(len(data)) {
			end = int64(len(data)) - 1
		}
		body = data[start : end+1]
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: aws.Int64(int64(len(body))),
	}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	start := 0
	if tok := aws.ToString(in.ContinuationToken); tok != "" {
		if _, err := fmt.Sscanf(tok, "%d", &start); err != nil {
			return nil, err
		}
	}
	end := start + f.pageSize
	if end > len(keys) {
		end = len(keys)
	}

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(end < len(keys))}
	for _, k := range keys[start:end] {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	if end < len(keys) {
		out.NextContinuationToken = aws.String(fmt.Sprintf("%d", end))
	}
	return out, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) CreateMultipartUpload(context.Context, *s3.CreateMultipartUploadInput, ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	return nil, errors.New("fake: multipart not supported")
}

func (f *fakeS3) UploadPart(context.Context, *s3.UploadPartInput, ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	return nil, errors.New("fake: multipart not supported")
}

func (f *fakeS3) CompleteMultipartUpload(context.Context, *s3.CompleteMultipartUploadInput, ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	return nil, errors.New("fake: multipart not supported")
}

func (f *fakeS3) AbortMultipartUpload(context.Context, *s3.AbortMultipartUploadInput, ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	return nil, errors.New("fake: multipart not supported")
}

func TestS3StoreOpen(t *testing.T) {
	ctx := context.Background()
	client := newFakeS3()
	client.objects["matrices/a.mtx"] = []byte("hello sparse world")
	store := S3(client, "bucket", "matrices")

	t.Run("not found", func(t *testing.T) {
		_, err := store.Open(ctx, "missing.mtx")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("ranged reads", func(t *testing.T) {
		blob, err := store.Open(ctx, "a.mtx")
		require.NoError(t, err)
		defer blob.Close()

		assert.Equal(t, int64(18), blob.Size())

		buf := make([]byte, 6)
		n, err := blob.ReadAt(buf, 6)
		require.NoError(t, err)
		assert.Equal(t, "sparse", string(buf[:n]))

		// Short read at the tail reports EOF.
		n, err = blob.ReadAt(buf, 14)
		assert.Equal(t, 4, n)
		assert.ErrorIs(t, err, io.EOF)

		data, err := io.ReadAll(blob.Reader())
		require.NoError(t, err)
		assert.Equal(t, "hello sparse world", string(data))
	})
}

func TestS3StoreListPagination(t *testing.T) {
	ctx := context.Background()
	client := newFakeS3()
	client.pageSize = 2
	client.objects["m/a"] = []byte("a")
	client.objects["m/b"] = []byte("b")
	client.objects["m/sub/c"] = []byte("c")
	client.objects["other/d"] = []byte("d")
	store := S3(client, "bucket", "m")

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "sub/c"}, names)
}

func TestS3StorePutFetch(t *testing.T) {
	ctx := context.Background()
	client := newFakeS3()
	store := S3(client, "bucket", "m")

	payload := bytes.Repeat([]byte("0123456789"), 100)
	require.NoError(t, store.Put(ctx, "big.bin", bytes.NewReader(payload), int64(len(payload))))

	got, err := store.Fetch(ctx, "big.bin")
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}
