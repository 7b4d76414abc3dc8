package corpus

import (
	"context"
	"encoding/binary"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/hupe1980/sparsego/blas"
	"github.com/hupe1980/sparsego/market"
	"github.com/hupe1980/sparsego/matrix"
	"github.com/hupe1980/sparsego/snapshot"
)

// FetchCOO opens the named blob, sniffs its encoding, and decodes it to
// a canonical COO matrix. Snapshot containers are recognized by magic;
// everything else is parsed as Matrix Market (plain or gzipped).
func FetchCOO[T blas.Scalar](ctx context.Context, store Store, name string) (*matrix.COO[T], error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = blob.Close() }()

	var magic [4]byte
	if n, _ := blob.ReadAt(magic[:], 0); n == len(magic) &&
		binary.LittleEndian.Uint32(magic[:]) == snapshot.MagicNumber {
		m, err := snapshot.Read[T](blob.Reader())
		if err != nil {
			return nil, err
		}
		return matrix.ToCOO(m)
	}

	return market.Read[T](blob.Reader())
}

// Resolve maps a location string to a store and the blob name inside
// it:
//
//	s3://bucket/prefix/name.mtx
//	minio://endpoint/bucket/prefix/name.spx
//	/path/to/name.mtx (or any bare path)
//
// The S3 client uses the ambient AWS config; the MinIO client uses the
// ambient MINIO_ACCESS_KEY/MINIO_SECRET_KEY environment.
func Resolve(ctx context.Context, location string) (Store, string, error) {
	switch {
	case strings.HasPrefix(location, "s3://"):
		u, err := url.Parse(location)
		if err != nil {
			return nil, "", err
		}
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, "", err
		}
		dir, name := splitKey(u.Path)
		return S3(s3.NewFromConfig(cfg), u.Host, dir), name, nil

	case strings.HasPrefix(location, "minio://"):
		u, err := url.Parse(location)
		if err != nil {
			return nil, "", err
		}
		client, err := minio.New(u.Host, &minio.Options{
			Creds: credentials.NewEnvMinio(),
		})
		if err != nil {
			return nil, "", err
		}
		parts := strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 2)
		if len(parts) < 2 || parts[1] == "" {
			return nil, "", fmt.Errorf("corpus: minio location needs bucket and key: %s", location)
		}
		dir, name := splitKey(parts[1])
		return MinIO(client, parts[0], dir), name, nil

	default:
		dir, name := filepath.Split(location)
		if dir == "" {
			dir = "."
		}
		return Local(dir), name, nil
	}
}

func splitKey(p string) (prefix, name string) {
	p = strings.TrimPrefix(p, "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[:i], p[i+1:]
	}
	return "", p
}
