package services

import (
	"context"
	"io"
	"time"
)

// DefaultPageSize is the default number of entries returned per browse page
const DefaultPageSize = 100

// MaxDeleteBatch is the backend's per-request limit for multi-object deletes.
// It is also the largest page a single ListObjects call returns.
const MaxDeleteBatch = 1000

// Bucket is a top-level container as reported by the backend
type Bucket struct {
	Name         string
	CreationDate time.Time
}

// Object describes one stored object
type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
	ContentType  string
	ETag         string
}

// ListObjectsOptions selects a single page of a ListObjectsV2 listing
type ListObjectsOptions struct {
	Prefix            string
	Delimiter         string
	MaxKeys           int
	ContinuationToken string
}

// ListObjectsResult is one page of a listing. CommonPrefixes is only
// populated when a delimiter was requested.
type ListObjectsResult struct {
	Objects               []Object
	CommonPrefixes        []string
	IsTruncated           bool
	NextContinuationToken string
}

// Empty reports whether the page holds neither objects nor prefixes
func (r ListObjectsResult) Empty() bool {
	return len(r.Objects) == 0 && len(r.CommonPrefixes) == 0
}

// ObjectStore is the remote object-storage API the console drives.
// Implementations translate backend failures into *APIError where the
// backend reported a machine-readable code.
type ObjectStore interface {
	ListBuckets(ctx context.Context) ([]Bucket, error)
	// MakeBucket creates a bucket. An empty location sends no location constraint.
	MakeBucket(ctx context.Context, bucket, location string) error
	RemoveBucket(ctx context.Context, bucket string) error

	ListObjects(ctx context.Context, bucket string, opts ListObjectsOptions) (ListObjectsResult, error)
	PutObject(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error
	StatObject(ctx context.Context, bucket, key string) (Object, error)
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, Object, error)
	RemoveObject(ctx context.Context, bucket, key string) error
	// RemoveObjects issues one batched delete; len(keys) must not exceed MaxDeleteBatch.
	RemoveObjects(ctx context.Context, bucket string, keys []string) error
	CopyObject(ctx context.Context, bucket, srcKey, dstKey string) error
}

// UsageReporter is implemented by stores that can report per-bucket data usage
type UsageReporter interface {
	BucketSizes(ctx context.Context) (map[string]uint64, error)
}
