package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/madmin-go/v3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Storage drivers
const (
	DriverS3     = "s3"
	DriverMinio  = "minio"
	DriverMemory = "memory"
)

// StoreConfig holds configuration for the storage backend
type StoreConfig struct {
	// Driver selects the backend client: s3, minio or memory.
	Driver string `mapstructure:"driver" default:"s3"`
	// Endpoint overrides the backend address. host:port for minio, a URL for s3.
	Endpoint string `mapstructure:"endpoint" default:""`
	// Region is the configured region; us-east-1 sends no location constraint.
	Region       string `mapstructure:"region" default:"us-east-1"`
	AccessKey    string `mapstructure:"access_key" default:""`
	SecretKey    string `mapstructure:"secret_key" default:""`
	SessionToken string `mapstructure:"session_token" default:""`
	// UseSSL is honoured by the minio driver.
	UseSSL bool `mapstructure:"use_ssl" default:"true"`
	// PathStyle forces path-style addressing for the s3 driver.
	PathStyle bool `mapstructure:"path_style" default:"false"`
	// PageSize is the number of entries per browse page.
	PageSize int `mapstructure:"page_size" default:"100"`
	// AdminUsage enables per-bucket usage reporting through the MinIO admin API.
	AdminUsage bool `mapstructure:"admin_usage" default:"false"`
}

// NewStore builds the ObjectStore selected by cfg.Driver
func NewStore(ctx context.Context, cfg StoreConfig) (ObjectStore, error) {
	switch cfg.Driver {
	case DriverS3, "":
		return NewS3Store(ctx, cfg)
	case DriverMinio:
		return NewMinioStore(cfg)
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// MinioStore implements ObjectStore on top of minio-go
type MinioStore struct {
	core  *minio.Core
	admin *madmin.AdminClient
}

// shouldUseSSL determines if SSL should be used based on the endpoint.
// Returns false for localhost, 127.0.0.1, and docker service names.
func shouldUseSSL(endpoint string) bool {
	// Local development endpoints
	if endpoint == "localhost:9000" || endpoint == "127.0.0.1:9000" {
		return false
	}
	// Docker service names (minio:9000, minio1:9000, ...), not domain names like minio.example.com
	if strings.HasPrefix(endpoint, "minio") && !strings.Contains(strings.Split(endpoint, ":")[0], ".") && strings.Contains(endpoint, ":9000") {
		return false
	}
	return true
}

// minioEndpoint strips any scheme; minio expects host:port
func minioEndpoint(endpoint string) string {
	endpoint = strings.TrimPrefix(endpoint, "http://")
	return strings.TrimPrefix(endpoint, "https://")
}

// NewMinioStore creates a minio-backed store. Retries are disabled so every
// call reaches the backend exactly once.
func NewMinioStore(cfg StoreConfig) (*MinioStore, error) {
	endpoint := minioEndpoint(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("minio driver requires an endpoint")
	}
	secure := cfg.UseSSL && shouldUseSSL(endpoint)

	core, err := minio.NewCore(endpoint, &minio.Options{
		Creds:      credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, cfg.SessionToken),
		Secure:     secure,
		Region:     cfg.Region,
		MaxRetries: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	store := &MinioStore{core: core}
	if cfg.AdminUsage {
		admin, err := madmin.NewWithOptions(endpoint, &madmin.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, cfg.SessionToken),
			Secure: secure,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create minio admin client: %w", err)
		}
		store.admin = admin
	}
	return store, nil
}

func (s *MinioStore) ListBuckets(ctx context.Context) ([]Bucket, error) {
	infos, err := s.core.ListBuckets(ctx)
	if err != nil {
		return nil, minioError(err)
	}
	buckets := make([]Bucket, 0, len(infos))
	for _, b := range infos {
		buckets = append(buckets, Bucket{Name: b.Name, CreationDate: b.CreationDate})
	}
	return buckets, nil
}

func (s *MinioStore) MakeBucket(ctx context.Context, bucket, location string) error {
	return minioError(s.core.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: location}))
}

func (s *MinioStore) RemoveBucket(ctx context.Context, bucket string) error {
	return minioError(s.core.RemoveBucket(ctx, bucket))
}

// ListObjects uses the Core API so the backend's continuation token is
// passed through instead of being emulated with StartAfter.
func (s *MinioStore) ListObjects(ctx context.Context, bucket string, opts ListObjectsOptions) (ListObjectsResult, error) {
	maxKeys := opts.MaxKeys
	if maxKeys <= 0 {
		maxKeys = DefaultPageSize
	}

	res, err := s.core.ListObjectsV2(bucket, opts.Prefix, "", opts.ContinuationToken, opts.Delimiter, maxKeys)
	if err != nil {
		return ListObjectsResult{}, minioError(err)
	}

	result := ListObjectsResult{
		Objects:               make([]Object, 0, len(res.Contents)),
		IsTruncated:           res.IsTruncated,
		NextContinuationToken: res.NextContinuationToken,
	}
	for _, obj := range res.Contents {
		result.Objects = append(result.Objects, minioObject(obj))
	}
	for _, cp := range res.CommonPrefixes {
		result.CommonPrefixes = append(result.CommonPrefixes, cp.Prefix)
	}
	return result, nil
}

func (s *MinioStore) PutObject(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error {
	_, err := s.core.Client.PutObject(ctx, bucket, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return minioError(err)
}

func (s *MinioStore) StatObject(ctx context.Context, bucket, key string) (Object, error) {
	info, err := s.core.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return Object{}, minioError(err)
	}
	return minioObject(info), nil
}

func (s *MinioStore) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, Object, error) {
	obj, err := s.core.Client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, Object{}, minioError(err)
	}
	// GetObject is lazy; Stat surfaces NoSuchKey before any bytes are streamed
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, Object{}, minioError(err)
	}
	return obj, minioObject(info), nil
}

func (s *MinioStore) RemoveObject(ctx context.Context, bucket, key string) error {
	return minioError(s.core.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}))
}

func (s *MinioStore) RemoveObjects(ctx context.Context, bucket string, keys []string) error {
	if len(keys) > MaxDeleteBatch {
		return fmt.Errorf("batch of %d keys exceeds the limit of %d", len(keys), MaxDeleteBatch)
	}

	objectsCh := make(chan minio.ObjectInfo, len(keys))
	for _, key := range keys {
		objectsCh <- minio.ObjectInfo{Key: key}
	}
	close(objectsCh)

	var failed []minio.RemoveObjectError
	for rerr := range s.core.Client.RemoveObjects(ctx, bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		failed = append(failed, rerr)
	}
	if len(failed) == 0 {
		return nil
	}

	first := failed[0]
	apiErr := &APIError{
		Code:    "BatchDeleteFailed",
		Message: fmt.Sprintf("%d of %d objects could not be deleted: %v", len(failed), len(keys), first.Err),
		Bucket:  bucket,
		Key:     first.ObjectName,
	}
	if resp := minio.ToErrorResponse(first.Err); resp.Code != "" {
		apiErr.Code = resp.Code
		apiErr.StatusCode = resp.StatusCode
	}
	return apiErr
}

func (s *MinioStore) CopyObject(ctx context.Context, bucket, srcKey, dstKey string) error {
	_, err := s.core.Client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: bucket, Object: dstKey},
		minio.CopySrcOptions{Bucket: bucket, Object: srcKey},
	)
	return minioError(err)
}

// BucketSizes reports usage through the admin API when it was enabled
func (s *MinioStore) BucketSizes(ctx context.Context) (map[string]uint64, error) {
	if s.admin == nil {
		return nil, nil
	}
	usage, err := s.admin.DataUsageInfo(ctx)
	if err != nil {
		return nil, err
	}
	return usage.BucketSizes, nil
}

func minioObject(info minio.ObjectInfo) Object {
	return Object{
		Key:          info.Key,
		Size:         info.Size,
		LastModified: info.LastModified,
		ContentType:  info.ContentType,
		ETag:         info.ETag,
	}
}

// minioError converts minio.ErrorResponse values into *APIError and leaves
// transport failures untouched.
func minioError(err error) error {
	if err == nil {
		return nil
	}
	resp := minio.ToErrorResponse(err)
	if resp.Code == "" {
		return fmt.Errorf("minio: %w", err)
	}
	return &APIError{
		Code:       resp.Code,
		Message:    resp.Message,
		StatusCode: resp.StatusCode,
		Bucket:     resp.BucketName,
		Key:        resp.Key,
	}
}
