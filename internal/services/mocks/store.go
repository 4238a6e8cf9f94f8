// Package mocks provides testify mocks for the services interfaces
package mocks

import (
	"context"
	"io"

	"github.com/damacus/bucket-console/internal/services"
	"github.com/stretchr/testify/mock"
)

// Store is a mock ObjectStore
type Store struct {
	mock.Mock
}

var _ services.ObjectStore = (*Store)(nil)

func (m *Store) ListBuckets(ctx context.Context) ([]services.Bucket, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]services.Bucket), args.Error(1)
}

func (m *Store) MakeBucket(ctx context.Context, bucket, location string) error {
	args := m.Called(ctx, bucket, location)
	return args.Error(0)
}

func (m *Store) RemoveBucket(ctx context.Context, bucket string) error {
	args := m.Called(ctx, bucket)
	return args.Error(0)
}

func (m *Store) ListObjects(ctx context.Context, bucket string, opts services.ListObjectsOptions) (services.ListObjectsResult, error) {
	args := m.Called(ctx, bucket, opts)
	return args.Get(0).(services.ListObjectsResult), args.Error(1)
}

func (m *Store) PutObject(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, bucket, key, body, size, contentType)
	return args.Error(0)
}

func (m *Store) StatObject(ctx context.Context, bucket, key string) (services.Object, error) {
	args := m.Called(ctx, bucket, key)
	return args.Get(0).(services.Object), args.Error(1)
}

func (m *Store) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, services.Object, error) {
	args := m.Called(ctx, bucket, key)
	if args.Get(0) == nil {
		return nil, args.Get(1).(services.Object), args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(services.Object), args.Error(2)
}

func (m *Store) RemoveObject(ctx context.Context, bucket, key string) error {
	args := m.Called(ctx, bucket, key)
	return args.Error(0)
}

func (m *Store) RemoveObjects(ctx context.Context, bucket string, keys []string) error {
	args := m.Called(ctx, bucket, keys)
	return args.Error(0)
}

func (m *Store) CopyObject(ctx context.Context, bucket, srcKey, dstKey string) error {
	args := m.Called(ctx, bucket, srcKey, dstKey)
	return args.Error(0)
}

// UsageStore is a mock ObjectStore that also reports bucket usage
type UsageStore struct {
	Store
}

var _ services.UsageReporter = (*UsageStore)(nil)

func (m *UsageStore) BucketSizes(ctx context.Context) (map[string]uint64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]uint64), args.Error(1)
}
