package services

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryObject struct {
	info Object
	data []byte
}

type memoryBucket struct {
	created time.Time
	objects map[string]*memoryObject
}

// MemoryStore is an in-process ObjectStore with S3 listing semantics
type MemoryStore struct {
	mu      sync.RWMutex
	buckets map[string]*memoryBucket
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		buckets: make(map[string]*memoryBucket),
		now:     time.Now,
	}
}

func noSuchBucket(bucket string) error {
	return &APIError{
		Code:       CodeNoSuchBucket,
		Message:    "The specified bucket does not exist",
		StatusCode: http.StatusNotFound,
		Bucket:     bucket,
	}
}

func noSuchKey(bucket, key string) error {
	return &APIError{
		Code:       CodeNoSuchKey,
		Message:    "The specified key does not exist.",
		StatusCode: http.StatusNotFound,
		Bucket:     bucket,
		Key:        key,
	}
}

func (s *MemoryStore) ListBuckets(ctx context.Context) ([]Bucket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	buckets := make([]Bucket, 0, len(s.buckets))
	for name, b := range s.buckets {
		buckets = append(buckets, Bucket{Name: name, CreationDate: b.created})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Name < buckets[j].Name })
	return buckets, nil
}

func (s *MemoryStore) MakeBucket(ctx context.Context, bucket, location string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !ValidBucketName(bucket) {
		return &APIError{Code: CodeInvalidBucketName, Message: "The specified bucket is not valid.", StatusCode: http.StatusBadRequest, Bucket: bucket}
	}
	if _, ok := s.buckets[bucket]; ok {
		return &APIError{Code: CodeBucketAlreadyOwnedByYou, Message: "Your previous request to create the named bucket succeeded and you already own it.", StatusCode: http.StatusConflict, Bucket: bucket}
	}
	s.buckets[bucket] = &memoryBucket{created: s.now(), objects: make(map[string]*memoryObject)}
	return nil
}

func (s *MemoryStore) RemoveBucket(ctx context.Context, bucket string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[bucket]
	if !ok {
		return noSuchBucket(bucket)
	}
	if len(b.objects) > 0 {
		return &APIError{Code: CodeBucketNotEmpty, Message: "The bucket you tried to delete is not empty", StatusCode: http.StatusConflict, Bucket: bucket}
	}
	delete(s.buckets, bucket)
	return nil
}

// ListObjects pages through keys in lexical order. MaxKeys counts objects and
// common prefixes alike; the continuation token is the last entry returned.
func (s *MemoryStore) ListObjects(ctx context.Context, bucket string, opts ListObjectsOptions) (ListObjectsResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.buckets[bucket]
	if !ok {
		return ListObjectsResult{}, noSuchBucket(bucket)
	}

	maxKeys := opts.MaxKeys
	if maxKeys <= 0 {
		maxKeys = DefaultPageSize
	}
	if maxKeys > MaxDeleteBatch {
		maxKeys = MaxDeleteBatch
	}

	keys := make([]string, 0, len(b.objects))
	for key := range b.objects {
		if strings.HasPrefix(key, opts.Prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	after := opts.ContinuationToken
	// a token that holds the delimiter past the prefix was a common prefix;
	// one without it was an object key, such as a folder marker
	afterPrefix := opts.Delimiter != "" && strings.HasPrefix(after, opts.Prefix) &&
		strings.Contains(after[len(opts.Prefix):], opts.Delimiter)
	result := ListObjectsResult{}
	count := 0
	var last string

	for _, key := range keys {
		if after != "" {
			if key <= after {
				continue
			}
			if afterPrefix && strings.HasPrefix(key, after) {
				continue
			}
		}

		entry := key
		isPrefix := false
		if opts.Delimiter != "" {
			rest := key[len(opts.Prefix):]
			if idx := strings.Index(rest, opts.Delimiter); idx >= 0 {
				entry = opts.Prefix + rest[:idx+len(opts.Delimiter)]
				isPrefix = true
			}
		}
		if isPrefix && entry == last {
			continue
		}

		if count == maxKeys {
			result.IsTruncated = true
			result.NextContinuationToken = last
			break
		}

		if isPrefix {
			result.CommonPrefixes = append(result.CommonPrefixes, entry)
		} else {
			result.Objects = append(result.Objects, b.objects[key].info)
		}
		last = entry
		count++
	}
	return result, nil
}

func (s *MemoryStore) PutObject(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("memory: read body: %w", err)
	}
	if size >= 0 && int64(len(data)) != size {
		return &APIError{Code: "IncompleteBody", Message: "You did not provide the number of bytes specified by the Content-Length HTTP header", StatusCode: http.StatusBadRequest, Bucket: bucket, Key: key}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[bucket]
	if !ok {
		return noSuchBucket(bucket)
	}
	sum := md5.Sum(data)
	b.objects[key] = &memoryObject{
		info: Object{
			Key:          key,
			Size:         int64(len(data)),
			LastModified: s.now(),
			ContentType:  contentType,
			ETag:         `"` + hex.EncodeToString(sum[:]) + `"`,
		},
		data: data,
	}
	return nil
}

func (s *MemoryStore) lookup(bucket, key string) (*memoryObject, error) {
	b, ok := s.buckets[bucket]
	if !ok {
		return nil, noSuchBucket(bucket)
	}
	obj, ok := b.objects[key]
	if !ok {
		return nil, noSuchKey(bucket, key)
	}
	return obj, nil
}

func (s *MemoryStore) StatObject(ctx context.Context, bucket, key string) (Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, err := s.lookup(bucket, key)
	if err != nil {
		return Object{}, err
	}
	return obj.info, nil
}

func (s *MemoryStore) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, err := s.lookup(bucket, key)
	if err != nil {
		return nil, Object{}, err
	}
	return io.NopCloser(bytes.NewReader(obj.data)), obj.info, nil
}

// RemoveObject succeeds for missing keys, as S3 does
func (s *MemoryStore) RemoveObject(ctx context.Context, bucket, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[bucket]
	if !ok {
		return noSuchBucket(bucket)
	}
	delete(b.objects, key)
	return nil
}

func (s *MemoryStore) RemoveObjects(ctx context.Context, bucket string, keys []string) error {
	if len(keys) > MaxDeleteBatch {
		return &APIError{Code: "MalformedXML", Message: "The XML you provided was not well-formed or did not validate against our published schema", StatusCode: http.StatusBadRequest, Bucket: bucket}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[bucket]
	if !ok {
		return noSuchBucket(bucket)
	}
	for _, key := range keys {
		delete(b.objects, key)
	}
	return nil
}

func (s *MemoryStore) CopyObject(ctx context.Context, bucket, srcKey, dstKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, err := s.lookup(bucket, srcKey)
	if err != nil {
		return err
	}
	data := make([]byte, len(src.data))
	copy(data, src.data)

	info := src.info
	info.Key = dstKey
	info.LastModified = s.now()
	s.buckets[bucket].objects[dstKey] = &memoryObject{info: info, data: data}
	return nil
}
