package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// Severity of a user-facing notification
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// Copy/move operations
const (
	OperationCopy = "copy"
	OperationMove = "move"
)

// sniffLen is the number of leading bytes inspected to detect a content type
const sniffLen = 3072

const octetStream = "application/octet-stream"

// Notification is a one-shot message shown on the next page load
type Notification struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Outcome is the result of a mutation: what to tell the user and where to send them
type Outcome struct {
	Notification Notification
	Redirect     string
}

// ConsoleConfig is the immutable configuration of a ConsoleService
type ConsoleConfig struct {
	// Region is the configured backend region
	Region string
	// PageSize is the MaxKeys value used when browsing
	PageSize int
}

// BucketView is a bucket as shown on the bucket list
type BucketView struct {
	Name         string
	CreationDate time.Time
	Size         uint64
	HasSize      bool
}

// BrowseResult is one listing page of a bucket
type BrowseResult struct {
	Bucket      string
	Prefix      string
	Cursor      string
	Folders     []string
	Objects     []Object
	NextCursor  string
	IsTruncated bool
	// Notification is set when the listing failed
	Notification *Notification
	// Redirect is set when the page cannot be shown at all
	Redirect string
}

// UploadInput describes one uploaded file
type UploadInput struct {
	Filename    string
	Key         string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ObjectDownload is an open object body with its metadata
type ObjectDownload struct {
	Body   io.ReadCloser
	Object Object
}

// ConsoleService turns console actions into object store calls. It never
// returns errors; every failure becomes a notification.
type ConsoleService struct {
	store  ObjectStore
	cfg    ConsoleConfig
	logger *zap.Logger
}

// NewConsoleService creates a console over store
func NewConsoleService(store ObjectStore, cfg ConsoleConfig, logger *zap.Logger) *ConsoleService {
	if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleService{store: store, cfg: cfg, logger: logger}
}

// BrowseURL returns the browse page location for a bucket and prefix
func BrowseURL(bucket, prefix string) string {
	u := "/bucket/" + url.PathEscape(bucket)
	if prefix != "" {
		u += "?" + url.Values{"prefix": {prefix}}.Encode()
	}
	return u
}

func success(format string, args ...any) Notification {
	return Notification{Severity: SeveritySuccess, Message: fmt.Sprintf(format, args...)}
}

func warning(format string, args ...any) Notification {
	return Notification{Severity: SeverityWarning, Message: fmt.Sprintf(format, args...)}
}

func danger(format string, args ...any) Notification {
	return Notification{Severity: SeverityDanger, Message: fmt.Sprintf(format, args...)}
}

// Describe maps a backend error to a notification
func Describe(err error, bucket, key string) Notification {
	apiErr, ok := AsAPIError(err)
	if !ok {
		return danger("Operation failed: %v", err)
	}
	switch apiErr.Code {
	case CodeBucketAlreadyOwnedByYou:
		return warning("Bucket '%s' already exists and is owned by you.", bucket)
	case CodeBucketAlreadyExists:
		return danger("Bucket name '%s' is already taken.", bucket)
	case CodeBucketNotEmpty:
		return warning("Bucket '%s' is not empty.", bucket)
	case CodeNoSuchBucket:
		return danger("Bucket '%s' does not exist.", bucket)
	case CodeNoSuchKey, CodeNotFound:
		return danger("Object '%s' does not exist.", key)
	case CodeAccessDenied:
		return danger("Access denied.")
	case CodeInvalidBucketName:
		return danger("Bucket name '%s' is not valid.", bucket)
	}
	return danger("Operation failed: %v", err)
}

func (s *ConsoleService) logFailure(op string, err error, bucket, key string) {
	s.logger.Warn("storage call failed",
		zap.String("operation", op),
		zap.String("bucket", bucket),
		zap.String("key", key),
		zap.String("code", ErrorCode(err)),
		zap.Error(err),
	)
}

func (s *ConsoleService) fail(op string, err error, bucket, key, redirect string) Outcome {
	s.logFailure(op, err, bucket, key)
	return Outcome{Notification: Describe(err, bucket, key), Redirect: redirect}
}

// ListBuckets enumerates buckets. Sizes are attached when the store reports usage.
func (s *ConsoleService) ListBuckets(ctx context.Context) ([]BucketView, *Notification) {
	buckets, err := s.store.ListBuckets(ctx)
	if err != nil {
		s.logFailure("list_buckets", err, "", "")
		n := Describe(err, "", "")
		return []BucketView{}, &n
	}

	var sizes map[string]uint64
	if reporter, ok := s.store.(UsageReporter); ok {
		if sizes, err = reporter.BucketSizes(ctx); err != nil {
			s.logger.Debug("bucket usage unavailable", zap.Error(err))
			sizes = nil
		}
	}

	views := make([]BucketView, 0, len(buckets))
	for _, b := range buckets {
		view := BucketView{Name: b.Name, CreationDate: b.CreationDate}
		if sizes != nil {
			view.Size, view.HasSize = sizes[b.Name]
		}
		views = append(views, view)
	}
	return views, nil
}

// Browse lists one page of the folders and files directly under prefix
func (s *ConsoleService) Browse(ctx context.Context, bucket, prefix, cursor string) BrowseResult {
	result := BrowseResult{
		Bucket:  bucket,
		Prefix:  prefix,
		Cursor:  cursor,
		Folders: []string{},
		Objects: []Object{},
	}

	page, err := s.store.ListObjects(ctx, bucket, ListObjectsOptions{
		Prefix:            prefix,
		Delimiter:         Delimiter,
		MaxKeys:           s.cfg.PageSize,
		ContinuationToken: cursor,
	})
	if err != nil {
		s.logFailure("browse", err, bucket, prefix)
		n := Describe(err, bucket, prefix)
		result.Notification = &n
		if ErrorCode(err) == CodeNoSuchBucket {
			result.Redirect = "/"
		}
		return result
	}

	result.Folders = append(result.Folders, page.CommonPrefixes...)
	for _, obj := range page.Objects {
		if obj.Key == prefix {
			continue
		}
		result.Objects = append(result.Objects, obj)
	}
	result.IsTruncated = page.IsTruncated
	if page.IsTruncated {
		result.NextCursor = page.NextContinuationToken
	}
	return result
}

// CreateBucket validates the name locally before issuing one MakeBucket call
func (s *ConsoleService) CreateBucket(ctx context.Context, name string) Outcome {
	name = strings.TrimSpace(name)
	if !ValidBucketName(name) {
		return Outcome{
			Notification: danger("Invalid bucket name '%s': use 3-63 lowercase letters, digits, '.' or '-', starting and ending with a letter or digit.", name),
			Redirect:     "/",
		}
	}

	location := s.cfg.Region
	if location == DefaultRegion {
		location = ""
	}
	if err := s.store.MakeBucket(ctx, name, location); err != nil {
		return s.fail("create_bucket", err, name, "", "/")
	}
	return Outcome{Notification: success("Bucket '%s' created successfully.", name), Redirect: "/"}
}

// DeleteBucket removes a bucket only when a one-entry listing finds it empty
func (s *ConsoleService) DeleteBucket(ctx context.Context, name string) Outcome {
	peek, err := s.store.ListObjects(ctx, name, ListObjectsOptions{MaxKeys: 1})
	if err != nil {
		return s.fail("delete_bucket", err, name, "", "/")
	}
	if !peek.Empty() {
		return Outcome{Notification: warning("Bucket '%s' is not empty. Delete its contents first.", name), Redirect: "/"}
	}

	if err := s.store.RemoveBucket(ctx, name); err != nil {
		return s.fail("delete_bucket", err, name, "", "/")
	}
	return Outcome{Notification: success("Bucket '%s' deleted successfully.", name), Redirect: "/"}
}

// UploadObject streams one file into the bucket
func (s *ConsoleService) UploadObject(ctx context.Context, bucket string, in UploadInput) Outcome {
	if in.Body == nil || strings.TrimSpace(in.Filename) == "" {
		return Outcome{Notification: danger("No file selected."), Redirect: BrowseURL(bucket, "")}
	}

	key := strings.TrimSpace(in.Key)
	switch {
	case key == "":
		key = in.Filename
	case strings.HasSuffix(key, Delimiter):
		key += in.Filename
	}
	redirect := BrowseURL(bucket, ParentPrefix(key))

	body, contentType, err := detectContentType(in.Body, in.ContentType)
	if err != nil {
		return s.fail("upload", err, bucket, key, redirect)
	}

	if err := s.store.PutObject(ctx, bucket, key, body, in.Size, contentType); err != nil {
		return s.fail("upload", err, bucket, key, redirect)
	}
	return Outcome{Notification: success("File '%s' uploaded successfully.", key), Redirect: redirect}
}

// detectContentType keeps a declared type and sniffs the leading bytes
// otherwise. Seekable bodies are rewound, others are re-joined with the
// bytes already read.
func detectContentType(body io.Reader, declared string) (io.Reader, string, error) {
	if declared != "" && declared != octetStream {
		return body, declared, nil
	}

	if rs, ok := body.(io.ReadSeeker); ok {
		mtype, err := mimetype.DetectReader(rs)
		if err != nil {
			return nil, "", fmt.Errorf("failed to detect content type: %w", err)
		}
		if _, err := rs.Seek(0, io.SeekStart); err != nil {
			return nil, "", fmt.Errorf("failed to rewind upload: %w", err)
		}
		return rs, mtype.String(), nil
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(body, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, "", fmt.Errorf("failed to read upload: %w", err)
	}
	head = head[:n]
	return io.MultiReader(bytes.NewReader(head), body), mimetype.Detect(head).String(), nil
}

// DeleteObject removes a single object
func (s *ConsoleService) DeleteObject(ctx context.Context, bucket, key string) Outcome {
	redirect := BrowseURL(bucket, ParentPrefix(key))
	if key == "" {
		return Outcome{Notification: danger("No object key given."), Redirect: redirect}
	}
	if err := s.store.RemoveObject(ctx, bucket, key); err != nil {
		return s.fail("delete_object", err, bucket, key, redirect)
	}
	return Outcome{Notification: success("File '%s' deleted successfully.", key), Redirect: redirect}
}

// CreateFolder writes a zero-byte folder marker unless one already exists
func (s *ConsoleService) CreateFolder(ctx context.Context, bucket, name, currentPrefix string) Outcome {
	redirect := BrowseURL(bucket, currentPrefix)

	name = strings.TrimSpace(name)
	if name == "" {
		return Outcome{Notification: danger("Folder name is required."), Redirect: redirect}
	}
	key := FolderKey(name)

	peek, err := s.store.ListObjects(ctx, bucket, ListObjectsOptions{Prefix: key, MaxKeys: 1})
	if err != nil {
		return s.fail("create_folder", err, bucket, key, redirect)
	}
	if len(peek.Objects) > 0 && peek.Objects[0].Key == key {
		return Outcome{Notification: warning("Folder '%s' already exists.", key), Redirect: redirect}
	}

	if err := s.store.PutObject(ctx, bucket, key, bytes.NewReader(nil), 0, ""); err != nil {
		return s.fail("create_folder", err, bucket, key, redirect)
	}
	return Outcome{Notification: success("Folder '%s' created successfully.", key), Redirect: redirect}
}

// DeleteFolder removes every object under prefix, one batched delete per
// listing page.
func (s *ConsoleService) DeleteFolder(ctx context.Context, bucket, prefix string) Outcome {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" || prefix == Delimiter {
		return Outcome{Notification: danger("No folder given."), Redirect: BrowseURL(bucket, "")}
	}
	prefix = FolderKey(prefix)
	redirect := BrowseURL(bucket, EnclosingPrefix(prefix))

	deleted := 0
	token := ""
	for {
		page, err := s.store.ListObjects(ctx, bucket, ListObjectsOptions{
			Prefix:            prefix,
			MaxKeys:           MaxDeleteBatch,
			ContinuationToken: token,
		})
		if err != nil {
			return s.fail("delete_folder", err, bucket, prefix, redirect)
		}

		if len(page.Objects) > 0 {
			keys := make([]string, 0, len(page.Objects))
			for _, obj := range page.Objects {
				keys = append(keys, obj.Key)
			}
			if err := s.store.RemoveObjects(ctx, bucket, keys); err != nil {
				out := s.fail("delete_folder", err, bucket, prefix, redirect)
				if deleted > 0 {
					out.Notification.Message = fmt.Sprintf("%s (%d objects were already deleted)", out.Notification.Message, deleted)
				}
				return out
			}
			deleted += len(keys)
		}

		if !page.IsTruncated || page.NextContinuationToken == "" {
			break
		}
		token = page.NextContinuationToken
	}

	if deleted == 0 {
		return Outcome{Notification: warning("Folder '%s' is empty or does not exist.", prefix), Redirect: redirect}
	}
	return Outcome{Notification: success("Folder '%s' deleted successfully (%d objects).", prefix, deleted), Redirect: redirect}
}

// CopyMove copies src to dst and, for a move, deletes src afterwards. A
// failed delete leaves both objects in place.
func (s *ConsoleService) CopyMove(ctx context.Context, bucket, src, dst, operation string) Outcome {
	src = strings.TrimSpace(src)
	dst = strings.TrimSpace(dst)
	redirect := BrowseURL(bucket, ParentPrefix(src))

	if src == "" || dst == "" {
		return Outcome{Notification: danger("Source and destination keys are required."), Redirect: redirect}
	}
	if operation != OperationCopy && operation != OperationMove {
		return Outcome{Notification: danger("Unknown operation '%s'.", operation), Redirect: redirect}
	}
	if src == dst {
		return Outcome{Notification: warning("Source and destination are the same."), Redirect: redirect}
	}

	if _, err := s.store.StatObject(ctx, bucket, src); err != nil {
		if IsNotFound(err) && ErrorCode(err) != CodeNoSuchBucket {
			s.logFailure(operation, err, bucket, src)
			return Outcome{Notification: danger("Source object '%s' does not exist.", src), Redirect: redirect}
		}
		return s.fail(operation, err, bucket, src, redirect)
	}

	if err := s.store.CopyObject(ctx, bucket, src, dst); err != nil {
		return s.fail(operation, err, bucket, dst, redirect)
	}

	if operation == OperationCopy {
		return Outcome{Notification: success("Copied '%s' to '%s'.", src, dst), Redirect: redirect}
	}

	if err := s.store.RemoveObject(ctx, bucket, src); err != nil {
		s.logFailure(operation, err, bucket, src)
		return Outcome{
			Notification: warning("Copied '%s' to '%s' but could not delete the source: %v", src, dst, err),
			Redirect:     redirect,
		}
	}
	return Outcome{Notification: success("Moved '%s' to '%s'.", src, dst), Redirect: redirect}
}

// Download opens an object for streaming. On failure the returned outcome
// says where to send the user.
func (s *ConsoleService) Download(ctx context.Context, bucket, key string) (*ObjectDownload, *Outcome) {
	redirect := BrowseURL(bucket, ParentPrefix(key))
	if key == "" {
		return nil, &Outcome{Notification: danger("No object key given."), Redirect: redirect}
	}

	body, obj, err := s.store.GetObject(ctx, bucket, key)
	if err != nil {
		out := s.fail("download", err, bucket, key, redirect)
		return nil, &out
	}
	return &ObjectDownload{Body: body, Object: obj}, nil
}
