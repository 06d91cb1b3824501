package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/arborlabs/keytree/pkg/store"
)

// lastModifiedMetaKey carries a caller-forced modification time as S3
// user metadata, since S3 does not allow setting LastModified directly.
const lastModifiedMetaKey = "keytree-last-modified"

// Store implements the store interfaces backed by an S3 bucket.
type Store struct {
	client  *awss3.Client
	bucket  string
	maxKeys int32
}

var (
	_ store.Store         = (*Store)(nil)
	_ store.ObjectGetter  = (*Store)(nil)
	_ store.ObjectPutter  = (*Store)(nil)
	_ store.ObjectDeleter = (*Store)(nil)
	_ store.TreeDeleter   = (*Store)(nil)
)

// New creates an S3 store from the given configuration.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, &store.StoreError{
			Op:      "New",
			Backend: store.BackendS3,
			Err:     err,
		}
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})

	return &Store{
		client:  client,
		bucket:  cfg.Bucket,
		maxKeys: clampMaxKeys(cfg.MaxKeys),
	}, nil
}

// loadAWSConfig builds the AWS SDK configuration from our Config.
func loadAWSConfig(ctx context.Context, cfg Config) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error

	if region := resolveRegion(cfg); region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	if cfg.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	return awsconfig.LoadDefaultConfig(ctx, opts...)
}

// resolveRegion determines the region to use. AWS S3 falls back to
// us-east-1; custom endpoints get no default so the SDK can decide.
func resolveRegion(cfg Config) string {
	if cfg.Region != "" {
		return cfg.Region
	}
	if cfg.Endpoint == "" {
		return DefaultAWSRegion
	}
	return ""
}

// Backend returns the backend type identifier.
func (s *Store) Backend() store.BackendType { return store.BackendS3 }

// Close releases resources. The underlying HTTP client needs no
// explicit teardown.
func (s *Store) Close() error { return nil }

// List lists the contents of a directory key. With Deep set the native
// S3 flat listing is used and the continuation token is surfaced as
// the resumption cursor.
func (s *Store) List(ctx context.Context, opts store.ListOptions) (*store.ListResult, error) {
	if opts.Deep {
		return s.listDeep(ctx, opts)
	}
	return s.listShallow(ctx, opts)
}

// listDeep performs a full-prefix flat listing. S3 enumerates keys in
// lexicographic order already, so the continuation token doubles as a
// stable cursor with no extra encoding.
func (s *Store) listDeep(ctx context.Context, opts store.ListOptions) (*store.ListResult, error) {
	input := &awss3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(keyPrefix(opts.Key)),
		MaxKeys: aws.Int32(s.pageSize(opts.MaxKeys)),
	}
	if opts.Cursor != "" {
		input.ContinuationToken = aws.String(opts.Cursor)
	}

	out, err := s.client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, s.wrapError("List", opts.Key, err)
	}

	result := &store.ListResult{}
	for _, obj := range out.Contents {
		result.Objects = append(result.Objects, objectInfo(obj))
	}
	if aws.ToBool(out.IsTruncated) {
		result.Cursor = aws.ToString(out.NextContinuationToken)
	}
	return result, nil
}

// listShallow lists one directory level using a "/" delimiter,
// aggregating all pages.
func (s *Store) listShallow(ctx context.Context, opts store.ListOptions) (*store.ListResult, error) {
	prefix := keyPrefix(opts.Key)
	result := &store.ListResult{}

	var token *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &awss3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(prefix),
			Delimiter:         aws.String("/"),
			MaxKeys:           aws.Int32(s.maxKeys),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, s.wrapError("List", opts.Key, err)
		}

		for _, obj := range out.Contents {
			// S3 consoles create zero-byte marker objects for folders;
			// skip the prefix itself.
			if aws.ToString(obj.Key) == prefix {
				continue
			}
			result.Objects = append(result.Objects, objectInfo(obj))
		}
		for _, cp := range out.CommonPrefixes {
			dir := strings.TrimSuffix(aws.ToString(cp.Prefix), "/")
			result.Dirs = append(result.Dirs, dir)
		}

		if !aws.ToBool(out.IsTruncated) {
			break
		}
		token = out.NextContinuationToken
	}

	sort.Strings(result.Dirs)
	sort.Slice(result.Objects, func(i, j int) bool {
		return result.Objects[i].Key < result.Objects[j].Key
	})
	return result, nil
}

// Stat returns metadata for a single object key.
func (s *Store) Stat(ctx context.Context, key string) (*store.ObjectInfo, error) {
	cleaned := cleanKey(key)
	out, err := s.client.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(cleaned),
	})
	if err != nil {
		return nil, s.wrapError("Stat", key, err)
	}

	info := &store.ObjectInfo{
		Key:          cleaned,
		Size:         aws.ToInt64(out.ContentLength),
		ETag:         cleanETag(aws.ToString(out.ETag)),
		LastModified: aws.ToTime(out.LastModified),
	}
	applyMetaLastModified(info, out.Metadata)
	return info, nil
}

// GetObject returns metadata and a reader for the object content. The
// caller must close the returned reader.
func (s *Store) GetObject(ctx context.Context, key string) (*store.ObjectInfo, io.ReadCloser, error) {
	cleaned := cleanKey(key)
	out, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(cleaned),
	})
	if err != nil {
		return nil, nil, s.wrapError("GetObject", key, err)
	}

	info := &store.ObjectInfo{
		Key:          cleaned,
		Size:         aws.ToInt64(out.ContentLength),
		ETag:         cleanETag(aws.ToString(out.ETag)),
		LastModified: aws.ToTime(out.LastModified),
	}
	applyMetaLastModified(info, out.Metadata)
	return info, out.Body, nil
}

// PutObject writes the object content under key. A forced
// LastModified cannot be applied to the S3 system timestamp, so it is
// recorded as user metadata and surfaced again by Stat and GetObject.
func (s *Store) PutObject(ctx context.Context, key string, body io.Reader, opts store.PutOptions) (*store.ObjectInfo, error) {
	cleaned := cleanKey(key)

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, &store.StoreError{
			Op:      "PutObject",
			Backend: store.BackendS3,
			Key:     key,
			Err:     err,
		}
	}

	input := &awss3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(cleaned),
		Body:   bytes.NewReader(data),
	}
	if !opts.LastModified.IsZero() {
		input.Metadata = map[string]string{
			lastModifiedMetaKey: opts.LastModified.UTC().Format(time.RFC3339Nano),
		}
	}

	out, err := s.client.PutObject(ctx, input)
	if err != nil {
		return nil, s.wrapError("PutObject", key, err)
	}

	info := &store.ObjectInfo{
		Key:          cleaned,
		Size:         int64(len(data)),
		ETag:         cleanETag(aws.ToString(out.ETag)),
		LastModified: time.Now().UTC(),
	}
	if !opts.LastModified.IsZero() {
		info.LastModified = opts.LastModified
	}
	return info, nil
}

// DeleteObject removes a single object. Deleting a missing key
// reports ErrNotFound, which requires a head check since S3 deletes
// are unconditionally idempotent.
func (s *Store) DeleteObject(ctx context.Context, key string) error {
	cleaned := cleanKey(key)

	if _, err := s.Stat(ctx, key); err != nil {
		return err
	}

	_, err := s.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(cleaned),
	})
	if err != nil {
		return s.wrapError("DeleteObject", key, err)
	}
	return nil
}

// DeleteTree removes every object under the given directory key.
func (s *Store) DeleteTree(ctx context.Context, key string) error {
	prefix := keyPrefix(key)

	var token *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &awss3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(prefix),
			MaxKeys:           aws.Int32(MaxAllowedKeys),
			ContinuationToken: token,
		})
		if err != nil {
			return s.wrapError("DeleteTree", key, err)
		}

		if len(out.Contents) > 0 {
			objects := make([]types.ObjectIdentifier, 0, len(out.Contents))
			for _, obj := range out.Contents {
				objects = append(objects, types.ObjectIdentifier{Key: obj.Key})
			}
			_, err = s.client.DeleteObjects(ctx, &awss3.DeleteObjectsInput{
				Bucket: aws.String(s.bucket),
				Delete: &types.Delete{
					Objects: objects,
					Quiet:   aws.Bool(true),
				},
			})
			if err != nil {
				return s.wrapError("DeleteTree", key, err)
			}
		}

		if !aws.ToBool(out.IsTruncated) {
			return nil
		}
		token = out.NextContinuationToken
	}
}

// pageSize resolves the effective page size for a list call.
func (s *Store) pageSize(requested int) int32 {
	if requested <= 0 {
		return s.maxKeys
	}
	return clampMaxKeys(requested)
}

// wrapError translates S3 API errors into store sentinel errors.
func (s *Store) wrapError(op, key string, err error) error {
	wrapped := &store.StoreError{
		Op:      op,
		Backend: store.BackendS3,
		Key:     key,
		Err:     err,
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "NoSuchBucket":
			wrapped.Err = store.ErrNotFound
		case "AccessDenied", "Forbidden", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			wrapped.Err = store.ErrAccessDenied
		}
	}
	return wrapped
}

// objectInfo converts an SDK object entry into our metadata struct.
func objectInfo(obj types.Object) store.ObjectInfo {
	return store.ObjectInfo{
		Key:          aws.ToString(obj.Key),
		Size:         aws.ToInt64(obj.Size),
		ETag:         cleanETag(aws.ToString(obj.ETag)),
		LastModified: aws.ToTime(obj.LastModified),
	}
}

// applyMetaLastModified overrides LastModified when a forced timestamp
// was recorded at put time.
func applyMetaLastModified(info *store.ObjectInfo, meta map[string]string) {
	raw, ok := meta[lastModifiedMetaKey]
	if !ok {
		return
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		info.LastModified = t
	}
}

// cleanETag strips the surrounding quotes S3 puts on ETag values.
func cleanETag(etag string) string {
	return strings.Trim(etag, `"`)
}

// cleanKey normalizes a key to the canonical slash-separated form.
func cleanKey(key string) string {
	return strings.Trim(path.Clean("/"+strings.TrimSpace(key)), "/")
}

// keyPrefix converts a directory key into an S3 listing prefix with a
// trailing slash. The empty key maps to the bucket root.
func keyPrefix(key string) string {
	cleaned := cleanKey(key)
	if cleaned == "" || cleaned == "." {
		return ""
	}
	return cleaned + "/"
}

// clampMaxKeys bounds a requested page size to the S3 limit.
func clampMaxKeys(n int) int32 {
	if n <= 0 {
		return DefaultMaxKeys
	}
	if n > MaxAllowedKeys {
		return MaxAllowedKeys
	}
	return int32(n)
}
