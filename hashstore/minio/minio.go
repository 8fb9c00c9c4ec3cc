package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/hupe1980/redimap/hashstore"
	"github.com/minio/minio-go/v7"
)

var _ hashstore.Conn = (*Store)(nil)

// Store implements hashstore.Conn on MinIO or any S3-compatible object
// storage. Each hash field is one object at
//
//	<rootPrefix>/<name>/<url-escaped field>
//
// with the field value as the object body. Field names are path-escaped in
// object keys and unescaped again on listing, so arbitrary strings are
// safe.
//
// Single-field commands are one object operation each (Set additionally
// stats the object first to report creation). Hash-wide commands (Len,
// Keys, Values, GetAll, Drop) list the hash prefix and are linear in field
// count, with one extra GET per field for Values and GetAll. None of the
// multi-object commands are atomic, and the created/removed flags derive
// from a separate stat before the write, so they are best-effort under
// concurrent modification of the same field.
//
// The MinIO client is safe for concurrent use; serve a Store through
// hashstore.NewStaticPool.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewStore creates a MinIO-backed hash store.
// rootPrefix is prepended to all object keys (e.g. "hashes/").
func NewStore(client *minio.Client, bucket, rootPrefix string) *Store {
	if rootPrefix != "" && !strings.HasSuffix(rootPrefix, "/") {
		rootPrefix += "/"
	}
	return &Store{
		client: client,
		bucket: bucket,
		prefix: rootPrefix,
	}
}

// Keys are built by plain concatenation, never path.Join: joining would
// collapse "", "." and ".." segments and let such field names land on (or
// outside) the hash prefix itself.
func (s *Store) objectKey(name, field string) string {
	return s.hashPrefix(name) + escapeField(field)
}

func (s *Store) hashPrefix(name string) string {
	return s.prefix + url.PathEscape(name) + "/"
}

// escapeField makes a field name a single, stable object-key segment.
// url.PathEscape leaves "." and ".." untouched, and bare dot segments can
// still be collapsed by URL normalization along the request path, so those
// two names are escaped fully. The empty field name maps to the bare hash
// prefix, a valid object key of its own.
func escapeField(field string) string {
	switch field {
	case ".":
		return "%2E"
	case "..":
		return "%2E%2E"
	default:
		return url.PathEscape(field)
	}
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.Code == "NotFound"
}

// Len counts the objects under the hash prefix.
func (s *Store) Len(ctx context.Context, name string) (int64, error) {
	var total int64
	for obj := range s.list(ctx, name) {
		if obj.Err != nil {
			return 0, fmt.Errorf("list hash %q: %w", name, obj.Err)
		}
		total++
	}
	return total, nil
}

// Exists stats the field object.
func (s *Store) Exists(ctx context.Context, name, field string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, s.objectKey(name, field), minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat field %q of hash %q: %w", field, name, err)
	}
	return true, nil
}

// Get reads the field object body.
func (s *Store) Get(ctx context.Context, name, field string) (string, bool, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.objectKey(name, field), minio.GetObjectOptions{})
	if err != nil {
		return "", false, fmt.Errorf("get field %q of hash %q: %w", field, name, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if isNotFound(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read field %q of hash %q: %w", field, name, err)
	}
	return string(data), true, nil
}

// Set writes the field object. The preceding stat only serves the created
// flag; the write itself is a single PutObject.
func (s *Store) Set(ctx context.Context, name, field, value string) (bool, error) {
	existed, err := s.Exists(ctx, name, field)
	if err != nil {
		return false, err
	}

	_, err = s.client.PutObject(ctx, s.bucket, s.objectKey(name, field),
		bytes.NewReader([]byte(value)), int64(len(value)), minio.PutObjectOptions{})
	if err != nil {
		return false, fmt.Errorf("put field %q of hash %q: %w", field, name, err)
	}
	return !existed, nil
}

// Del removes each field object, counting the ones that existed. The
// count comes from a stat before each remove and is best-effort: two
// clients deleting the same field concurrently may both count it.
func (s *Store) Del(ctx context.Context, name string, fields ...string) (int64, error) {
	var removed int64
	for _, field := range fields {
		existed, err := s.Exists(ctx, name, field)
		if err != nil {
			return removed, err
		}
		if !existed {
			continue
		}

		if err := s.client.RemoveObject(ctx, s.bucket, s.objectKey(name, field), minio.RemoveObjectOptions{}); err != nil {
			if isNotFound(err) {
				continue // already gone
			}
			return removed, fmt.Errorf("remove field %q of hash %q: %w", field, name, err)
		}
		removed++
	}
	return removed, nil
}

// SetAll writes every entry as its own object.
func (s *Store) SetAll(ctx context.Context, name string, entries map[string]string) (int64, error) {
	var created int64
	for field, value := range entries {
		isNew, err := s.Set(ctx, name, field, value)
		if err != nil {
			return created, err
		}
		if isNew {
			created++
		}
	}
	return created, nil
}

// Drop removes every object under the hash prefix.
func (s *Store) Drop(ctx context.Context, name string) (int64, error) {
	var existed int64
	for obj := range s.list(ctx, name) {
		if obj.Err != nil {
			return 0, fmt.Errorf("list hash %q: %w", name, obj.Err)
		}

		if err := s.client.RemoveObject(ctx, s.bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil && !isNotFound(err) {
			return 0, fmt.Errorf("remove object %q: %w", obj.Key, err)
		}
		existed = 1
	}
	return existed, nil
}

// Keys lists the hash prefix and unescapes the field names.
func (s *Store) Keys(ctx context.Context, name string) ([]string, error) {
	var keys []string
	for obj := range s.list(ctx, name) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list hash %q: %w", name, obj.Err)
		}

		field, err := s.fieldFromKey(name, obj.Key)
		if err != nil {
			return nil, err
		}
		keys = append(keys, field)
	}
	return keys, nil
}

// Values reads the body of every field object.
func (s *Store) Values(ctx context.Context, name string) ([]string, error) {
	all, err := s.GetAll(ctx, name)
	if err != nil {
		return nil, err
	}

	values := make([]string, 0, len(all))
	for _, value := range all {
		values = append(values, value)
	}
	return values, nil
}

// GetAll lists the hash prefix and fetches each field object.
func (s *Store) GetAll(ctx context.Context, name string) (map[string]string, error) {
	fields, err := s.Keys(ctx, name)
	if err != nil {
		return nil, err
	}

	all := make(map[string]string, len(fields))
	for _, field := range fields {
		value, ok, err := s.Get(ctx, name, field)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue // removed between list and get
		}
		all[field] = value
	}
	return all, nil
}

func (s *Store) list(ctx context.Context, name string) <-chan minio.ObjectInfo {
	return s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.hashPrefix(name),
		Recursive: true,
	})
}

func (s *Store) fieldFromKey(name, key string) (string, error) {
	escaped := strings.TrimPrefix(key, s.hashPrefix(name))
	field, err := url.PathUnescape(escaped)
	if err != nil {
		return "", fmt.Errorf("malformed field key %q: %w", key, err)
	}
	return field, nil
}
