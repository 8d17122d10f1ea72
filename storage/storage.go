/*
	Package storage gives access to a dataset tree held in a local directory, a
	Google Cloud Storage bucket, or memory.  Keys are slash-separated paths
	relative to the tree's root.
*/
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	"gocloud.dev/blob/gcsblob"
	"gocloud.dev/blob/memblob"
	"gocloud.dev/gcerrors"
	"gocloud.dev/gcp"

	"github.com/janelia-flyem/tomoprep/tomo"
)

// ErrNotFound is returned when a key does not exist in the store.
var ErrNotFound = errors.New("not found")

// attrsExt is the suffix of the metadata sidecar fileblob writes next to each object.
const attrsExt = ".attrs"

// Store is a dataset tree backed by a blob bucket.
type Store struct {
	ref    string
	bucket *blob.Bucket

	// dir is the root of a local directory store, else "".
	dir string
}

// Open returns a store for the given reference, which may be a local path, a
// "file://" URL, a "gs://bucket/prefix" URL, or "mem://" for an empty in-memory store.
// Local directories are created if they don't exist.
func Open(ctx context.Context, ref string) (*Store, error) {
	if ref == "" {
		return nil, fmt.Errorf("no storage location given")
	}
	if !tomo.IsURL(ref) {
		return openDir(ref)
	}
	u, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("bad storage URL %q: %v", ref, err)
	}
	switch u.Scheme {
	case "file":
		return openDir(u.Path)
	case "mem":
		return NewStore(memblob.OpenBucket(nil), ref), nil
	case "gs":
		return openGCS(ctx, ref, u.Host, strings.TrimPrefix(u.Path, "/"))
	default:
		return nil, fmt.Errorf("unsupported storage scheme %q in %q", u.Scheme, ref)
	}
}

// NewStore wraps an open bucket.
func NewStore(bucket *blob.Bucket, ref string) *Store {
	return &Store{ref: ref, bucket: bucket}
}

func openDir(dir string) (*Store, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		tomo.Infof("Local store not already at path (%s). Creating ...\n", dir)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	bucket, err := fileblob.OpenBucket(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("can't open local store @ %q: %v", dir, err)
	}
	store := NewStore(bucket, dir)
	store.dir = dir
	return store, nil
}

func openGCS(ctx context.Context, ref, bucketName, prefix string) (*Store, error) {
	tomo.Infof("Trying to open GCS store @ %q ...\n", ref)

	// See https://cloud.google.com/docs/authentication/production
	creds, err := gcp.DefaultCredentials(ctx)
	if err != nil {
		return nil, err
	}
	client, err := gcp.NewHTTPClient(gcp.DefaultTransport(), gcp.CredentialsTokenSource(creds))
	if err != nil {
		return nil, err
	}
	bucket, err := gcsblob.OpenBucket(ctx, client, bucketName, nil)
	if err != nil {
		return nil, fmt.Errorf("can't open GCS store @ %q: %v", ref, err)
	}
	if prefix != "" {
		bucket = blob.PrefixedBucket(bucket, strings.TrimSuffix(prefix, "/")+"/")
	}
	return NewStore(bucket, ref), nil
}

func (s *Store) String() string {
	return fmt.Sprintf("store @ %s", s.ref)
}

// Close releases the bucket.
func (s *Store) Close() error {
	return s.bucket.Close()
}

func (s *Store) list(ctx context.Context, dir string, wantDirs bool) ([]string, error) {
	prefix := ""
	if dir != "" {
		prefix = strings.TrimSuffix(dir, "/") + "/"
	}
	iter := s.bucket.List(&blob.ListOptions{Prefix: prefix, Delimiter: "/"})
	var names []string
	for {
		obj, err := iter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("can't list %q in %s: %w", dir, s, err)
		}
		if obj.IsDir != wantDirs {
			continue
		}
		name := strings.TrimSuffix(strings.TrimPrefix(obj.Key, prefix), "/")
		if name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Dirs returns the sorted names of the subdirectories of dir.
func (s *Store) Dirs(ctx context.Context, dir string) ([]string, error) {
	return s.list(ctx, dir, true)
}

// Files returns the sorted names of the files directly within dir.
func (s *Store) Files(ctx context.Context, dir string) ([]string, error) {
	return s.list(ctx, dir, false)
}

// Key joins path elements into a store key.
func Key(elem ...string) string {
	return path.Join(elem...)
}

func (s *Store) wrapErr(key string, err error) error {
	if gcerrors.Code(err) == gcerrors.NotFound {
		return fmt.Errorf("%q in %s: %w", key, s, ErrNotFound)
	}
	return fmt.Errorf("%q in %s: %w", key, s, err)
}

// ReadAll returns the contents of the key.
func (s *Store) ReadAll(ctx context.Context, key string) ([]byte, error) {
	data, err := s.bucket.ReadAll(ctx, key)
	if err != nil {
		return nil, s.wrapErr(key, err)
	}
	return data, nil
}

// NewReader returns a reader for the key that must be closed by the caller.
func (s *Store) NewReader(ctx context.Context, key string) (io.ReadCloser, error) {
	r, err := s.bucket.NewReader(ctx, key, nil)
	if err != nil {
		return nil, s.wrapErr(key, err)
	}
	return r, nil
}

// WriteAll replaces the contents of the key.  Local directory stores hold only
// the written file, without a metadata sidecar.
func (s *Store) WriteAll(ctx context.Context, key string, data []byte) error {
	if err := s.bucket.WriteAll(ctx, key, data, nil); err != nil {
		return s.wrapErr(key, err)
	}
	if s.dir != "" {
		sidecar := filepath.Join(s.dir, filepath.FromSlash(key)) + attrsExt
		if err := os.Remove(sidecar); err != nil && !os.IsNotExist(err) {
			tomo.Warningf("Unable to remove metadata file %q: %v\n", sidecar, err)
		}
	}
	return nil
}

// Exists returns true if the key is present.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	found, err := s.bucket.Exists(ctx, key)
	if err != nil {
		return false, s.wrapErr(key, err)
	}
	return found, nil
}
