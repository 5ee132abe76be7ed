// Package qrsdetect holds the file and configuration helpers shared by the
// QRS detection commands.
package qrsdetect

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
)

// Open returns the decompressed contents of path. Paths beginning with
// gs:// are read from Google Storage when client is non-nil; everything else
// is read from the local filesystem after ~ expansion.
func Open(ctx context.Context, path string, client *storage.Client) (io.ReadCloser, error) {
	raw, err := OpenRaw(ctx, path, client)
	if err != nil {
		return nil, err
	}

	rc, err := MaybeDecompressReadCloser(raw)
	if err != nil {
		raw.Close()
		return nil, pfx.Err(fmt.Errorf("%s: %w", path, err))
	}

	return rc, nil
}

// OpenRaw is Open without decompression, for binary formats. A missing file
// or object yields an error matching fs.ErrNotExist.
func OpenRaw(ctx context.Context, path string, client *storage.Client) (io.ReadCloser, error) {
	if client != nil && strings.HasPrefix(path, "gs://") {
		bucketName, objectName, err := SplitGSPath(path)
		if err != nil {
			return nil, err
		}

		r, err := client.Bucket(bucketName).Object(objectName).NewReader(ctx)
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("%s: %w", path, fs.ErrNotExist)
		} else if err != nil {
			return nil, pfx.Err(fmt.Errorf("%s: %w", path, err))
		}
		return r, nil
	}

	f, err := os.Open(ExpandHome(path))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, err
	} else if err != nil {
		return nil, pfx.Err(err)
	}
	return f, nil
}

// SplitGSPath splits gs://bucket/path/to/object into its bucket and object
// names.
func SplitGSPath(path string) (bucket, object string, err error) {
	parts := strings.SplitN(strings.TrimPrefix(path, "gs://"), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("tried to split your google storage path into bucket and object, but got %d parts: %v", len(parts), parts)
	}

	return parts[0], parts[1], nil
}

// JoinPath joins a directory and a file name, keeping gs:// prefixes intact.
func JoinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	if strings.HasPrefix(dir, "gs://") {
		return strings.TrimSuffix(dir, "/") + "/" + name
	}
	return filepath.Join(dir, name)
}
