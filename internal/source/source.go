// Package source opens documents and datasets from local paths, HTTP(S) URLs
// and s3:// URIs, decompressing gzip-wrapped files transparently.
package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gyeh/intake-recon/internal/cloud"
)

// ObjectStore is the part of S3 the opener needs.
type ObjectStore interface {
	Open(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	List(ctx context.Context, bucket, prefix string) ([]string, error)
}

// Opener resolves locations to readers.
type Opener struct {
	// Store serves s3:// locations. When nil they fail.
	Store ObjectStore
	// UseStdGzip selects compress/gzip over pgzip.
	UseStdGzip bool
}

// Open returns the (decompressed) content of loc. Caller closes it.
func (o *Opener) Open(ctx context.Context, loc string) (io.ReadCloser, error) {
	rc, err := o.openRaw(ctx, loc)
	if err != nil {
		return nil, err
	}
	if !isGzip(loc) {
		return rc, nil
	}

	gz, err := NewGzipReader(rc, o.UseStdGzip)
	if err != nil {
		rc.Close()
		return nil, fmt.Errorf("gzip reader: %w", err)
	}
	return &stackedCloser{Reader: gz, closers: []io.Closer{gz, rc}}, nil
}

// ReadAll returns the full (decompressed) content of loc.
func (o *Opener) ReadAll(ctx context.Context, loc string) ([]byte, error) {
	rc, err := o.Open(ctx, loc)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", Name(loc), err)
	}
	return data, nil
}

func (o *Opener) openRaw(ctx context.Context, loc string) (io.ReadCloser, error) {
	switch {
	case cloud.IsS3(loc):
		if o.Store == nil {
			return nil, fmt.Errorf("no object store configured for %s", loc)
		}
		bucket, key, err := cloud.ParseS3URI(loc)
		if err != nil {
			return nil, err
		}
		return o.Store.Open(ctx, bucket, key)

	case IsHTTP(loc):
		resp, err := DownloadHTTP(ctx, loc)
		if err != nil {
			return nil, err
		}
		return resp.Body, nil

	default:
		return os.Open(loc)
	}
}

// List returns the locations directly under dir (a local directory or an
// s3:// prefix) whose names carry one of exts, ignoring case and a trailing
// .gz. Results are sorted by name.
func (o *Opener) List(ctx context.Context, dir string, exts []string) ([]string, error) {
	var locs []string

	if cloud.IsS3(dir) {
		if o.Store == nil {
			return nil, fmt.Errorf("no object store configured for %s", dir)
		}
		bucket, prefix, err := cloud.ParseS3URI(dir)
		if err != nil {
			return nil, err
		}
		if prefix != "" && !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}
		keys, err := o.Store.List(ctx, bucket, prefix)
		if err != nil {
			return nil, err
		}
		for _, k := range keys {
			rest := strings.TrimPrefix(k, prefix)
			if rest == "" || strings.Contains(rest, "/") || !HasExtension(k, exts) {
				continue
			}
			locs = append(locs, cloud.Scheme+bucket+"/"+k)
		}
	} else {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("reading directory: %w", err)
		}
		for _, e := range entries {
			if e.IsDir() || !HasExtension(e.Name(), exts) {
				continue
			}
			locs = append(locs, filepath.Join(dir, e.Name()))
		}
	}

	sort.Slice(locs, func(i, j int) bool { return Name(locs[i]) < Name(locs[j]) })
	return locs, nil
}

// HasExtension reports whether name ends in one of exts, ignoring case and a
// trailing .gz.
func HasExtension(name string, exts []string) bool {
	ext := strings.ToLower(path.Ext(strings.TrimSuffix(strings.ToLower(name), ".gz")))
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

// Name returns a human-readable file name for loc: the base name without
// query parameters or a trailing .gz.
func Name(loc string) string {
	if i := strings.IndexByte(loc, '?'); i >= 0 && IsHTTP(loc) {
		loc = loc[:i]
	}
	base := path.Base(filepath.ToSlash(loc))
	if strings.HasSuffix(strings.ToLower(base), ".gz") {
		base = base[:len(base)-3]
	}
	return base
}

// ReadLocations reads one location per line, skipping blanks and # comments.
func ReadLocations(listPath string) ([]string, error) {
	f, err := os.Open(listPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var locs []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024) // signed URLs can be long
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		locs = append(locs, line)
	}
	return locs, scanner.Err()
}

func isGzip(loc string) bool {
	if IsHTTP(loc) {
		if i := strings.IndexByte(loc, '?'); i >= 0 {
			loc = loc[:i]
		}
	}
	return strings.HasSuffix(strings.ToLower(loc), ".gz")
}

type stackedCloser struct {
	io.Reader
	closers []io.Closer
}

func (s *stackedCloser) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
