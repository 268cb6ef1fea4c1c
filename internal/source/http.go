package source

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/klauspost/pgzip"
)

var httpClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConnsPerHost: 10,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
	},
	Timeout: 5 * time.Minute,
}

// retryDelay is the wait before the given retry attempt.
var retryDelay = func(attempt int) time.Duration {
	return time.Duration(math.Pow(2, float64(attempt))) * time.Second
}

const maxAttempts = 3

// ErrTooLarge is returned when a download exceeds maxDownloadBytes.
var ErrTooLarge = errors.New("download exceeds size limit")

// maxDownloadBytes caps one document or reference dataset download.
var maxDownloadBytes int64 = 256 << 20

// IsHTTP reports whether loc is an http or https URL.
func IsHTTP(loc string) bool {
	return strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://")
}

// DownloadHTTP performs an HTTP GET with retries and returns the response.
// Client errors and oversized bodies are not retried. Reading more than
// maxDownloadBytes from resp.Body fails with ErrTooLarge. Caller is
// responsible for closing resp.Body.
func DownloadHTTP(ctx context.Context, url string) (*http.Response, error) {
	var resp *http.Response
	var err error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay(attempt)):
			}
		}

		req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if reqErr != nil {
			return nil, fmt.Errorf("creating request: %w", reqErr)
		}

		resp, err = httpClient.Do(req)
		if err != nil {
			continue
		}
		if resp.StatusCode == http.StatusOK {
			if resp.ContentLength > maxDownloadBytes {
				resp.Body.Close()
				return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, resp.ContentLength)
			}
			resp.Body = &cappedBody{ReadCloser: resp.Body, limit: maxDownloadBytes}
			return resp, nil
		}
		resp.Body.Close()
		err = fmt.Errorf("HTTP %d", resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, err // don't retry client errors
		}
	}

	return nil, fmt.Errorf("download failed after retries: %w", err)
}

// cappedBody fails once more than limit bytes have been read. Servers that
// omit Content-Length are caught here.
type cappedBody struct {
	io.ReadCloser
	limit int64
	read  int64
}

func (b *cappedBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	b.read += int64(n)
	if b.read > b.limit {
		return n - int(b.read-b.limit), fmt.Errorf("%w: more than %d bytes", ErrTooLarge, b.limit)
	}
	return n, err
}

// NewGzipReader creates a gzip decompression reader. When useStdGzip is true
// it uses compress/gzip, otherwise the parallel pgzip reader.
func NewGzipReader(r io.Reader, useStdGzip bool) (io.ReadCloser, error) {
	if useStdGzip {
		return gzip.NewReader(r)
	}
	return pgzip.NewReader(r)
}
