package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	UserAgent = "nearby-events/1.0 (github.com/pfrederiksen/nearby-events)"
	Timeout   = 30 * time.Second

	// maxDocumentSize bounds how much of a listing is read into memory
	maxDocumentSize = 32 << 20
)

// ErrTooLarge is returned for listings bigger than the read limit
var ErrTooLarge = errors.New("listing exceeds size limit")

// Document is a fetched listing before decoding
type Document struct {
	Body        []byte
	ContentType string
	Location    string
}

// Fetcher retrieves the raw listing document
type Fetcher interface {
	Fetch(ctx context.Context) (*Document, error)
	String() string
}

// Options configures the fetchers created by New
type Options struct {
	Timeout   time.Duration
	UserAgent string
	S3        S3Options
}

// New returns the Fetcher matching the location's scheme
func New(location string, opts Options) (Fetcher, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("no event source configured")
	}

	u, err := url.Parse(location)
	if err == nil {
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return NewHTTP(location, opts.Timeout, opts.UserAgent), nil
		case "s3":
			key := strings.TrimPrefix(u.Path, "/")
			if u.Host == "" || key == "" {
				return nil, fmt.Errorf("invalid S3 location %q: want s3://bucket/key", location)
			}
			return NewS3(opts.S3, u.Host, key)
		case "file":
			return NewFile(u.Path)
		}
	}

	return NewFile(location)
}

// readDocument reads r completely, failing instead of truncating past limit bytes
func readDocument(r io.Reader, limit int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w of %d bytes", ErrTooLarge, limit)
	}
	return body, nil
}

// contentTypeForPath guesses the document type from a file extension
func contentTypeForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return "text/html"
	default:
		return "application/json"
	}
}

// expandHome expands a leading ~/ to the user's home directory
func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}
