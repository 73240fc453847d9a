package source

import (
	"context"
	"fmt"
	"os"
)

// FileFetcher reads the listing from the local filesystem
type FileFetcher struct {
	path string
}

// NewFile creates a FileFetcher, expanding a leading ~/
func NewFile(path string) (*FileFetcher, error) {
	expanded, err := expandHome(path)
	if err != nil {
		return nil, err
	}
	return &FileFetcher{path: expanded}, nil
}

// Fetch reads the file
func (f *FileFetcher) Fetch(ctx context.Context) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("opening events file: %w", err)
	}
	defer file.Close()

	body, err := readDocument(file, maxDocumentSize)
	if err != nil {
		return nil, fmt.Errorf("reading events file: %w", err)
	}

	return &Document{
		Body:        body,
		ContentType: contentTypeForPath(f.path),
		Location:    f.path,
	}, nil
}

func (f *FileFetcher) String() string {
	return f.path
}
