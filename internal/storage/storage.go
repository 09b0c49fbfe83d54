// Package storage persists product images and hands back opaque references.
// The catalog only stores and deletes references; it never reads the bytes back.
package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// ErrInvalidReference is returned for references that escape the store.
var ErrInvalidReference = errors.New("invalid storage reference")

// File is an upload on its way to a store.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ObjectStore is implemented by LocalStorage and S3Storage.
type ObjectStore interface {
	Store(ctx context.Context, file File) (string, error)
	Delete(ctx context.Context, ref string) error
}

const (
	productPrefix = "products"
	sniffLen      = 3072
)

// Sniff detects the content type from the first bytes of r and returns a reader
// that still yields the whole stream.
func Sniff(r io.Reader) (string, io.Reader, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", nil, err
	}
	head = head[:n]
	mtype := mimetype.Detect(head)
	return mtype.String(), io.MultiReader(bytes.NewReader(head), r), nil
}

// newObjectKey builds products/<uuid><ext>, deriving ext from the detected type
// when possible so a renamed file cannot pick its own extension.
func newObjectKey(file File) string {
	ext := ""
	if file.ContentType != "" {
		if m := mimetype.Lookup(file.ContentType); m != nil {
			ext = m.Extension()
		}
	}
	if ext == "" {
		ext = strings.ToLower(path.Ext(file.Name))
	}
	return productPrefix + "/" + uuid.New().String() + ext
}

// cleanReference rejects empty, absolute and parent-relative references.
func cleanReference(ref string) (string, error) {
	if ref == "" {
		return "", ErrInvalidReference
	}
	cleaned := path.Clean(strings.ReplaceAll(ref, "\\", "/"))
	if strings.HasPrefix(cleaned, "/") || cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidReference
	}
	return cleaned, nil
}
