package service

import (
	"context"
	"fmt"

	"github.com/Baaaki/campus-market/internal/apperrors"
	"github.com/Baaaki/campus-market/internal/storage"
	"github.com/Baaaki/campus-market/pkg/logger"
	"go.uber.org/zap"
)

const (
	MaxImageSize = 2 << 20 // 2 MiB
	MaxImages    = 10
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// prepareImages checks every upload before any of them is stored. Problems are
// added to verr under images or images.N; I/O errors are returned.
func prepareImages(files []storage.File, required bool, verr *apperrors.ValidationError) ([]storage.File, error) {
	if required && len(files) == 0 {
		verr.Add("images", "at least one image is required")
		return nil, nil
	}
	if len(files) > MaxImages {
		verr.Add("images", fmt.Sprintf("at most %d images are allowed", MaxImages))
		return nil, nil
	}

	prepared := make([]storage.File, 0, len(files))
	for i, f := range files {
		field := fmt.Sprintf("images.%d", i)

		if f.Size > MaxImageSize {
			verr.Add(field, "image must not be larger than 2 MiB")
			continue
		}

		contentType, body, err := storage.Sniff(f.Body)
		if err != nil {
			return nil, fmt.Errorf("read upload %q: %w", f.Name, err)
		}
		if !allowedImageTypes[contentType] {
			verr.Add(field, "image must be a JPEG or PNG file")
			continue
		}

		f.ContentType = contentType
		f.Body = body
		prepared = append(prepared, f)
	}
	return prepared, nil
}

// storeImages stores every file or none: on failure the ones already stored
// are removed again.
func (s *ProductService) storeImages(ctx context.Context, files []storage.File) ([]string, error) {
	refs := make([]string, 0, len(files))
	for _, f := range files {
		ref, err := s.store.Store(ctx, f)
		if err != nil {
			logger.Log.Error("Failed to store image",
				zap.String("file", f.Name),
				zap.Error(err),
			)
			s.discardImages(ctx, refs)
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// discardImages removes stored objects. Failures only leave orphans behind,
// so they are logged and otherwise ignored.
func (s *ProductService) discardImages(ctx context.Context, refs []string) {
	ctx = context.WithoutCancel(ctx)
	for _, ref := range refs {
		if err := s.store.Delete(ctx, ref); err != nil {
			logger.Log.Warn("Failed to delete stored image",
				zap.String("ref", ref),
				zap.Error(err),
			)
		}
	}
}
