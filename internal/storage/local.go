package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Baaaki/campus-market/pkg/logger"
	"go.uber.org/zap"
)

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates the base directory if needed.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(filepath.Join(basePath, productPrefix), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Log.Info("Local storage directory ready", zap.String("path", basePath))

	return &LocalStorage{basePath: basePath}, nil
}

// BasePath is the directory served under /storage.
func (ls *LocalStorage) BasePath() string {
	return ls.basePath
}

func (ls *LocalStorage) Store(ctx context.Context, file File) (string, error) {
	key := newObjectKey(file)
	dstPath := filepath.Join(ls.basePath, filepath.FromSlash(key))

	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, file.Body); err != nil {
		// Attempt to remove the partially created file
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	logger.Log.Debug("File stored",
		zap.String("original_name", file.Name),
		zap.String("ref", key),
	)
	return key, nil
}

// Delete removes the file behind ref. A missing file counts as deleted.
func (ls *LocalStorage) Delete(ctx context.Context, ref string) error {
	cleaned, err := cleanReference(ref)
	if err != nil {
		return err
	}

	physicalPath := filepath.Join(ls.basePath, filepath.FromSlash(cleaned))
	if err := os.Remove(physicalPath); err != nil {
		if os.IsNotExist(err) {
			logger.Log.Warn("File to delete does not exist", zap.String("ref", ref))
			return nil
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Log.Debug("File deleted", zap.String("ref", ref))
	return nil
}
