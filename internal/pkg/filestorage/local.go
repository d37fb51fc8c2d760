package filestorage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fitalumni/alumni/internal/pkg/logger"
)

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string // The root directory where files will be stored
}

// NewLocalStorage creates a new LocalStorage instance rooted at basePath.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage directory %s: %w", basePath, err)
	}
	if err := os.MkdirAll(abs, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", abs).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", abs, err)
	}
	logger.Info().Str("path", abs).Msg("Local storage directory ensured")

	return &LocalStorage{basePath: abs}, nil
}

// BasePath returns the upload root
func (ls *LocalStorage) BasePath() string {
	return ls.basePath
}

// resolve maps a relative path into the upload root, refusing anything that escapes it
func (ls *LocalStorage) resolve(relPath string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(strings.TrimPrefix(relPath, "/")))
	full := filepath.Join(ls.basePath, clean)
	if full != ls.basePath && !strings.HasPrefix(full, ls.basePath+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid file path: %s", relPath)
	}
	return full, nil
}

// Save writes the upload under subDir with the given name
func (ls *LocalStorage) Save(up Upload, subDir, filename string) (string, error) {
	if up == nil {
		return "", nil
	}

	relPath := filepath.ToSlash(filepath.Join(subDir, filename))
	dstPath, err := ls.resolve(relPath)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(dstPath), os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create subdirectory")
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}

	src, err := up.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", up.Filename()).Msg("Failed to open uploaded file")
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, src); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	logger.Info().Str("filename", up.Filename()).Str("saved_as", relPath).Msg("File saved successfully")
	return relPath, nil
}

// Delete removes a stored file.
// Returns nil if the file doesn't exist or the reference is an external URL.
func (ls *LocalStorage) Delete(relPath string) error {
	if relPath == "" || IsExternalURL(relPath) {
		return nil
	}

	physicalPath, err := ls.resolve(relPath)
	if err != nil {
		return err
	}
	if physicalPath == ls.basePath {
		return fmt.Errorf("invalid file path: %s", relPath)
	}

	if err := os.Remove(physicalPath); err != nil {
		if os.IsNotExist(err) {
			logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
			return nil
		}
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", physicalPath).Msg("File deleted successfully")
	return nil
}

// DeleteAll removes every file, logging failures instead of returning them
func (ls *LocalStorage) DeleteAll(relPaths []string) {
	for _, p := range relPaths {
		if err := ls.Delete(p); err != nil {
			logger.Warn().Err(err).Str("path", p).Msg("Failed to remove orphaned file")
		}
	}
}

// FullPath returns the full filesystem path for a stored relative path, or "" when it is invalid.
func (ls *LocalStorage) FullPath(relPath string) string {
	full, err := ls.resolve(relPath)
	if err != nil {
		return ""
	}
	return full
}
