package storage

import (
	"path/filepath"
	"strings"
	"time"

	"echohub/internal/pkg/errs"
)

const (
	// MaxImageSizeMB is the maximum allowed profile image size in megabytes.
	MaxImageSizeMB = 5

	// MaxImageSize is the maximum allowed profile image size in bytes.
	MaxImageSize = MaxImageSizeMB * 1024 * 1024

	// PresignedURLDuration is the fixed duration for which an upload URL is valid.
	PresignedURLDuration = 5 * time.Minute
)

// allowedMIMETypes defines the set of permitted MIME types for profile images.
var allowedMIMETypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
}

// extToMIME maps file extensions to their corresponding MIME types.
var extToMIME = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// ValidateImageSize checks if the provided file size is within acceptable limits.
func ValidateImageSize(fileSize int64) *errs.CustomError {
	if fileSize <= 0 || fileSize > MaxImageSize {
		return errs.NewError(errs.ErrInvalidParams)
	}

	return nil
}

// ValidateImageType checks that the file name and MIME type agree and are allowed.
func ValidateImageType(fileName string, mimeType string) *errs.CustomError {
	lowerMimeType := strings.ToLower(mimeType)

	if _, ok := allowedMIMETypes[lowerMimeType]; !ok {
		return errs.NewError(errs.ErrInvalidParams)
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	if len(ext) < 2 {
		return errs.NewError(errs.ErrInvalidParams)
	}

	expectedMIME, ok := extToMIME[ext]
	if !ok || expectedMIME != lowerMimeType {
		return errs.NewError(errs.ErrInvalidParams)
	}

	return nil
}
