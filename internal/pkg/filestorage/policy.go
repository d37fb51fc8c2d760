package filestorage

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/fitalumni/alumni/internal/pkg/apperrors"
	"github.com/google/uuid"
)

// Policy restricts the extension and size of an upload
type Policy struct {
	Extensions []string
	MaxBytes   int64 // 0 means no policy-specific limit
}

var (
	// ImagePolicy applies to avatars, post images and event images
	ImagePolicy = Policy{Extensions: []string{"png", "jpg", "jpeg", "gif"}}
	// LogoPolicy applies to company logos
	LogoPolicy = Policy{Extensions: []string{"png", "jpg", "jpeg"}, MaxBytes: 5 << 20}
	// ResumePolicy applies to job application resumes
	ResumePolicy = Policy{Extensions: []string{"pdf", "doc", "docx"}}
)

// Check validates the upload and returns its lower-cased extension without the dot
func (p Policy) Check(up Upload) (string, error) {
	ext := Extension(up.Filename())
	allowed := false
	for _, e := range p.Extensions {
		if e == ext {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", apperrors.NewCustomError(apperrors.ErrFileTypeNotAllowed,
			fmt.Sprintf("file type not allowed, expected one of: %s", strings.Join(p.Extensions, ", ")))
	}
	if p.MaxBytes > 0 && up.Size() > p.MaxBytes {
		return "", apperrors.NewCustomError(apperrors.ErrFileTooLarge,
			fmt.Sprintf("file exceeds the %d MB limit", p.MaxBytes>>20))
	}
	return ext, nil
}

// Extension returns the lower-cased extension of name without the dot
func Extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// SanitizeFilename reduces a client file name to a safe ASCII base name
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeChars.ReplaceAllString(name, "")
	name = strings.TrimLeft(name, "._")
	if name == "" {
		return "file"
	}
	return name
}

// IsExternalURL reports whether ref points outside local storage
func IsExternalURL(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// AvatarName returns user_{id}_{uuid}.{ext}
func AvatarName(userID int64, ext string) string {
	return fmt.Sprintf("user_%d_%s.%s", userID, uuid.New().String(), ext)
}

// PostImageName returns {YYYYmmdd_HHMMSS}_{sanitized}
func PostImageName(now time.Time, original string) string {
	return now.Format("20060102_150405") + "_" + SanitizeFilename(original)
}

// EventImageName uses the same timestamped scheme as post images
func EventImageName(now time.Time, original string) string {
	return PostImageName(now, original)
}

// CompanyLogoName returns company_{uid}_{unix}_{sanitized}
func CompanyLogoName(userID int64, now time.Time, original string) string {
	return fmt.Sprintf("company_%d_%d_%s", userID, now.Unix(), SanitizeFilename(original))
}

// ResumeName returns {uid}_{YYYYmmdd_HHMMSS}_{sanitized}
func ResumeName(userID int64, now time.Time, original string) string {
	return fmt.Sprintf("%d_%s_%s", userID, now.Format("20060102_150405"), SanitizeFilename(original))
}
