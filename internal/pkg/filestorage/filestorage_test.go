package filestorage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fitalumni/alumni/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"photo.png", "photo.png"},
		{"my photo.PNG", "my_photo.PNG"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\cv.pdf`, "cv.pdf"},
		{".hidden", "hidden"},
		{"???", "file"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.in))
		})
	}
}

func TestPolicyCheck(t *testing.T) {
	ext, err := ImagePolicy.Check(FromBytes("a.JPG", []byte("x")))
	require.NoError(t, err)
	assert.Equal(t, "jpg", ext)

	_, err = ImagePolicy.Check(FromBytes("a.pdf", []byte("x")))
	assert.True(t, apperrors.Is(err, apperrors.ErrFileTypeNotAllowed))

	_, err = ResumePolicy.Check(FromBytes("cv.exe", []byte("x")))
	assert.True(t, apperrors.Is(err, apperrors.ErrFileTypeNotAllowed))

	_, err = LogoPolicy.Check(FromBytes("logo.gif", []byte("x")))
	assert.True(t, apperrors.Is(err, apperrors.ErrFileTypeNotAllowed))

	big := make([]byte, 5<<20+1)
	_, err = LogoPolicy.Check(FromBytes("logo.png", big))
	assert.True(t, apperrors.Is(err, apperrors.ErrFileTooLarge))
}

func TestGeneratedNames(t *testing.T) {
	now := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)

	assert.Equal(t, "20260102_150405_my_photo.png", PostImageName(now, "my photo.png"))
	assert.Equal(t, "7_20260102_150405_cv.pdf", ResumeName(7, now, "cv.pdf"))
	assert.Equal(t, "company_7_1767366245_logo.png", CompanyLogoName(7, now, "logo.png"))

	avatar := AvatarName(7, "png")
	assert.True(t, strings.HasPrefix(avatar, "user_7_"))
	assert.True(t, strings.HasSuffix(avatar, ".png"))
}

func TestLocalStorage_SaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	storage, err := NewLocalStorage(dir)
	require.NoError(t, err)

	rel, err := storage.Save(FromBytes("a.png", []byte("img")), DirPosts, "a.png")
	require.NoError(t, err)
	assert.Equal(t, "posts/a.png", rel)

	data, err := os.ReadFile(filepath.Join(dir, "posts", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "img", string(data))

	require.NoError(t, storage.Delete(rel))
	_, err = os.Stat(filepath.Join(dir, "posts", "a.png"))
	assert.True(t, os.IsNotExist(err))

	// deleting twice is fine
	assert.NoError(t, storage.Delete(rel))
}

func TestLocalStorage_DeleteIgnoresExternalAndRefusesEscape(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, storage.Delete("https://example.com/a.png"))
	assert.NoError(t, storage.Delete(""))
	assert.Error(t, storage.Delete("../outside.txt"))
	assert.Empty(t, storage.FullPath("../../etc/passwd"))
}
