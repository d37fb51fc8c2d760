package filestorage

import (
	"bytes"
	"io"
	"mime/multipart"
)

// Subdirectories of the upload root
const (
	DirAvatars      = "avatars"
	DirPosts        = "posts"
	DirResumes      = "resumes"
	DirCompanyLogos = "company_logos"
	DirEvents       = "events"
)

// Upload is a file received from a client
type Upload interface {
	Filename() string
	Size() int64
	Open() (io.ReadCloser, error)
}

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// Save writes the upload as subDir/filename and returns the relative path
	Save(up Upload, subDir, filename string) (string, error)

	// Delete removes a stored file. Missing files and external URLs are ignored.
	Delete(relPath string) error

	// FullPath returns the filesystem path for a stored relative path
	FullPath(relPath string) string
}

type multipartUpload struct {
	fh *multipart.FileHeader
}

// FromMultipart wraps a multipart form file
func FromMultipart(fh *multipart.FileHeader) Upload {
	if fh == nil {
		return nil
	}
	return multipartUpload{fh: fh}
}

func (u multipartUpload) Filename() string { return u.fh.Filename }

func (u multipartUpload) Size() int64 { return u.fh.Size }

func (u multipartUpload) Open() (io.ReadCloser, error) { return u.fh.Open() }

type bytesUpload struct {
	name string
	data []byte
}

// FromBytes wraps in-memory content, used by imports and tests
func FromBytes(name string, data []byte) Upload {
	return bytesUpload{name: name, data: data}
}

func (u bytesUpload) Filename() string { return u.name }

func (u bytesUpload) Size() int64 { return int64(len(u.data)) }

func (u bytesUpload) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(u.data)), nil
}
