package images

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const MaxFileSize = 10 << 20 // 10 MB

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Store persists uploaded images on local disk and serves them back as
// URLs carrying transformation parameters the image proxy understands.
type Store struct {
	BaseDir string
	BaseURL string
}

func NewStore(baseDir, baseURL string) *Store {
	return &Store{BaseDir: baseDir, BaseURL: baseURL}
}

// Save writes an uploaded file under a fresh name and returns its
// serving URL, sized to the given width.
func (s *Store) Save(file multipart.File, header *multipart.FileHeader, width int) (string, error) {
	ext, ok := allowedTypes[header.Header.Get("Content-Type")]
	if !ok {
		return "", fmt.Errorf("invalid file type %q: only JPEG, PNG, GIF and WebP are allowed", header.Header.Get("Content-Type"))
	}
	if header.Size > MaxFileSize {
		return "", fmt.Errorf("file too large: maximum size is 10MB")
	}

	filename := uuid.NewString() + ext
	uploadPath := filepath.Join(s.BaseDir, filename)

	if err := os.MkdirAll(s.BaseDir, 0755); err != nil {
		return "", fmt.Errorf("error creating upload directory: %v", err)
	}

	dst, err := os.Create(uploadPath)
	if err != nil {
		return "", fmt.Errorf("error creating file: %v", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(uploadPath)
		return "", fmt.Errorf("error saving file: %v", err)
	}

	return s.URL(filename, width), nil
}

// URL builds the serving URL for a stored file with transformation
// parameters (auto quality, webp format, target width).
func (s *Store) URL(filename string, width int) string {
	return fmt.Sprintf("%s/%s?tr=w-%d,q-auto,f-webp", s.BaseURL, filename, width)
}

// Remove deletes a stored file by its serving URL. Missing files are
// not an error.
func (s *Store) Remove(url string) error {
	filename := filepath.Base(url)
	if q := strings.IndexByte(filename, '?'); q >= 0 {
		filename = filename[:q]
	}
	err := os.Remove(filepath.Join(s.BaseDir, filename))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
