package service

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"inkwell/internal/config"
	"inkwell/internal/models"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // register WebP decoder
)

// Storage categories. Each category is an independent namespace rooted in
// its own directory, so a deletion policy change in one never touches the
// other.
const (
	CategoryAvatar    = "avatars"
	CategoryPostImage = "posts"
)

const DefaultUploadMaxMB = 5

// FileService stores uploaded blobs under per-category directories with
// generated, unguessable filenames. The filesystem is the sole source of
// truth for which handles exist; no index is kept.
type FileService struct {
	roots          map[string]string
	maxUploadBytes int64
}

// NewFileService creates the service and its category root directories.
// Failure to create a root is fatal: storage is a startup precondition.
func NewFileService(cfg *config.Config) (*FileService, error) {
	uploadDir := "uploads"
	maxUploadMB := DefaultUploadMaxMB
	if cfg != nil {
		if cfg.UploadDir != "" {
			uploadDir = cfg.UploadDir
		}
		if cfg.UploadMaxMB > 0 {
			maxUploadMB = cfg.UploadMaxMB
		}
	}

	roots := map[string]string{
		CategoryAvatar:    filepath.Join(uploadDir, CategoryAvatar),
		CategoryPostImage: filepath.Join(uploadDir, CategoryPostImage),
	}
	for _, root := range roots {
		if err := os.MkdirAll(root, 0o755); err != nil {
			return nil, models.NewStorageError("could not create upload directory "+root, err)
		}
	}

	return &FileService{
		roots:          roots,
		maxUploadBytes: int64(maxUploadMB) * 1024 * 1024,
	}, nil
}

// Store writes content under a freshly generated handle and returns it.
// The original name is only consulted for its extension (the substring
// after the last dot, case preserved) and then discarded, so user-supplied
// names can never collide or escape the category root. Names containing a
// parent-directory sequence are rejected outright.
func (s *FileService) Store(category string, content []byte, originalName string) (string, error) {
	root, err := s.categoryRoot(category)
	if err != nil {
		return "", err
	}

	if strings.Contains(originalName, "..") {
		return "", models.NewValidationError("Filename contains invalid path sequence " + originalName)
	}

	ext := ""
	if idx := strings.LastIndex(originalName, "."); idx >= 0 {
		ext = originalName[idx:]
	}

	// No existence check: collision probability for random UUIDs is treated
	// as negligible, and a write to an existing path just replaces it.
	handle := uuid.NewString() + ext

	if err := os.WriteFile(filepath.Join(root, handle), content, 0o644); err != nil {
		return "", models.NewStorageError("could not store file "+originalName, err)
	}

	return handle, nil
}

// Delete removes the file for handle if present. A missing file is not an
// error; only genuine I/O failures are.
func (s *FileService) Delete(category, handle string) error {
	root, err := s.categoryRoot(category)
	if err != nil {
		return err
	}
	if handle == "" {
		return nil
	}
	if strings.Contains(handle, "..") || strings.ContainsAny(handle, `/\`) {
		return models.NewValidationError("Invalid file handle " + handle)
	}

	if err := os.Remove(filepath.Join(root, handle)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return models.NewStorageError("could not delete file "+handle, err)
	}
	return nil
}

// Root returns the directory backing a category, for static file serving.
func (s *FileService) Root(category string) (string, error) {
	return s.categoryRoot(category)
}

// URLPath returns the public path under which a stored handle is served.
func (s *FileService) URLPath(category, handle string) string {
	return "/uploads/" + category + "/" + handle
}

// HandleFromURLPath extracts the stored handle from a previously issued
// URL path for the category, or "" if the path was not issued by us.
func (s *FileService) HandleFromURLPath(category, urlPath string) string {
	prefix := "/uploads/" + category + "/"
	if !strings.HasPrefix(urlPath, prefix) {
		return ""
	}
	handle := strings.TrimPrefix(urlPath, prefix)
	if handle == "" || strings.ContainsAny(handle, `/\`) {
		return ""
	}
	return handle
}

// ValidateImage checks that content is a non-empty, size-bounded, decodable
// image. The sniffed content type wins over whatever the client declared.
func (s *FileService) ValidateImage(content []byte) error {
	if len(content) == 0 {
		return models.NewValidationError("No file uploaded")
	}
	if int64(len(content)) > s.maxUploadBytes {
		return models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadBytes/(1024*1024)))
	}

	detectedType := http.DetectContentType(content)
	if !strings.HasPrefix(detectedType, "image/") {
		return models.NewValidationError("Only image files are allowed")
	}

	if _, _, err := image.Decode(bytes.NewReader(content)); err != nil {
		return models.NewValidationError("Invalid image file")
	}
	return nil
}

func (s *FileService) categoryRoot(category string) (string, error) {
	root, ok := s.roots[category]
	if !ok {
		return "", models.NewValidationError("Unknown storage category " + category)
	}
	return root, nil
}
