package service

import (
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"ladle/internal/config"
	"ladle/internal/models"

	"github.com/google/uuid"
)

const recipeImagePrefix = "uploads/recipe"

// ImageStore writes uploaded recipe images to the local media directory.
// Storage keys have the form uploads/recipe/<uuid>.<ext>; the extension is
// taken verbatim from the uploaded filename and the uuid is fresh per upload.
type ImageStore struct {
	baseDir  string
	maxBytes int64
}

// NewImageStore returns an ImageStore configured from cfg.
func NewImageStore(cfg *config.Config) *ImageStore {
	return &ImageStore{
		baseDir:  cfg.MediaDir,
		maxBytes: int64(cfg.MaxUploadSizeMB) * 1024 * 1024,
	}
}

// SaveRecipeImage validates and persists the upload, returning its storage key.
func (st *ImageStore) SaveRecipeImage(filename string, content []byte) (string, error) {
	if len(content) == 0 {
		return "", models.NewValidationError("No file uploaded")
	}
	if int64(len(content)) > st.maxBytes {
		return "", models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", st.maxBytes/(1024*1024)))
	}
	if !strings.HasPrefix(http.DetectContentType(content), "image/") {
		return "", models.NewValidationError("Invalid image type")
	}

	ext := filepath.Ext(filename)
	key := path.Join(recipeImagePrefix, uuid.New().String()+ext)

	abs := filepath.Join(st.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", models.NewInternalError(err)
	}
	if err := os.WriteFile(abs, content, 0o644); err != nil {
		return "", models.NewInternalError(err)
	}
	return key, nil
}

// Remove deletes a stored image by key. Best effort; a missing file is not an
// error worth surfacing.
func (st *ImageStore) Remove(key string) {
	if key == "" {
		return
	}
	_ = os.Remove(filepath.Join(st.baseDir, filepath.FromSlash(key)))
}
