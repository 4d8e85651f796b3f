package storage

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"recipe-share-api/domain"

	"github.com/google/uuid"
)

const MaxImageSize = 2 * 1024 * 1024

var allowedImageExt = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
}

type (
	// Storage stores recipe images and avatars. Upload methods return the
	// relative object path that gets persisted; URL methods expand a stored
	// value into a public URL.
	Storage interface {
		UploadRecipeImage(ctx context.Context, recipeID string, file *multipart.FileHeader) (string, error)
		UploadAvatar(ctx context.Context, userID string, file *multipart.FileHeader) (string, error)
		DeleteRecipeImage(ctx context.Context, pathOrURL string) error
		DeleteAvatar(ctx context.Context, pathOrURL string) error
		RecipeImageURL(path string) *string
		AvatarURL(path *string) *string
	}

	Config struct {
		URL          string
		Region       string
		AccessKey    string
		SecretKey    string
		RecipeBucket string
		AvatarBucket string
	}
)

func (c Config) baseURL() string {
	return strings.TrimRight(c.URL, "/")
}

// PublicURL returns {url}/storage/v1/object/public/{bucket}/{path}. Empty
// values give nil and absolute URLs are returned unchanged.
func (c Config) PublicURL(bucket, path string) *string {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if isAbsoluteURL(path) {
		return &path
	}
	u := fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL(), bucket, strings.TrimLeft(path, "/"))
	return &u
}

// ObjectPath reduces a stored value to the key inside bucket. It accepts a
// public URL, a private object URL, a bucket-prefixed path or a bare key.
func (c Config) ObjectPath(bucket, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	prefixes := []string{
		fmt.Sprintf("%s/storage/v1/object/public/%s/", c.baseURL(), bucket),
		fmt.Sprintf("%s/storage/v1/object/%s/", c.baseURL(), bucket),
		bucket + "/",
	}
	for _, p := range prefixes {
		if strings.HasPrefix(value, p) {
			return strings.TrimPrefix(value, p)
		}
	}
	if isAbsoluteURL(value) {
		// foreign URL, tolerate any host serving the same layout
		for _, marker := range []string{"/storage/v1/object/public/" + bucket + "/", "/storage/v1/object/" + bucket + "/"} {
			if i := strings.Index(value, marker); i >= 0 {
				return value[i+len(marker):]
			}
		}
		return ""
	}
	return value
}

func isAbsoluteURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// ValidateImage checks extension and size before anything is uploaded.
func ValidateImage(file *multipart.FileHeader) error {
	if file == nil {
		return domain.ErrInvalidImageFormat
	}
	if _, ok := allowedImageExt[imageExt(file.Filename)]; !ok {
		return domain.ErrInvalidImageFormat
	}
	if file.Size > MaxImageSize {
		return domain.ErrImageTooLarge
	}
	return nil
}

func imageExt(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

func ContentType(filename string) string {
	if ct, ok := allowedImageExt[imageExt(filename)]; ok {
		return ct
	}
	return "application/octet-stream"
}

func RecipeImageKey(recipeID, filename string, now time.Time) string {
	return fmt.Sprintf("%s/image_%d_%s.%s", recipeID, now.Unix(), keySuffix(), extOrDefault(filename))
}

// AvatarKey is unique per call so two uploads within the same second never
// share an object.
func AvatarKey(userID, filename string, now time.Time) string {
	return fmt.Sprintf("%s/avatar_%d_%s.%s", userID, now.Unix(), keySuffix(), extOrDefault(filename))
}

func keySuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}

func extOrDefault(filename string) string {
	if ext := imageExt(filename); ext != "" {
		return ext
	}
	return "jpg"
}
