package storage

import (
	"context"
	"mime/multipart"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Memory is an in-process Storage used by tests and local runs without an
// object store. Objects are tracked by bucket and key only.
type Memory struct {
	Config

	mu         sync.Mutex
	objects    map[string]struct{}
	FailPut    bool
	FailDelete bool
}

func NewMemory(cfg Config) *Memory {
	return &Memory{Config: cfg, objects: make(map[string]struct{})}
}

func (m *Memory) UploadRecipeImage(_ context.Context, recipeID string, file *multipart.FileHeader) (string, error) {
	return m.put(m.RecipeBucket, RecipeImageKey(recipeID, file.Filename, time.Now()), file)
}

func (m *Memory) UploadAvatar(_ context.Context, userID string, file *multipart.FileHeader) (string, error) {
	return m.put(m.AvatarBucket, AvatarKey(userID, file.Filename, time.Now()), file)
}

func (m *Memory) put(bucket, key string, file *multipart.FileHeader) (string, error) {
	if err := ValidateImage(file); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailPut {
		return "", errors.New("storage unavailable")
	}
	m.objects[bucket+"/"+key] = struct{}{}
	return key, nil
}

func (m *Memory) DeleteRecipeImage(_ context.Context, pathOrURL string) error {
	return m.delete(m.RecipeBucket, pathOrURL)
}

func (m *Memory) DeleteAvatar(_ context.Context, pathOrURL string) error {
	return m.delete(m.AvatarBucket, pathOrURL)
}

func (m *Memory) delete(bucket, pathOrURL string) error {
	key := m.ObjectPath(bucket, pathOrURL)
	if key == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailDelete {
		return errors.New("storage unavailable")
	}
	delete(m.objects, bucket+"/"+key)
	return nil
}

// Has reports whether bucket/key is stored.
func (m *Memory) Has(bucket, key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[bucket+"/"+key]
	return ok
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

func (m *Memory) RecipeImageURL(path string) *string {
	return m.PublicURL(m.RecipeBucket, path)
}

func (m *Memory) AvatarURL(path *string) *string {
	if path == nil {
		return nil
	}
	return m.PublicURL(m.AvatarBucket, *path)
}
