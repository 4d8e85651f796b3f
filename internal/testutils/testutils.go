// Package testutils provides database fixtures shared by the service and
// handler tests.
package testutils

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"testing"

	migration "recipe-share-api/cmd/database/migrate"
	"recipe-share-api/entities"
	"recipe-share-api/internal/utils"
	"recipe-share-api/internal/utils/storage"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const StorageURL = "https://storage.test"

func init() {
	utils.BcryptCost = bcrypt.MinCost
}

// InitMemoryDB opens a migrated in-memory SQLite database private to the
// test. A single connection keeps every query on the same database.
func InitMemoryDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := migration.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func NewStorage() *storage.Memory {
	return storage.NewMemory(storage.Config{
		URL:          StorageURL,
		RecipeBucket: "recipes",
		AvatarBucket: "avatars",
	})
}

// SetupUser creates a user with a bcrypt password. An empty password makes
// a Google-style account without one.
func SetupUser(t *testing.T, db *gorm.DB, username, email, password string) *entities.User {
	t.Helper()

	u := &entities.User{
		Name:     username,
		Username: username,
		Language: entities.LanguageID,
	}
	if email != "" {
		u.Email = &email
	}
	if password != "" {
		hash, err := utils.HashPassword(password)
		if err != nil {
			t.Fatalf("failed to hash password: %v", err)
		}
		u.Password = &hash
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return u
}

// SetupRecipe creates a recipe with the given ingredient names and
// numbered steps.
func SetupRecipe(t *testing.T, db *gorm.DB, owner *entities.User, title string, ingredients []string, steps int) *entities.Recipe {
	t.Helper()

	r := &entities.Recipe{
		UserID:      owner.ID,
		Title:       title,
		Description: title + " description",
		CookingTime: 30,
		Servings:    2,
	}
	if err := db.Create(r).Error; err != nil {
		t.Fatalf("failed to create recipe: %v", err)
	}
	for i, name := range ingredients {
		ing := &entities.Ingredient{RecipeID: r.ID, Name: name, Quantity: "1", SortOrder: i}
		if err := db.Create(ing).Error; err != nil {
			t.Fatalf("failed to create ingredient: %v", err)
		}
	}
	for i := 1; i <= steps; i++ {
		step := &entities.CookingStep{RecipeID: r.ID, StepNumber: i, Description: fmt.Sprintf("step %d", i)}
		if err := db.Create(step).Error; err != nil {
			t.Fatalf("failed to create step: %v", err)
		}
	}
	return r
}

// Count returns the number of rows of model matching the condition.
func Count(t *testing.T, db *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()

	var n int64
	if err := db.Model(model).Where(query, args...).Count(&n).Error; err != nil {
		t.Fatalf("failed to count %T: %v", model, err)
	}
	return n
}

// Reload refetches a row by primary key into dest.
func Reload(t *testing.T, db *gorm.DB, dest any, id uuid.UUID) {
	t.Helper()

	if err := db.First(dest, "id = ?", id).Error; err != nil {
		t.Fatalf("failed to reload %T: %v", dest, err)
	}
}

// FileHeader builds an uploaded file of the given size.
func FileHeader(t *testing.T, filename string, size int) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, filename))
	h.Set("Content-Type", "application/octet-stream")
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatalf("failed to create part: %v", err)
	}
	if _, err := part.Write(bytes.Repeat([]byte{0xff}, size)); err != nil {
		t.Fatalf("failed to write part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	r := multipart.NewReader(body, w.Boundary())
	form, err := r.ReadForm(int64(size) + 1024)
	if err != nil {
		t.Fatalf("failed to read form: %v", err)
	}
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["image"][0]
}
