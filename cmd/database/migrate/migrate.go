package migration

import (
	"recipe-share-api/entities"
	"recipe-share-api/internal/logging"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Models lists every table in dependency order.
func Models() []any {
	return []any{
		&entities.User{},
		&entities.AccessToken{},
		&entities.IngredientCategory{},
		&entities.MasterIngredient{},
		&entities.Recipe{},
		&entities.Ingredient{},
		&entities.CookingStep{},
		&entities.RecipeIngredientTag{},
		&entities.Like{},
		&entities.Bookmark{},
		&entities.Follow{},
		&entities.SearchHistory{},
	}
}

func Migrate(db *gorm.DB) error {
	for _, model := range Models() {
		if err := db.AutoMigrate(model); err != nil {
			return errors.Wrapf(err, "migrate %T", model)
		}
	}

	logging.Info().Int("tables", len(Models())).Msg("database migration complete")
	return nil
}
