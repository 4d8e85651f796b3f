// File: entities/recipe.go
package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Recipe struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Title          string    `gorm:"size:255;not null" json:"title"`
	Image          string    `gorm:"not null" json:"image"`
	Description    string    `gorm:"type:text" json:"description"`
	CookingTime    int       `gorm:"not null" json:"cooking_time"`
	Servings       int       `gorm:"not null" json:"servings"`
	LikesCount     int       `gorm:"not null;default:0" json:"likes_count"`
	BookmarksCount int       `gorm:"not null;default:0" json:"bookmarks_count"`

	User        *User          `gorm:"foreignKey:UserID"`
	Ingredients []*Ingredient  `gorm:"foreignKey:RecipeID"`
	Steps       []*CookingStep `gorm:"foreignKey:RecipeID"`
	Timestamp
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

type Ingredient struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	RecipeID           uuid.UUID  `gorm:"type:uuid;not null;index" json:"recipe_id"`
	MasterIngredientID *uuid.UUID `gorm:"type:uuid;index" json:"master_ingredient_id,omitempty"`
	Name               string     `gorm:"size:255;not null" json:"name"`
	Quantity           string     `gorm:"size:50" json:"quantity"`
	Unit               *string    `gorm:"size:50" json:"unit"`
	SortOrder          int        `gorm:"not null;default:0" json:"-"`

	MasterIngredient *MasterIngredient `gorm:"foreignKey:MasterIngredientID"`
	Timestamp
}

func (i *Ingredient) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

type CookingStep struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RecipeID    uuid.UUID `gorm:"type:uuid;not null;index" json:"recipe_id"`
	StepNumber  int       `gorm:"not null" json:"step_number"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Image       *string   `json:"image"`
	Timestamp
}

func (s *CookingStep) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type Like struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_likes_user_recipe" json:"user_id"`
	RecipeID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_likes_user_recipe;index" json:"recipe_id"`
	CreatedAt time.Time `json:"created_at"`

	User   *User   `gorm:"foreignKey:UserID"`
	Recipe *Recipe `gorm:"foreignKey:RecipeID"`
}

func (l *Like) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

type Bookmark struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_bookmarks_user_recipe" json:"user_id"`
	RecipeID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_bookmarks_user_recipe;index" json:"recipe_id"`
	CreatedAt time.Time `json:"created_at"`

	User   *User   `gorm:"foreignKey:UserID"`
	Recipe *Recipe `gorm:"foreignKey:RecipeID"`
}

func (b *Bookmark) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
