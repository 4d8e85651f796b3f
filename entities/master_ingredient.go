package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IngredientCategory struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Slug      string    `gorm:"size:100;not null;uniqueIndex" json:"slug"`
	CreatedAt time.Time `json:"created_at"`

	MasterIngredients []*MasterIngredient `gorm:"foreignKey:CategoryID"`
}

func (c *IngredientCategory) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type MasterIngredient struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CategoryID uuid.UUID `gorm:"type:uuid;not null;index" json:"category_id"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	Slug       string    `gorm:"size:100;not null;uniqueIndex" json:"slug"`
	CreatedAt  time.Time `json:"created_at"`

	Category *IngredientCategory `gorm:"foreignKey:CategoryID"`
}

func (m *MasterIngredient) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// RecipeIngredientTag links a recipe to the catalog ingredients it uses.
type RecipeIngredientTag struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RecipeID           uuid.UUID `gorm:"type:uuid;not null;index" json:"recipe_id"`
	MasterIngredientID uuid.UUID `gorm:"type:uuid;not null;index" json:"master_ingredient_id"`
	CreatedAt          time.Time `json:"created_at"`
}

func (t *RecipeIngredientTag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
