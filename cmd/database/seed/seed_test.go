package seed_test

import (
	"testing"

	"recipe-share-api/cmd/database/seed"
	"recipe-share-api/entities"
	"recipe-share-api/internal/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Daging Sapi":   "daging-sapi",
		"Susu & Olahan": "susu-olahan",
		"  Garam ":      "garam",
	}
	for in, want := range cases {
		assert.Equal(t, want, seed.Slugify(in), in)
	}
}

func TestSeedIsRepeatable(t *testing.T) {
	db := testutils.InitMemoryDB(t)

	require.NoError(t, seed.Seed(db))
	categories := testutils.Count(t, db, &entities.IngredientCategory{}, "1 = 1")
	ingredients := testutils.Count(t, db, &entities.MasterIngredient{}, "1 = 1")
	assert.Equal(t, int64(5), categories)
	assert.Equal(t, int64(31), ingredients)

	require.NoError(t, seed.Seed(db))
	assert.Equal(t, categories, testutils.Count(t, db, &entities.IngredientCategory{}, "1 = 1"))
	assert.Equal(t, ingredients, testutils.Count(t, db, &entities.MasterIngredient{}, "1 = 1"))

	var egg entities.MasterIngredient
	require.NoError(t, db.First(&egg, "slug = ?", "telur").Error)
	assert.Equal(t, "Telur", egg.Name)
}
