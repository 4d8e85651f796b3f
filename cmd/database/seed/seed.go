package seed

import (
	"strings"

	"recipe-share-api/entities"
	"recipe-share-api/internal/logging"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type category struct {
	name        string
	ingredients []string
}

var catalog = []category{
	{"Protein", []string{"Ayam", "Daging Sapi", "Telur", "Tahu", "Tempe", "Udang", "Ikan"}},
	{"Sayuran", []string{"Bayam", "Kangkung", "Wortel", "Kentang", "Tomat", "Kol", "Buncis"}},
	{"Bumbu", []string{"Bawang Merah", "Bawang Putih", "Cabai", "Jahe", "Kunyit", "Lengkuas", "Serai", "Garam", "Gula"}},
	{"Karbohidrat", []string{"Nasi", "Mie", "Tepung Terigu", "Roti"}},
	{"Susu & Olahan", []string{"Susu", "Keju", "Mentega", "Santan"}},
}

// Slugify lower-cases name and joins words with dashes.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// Seed inserts the ingredient catalog. Existing slugs are left untouched, so
// it can run repeatedly.
func Seed(db *gorm.DB) error {
	inserted := 0
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, c := range catalog {
			cat := entities.IngredientCategory{Name: c.name, Slug: Slugify(c.name)}
			if err := tx.Where(entities.IngredientCategory{Slug: cat.Slug}).FirstOrCreate(&cat).Error; err != nil {
				return errors.Wrapf(err, "seed category %s", c.name)
			}

			for _, name := range c.ingredients {
				res := tx.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "slug"}},
					DoNothing: true,
				}).Create(&entities.MasterIngredient{
					CategoryID: cat.ID,
					Name:       name,
					Slug:       Slugify(name),
				})
				if res.Error != nil {
					return errors.Wrapf(res.Error, "seed ingredient %s", name)
				}
				inserted += int(res.RowsAffected)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logging.Info().Int("inserted", inserted).Msg("ingredient catalog seeded")
	return nil
}
