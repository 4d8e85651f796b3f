package search

import (
	"context"
	"strings"
	"time"

	"recipe-share-api/domain"
	"recipe-share-api/entities"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type (
	RecipeFilter struct {
		Query          string
		SortBy         string
		CookingTimeMax int
	}

	IngredientHit struct {
		RecipeID           uuid.UUID `gorm:"column:id"`
		MatchedIngredients int       `gorm:"column:matched_ingredients"`
	}

	HistoryRow struct {
		Keyword    string
		SearchedAt time.Time
	}

	SearchRepository interface {
		SearchRecipes(ctx context.Context, filter RecipeFilter, offset, limit int) ([]*entities.Recipe, int64, error)
		SearchByIngredients(ctx context.Context, names []string, offset, limit int) ([]IngredientHit, int64, error)
		GetRecipesWithOwner(ctx context.Context, ids []uuid.UUID) ([]*entities.Recipe, error)
		SuggestRecipeTitles(ctx context.Context, query string, limit int) ([]string, error)
		SuggestIngredientNames(ctx context.Context, query string, limit int) ([]string, error)
		CreateHistory(ctx context.Context, history *entities.SearchHistory) error
		GetHistory(ctx context.Context, userID uuid.UUID, limit int) ([]HistoryRow, error)
		ClearHistory(ctx context.Context, userID uuid.UUID) (int64, error)
		DeleteHistoryKeyword(ctx context.Context, userID uuid.UUID, keyword string) (int64, error)
	}

	searchRepository struct {
		db *gorm.DB
	}
)

func NewSearchRepository(db *gorm.DB) SearchRepository {
	return &searchRepository{db: db}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern lower-cases s and escapes LIKE wildcards.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

func prefixPattern(s string) string {
	return likeEscaper.Replace(strings.ToLower(s)) + "%"
}

const likeExpr = `LOWER(%s) LIKE ? ESCAPE '\'`

func like(column string) string {
	return strings.Replace(likeExpr, "%s", column, 1)
}

func (r *searchRepository) SearchRecipes(ctx context.Context, filter RecipeFilter, offset, limit int) ([]*entities.Recipe, int64, error) {
	pattern := containsPattern(filter.Query)
	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).
			Model(&entities.Recipe{}).
			Where("("+like("recipes.title")+" OR "+like("recipes.description")+")", pattern, pattern)
		if filter.CookingTimeMax > 0 {
			q = q.Where("recipes.cooking_time <= ?", filter.CookingTimeMax)
		}
		return q
	}

	var count int64
	if err := base().Count(&count).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count search results")
	}

	q := base().Preload("User")
	switch filter.SortBy {
	case domain.SortNewest:
		q = q.Order("recipes.created_at desc")
	case domain.SortPopular:
		q = q.Order("recipes.likes_count desc").Order("recipes.created_at desc")
	case domain.SortCookingTime:
		q = q.Order("recipes.cooking_time asc").Order("recipes.created_at desc")
	default:
		q = q.Order(clause.OrderBy{Expression: clause.Expr{
			SQL:                "CASE WHEN " + like("recipes.title") + " THEN 1 WHEN " + like("recipes.title") + " THEN 2 ELSE 3 END",
			Vars:               []any{prefixPattern(filter.Query), pattern},
			WithoutParentheses: true,
		}}).Order("recipes.created_at desc")
	}

	var recipes []*entities.Recipe
	if err := q.Offset(offset).Limit(limit).Find(&recipes).Error; err != nil {
		return nil, 0, errors.Wrap(err, "search recipes")
	}
	return recipes, count, nil
}

func ingredientCondition(column string, names []string) (string, []any) {
	parts := make([]string, 0, len(names))
	args := make([]any, 0, len(names))
	for _, n := range names {
		parts = append(parts, like(column))
		args = append(args, containsPattern(n))
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}

// SearchByIngredients ranks recipes by how many of their ingredient lines
// match any of names, then by likes.
func (r *searchRepository) SearchByIngredients(ctx context.Context, names []string, offset, limit int) ([]IngredientHit, int64, error) {
	cond, args := ingredientCondition("ingredients.name", names)
	db := r.db.WithContext(ctx)

	matched := db.Table("ingredients").
		Select("COUNT(*)").
		Where("ingredients.recipe_id = recipes.id").
		Where(cond, args...)
	exists := db.Table("ingredients").
		Select("1").
		Where("ingredients.recipe_id = recipes.id").
		Where(cond, args...)

	var count int64
	if err := db.Model(&entities.Recipe{}).Where("EXISTS (?)", exists).Count(&count).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count ingredient matches")
	}

	var hits []IngredientHit
	err := db.Model(&entities.Recipe{}).
		Select("recipes.id, (?) AS matched_ingredients", matched).
		Where("EXISTS (?)", exists).
		Order("matched_ingredients desc").
		Order("recipes.likes_count desc").
		Order("recipes.created_at desc").
		Offset(offset).
		Limit(limit).
		Scan(&hits).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "search by ingredients")
	}
	return hits, count, nil
}

func (r *searchRepository) GetRecipesWithOwner(ctx context.Context, ids []uuid.UUID) ([]*entities.Recipe, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var recipes []*entities.Recipe
	err := r.db.WithContext(ctx).Preload("User").Where("id IN ?", ids).Find(&recipes).Error
	return recipes, errors.Wrap(err, "load recipes")
}

func (r *searchRepository) SuggestRecipeTitles(ctx context.Context, query string, limit int) ([]string, error) {
	var titles []string
	err := r.db.WithContext(ctx).
		Model(&entities.Recipe{}).
		Distinct("title").
		Where(like("title"), containsPattern(query)).
		Order("title asc").
		Limit(limit).
		Pluck("title", &titles).Error
	return titles, errors.Wrap(err, "suggest titles")
}

func (r *searchRepository) SuggestIngredientNames(ctx context.Context, query string, limit int) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&entities.MasterIngredient{}).
		Distinct("name").
		Where(like("name"), containsPattern(query)).
		Order("name asc").
		Limit(limit).
		Pluck("name", &names).Error
	return names, errors.Wrap(err, "suggest ingredients")
}

func (r *searchRepository) CreateHistory(ctx context.Context, history *entities.SearchHistory) error {
	return errors.Wrap(r.db.WithContext(ctx).Omit("User").Create(history).Error, "save search history")
}

// GetHistory returns one row per keyword with its latest search time.
func (r *searchRepository) GetHistory(ctx context.Context, userID uuid.UUID, limit int) ([]HistoryRow, error) {
	var rows []struct {
		Keyword    string
		SearchedAt string
	}
	err := r.db.WithContext(ctx).
		Model(&entities.SearchHistory{}).
		Select("keyword, MAX(searched_at) AS searched_at").
		Where("user_id = ? AND keyword <> ''", userID).
		Group("keyword").
		Order("keyword asc").
		Order("MAX(searched_at) desc").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "load search history")
	}

	out := make([]HistoryRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, HistoryRow{Keyword: row.Keyword, SearchedAt: parseTimestamp(row.SearchedAt)})
	}
	return out, nil
}

// parseTimestamp reads an aggregated timestamp. MAX() hands back text on
// SQLite and a timestamp on Postgres, so both layouts are accepted.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05.999999999Z07:00",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02T15:04:05.999999999",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func (r *searchRepository) ClearHistory(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&entities.SearchHistory{})
	return res.RowsAffected, errors.Wrap(res.Error, "clear search history")
}

func (r *searchRepository) DeleteHistoryKeyword(ctx context.Context, userID uuid.UUID, keyword string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND keyword = ?", userID, keyword).
		Delete(&entities.SearchHistory{})
	return res.RowsAffected, errors.Wrap(res.Error, "delete search keyword")
}
