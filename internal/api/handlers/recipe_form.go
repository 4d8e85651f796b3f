package handlers

import (
	"mime/multipart"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"recipe-share-api/domain"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
)

// Multipart recipe forms carry the lists either as a JSON string field
// (ingredients=[...]) or in bracket notation (ingredients[0][name]=...).
var bracketField = regexp.MustCompile(`^(\w+)\[(\d+)\]\[(\w+)\]$`)

type recipeForm struct {
	values map[string][]string
	image  *multipart.FileHeader
	lists  map[string]map[int]map[string]string
}

func parseRecipeForm(c *fiber.Ctx) (*recipeForm, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}
	f := &recipeForm{
		values: form.Value,
		lists:  map[string]map[int]map[string]string{},
	}
	if files := form.File["image"]; len(files) > 0 {
		f.image = files[0]
	}
	for key, vals := range form.Value {
		m := bracketField.FindStringSubmatch(key)
		if m == nil || len(vals) == 0 {
			continue
		}
		idx, _ := strconv.Atoi(m[2])
		if f.lists[m[1]] == nil {
			f.lists[m[1]] = map[int]map[string]string{}
		}
		if f.lists[m[1]][idx] == nil {
			f.lists[m[1]][idx] = map[string]string{}
		}
		f.lists[m[1]][idx][m[3]] = vals[0]
	}
	return f, nil
}

func (f *recipeForm) str(key string) (string, bool) {
	vals, ok := f.values[key]
	if !ok || len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

// num returns 0 for values that are not integers so validation rejects them.
func (f *recipeForm) num(key string) (int, bool) {
	s, ok := f.str(key)
	if !ok {
		return 0, false
	}
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n, true
}

// rows returns the bracket rows of a list in index order.
func (f *recipeForm) rows(name string) []map[string]string {
	byIndex := f.lists[name]
	indexes := make([]int, 0, len(byIndex))
	for i := range byIndex {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)
	out := make([]map[string]string, 0, len(indexes))
	for _, i := range indexes {
		out = append(out, byIndex[i])
	}
	return out
}

func optional(row map[string]string, key string) *string {
	if v, ok := row[key]; ok && v != "" {
		return &v
	}
	return nil
}

func (f *recipeForm) ingredients() ([]domain.IngredientInput, error) {
	if raw, ok := f.str("ingredients"); ok {
		var out []domain.IngredientInput
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	rows := f.rows("ingredients")
	if len(rows) == 0 {
		return nil, nil
	}
	out := make([]domain.IngredientInput, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.IngredientInput{
			Name:               row["name"],
			MasterIngredientID: row["master_ingredient_id"],
			Quantity:           row["quantity"],
			Unit:               optional(row, "unit"),
		})
	}
	return out, nil
}

func (f *recipeForm) steps() ([]domain.CookingStepInput, error) {
	if raw, ok := f.str("cooking_steps"); ok {
		var out []domain.CookingStepInput
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	rows := f.rows("cooking_steps")
	if len(rows) == 0 {
		return nil, nil
	}
	out := make([]domain.CookingStepInput, 0, len(rows))
	for _, row := range rows {
		n, _ := strconv.Atoi(strings.TrimSpace(row["step_number"]))
		out = append(out, domain.CookingStepInput{
			StepNumber:  n,
			Description: row["description"],
			Image:       optional(row, "image"),
		})
	}
	return out, nil
}

func (f *recipeForm) createRequest() (domain.CreateRecipeRequest, error) {
	req := domain.CreateRecipeRequest{Image: f.image}
	req.Title, _ = f.str("title")
	req.Description, _ = f.str("description")
	req.CookingTime, _ = f.num("cooking_time")
	req.Servings, _ = f.num("servings")

	var err error
	if req.Ingredients, err = f.ingredients(); err != nil {
		return req, err
	}
	if req.CookingSteps, err = f.steps(); err != nil {
		return req, err
	}
	return req, nil
}

func (f *recipeForm) updateRequest() (domain.UpdateRecipeRequest, error) {
	req := domain.UpdateRecipeRequest{Image: f.image}
	if s, ok := f.str("title"); ok {
		req.Title = &s
	}
	if s, ok := f.str("description"); ok {
		req.Description = &s
	}
	if n, ok := f.num("cooking_time"); ok {
		req.CookingTime = &n
	}
	if n, ok := f.num("servings"); ok {
		req.Servings = &n
	}

	var err error
	if req.Ingredients, err = f.ingredients(); err != nil {
		return req, err
	}
	if req.CookingSteps, err = f.steps(); err != nil {
		return req, err
	}
	return req, nil
}
