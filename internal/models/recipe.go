// Package models defines the domain types for kondate.
package models

import "time"

// RecipeOverview is a suggestion returned for a list of ingredients.
// Overviews are never persisted.
type RecipeOverview struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Ingredient is a single line of a recipe's ingredient list.
type Ingredient struct {
	Item     string `json:"item"`
	Quantity string `json:"quantity"`
}

// RecipeDetail is the layout the oracle is asked to follow. Replies are
// kept as Documents, so nothing forces them into this shape.
type RecipeDetail struct {
	RecipeName   string       `json:"recipeName"`
	Description  string       `json:"description"`
	PrepTime     string       `json:"prepTime"`
	CoolTime     string       `json:"coolTime"`
	Ingredients  []Ingredient `json:"ingredients"`
	Instructions string       `json:"instructions"`
}

func emptyRecipeDetail() RecipeDetail {
	return RecipeDetail{Ingredients: []Ingredient{{}}}
}

// EmptyRecipe returns the "blank recipe" sentinel handed back when the
// oracle could not produce a detail. It is never written to the store.
func EmptyRecipe() *Document {
	d, err := DocumentOf(emptyRecipeDetail())
	if err != nil {
		panic(err)
	}
	return d
}

// CachedRecipe is the catalog view of a document in the content store.
type CachedRecipe struct {
	Key         string    `json:"key"`
	RecipeName  string    `json:"recipeName"`
	Description string    `json:"description"`
	Checksum    string    `json:"checksum"`
	UpdatedAt   time.Time `json:"updated_at"`
}
