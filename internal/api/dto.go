package api

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/starford/kondate/internal/models"
)

// OverviewRequest is the request body for POST /overview.
type OverviewRequest struct {
	Ingredients []string `json:"ingredients" example:"egg,rice,green onion"`
}

// normalize trims every ingredient in place.
func (r *OverviewRequest) normalize() {
	for i, ing := range r.Ingredients {
		r.Ingredients[i] = strings.TrimSpace(ing)
	}
}

// Validate requires at least one ingredient and no blank entries.
func (r OverviewRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Ingredients, validation.Required, validation.Each(validation.Required)),
	)
}

// RecipeDetail documents the layout GET /details usually returns. The body
// is the stored document verbatim, so keys and value types may differ.
type RecipeDetail = models.RecipeDetail

// RecipeOverview is one POST /overview entry (aliased from the domain layer).
type RecipeOverview = models.RecipeOverview

// CatalogResponse wraps paginated catalog listings.
type CatalogResponse struct {
	Recipes []models.CachedRecipe `json:"recipes"`
	Total   int                   `json:"total" example:"42"`
}
