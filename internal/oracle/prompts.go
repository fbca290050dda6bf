package oracle

import (
	"fmt"
	"strings"
)

func suggestPrompt(cuisine string, count int, ingredients []string) string {
	return fmt.Sprintf(
		"Give me just the names of and a simple one line description of %d %s recipes using the following ingredients: %s",
		count, cuisine, strings.Join(ingredients, ", "))
}

func detailPrompt(name string) string {
	return "Give me a detailed recipe for " + name
}

func imagePrompt(name string) string {
	return "An image of " + name
}

func languageInstruction(language string) string {
	return fmt.Sprintf("You will only ever use %s when replying.", language)
}

// detailInstruction pins the reply language and the RecipeDetail schema.
func detailInstruction(language string) string {
	return languageInstruction(language) + `
The reply JSON should have the following keys:
    recipeName: str,
    description: str,
    prepTime: str,
    coolTime: str,
    ingredients: list,
    instructions: str
Additionally, ingredients is a list of dicts with the following keys:
    item: str,
    quantity: str`
}
