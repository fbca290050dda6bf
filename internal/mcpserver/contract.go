package mcpserver

// RecipeFormat describes the JSON document returned by get_recipe_detail
// and stored in the recipes directory.
const RecipeFormat = `# kondate Recipe Format

Recipes are cached as ` + "`" + `<key>.json` + "`" + ` where ` + "`" + `<key>` + "`" + ` is the
8-character lowercase hex Adler-32 of the recipe name (see the ` + "`" + `recipe_key` + "`" + ` tool).

## Structure

` + "```" + `json
{
    "recipeName": "親子丼",
    "description": "鶏肉と卵をだしで煮た丼",
    "prepTime": "10分",
    "coolTime": "15分",
    "ingredients": [
        {"item": "鶏もも肉", "quantity": "200g"},
        {"item": "卵", "quantity": "3個"}
    ],
    "instructions": "1. 鶏肉を一口大に切る。2. ..."
}
` + "```" + `

## Rules

1. The model is asked for this layout: all fields strings except
   ` + "`" + `ingredients` + "`" + `, a list of ` + "`" + `{item, quantity}` + "`" + `. Its reply is stored as
   written, so value types may differ and extra keys may appear.
2. Text is written in the configured reply language.
3. A document whose strings are all empty and whose ingredients list holds one
   empty entry means the model could not be reached. It is never cached.
4. Cached documents are never regenerated. Delete the file to force a new one.
`
