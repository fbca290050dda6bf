package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/starford/kondate/internal/checksum"
	"github.com/starford/kondate/internal/models"
	"github.com/starford/kondate/internal/oracle"
	"github.com/starford/kondate/internal/recipe"
	"github.com/starford/kondate/internal/testutil"
)

func testServer(t *testing.T) (*Server, *testutil.Oracle) {
	t.Helper()
	_, store := testutil.TestStore(t)
	db := testutil.TestCatalog(t)
	require.NoError(t, db.Upsert(models.CachedRecipe{
		Key:        checksum.Key("親子丼"),
		RecipeName: "親子丼",
		Checksum:   "x",
		UpdatedAt:  time.Now(),
	}))

	orc := &testutil.Oracle{
		Overviews: []models.RecipeOverview{
			{Name: "親子丼", Description: "鶏肉と卵の丼"},
			{Name: "卵焼き", Description: "甘い卵焼き"},
		},
	}
	return New(recipe.NewService(orc, store), db), orc
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error

	switch name {
	case "suggest_recipes":
		result, err = srv.suggestRecipes(ctx, req)
	case "get_recipe_detail":
		result, err = srv.getRecipeDetail(ctx, req)
	case "recipe_key":
		result, err = srv.recipeKey(ctx, req)
	case "list_cached_recipes":
		result, err = srv.listCachedRecipes(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	require.NoError(t, err, "tool %s", name)
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestSuggestRecipes(t *testing.T) {
	srv, orc := testServer(t)

	r := callTool(t, srv, "suggest_recipes", map[string]any{"ingredients": []any{"卵", "鶏肉"}})
	require.False(t, r.IsError, resultText(r))

	var got []models.RecipeOverview
	require.NoError(t, json.Unmarshal([]byte(resultText(r)), &got))
	require.Len(t, got, 2)
	require.Equal(t, "親子丼", got[0].Name)
	require.Equal(t, 1, orc.SuggestCalls())
}

func TestSuggestRecipes_CommaSeparated(t *testing.T) {
	srv, orc := testServer(t)

	r := callTool(t, srv, "suggest_recipes", map[string]any{"ingredients": "卵, 鶏肉"})
	require.False(t, r.IsError, resultText(r))
	require.Equal(t, 1, orc.SuggestCalls())
}

func TestSuggestRecipes_Empty(t *testing.T) {
	srv, orc := testServer(t)

	r := callTool(t, srv, "suggest_recipes", map[string]any{"ingredients": []any{" "}})
	require.True(t, r.IsError)
	require.Zero(t, orc.SuggestCalls())
}

func TestSuggestRecipes_OracleError(t *testing.T) {
	srv, orc := testServer(t)
	orc.SuggestErr = fmt.Errorf("%w: quota", oracle.ErrOracle)

	r := callTool(t, srv, "suggest_recipes", map[string]any{"ingredients": []any{"卵"}})
	require.True(t, r.IsError)
	require.Contains(t, resultText(r), "unavailable")
}

func TestGetRecipeDetail(t *testing.T) {
	srv, orc := testServer(t)

	for i := 0; i < 2; i++ {
		r := callTool(t, srv, "get_recipe_detail", map[string]any{"name": "卵焼き"})
		require.False(t, r.IsError, resultText(r))
		require.Contains(t, resultText(r), `"recipeName": "卵焼き"`)
	}
	require.Equal(t, 1, orc.DetailCalls("卵焼き"))
}

func TestGetRecipeDetail_OffSchemaDocument(t *testing.T) {
	srv, orc := testServer(t)
	orc.Details = map[string]string{
		"卵焼き": `{"recipeName":"卵焼き","prepTime":10,"ingredients":["卵 2個"],"servings":2}`,
	}

	r := callTool(t, srv, "get_recipe_detail", map[string]any{"name": "卵焼き"})
	require.False(t, r.IsError, resultText(r))
	require.JSONEq(t, orc.Details["卵焼き"], resultText(r))
	require.Contains(t, resultText(r), `"prepTime": 10`)
}

func TestGetRecipeDetail_Sentinel(t *testing.T) {
	srv, orc := testServer(t)
	orc.Fail = true

	r := callTool(t, srv, "get_recipe_detail", map[string]any{"name": "卵焼き"})
	require.True(t, r.IsError)
}

func TestGetRecipeDetail_MissingName(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "get_recipe_detail", map[string]any{})
	require.True(t, r.IsError)
}

func TestRecipeKey(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "recipe_key", map[string]any{"name": "Wikipedia"})
	require.Equal(t, "11e60398", resultText(r))
}

func TestListCachedRecipes(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "list_cached_recipes", map[string]any{})
	require.False(t, r.IsError)
	require.Contains(t, resultText(r), "親子丼")

	r = callTool(t, srv, "list_cached_recipes", map[string]any{"query": "カレー", "limit": float64(5)})
	require.Equal(t, "no cached recipes", resultText(r))
}

func TestRecipeFormatResource(t *testing.T) {
	srv, _ := testServer(t)

	contents, err := srv.readRecipeFormatResource(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)
	tc, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	require.True(t, strings.Contains(tc.Text, "recipeName"))
}
