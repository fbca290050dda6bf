package oracle

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/starford/kondate/internal/models"
)

func TestSuggestRecipes_Positional(t *testing.T) {
	gen := &fakeGenerator{text: `[
		{"料理名": "親子丼", "説明": "鶏肉と卵の丼"},
		{"description_first_key": "卵かけご飯", "x": "簡単な朝ごはん", "extra": 1}
	]`}
	c := NewClient(gen)

	got, err := c.SuggestRecipes(context.Background(), []string{"egg", "rice"}, 2)
	require.NoError(t, err)
	require.Equal(t, []models.RecipeOverview{
		{Name: "親子丼", Description: "鶏肉と卵の丼"},
		{Name: "卵かけご飯", Description: "簡単な朝ごはん"},
	}, got)

	require.Len(t, gen.textReqs, 1)
	req := gen.textReqs[0]
	require.Equal(t, DefaultTextModel, req.Model)
	require.True(t, req.JSON)
	require.Contains(t, req.Prompt, "2 japanese household recipes")
	require.Contains(t, req.Prompt, "egg, rice")
	require.Equal(t, "You will only ever use Japanese when replying.", req.System)
}

func TestSuggestRecipes_TruncatesToCount(t *testing.T) {
	gen := &fakeGenerator{text: `[{"a":"1","b":"x"},{"a":"2","b":"y"},{"a":"3","b":"z"}]`}
	got, err := NewClient(gen).SuggestRecipes(context.Background(), []string{"tofu"}, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "2", got[1].Name)
}

func TestSuggestRecipes_OracleErrorPropagates(t *testing.T) {
	gen := &fakeGenerator{textErr: errors.New("connection refused")}
	_, err := NewClient(gen).SuggestRecipes(context.Background(), []string{"egg"}, 2)
	require.ErrorIs(t, err, ErrOracle)
}

func TestSuggestRecipes_ParseErrors(t *testing.T) {
	cases := map[string]string{
		"not json":     "sorry, I cannot help",
		"object":       `{"name":"親子丼","description":"x"}`,
		"one field":    `[{"name":"親子丼"}]`,
		"string items": `["親子丼"]`,
		"null item":    `[null]`,
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewClient(&fakeGenerator{text: text}).SuggestRecipes(context.Background(), []string{"egg"}, 2)
			require.ErrorIs(t, err, ErrParse)
		})
	}
}

func TestFetchRecipeDetail_Success(t *testing.T) {
	gen := &fakeGenerator{text: "```json\n" + `{
		"recipeName": "親子丼",
		"description": "定番の丼",
		"prepTime": "10分",
		"coolTime": "15分",
		"ingredients": [{"item": "卵", "quantity": "3個"}],
		"instructions": "煮て、とじる",
		"servings": "2人分"
	}` + "\n```"}
	c := NewClient(gen, WithLanguage(language.Japanese))

	doc, err := c.FetchRecipeDetail(context.Background(), "親子丼")
	require.NoError(t, err)
	require.Equal(t, "親子丼", doc.RecipeName())
	require.Equal(t, "2人分", doc.Text("servings"))
	raw, _ := doc.Raw("ingredients")
	require.JSONEq(t, `[{"item": "卵", "quantity": "3個"}]`, string(raw))

	require.Len(t, gen.textReqs, 1)
	require.Equal(t, "Give me a detailed recipe for 親子丼", gen.textReqs[0].Prompt)
	require.Contains(t, gen.textReqs[0].System, "recipeName: str")
}

func TestFetchRecipeDetail_OracleErrorReturnsSentinel(t *testing.T) {
	gen := &fakeGenerator{textErr: ErrOracle}
	doc, err := NewClient(gen).FetchRecipeDetail(context.Background(), "親子丼")
	require.NoError(t, err)
	require.True(t, doc.IsEmpty())
	got, _ := doc.MarshalJSON()
	want, _ := models.EmptyRecipe().MarshalJSON()
	require.Equal(t, string(want), string(got))
}

func TestFetchRecipeDetail_ParseError(t *testing.T) {
	for _, text := range []string{"not json", `[{"recipeName":"x"}]`, `"親子丼"`, "```json\n42\n```"} {
		_, err := NewClient(&fakeGenerator{text: text}).FetchRecipeDetail(context.Background(), "x")
		require.ErrorIs(t, err, ErrParse)
	}
}

func TestFetchRecipeDetail_OffSchemaReplyPassesThrough(t *testing.T) {
	cases := map[string]string{
		"numeric prepTime":   `{"recipeName":"卵焼き","prepTime":10,"coolTime":null}`,
		"string ingredients": `{"recipeName":"卵焼き","ingredients":["卵 2個","砂糖 小さじ1"]}`,
		"extra keys":         `{"servings":"2人分","recipeName":"卵焼き","ingredients":[{"item":"卵","quantity":"2個","note":"Lサイズ"}]}`,
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			doc, err := NewClient(&fakeGenerator{text: text}).FetchRecipeDetail(context.Background(), "卵焼き")
			require.NoError(t, err)
			require.False(t, doc.IsEmpty())
			out, err := doc.MarshalJSON()
			require.NoError(t, err)
			require.Equal(t, text, string(out))
		})
	}
}

func TestWithOptions(t *testing.T) {
	gen := &fakeGenerator{text: `[{"a":"b","c":"d"}]`}
	c := NewClient(gen,
		WithTextModel("text-model"),
		WithLanguage(language.English),
		WithCuisine("italian"),
	)
	_, err := c.SuggestRecipes(context.Background(), []string{"tomato"}, 1)
	require.NoError(t, err)
	require.Equal(t, "text-model", gen.textReqs[0].Model)
	require.Contains(t, gen.textReqs[0].Prompt, "1 italian recipes")
	require.Equal(t, "You will only ever use English when replying.", gen.textReqs[0].System)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 120, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestFetchRecipeImage_ReencodesJPEG(t *testing.T) {
	gen := &fakeGenerator{blobs: []Blob{
		{MIMEType: "text/plain"},
		{MIMEType: "image/png", Data: pngBytes(t)},
	}}
	c := NewClient(gen, WithImageModel("image-model"))

	out, err := c.FetchRecipeImage(context.Background(), "親子丼")
	require.NoError(t, err)
	_, err = jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)

	require.Len(t, gen.imageReqs, 1)
	require.Equal(t, "image-model", gen.imageReqs[0].Model)
	require.Equal(t, "An image of 親子丼", gen.imageReqs[0].Prompt)
}

func TestFetchRecipeImage_Errors(t *testing.T) {
	_, err := NewClient(&fakeGenerator{}).FetchRecipeImage(context.Background(), "x")
	require.ErrorIs(t, err, ErrParse)

	_, err = NewClient(&fakeGenerator{blobs: []Blob{{Data: []byte("garbage")}}}).FetchRecipeImage(context.Background(), "x")
	require.ErrorIs(t, err, ErrParse)

	_, err = NewClient(&fakeGenerator{imageErr: errors.New("quota")}).FetchRecipeImage(context.Background(), "x")
	require.ErrorIs(t, err, ErrOracle)
}

func TestLanguageName(t *testing.T) {
	require.Equal(t, "Japanese", LanguageName(language.Japanese))
	require.Equal(t, "French", LanguageName(language.MustParse("fr")))
}
