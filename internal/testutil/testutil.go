// Package testutil provides shared test helpers for stores, catalogs and a
// scripted oracle.
package testutil

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/starford/kondate/internal/catalog"
	"github.com/starford/kondate/internal/models"
	"github.com/starford/kondate/internal/storage"
)

// TestCatalog creates a temporary SQLite catalog that is automatically cleaned up.
func TestCatalog(t *testing.T) *catalog.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "kondate-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := catalog.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestStore creates a temporary recipes directory with a storage.FS.
func TestStore(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// TestThumbs creates a temporary thumbnail directory with a storage.Thumbs.
func TestThumbs(t *testing.T) (string, *storage.Thumbs) {
	t.Helper()
	dir := t.TempDir()
	thumbs, err := storage.NewThumbs(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, thumbs
}

// Oracle is a scripted oracle that counts calls.
type Oracle struct {
	mu sync.Mutex

	Overviews  []models.RecipeOverview
	SuggestErr error

	// Details maps a recipe name to the raw JSON the oracle replies with;
	// names not present get a generated document.
	Details   map[string]string
	DetailErr error
	// Fail makes FetchRecipeDetail return the empty sentinel.
	Fail bool

	Image    []byte
	ImageErr error

	suggestCalls int
	detailCalls  map[string]int
	imageCalls   int
}

// Verify *Oracle satisfies the shape used by the recipe service.
var _ interface {
	SuggestRecipes(context.Context, []string, int) ([]models.RecipeOverview, error)
	FetchRecipeDetail(context.Context, string) (*models.Document, error)
	FetchRecipeImage(context.Context, string) ([]byte, error)
} = (*Oracle)(nil)

// SuggestRecipes returns up to count of the scripted overviews.
func (o *Oracle) SuggestRecipes(_ context.Context, _ []string, count int) ([]models.RecipeOverview, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.suggestCalls++
	if o.SuggestErr != nil {
		return nil, o.SuggestErr
	}
	out := o.Overviews
	if count > 0 && len(out) > count {
		out = out[:count]
	}
	return append([]models.RecipeOverview(nil), out...), nil
}

// FetchRecipeDetail returns the scripted document for name.
func (o *Oracle) FetchRecipeDetail(_ context.Context, name string) (*models.Document, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.detailCalls == nil {
		o.detailCalls = make(map[string]int)
	}
	o.detailCalls[name]++
	if o.DetailErr != nil {
		return nil, o.DetailErr
	}
	if o.Fail {
		return models.EmptyRecipe(), nil
	}
	if raw, ok := o.Details[name]; ok {
		return models.ParseDocument([]byte(raw))
	}
	return models.DocumentOf(models.RecipeDetail{
		RecipeName:   name,
		Description:  name + "の作り方",
		PrepTime:     "10分",
		CoolTime:     "20分",
		Ingredients:  []models.Ingredient{{Item: "卵", Quantity: "2個"}},
		Instructions: "材料を混ぜて焼く",
	})
}

// DocJSON returns the compact JSON of doc.
func DocJSON(t testing.TB, doc *models.Document) string {
	t.Helper()
	data, err := doc.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal document: %v", err)
	}
	return string(data)
}

// FetchRecipeImage returns the scripted image.
func (o *Oracle) FetchRecipeImage(_ context.Context, _ string) ([]byte, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.imageCalls++
	if o.ImageErr != nil {
		return nil, o.ImageErr
	}
	return o.Image, nil
}

// SuggestCalls returns the number of SuggestRecipes calls.
func (o *Oracle) SuggestCalls() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.suggestCalls
}

// DetailCalls returns the number of FetchRecipeDetail calls for name.
func (o *Oracle) DetailCalls(name string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.detailCalls[name]
}

// ImageCalls returns the number of FetchRecipeImage calls.
func (o *Oracle) ImageCalls() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.imageCalls
}
