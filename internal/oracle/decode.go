package oracle

import (
	"encoding/json"
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/starford/kondate/internal/models"
)

// decodeOverviews reads a JSON array of objects and maps each object's
// first value to Name and second value to Description. Keys are ignored:
// the model names them freely, so only their order is relied on.
func decodeOverviews(text string) ([]models.RecipeOverview, error) {
	var entries []*orderedmap.OrderedMap[string, any]
	if err := json.Unmarshal([]byte(stripFences(text)), &entries); err != nil {
		return nil, fmt.Errorf("%w: overview list: %v", ErrParse, err)
	}
	out := make([]models.RecipeOverview, 0, len(entries))
	for i, e := range entries {
		if e == nil || e.Len() < 2 {
			return nil, fmt.Errorf("%w: overview %d needs at least two fields", ErrParse, i)
		}
		first := e.Oldest()
		second := first.Next()
		out = append(out, models.RecipeOverview{
			Name:        stringify(first.Value),
			Description: stringify(second.Value),
		})
	}
	return out, nil
}

// decodeDetail accepts any single JSON object. Keys, their order and their
// values are kept exactly as the model wrote them.
func decodeDetail(text string) (*models.Document, error) {
	doc, err := models.ParseDocument([]byte(stripFences(text)))
	if err != nil {
		return nil, fmt.Errorf("%w: recipe detail: %v", ErrParse, err)
	}
	return doc, nil
}

func stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		b, err := json.Marshal(s)
		if err != nil {
			return fmt.Sprint(s)
		}
		return string(b)
	}
}

// stripFences removes a surrounding ```json ... ``` block some models add
// even when asked for raw JSON.
func stripFences(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```")
	if nl := strings.IndexByte(t, '\n'); nl >= 0 {
		t = t[nl+1:]
	}
	t = strings.TrimSuffix(strings.TrimSpace(t), "```")
	return strings.TrimSpace(t)
}
