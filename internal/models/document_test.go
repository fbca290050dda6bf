package models

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestParseDocument_KeepsOrderAndValues(t *testing.T) {
	in := `{"recipeName":"親子丼","prepTime":10,"servings":"2人前","ingredients":["卵 2個",{"item":"鶏肉","note":"もも"}],"description":"<簡単> & 早い"}`
	d, err := ParseDocument([]byte(in))
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}

	want := []string{"recipeName", "prepTime", "servings", "ingredients", "description"}
	if got := d.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("keys = %v, want %v", got, want)
	}

	out, err := d.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != in {
		t.Errorf("round trip changed the document:\n got %s\nwant %s", out, in)
	}
}

func TestParseDocument_CompactsWhitespace(t *testing.T) {
	a, err := ParseDocument([]byte("{\n    \"ingredients\": [\n        \"卵\"\n    ]\n}\n"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := ParseDocument([]byte(`{"ingredients":["卵"]}`))
	if err != nil {
		t.Fatal(err)
	}
	ja, _ := a.MarshalJSON()
	jb, _ := b.MarshalJSON()
	if string(ja) != string(jb) {
		t.Errorf("%s != %s", ja, jb)
	}
}

func TestParseDocument_RejectsNonObjects(t *testing.T) {
	for _, in := range []string{`[{"recipeName":"x"}]`, `"text"`, `null`, `{"a":1} {"b":2}`, `{"a":`, ``} {
		if _, err := ParseDocument([]byte(in)); err == nil {
			t.Errorf("ParseDocument(%q) accepted", in)
		}
	}
	if _, err := ParseDocument([]byte(`[]`)); !errors.Is(err, ErrNotObject) {
		t.Errorf("err = %v, want ErrNotObject", err)
	}
}

func TestDocumentText(t *testing.T) {
	d, err := ParseDocument([]byte(`{"recipeName":"卵焼き","description":null,"prepTime":10}`))
	if err != nil {
		t.Fatal(err)
	}
	if d.RecipeName() != "卵焼き" {
		t.Errorf("name = %q", d.RecipeName())
	}
	if d.Description() != "" {
		t.Errorf("null description = %q", d.Description())
	}
	if d.Text("prepTime") != "10" {
		t.Errorf("prepTime = %q", d.Text("prepTime"))
	}
	if d.Text("missing") != "" {
		t.Error("missing key should be empty")
	}
}

func TestDocumentOf(t *testing.T) {
	d, err := DocumentOf(RecipeDetail{RecipeName: "親子丼", Ingredients: []Ingredient{{Item: "卵", Quantity: "3個"}}})
	if err != nil {
		t.Fatal(err)
	}
	if d.Keys()[0] != "recipeName" || d.RecipeName() != "親子丼" {
		t.Errorf("doc = %v", d.Keys())
	}

	// A Document nested in another value encodes through MarshalJSON.
	wrapped, err := json.Marshal(map[string]*Document{"doc": d})
	if err != nil {
		t.Fatal(err)
	}
	var back map[string]RecipeDetail
	if err := json.Unmarshal(wrapped, &back); err != nil {
		t.Fatal(err)
	}
	if back["doc"].Ingredients[0].Quantity != "3個" {
		t.Errorf("nested = %+v", back)
	}
}
