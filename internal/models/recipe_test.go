package models

import (
	"encoding/json"
	"testing"
)

func TestEmptyRecipeShape(t *testing.T) {
	data, err := json.Marshal(EmptyRecipe())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"recipeName":"","description":"","prepTime":"","coolTime":"","ingredients":[{"item":"","quantity":""}],"instructions":""}`
	if string(data) != want {
		t.Errorf("sentinel = %s\nwant %s", data, want)
	}
}

func TestIsEmpty(t *testing.T) {
	if !EmptyRecipe().IsEmpty() {
		t.Error("sentinel should report empty")
	}
	reordered := `{"ingredients":[{"quantity":"","item":""}],"instructions":"","recipeName":"","description":"","prepTime":"","coolTime":""}`
	if d, err := ParseDocument([]byte(reordered)); err != nil || !d.IsEmpty() {
		t.Errorf("reordered sentinel should report empty (err %v)", err)
	}

	cases := []string{
		`{"recipeName":"親子丼","description":"","prepTime":"","coolTime":"","ingredients":[{"item":"","quantity":""}],"instructions":""}`,
		`{"recipeName":"","description":"","prepTime":"","coolTime":"","ingredients":[],"instructions":""}`,
		`{"recipeName":"","description":"","prepTime":"","coolTime":"","ingredients":[{"item":"","quantity":""}],"instructions":"","servings":""}`,
		`{}`,
	}
	for i, c := range cases {
		d, err := ParseDocument([]byte(c))
		if err != nil {
			t.Fatalf("case %d: %v", i, err)
		}
		if d.IsEmpty() {
			t.Errorf("case %d: %s should not be empty", i, c)
		}
	}
}
