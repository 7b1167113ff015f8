package extractspec

import (
	"reflect"
	"testing"
)

func TestFlattenNestedMap(t *testing.T) {
	data := []map[string]interface{}{
		{
			"id": 1,
			"user": map[string]interface{}{
				"email": "ada@example.com",
				"profile": map[string]interface{}{
					"city": "London",
				},
			},
		},
	}

	flat := flattenData(data)[0]
	want := map[string]interface{}{
		"id":                1,
		"user.email":        "ada@example.com",
		"user.profile.city": "London",
	}
	if !reflect.DeepEqual(flat, want) {
		t.Errorf("got %v, want %v", flat, want)
	}
}

func TestFlattenListOfMaps(t *testing.T) {
	data := []map[string]interface{}{
		{
			"projects": []interface{}{
				map[string]interface{}{"title": "Alpha"},
				map[string]interface{}{"title": "Beta"},
			},
		},
	}

	flat := flattenData(data)[0]
	if flat["projects.0.title"] != "Alpha" || flat["projects.1.title"] != "Beta" {
		t.Errorf("list of maps should index into dotted keys, got %v", flat)
	}
}

func TestFlattenSimpleList(t *testing.T) {
	data := []map[string]interface{}{
		{
			"skills": []interface{}{"go", "sql"},
			"tags":   []string{"a"},
			"empty":  []interface{}{},
		},
	}

	flat := flattenData(data)[0]
	if flat["skills"] != `["go","sql"]` {
		t.Errorf("simple list should serialize as a json string, got %v", flat["skills"])
	}
	if flat["tags"] != `["a"]` {
		t.Errorf("string list should serialize as a json string, got %v", flat["tags"])
	}
	if flat["empty"] != "" {
		t.Errorf("empty list should flatten to an empty string, got %v", flat["empty"])
	}
}

func TestFlattenScalarPassthrough(t *testing.T) {
	data := []map[string]interface{}{
		{"name": "Ada", "gpa": 3.9, "active": true, "note": nil},
	}

	flat := flattenData(data)[0]
	if flat["name"] != "Ada" || flat["gpa"] != 3.9 || flat["active"] != true {
		t.Errorf("scalars should pass through untouched, got %v", flat)
	}
	if flat["note"] != nil {
		t.Errorf("nil should pass through, got %v", flat["note"])
	}
}
