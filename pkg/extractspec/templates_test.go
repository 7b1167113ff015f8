package extractspec

import (
	"testing"
)

func TestDefaultTemplates(t *testing.T) {
	templates := DefaultTemplates()
	for _, name := range []string{"student_report", "mentor_directory", "project_catalog", "analytics_summary"} {
		template, ok := templates[name]
		if !ok {
			t.Errorf("missing built-in template %q", name)
			continue
		}
		if len(template.Fields) == 0 || template.Title == "" {
			t.Errorf("template %q is incomplete: %+v", name, template)
		}
	}
}

func TestTemplateApply(t *testing.T) {
	templates := Templates{
		"contact": {Fields: []string{"name", "user.email", "phone"}},
	}

	data := []map[string]interface{}{
		{
			"name": "Ada",
			"gpa":  3.9,
			"user": map[string]interface{}{"email": "ada@example.com"},
		},
	}

	projected := templates.Apply(data, "contact")
	if len(projected) != 1 {
		t.Fatalf("expected 1 record, got %d", len(projected))
	}

	row := projected[0]
	if len(row) != 3 {
		t.Errorf("projection should keep exactly the template fields, got %v", row)
	}
	if row["name"] != "Ada" {
		t.Errorf("direct field lost: %v", row)
	}
	if row["user.email"] != "ada@example.com" {
		t.Errorf("dotted path should resolve into the relation, got %v", row["user.email"])
	}
	if row["phone"] != nil {
		t.Errorf("missing field should fill with null, got %v", row["phone"])
	}
	if _, present := row["gpa"]; present {
		t.Errorf("fields outside the template should be dropped, got %v", row)
	}
}

func TestTemplateApplyUnknownName(t *testing.T) {
	data := []map[string]interface{}{{"name": "Ada"}}

	projected := DefaultTemplates().Apply(data, "no_such_template")
	if len(projected) != 1 || projected[0]["name"] != "Ada" {
		t.Errorf("unknown template should pass data through, got %v", projected)
	}
}
