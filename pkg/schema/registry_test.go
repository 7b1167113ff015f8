package schema

import (
	"testing"

	"github.com/bitechdev/MineSpec/pkg/spectypes"
)

func TestDefaultRegistry(t *testing.T) {
	r := Default()

	names := r.Names()
	want := []string{"companies", "courses", "mentors", "projects", "students", "survey_responses", "surveys", "users"}
	if len(names) != len(want) {
		t.Fatalf("expected %d entities, got %v", len(want), names)
	}
	for i, name := range want {
		if names[i] != name {
			t.Errorf("expected %v, got %v", want, names)
			break
		}
	}

	for _, name := range names {
		e, err := r.Entity(name)
		if err != nil {
			t.Fatalf("entity %s: %v", name, err)
		}
		if e.Table == "" || len(e.Fields) == 0 {
			t.Errorf("entity %s is incomplete: %+v", name, e)
		}
	}
}

func TestEntityUnknown(t *testing.T) {
	r := Default()

	_, err := r.Entity("unicorns")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !spectypes.IsUnknownEntity(err) {
		t.Errorf("expected UnknownEntityError, got %v", err)
	}
}

func TestFieldType(t *testing.T) {
	r := Default()

	dt, ok := r.FieldType("students", "gpa")
	if !ok || dt != spectypes.TypeFloat {
		t.Errorf("expected float gpa, got %v ok=%v", dt, ok)
	}
	if _, ok := r.FieldType("students", "shoe_size"); ok {
		t.Error("unknown field should not resolve")
	}
	if _, ok := r.FieldType("unicorns", "gpa"); ok {
		t.Error("unknown entity should not resolve")
	}
}

func TestCanSearchText(t *testing.T) {
	r := Default()
	e, err := r.Entity("students")
	if err != nil {
		t.Fatal(err)
	}

	// Declared full-text field, not a searchable column
	if !e.CanSearchText("resume_text") {
		t.Error("full-text field should be searchable")
	}
	// String-typed searchable field outside the full-text list
	if !e.CanSearchText("program") {
		t.Error("string field should be searchable")
	}
	if e.CanSearchText("gpa") {
		t.Error("float field should not be text-searchable")
	}
}

func TestDescribe(t *testing.T) {
	r := Default()

	desc, err := r.Describe("projects")
	if err != nil {
		t.Fatal(err)
	}
	if desc.Entity != "projects" {
		t.Errorf("unexpected entity %q", desc.Entity)
	}
	if len(desc.SupportedOperators) != 17 {
		t.Errorf("expected 17 operators, got %d", len(desc.SupportedOperators))
	}
	if len(desc.SupportedDataTypes) != 8 {
		t.Errorf("expected 8 data types, got %d", len(desc.SupportedDataTypes))
	}
	if len(desc.RelationFields) == 0 {
		t.Error("projects should expose relation fields")
	}
}

func TestRegisterDefaultsTableName(t *testing.T) {
	r := NewRegistry()
	r.Register(Entity{Name: "widgets", Fields: map[string]spectypes.DataType{"id": spectypes.TypeInteger}})

	e, err := r.Entity("widgets")
	if err != nil {
		t.Fatal(err)
	}
	if e.Table != "widgets" {
		t.Errorf("table should default to the entity name, got %q", e.Table)
	}
}
