package modelregistry

import (
	"testing"
)

type widget struct {
	ID   int64
	Name string
}

func TestRegisterAndGetModel(t *testing.T) {
	r := NewModelRegistry()

	if err := r.RegisterModel("widgets", widget{}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	model, err := r.GetModel("widgets")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if _, ok := model.(widget); !ok {
		t.Errorf("expected widget, got %T", model)
	}

	if _, err := r.GetModel("missing"); err == nil {
		t.Error("unknown model should error")
	}
}

func TestRegisterModelUnwrapsPointers(t *testing.T) {
	r := NewModelRegistry()

	if err := r.RegisterModel("ptr", &widget{Name: "x"}); err != nil {
		t.Fatalf("pointer registration failed: %v", err)
	}
	model, err := r.GetModel("ptr")
	if err != nil {
		t.Fatal(err)
	}
	w, ok := model.(widget)
	if !ok {
		t.Fatalf("expected unwrapped struct, got %T", model)
	}
	if w.Name != "" {
		t.Errorf("registered model should be the zero value, got %+v", w)
	}
}

func TestRegisterModelDuplicate(t *testing.T) {
	r := NewModelRegistry()

	if err := r.RegisterModel("widgets", widget{}); err != nil {
		t.Fatal(err)
	}
	if err := r.RegisterModel("widgets", widget{}); err == nil {
		t.Error("duplicate registration should error")
	}
}

func TestGetAllModels(t *testing.T) {
	r := NewModelRegistry()

	if err := r.RegisterModel("a", widget{}); err != nil {
		t.Fatal(err)
	}
	if err := r.RegisterModel("b", widget{}); err != nil {
		t.Fatal(err)
	}

	all := r.GetAllModels()
	if len(all) != 2 {
		t.Errorf("expected 2 models, got %d", len(all))
	}
}
