package minespec

import (
	"reflect"
	"testing"
	"time"

	"github.com/bitechdev/MineSpec/pkg/schema"
	"github.com/bitechdev/MineSpec/pkg/spectypes"
)

func TestCoerceValueInteger(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  interface{}
	}{
		{"from json number", float64(42), int64(42)},
		{"from string", "42", int64(42)},
		{"from padded string", " 7 ", int64(7)},
		{"from int", 13, int64(13)},
		{"unparseable stays put", "not-a-number", "not-a-number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CoerceValue(tt.value, spectypes.TypeInteger)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("CoerceValue(%v) = %v (%T), want %v", tt.value, got, got, tt.want)
			}
		})
	}
}

func TestCoerceValueFloat(t *testing.T) {
	if got := CoerceValue("3.5", spectypes.TypeFloat); got != 3.5 {
		t.Errorf("expected 3.5, got %v", got)
	}
	if got := CoerceValue(3, spectypes.TypeFloat); got != 3.0 {
		t.Errorf("expected 3.0, got %v", got)
	}
	if got := CoerceValue("bad", spectypes.TypeFloat); got != "bad" {
		t.Errorf("unparseable float should stay put, got %v", got)
	}
}

func TestCoerceValueBoolean(t *testing.T) {
	truthy := []string{"true", "True", "1", "yes", "on"}
	for _, s := range truthy {
		if got := CoerceValue(s, spectypes.TypeBoolean); got != true {
			t.Errorf("CoerceValue(%q) = %v, want true", s, got)
		}
	}
	falsy := []string{"false", "0", "no", "off", "anything"}
	for _, s := range falsy {
		if got := CoerceValue(s, spectypes.TypeBoolean); got != false {
			t.Errorf("CoerceValue(%q) = %v, want false", s, got)
		}
	}
	if got := CoerceValue(true, spectypes.TypeBoolean); got != true {
		t.Errorf("bool passthrough failed, got %v", got)
	}
}

func TestCoerceValueDate(t *testing.T) {
	got := CoerceValue("2025-06-15", spectypes.TypeDate)
	parsed, ok := got.(time.Time)
	if !ok {
		t.Fatalf("expected time.Time, got %T", got)
	}
	if parsed.Year() != 2025 || parsed.Month() != time.June || parsed.Day() != 15 {
		t.Errorf("unexpected date %v", parsed)
	}

	if got := CoerceValue("15/06/2025", spectypes.TypeDate); got != "15/06/2025" {
		t.Errorf("unparseable date should stay put, got %v", got)
	}
}

func TestCoerceValueDateTime(t *testing.T) {
	for _, s := range []string{"2025-06-15T10:30:00Z", "2025-06-15T10:30:00"} {
		got := CoerceValue(s, spectypes.TypeDateTime)
		parsed, ok := got.(time.Time)
		if !ok {
			t.Fatalf("CoerceValue(%q): expected time.Time, got %T", s, got)
		}
		if parsed.Hour() != 10 || parsed.Minute() != 30 {
			t.Errorf("CoerceValue(%q): unexpected time %v", s, parsed)
		}
	}
}

func TestCoerceValueJSON(t *testing.T) {
	got := CoerceValue(`["go","sql"]`, spectypes.TypeJSON)
	list, ok := got.([]interface{})
	if !ok {
		t.Fatalf("expected parsed list, got %T", got)
	}
	if len(list) != 2 || list[0] != "go" {
		t.Errorf("unexpected parse result %v", list)
	}

	if got := CoerceValue("{broken", spectypes.TypeJSON); got != "{broken" {
		t.Errorf("invalid json should stay put, got %v", got)
	}
}

func TestCoerceValueArray(t *testing.T) {
	got := CoerceValue("a,b,c", spectypes.TypeArray)
	list, ok := got.([]interface{})
	if !ok || len(list) != 3 {
		t.Fatalf("expected 3-element list, got %v", got)
	}

	got = CoerceValue(42, spectypes.TypeArray)
	list, ok = got.([]interface{})
	if !ok || len(list) != 1 {
		t.Fatalf("scalar should wrap into a list, got %v", got)
	}
}

func TestCoerceValueString(t *testing.T) {
	if got := CoerceValue(42, spectypes.TypeString); got != "42" {
		t.Errorf("expected \"42\", got %v", got)
	}
	if got := CoerceValue(nil, spectypes.TypeString); got != nil {
		t.Errorf("nil should stay nil, got %v", got)
	}
}

func TestAsList(t *testing.T) {
	if _, ok := asList([]interface{}{}); ok {
		t.Error("empty list should not qualify")
	}
	if _, ok := asList("scalar"); ok {
		t.Error("scalar should not qualify")
	}
	list, ok := asList([]string{"a", "b"})
	if !ok || len(list) != 2 {
		t.Errorf("string slice should qualify, got %v ok=%v", list, ok)
	}
}

func TestAsPair(t *testing.T) {
	low, high, ok := asPair([]interface{}{1.0, 2.0})
	if !ok || low != 1.0 || high != 2.0 {
		t.Errorf("expected (1,2), got (%v,%v) ok=%v", low, high, ok)
	}
	if _, _, ok := asPair([]interface{}{1.0}); ok {
		t.Error("one-element value should not qualify as a pair")
	}
	if _, _, ok := asPair([]interface{}{1.0, 2.0, 3.0}); ok {
		t.Error("three-element value should not qualify as a pair")
	}
}

func TestModelToMapRendersDatesAndRelations(t *testing.T) {
	reg := schema.Default()
	ent, err := reg.Entity("students")
	if err != nil {
		t.Fatal(err)
	}

	type row struct {
		ID             int64     `json:"id"`
		EnrollmentDate time.Time `json:"enrollment_date"`
		CreatedAt      time.Time `json:"created_at"`
		LastLogin      time.Time `json:"last_login"`
		User           *struct {
			Email string `json:"email"`
		} `json:"user,omitempty"`
	}

	enrolled := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	created := time.Date(2024, 9, 1, 8, 30, 0, 0, time.UTC)
	m := modelToMap(&row{
		ID:             1,
		EnrollmentDate: enrolled,
		CreatedAt:      created,
		User: &struct {
			Email string `json:"email"`
		}{Email: "s@example.com"},
	}, &ent)

	if m["enrollment_date"] != "2024-09-01" {
		t.Errorf("date field should render date-only, got %v", m["enrollment_date"])
	}
	if m["created_at"] != "2024-09-01T08:30:00Z" {
		t.Errorf("datetime field should render RFC3339, got %v", m["created_at"])
	}
	if m["last_login"] != nil {
		t.Errorf("zero time should render null, got %v", m["last_login"])
	}

	user, ok := m["user"].(map[string]interface{})
	if !ok {
		t.Fatalf("relation should nest as a map, got %T", m["user"])
	}
	if user["email"] != "s@example.com" {
		t.Errorf("unexpected nested relation %v", user)
	}
}

func TestModelToMapSkipsNilRelation(t *testing.T) {
	type row struct {
		ID   int64 `json:"id"`
		User *struct {
			Email string `json:"email"`
		} `json:"user,omitempty"`
	}

	m := modelToMap(&row{ID: 7}, nil)
	if _, present := m["user"]; present {
		t.Errorf("nil relation should be absent, got %v", m["user"])
	}
}
