package minespec

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/bitechdev/MineSpec/pkg/schema"
	"github.com/bitechdev/MineSpec/pkg/spectypes"
)

// CoerceValue converts a wire value to the Go value matching the data
// type of the field it filters. Coercion never fails hard: when the value
// cannot be converted, the original value is returned untouched so the
// store surfaces the mismatch.
func CoerceValue(value interface{}, dataType spectypes.DataType) interface{} {
	if value == nil {
		return nil
	}

	switch dataType {
	case spectypes.TypeInteger:
		switch v := value.(type) {
		case float64:
			return int64(v)
		case int:
			return int64(v)
		case int64:
			return v
		case string:
			if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
				return n
			}
		}
		return value

	case spectypes.TypeFloat:
		switch v := value.(type) {
		case float64:
			return v
		case int:
			return float64(v)
		case int64:
			return float64(v)
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return f
			}
		}
		return value

	case spectypes.TypeBoolean:
		switch v := value.(type) {
		case bool:
			return v
		case string:
			switch strings.ToLower(v) {
			case "true", "1", "yes", "on":
				return true
			default:
				return false
			}
		case float64:
			return v != 0
		}
		return value

	case spectypes.TypeDate:
		if s, ok := value.(string); ok {
			if t, err := time.Parse("2006-01-02", s); err == nil {
				return t
			}
		}
		return value

	case spectypes.TypeDateTime:
		if s, ok := value.(string); ok {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				return t
			}
			// ISO-8601 without offset
			if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
				return t
			}
		}
		return value

	case spectypes.TypeJSON:
		if s, ok := value.(string); ok {
			var parsed interface{}
			if err := json.Unmarshal([]byte(s), &parsed); err == nil {
				return parsed
			}
		}
		return value

	case spectypes.TypeArray:
		switch v := value.(type) {
		case string:
			parts := strings.Split(v, ",")
			out := make([]interface{}, len(parts))
			for i, p := range parts {
				out[i] = p
			}
			return out
		case []interface{}:
			return v
		default:
			return []interface{}{value}
		}

	default: // string
		switch v := value.(type) {
		case string:
			return v
		default:
			return fmt.Sprintf("%v", v)
		}
	}
}

// asList normalizes a coerced value to a slice for in/not_in predicates.
func asList(value interface{}) ([]interface{}, bool) {
	switch v := value.(type) {
	case []interface{}:
		return v, len(v) > 0
	case []string:
		out := make([]interface{}, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, len(out) > 0
	}
	return nil, false
}

// asPair extracts the two bounds of a between value.
func asPair(value interface{}) (interface{}, interface{}, bool) {
	list, ok := asList(value)
	if !ok || len(list) != 2 {
		return nil, nil, false
	}
	return list[0], list[1], true
}

// modelToMap converts one scanned row model to the wire representation:
// column values keyed by their json names, dates rendered ISO-8601, and
// loaded relations nested as child maps.
func modelToMap(model interface{}, ent *schema.Entity) map[string]interface{} {
	v := reflect.ValueOf(model)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}

	result := make(map[string]interface{})
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous {
			if field.Type == reflect.TypeOf(bun.BaseModel{}) {
				continue
			}
			// Promote embedded struct fields
			for k, val := range modelToMap(v.Field(i).Interface(), nil) {
				result[k] = val
			}
			continue
		}

		name := jsonFieldName(field)
		if name == "" {
			continue
		}

		fv := v.Field(i)

		// Relations: pointer to struct or slice of struct, nested one map deep
		if fv.Kind() == reflect.Ptr && fv.Type().Elem().Kind() == reflect.Struct && fv.Type().Elem() != reflect.TypeOf(time.Time{}) {
			if fv.IsNil() {
				continue
			}
			result[name] = modelToMap(fv.Interface(), nil)
			continue
		}
		if fv.Kind() == reflect.Slice && fv.Type().Elem().Kind() == reflect.Ptr && fv.Type().Elem().Elem().Kind() == reflect.Struct {
			if fv.IsNil() {
				continue
			}
			children := make([]map[string]interface{}, 0, fv.Len())
			for j := 0; j < fv.Len(); j++ {
				children = append(children, modelToMap(fv.Index(j).Interface(), nil))
			}
			result[name] = children
			continue
		}

		result[name] = renderValue(name, fv.Interface(), ent)
	}

	return result
}

// renderValue formats a single column value for the wire. Zero times
// render as null; date-typed fields render without the time part.
func renderValue(name string, value interface{}, ent *schema.Entity) interface{} {
	if t, ok := value.(time.Time); ok {
		if t.IsZero() {
			return nil
		}
		if ent != nil && ent.Fields[name] == spectypes.TypeDate {
			return t.Format("2006-01-02")
		}
		return t.Format(time.RFC3339)
	}
	return value
}

func jsonFieldName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return ""
	}
	if tag == "" {
		return field.Name
	}
	if idx := strings.Index(tag, ","); idx >= 0 {
		tag = tag[:idx]
	}
	if tag == "" {
		return field.Name
	}
	return tag
}

// newModelSlice builds a *[]*T destination for scanning rows of the
// registered model type.
func newModelSlice(model interface{}) interface{} {
	t := reflect.TypeOf(model)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return reflect.New(reflect.SliceOf(reflect.PtrTo(t))).Interface()
}

// sliceToMaps converts the scanned *[]*T into wire maps.
func sliceToMaps(slicePtr interface{}, ent *schema.Entity) []map[string]interface{} {
	v := reflect.ValueOf(slicePtr).Elem()
	rows := make([]map[string]interface{}, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		if m := modelToMap(v.Index(i).Interface(), ent); m != nil {
			rows = append(rows, m)
		}
	}
	return rows
}
