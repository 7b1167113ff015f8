package extractspec

import (
	"encoding/json"
	"fmt"
)

// flattenData rewrites nested record structures into single-level maps
// with dotted keys, for the tabular formats.
func flattenData(data []map[string]interface{}) []map[string]interface{} {
	flattened := make([]map[string]interface{}, 0, len(data))
	for _, record := range data {
		flat := make(map[string]interface{})
		flattenInto(record, flat, "")
		flattened = append(flattened, flat)
	}
	return flattened
}

// flattenInto walks one nested map. Child maps contribute "parent.child"
// keys, lists of maps contribute "parent.0.child" keys, and simple lists
// serialize as a JSON string at their own key (empty list as "").
func flattenInto(nested map[string]interface{}, flat map[string]interface{}, prefix string) {
	for key, value := range nested {
		newKey := key
		if prefix != "" {
			newKey = prefix + key
		}

		switch v := value.(type) {
		case map[string]interface{}:
			flattenInto(v, flat, newKey+".")
		case []map[string]interface{}:
			for i, item := range v {
				flattenInto(item, flat, fmt.Sprintf("%s.%d.", newKey, i))
			}
		case []interface{}:
			if isListOfMaps(v) {
				for i, item := range v {
					if m, ok := item.(map[string]interface{}); ok {
						flattenInto(m, flat, fmt.Sprintf("%s.%d.", newKey, i))
					} else {
						flat[fmt.Sprintf("%s.%d", newKey, i)] = item
					}
				}
				continue
			}
			if len(v) == 0 {
				flat[newKey] = ""
				continue
			}
			encoded, err := json.Marshal(v)
			if err != nil {
				flat[newKey] = fmt.Sprintf("%v", v)
				continue
			}
			flat[newKey] = string(encoded)
		case []string:
			if len(v) == 0 {
				flat[newKey] = ""
				continue
			}
			encoded, _ := json.Marshal(v)
			flat[newKey] = string(encoded)
		default:
			flat[newKey] = value
		}
	}
}

func isListOfMaps(list []interface{}) bool {
	if len(list) == 0 {
		return false
	}
	_, ok := list[0].(map[string]interface{})
	return ok
}
