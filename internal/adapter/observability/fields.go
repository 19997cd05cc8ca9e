package observability

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// formatFieldsJSON renders fields as a JSON object. Keys are sorted by
// encoding/json, so output is deterministic.
func formatFieldsJSON(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return "{}"
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// formatFieldsHuman renders fields as " (key=value, ...)" sorted by key.
func formatFieldsHuman(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return " (" + strings.Join(parts, ", ") + ")"
}
