package jsonagent

import (
	"fmt"
	"regexp"
	"strings"
)

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int64, float64:
		return "number"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func matchesType(v any, want FieldType) bool {
	switch want {
	case TypeString:
		_, ok := v.(string)
		return ok
	case TypeNumber:
		_, ok := numberValue(v)
		return ok
	case TypeObject:
		_, ok := v.(map[string]any)
		return ok
	case TypeArray:
		_, ok := v.([]any)
		return ok
	case TypeStringOrNumber:
		if _, ok := v.(string); ok {
			return true
		}
		_, ok := numberValue(v)
		return ok
	default:
		return false
	}
}

func numberValue(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func checkFieldType(name string, value any, want FieldType) []string {
	if matchesType(value, want) {
		return nil
	}
	return []string{fmt.Sprintf("Field '%s' should be %s, got %s", name, want, typeName(value))}
}

func checkPattern(name string, value string, pattern *regexp.Regexp) []string {
	if pattern.MatchString(value) {
		return nil
	}
	return []string{fmt.Sprintf("Field '%s' with value '%s' does not match expected pattern", name, value)}
}

func checkMinimum(name string, value float64, min float64) []string {
	if value >= min {
		return nil
	}
	return []string{fmt.Sprintf("Field '%s' with value %v is below minimum %v", name, value, min)}
}

func checkEnum(name string, value string, allowed []string) []string {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return []string{fmt.Sprintf("Field '%s' with value '%s' not in allowed values: %s", name, value, strings.Join(allowed, ", "))}
}

// checkNested validates required sub-fields of a nested object, or of
// every element of an array when the rule path ends in "[*]".
func checkNested(payload map[string]any, rule NestedRule) []string {
	var anomalies []string

	if strings.Contains(rule.Path, "[*]") {
		basePath := strings.SplitN(rule.Path, "[*]", 2)[0]
		items, ok := payload[basePath].([]any)
		if !ok {
			return nil
		}
		for i, item := range items {
			obj, ok := item.(map[string]any)
			if !ok {
				anomalies = append(anomalies, fmt.Sprintf("Item %d in %s should be an object", i, basePath))
				continue
			}
			for _, field := range rule.Required {
				if _, present := obj[field]; !present {
					anomalies = append(anomalies, fmt.Sprintf("Missing required field '%s' in %s[%d]", field, basePath, i))
				}
			}
		}
		return anomalies
	}

	obj, ok := payload[rule.Path].(map[string]any)
	if !ok {
		return []string{fmt.Sprintf("Missing or invalid nested object '%s'", rule.Path)}
	}
	for _, field := range rule.Required {
		if _, present := obj[field]; !present {
			anomalies = append(anomalies, fmt.Sprintf("Missing required field '%s' in %s", field, rule.Path))
		}
	}
	return anomalies
}
