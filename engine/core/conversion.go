package deeprag

import (
	"fmt"
	"strconv"
)

// ToInt converts an any value to int with a default fallback.
// Handles: int, float64, string (numeric), and other types.
func ToInt(value any, defaultVal int) int {
	if value == nil {
		return defaultVal
	}

	switch v := value.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case float32:
		return int(v)
	case string:
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		return defaultVal
	default:
		return defaultVal
	}
}

// ToFloat64 converts an any value to float64 with a default fallback
func ToFloat64(value any, defaultVal float64) float64 {
	if value == nil {
		return defaultVal
	}

	switch v := value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		return defaultVal
	default:
		return defaultVal
	}
}

// ToString converts an any value to string with a default fallback
func ToString(value any, defaultVal string) string {
	if value == nil {
		return defaultVal
	}

	switch v := value.(type) {
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ToBool converts an any value to bool with a default fallback
func ToBool(value any, defaultVal bool) bool {
	if value == nil {
		return defaultVal
	}

	switch v := value.(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		return defaultVal
	default:
		return defaultVal
	}
}

// ToStringSlice converts an any value to []string with a default fallback
func ToStringSlice(value any, defaultVal []string) []string {
	if value == nil {
		return defaultVal
	}

	switch v := value.(type) {
	case []string:
		return v
	case []any:
		result := make([]string, 0, len(v))
		for _, item := range v {
			result = append(result, ToString(item, ""))
		}
		return result
	default:
		return defaultVal
	}
}

// ToStringMap converts an any value to map[string]string, dropping entries
// whose values are not strings. Returns an empty map for other types.
func ToStringMap(value any) map[string]string {
	result := make(map[string]string)
	switch v := value.(type) {
	case map[string]string:
		for key, val := range v {
			result[key] = val
		}
	case map[string]any:
		for key, val := range v {
			if s, ok := val.(string); ok {
				result[key] = s
			}
		}
	}
	return result
}
