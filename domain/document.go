package domain

import "time"

// Field accessors tolerate both freshly-built documents (native Go types) and
// documents round-tripped through JSON (numbers arrive as float64, times as
// RFC3339 strings).

func fieldString(fields map[string]interface{}, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}

func fieldBool(fields map[string]interface{}, key string) bool {
	if v, ok := fields[key].(bool); ok {
		return v
	}
	return false
}

func fieldFloat(fields map[string]interface{}, key string) float64 {
	switch v := fields[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

func fieldInt(fields map[string]interface{}, key string) int {
	return int(fieldFloat(fields, key))
}

func fieldTime(fields map[string]interface{}, key string) time.Time {
	switch v := fields[key].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func fieldStringSlice(fields map[string]interface{}, key string) []string {
	switch v := fields[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
