package source

import "strconv"

// Helpers for walking untyped JSON (map[string]any) pulled out of the
// catalog pages. Shapes drift between site deployments, so every accessor
// tolerates missing or mistyped keys.

func getMap(m map[string]any, key string) map[string]any {
	v, _ := m[key].(map[string]any)
	return v
}

func getSlice(m map[string]any, key string) []any {
	v, _ := m[key].([]any)
	return v
}

func getStr(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func getFloat(m map[string]any, key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func getInt(m map[string]any, key string) (int, bool) {
	f, ok := getFloat(m, key)
	if !ok {
		return 0, false
	}
	return int(f), true
}
