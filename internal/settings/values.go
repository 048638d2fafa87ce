package settings

import (
	"fmt"
	"strconv"
	"time"
)

// String returns config[key] as text. Scalars that key=value, env or JSON
// parsing turned into numbers or booleans are rendered back, so a password
// of 123456 stays "123456".
func String(config map[string]any, key string) (string, bool) {
	val, ok := config[key]
	if !ok {
		return "", false
	}
	switch v := val.(type) {
	case string:
		return v, true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	}
	return "", false
}

func StringDefault(config map[string]any, key, defaultValue string) string {
	if val, ok := String(config, key); ok {
		return val
	}
	return defaultValue
}

// Bool accepts booleans and strconv.ParseBool strings.
func Bool(config map[string]any, key string, defaultValue bool) bool {
	if val, ok := config[key]; ok {
		switch v := val.(type) {
		case bool:
			return v
		case string:
			if b, err := strconv.ParseBool(v); err == nil {
				return b
			}
		}
	}
	return defaultValue
}

// Int accepts ints, JSON numbers and numeric strings.
func Int(config map[string]any, key string, defaultValue int) (int, error) {
	val, ok := config[key]
	if !ok {
		return defaultValue, nil
	}
	switch v := val.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("%s: %v is not an integer", key, v)
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%s: unsupported type %T", key, val)
	}
}

// Duration accepts Go duration strings ("30s") or a number of seconds.
func Duration(config map[string]any, key string, defaultValue time.Duration) (time.Duration, error) {
	val, ok := config[key]
	if !ok {
		return defaultValue, nil
	}
	switch v := val.(type) {
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, err)
		}
		return d, nil
	case int:
		return time.Duration(v) * time.Second, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	default:
		return 0, fmt.Errorf("%s: unsupported type %T", key, val)
	}
}

// Map returns a nested object, or nil.
func Map(config map[string]any, key string) map[string]any {
	if val, ok := config[key]; ok {
		if m, ok := val.(map[string]any); ok {
			return m
		}
	}
	return nil
}
