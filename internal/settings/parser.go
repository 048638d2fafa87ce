// Package settings builds engine configuration maps from layered sources:
// environment variables, a JSON file, a JSON string and key=value pairs.
package settings

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"strconv"
	"strings"
)

// EnvPrefix is the environment prefix read by Build.
const EnvPrefix = "FERRY_CONFIG"

// ParseKV parses a key=value pair, attempting type inference for the value
func ParseKV(kvPair string) (string, any, error) {
	parts := strings.SplitN(kvPair, "=", 2)
	if len(parts) != 2 {
		return "", nil, fmt.Errorf("invalid format, expected key=value: %s", kvPair)
	}

	key := strings.TrimSpace(parts[0])
	if key == "" {
		return "", nil, fmt.Errorf("empty key in key=value pair")
	}

	valueStr := strings.TrimSpace(parts[1])

	// Integers first so "1" is not taken as boolean true
	if intVal, err := strconv.Atoi(valueStr); err == nil {
		return key, intVal, nil
	}

	if floatVal, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return key, floatVal, nil
	}

	// Only explicit "true"/"false" become booleans
	if valueStr == "true" || valueStr == "false" {
		boolVal, _ := strconv.ParseBool(valueStr)
		return key, boolVal, nil
	}

	return key, valueStr, nil
}

// ParseJSON parses a JSON object string into a map
func ParseJSON(jsonStr string) (map[string]any, error) {
	var result map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return result, nil
}

// ParseFile reads and parses a JSON object from a file
func ParseFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("invalid JSON in file: %w", err)
	}
	return result, nil
}

// ParseEnvWithPrefix parses environment variables with a custom prefix.
// PREFIX holds a JSON object; PREFIX_KEY=value sets a single lower-cased key.
func ParseEnvWithPrefix(prefix string) map[string]any {
	config := make(map[string]any)

	if jsonStr := os.Getenv(prefix); jsonStr != "" {
		if parsed, err := ParseJSON(jsonStr); err == nil {
			maps.Copy(config, parsed)
		}
	}

	envPrefix := prefix + "_"
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, envPrefix) {
			continue
		}
		parts := strings.SplitN(env, "=", 2)
		if len(parts) != 2 || parts[1] == "" {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(parts[0], envPrefix))
		_, value, _ := ParseKV(key + "=" + parts[1])
		config[key] = value
	}

	if len(config) == 0 {
		return nil
	}
	return config
}

// Merge merges config maps; later sources override earlier ones. Nested
// maps are replaced, not merged.
func Merge(sources ...map[string]any) map[string]any {
	result := make(map[string]any)
	for _, src := range sources {
		maps.Copy(result, src)
	}
	return result
}

// Build builds the engine config from all sources using EnvPrefix
func Build(jsonStr string, kvPairs []string, filePath string) (map[string]any, error) {
	return BuildWithPrefix(EnvPrefix, jsonStr, kvPairs, filePath)
}

// BuildWithPrefix builds the config from all sources with a custom
// environment variable prefix. Precedence: env < file < json < kv.
func BuildWithPrefix(envPrefix, jsonStr string, kvPairs []string, filePath string) (map[string]any, error) {
	var sources []map[string]any

	if env := ParseEnvWithPrefix(envPrefix); env != nil {
		sources = append(sources, env)
	}

	if filePath != "" {
		fileCfg, err := ParseFile(filePath)
		if err != nil {
			return nil, err
		}
		sources = append(sources, fileCfg)
	}

	if jsonStr != "" {
		jsonCfg, err := ParseJSON(jsonStr)
		if err != nil {
			return nil, err
		}
		sources = append(sources, jsonCfg)
	}

	if len(kvPairs) > 0 {
		kvCfg := make(map[string]any)
		for _, kv := range kvPairs {
			key, value, err := ParseKV(kv)
			if err != nil {
				return nil, err
			}
			kvCfg[key] = value
		}
		sources = append(sources, kvCfg)
	}

	return Merge(sources...), nil
}
