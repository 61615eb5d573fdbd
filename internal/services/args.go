package services

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Function-call arguments arrive as decoded JSON: strings, float64 numbers,
// bools, []any and map[string]any.

func argString(args map[string]any, key string) (string, bool) {
	v, ok := args[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

func argBool(args map[string]any, key string) (bool, bool, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return false, false, nil
	}
	switch t := v.(type) {
	case bool:
		return t, true, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true":
			return true, true, nil
		case "false":
			return false, true, nil
		}
	}
	return false, false, invalid(key, "must be a boolean")
}

func argInt(args map[string]any, key string) (int, bool, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return 0, false, nil
	}
	switch t := v.(type) {
	case float64:
		if t != math.Trunc(t) {
			return 0, false, invalid(key, "must be an integer")
		}
		return int(t), true, nil
	case int:
		return t, true, nil
	}
	return 0, false, invalid(key, "must be a number")
}

func argStrings(args map[string]any, key string) ([]string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch t := v.(type) {
	case []string:
		return t, nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, invalid(key, "must be a list of strings")
			}
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out, nil
	}
	return nil, invalid(key, "must be a list of strings")
}

// argDate accepts YYYY-MM-DD or RFC3339.
func argDate(args map[string]any, key string) (*time.Time, error) {
	s, ok := argString(args, key)
	if !ok {
		return nil, nil
	}
	t, err := parseDate(s)
	if err != nil {
		return nil, invalid(key, "%v", err)
	}
	return &t, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unparsable date %q (want YYYY-MM-DD or RFC3339)", s)
}
