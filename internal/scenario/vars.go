package scenario

import (
	"regexp"

	apperrors "unreal-mcp-go/internal/errors"
)

var placeholder = regexp.MustCompile(`\$\{([A-Za-z0-9_.\-]+)\}`)

// Substitute returns a deep copy of params with ${var} placeholders in every
// string replaced from vars. An unknown variable is an error.
func Substitute(params map[string]any, vars map[string]string) (map[string]any, error) {
	if params == nil {
		return map[string]any{}, nil
	}
	out, err := substituteValue(params, vars)
	if err != nil {
		return nil, err
	}
	return out.(map[string]any), nil
}

func substituteValue(v any, vars map[string]string) (any, error) {
	switch tv := v.(type) {
	case string:
		return substituteString(tv, vars)
	case map[string]any:
		out := make(map[string]any, len(tv))
		for k, val := range tv {
			sub, err := substituteValue(val, vars)
			if err != nil {
				return nil, err
			}
			out[k] = sub
		}
		return out, nil
	case []any:
		out := make([]any, len(tv))
		for i, val := range tv {
			sub, err := substituteValue(val, vars)
			if err != nil {
				return nil, err
			}
			out[i] = sub
		}
		return out, nil
	default:
		return v, nil
	}
}

func substituteString(s string, vars map[string]string) (string, error) {
	var missing string
	out := placeholder.ReplaceAllStringFunc(s, func(m string) string {
		name := placeholder.FindStringSubmatch(m)[1]
		val, ok := vars[name]
		if !ok {
			if missing == "" {
				missing = name
			}
			return m
		}
		return val
	})
	if missing != "" {
		return "", apperrors.Newf(apperrors.KindInvalidArgument, "substitute", "", "unknown variable %q", missing)
	}
	return out, nil
}
