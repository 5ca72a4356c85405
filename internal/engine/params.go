package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// Params is a decoded command's params object.
type Params map[string]any

// String returns the named string param, or "" when absent or not a string.
func (p Params) String(name string) string {
	s, _ := p[name].(string)
	return s
}

// Require returns the named string param or the plugin's
// "Missing '<name>' parameter" error.
func (p Params) Require(name string) (string, error) {
	s := p.String(name)
	if s == "" {
		return "", fmt.Errorf("Missing '%s' parameter", name)
	}
	return s, nil
}

// Bool returns the named boolean param or def.
func (p Params) Bool(name string, def bool) bool {
	if b, ok := p[name].(bool); ok {
		return b
	}
	return def
}

// Float returns the named numeric param and whether it was present.
func (p Params) Float(name string) (float64, bool) {
	f, ok := p[name].(float64)
	return f, ok
}

// Vector returns a 3-element numeric array param, or def.
func (p Params) Vector(name string, def Vec3) Vec3 {
	arr, ok := p[name].([]any)
	if !ok || len(arr) != 3 {
		return def
	}
	var out Vec3
	for i, v := range arr {
		f, ok := v.(float64)
		if !ok {
			return def
		}
		out[i] = f
	}
	return out
}

// Position returns a 2-element numeric array param, or the origin.
func (p Params) Position(name string) Vec2 {
	arr, ok := p[name].([]any)
	if !ok || len(arr) != 2 {
		return Vec2{}
	}
	var out Vec2
	for i, v := range arr {
		if f, ok := v.(float64); ok {
			out[i] = f
		}
	}
	return out
}

// Object returns a nested object param.
func (p Params) Object(name string) map[string]any {
	m, _ := p[name].(map[string]any)
	return m
}

// pinDefault renders a JSON param value the way the editor stores pin
// defaults. ok is false for values the editor ignores.
func pinDefault(v any) (string, bool) {
	switch tv := v.(type) {
	case string:
		return tv, true
	case float64:
		return sanitizeFloat(tv), true
	case bool:
		if tv {
			return "true", true
		}
		return "false", true
	case []any:
		if len(tv) != 3 {
			return "", false
		}
		var xyz [3]float64
		for i, e := range tv {
			f, _ := e.(float64)
			xyz[i] = f
		}
		return fmt.Sprintf("(X=%f,Y=%f,Z=%f)", xyz[0], xyz[1], xyz[2]), true
	default:
		return "", false
	}
}

// sanitizeFloat formats f with at least one fractional digit: 1000 -> "1000.0".
func sanitizeFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
