package pytype

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// FormatLiteral renders a Go value as Python source text for use as a
// default-value expression. Supported shapes: nil (None), bool, integers,
// floats, strings, []any (list), map[string]any (dict, keys sorted), and
// LiteralTuple. The second return is false for values that have no Python
// literal form.
func FormatLiteral(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "None", true
	case bool:
		if x {
			return "True", true
		}
		return "False", true
	case int:
		return strconv.Itoa(x), true
	case int32:
		return strconv.FormatInt(int64(x), 10), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case uint64:
		return strconv.FormatUint(x, 10), true
	case float32:
		return formatFloat(float64(x)), true
	case float64:
		return formatFloat(x), true
	case string:
		return strconv.Quote(x), true
	case []any:
		parts, ok := formatAll(x)
		if !ok {
			return "", false
		}
		return "[" + strings.Join(parts, ", ") + "]", true
	case LiteralTuple:
		parts, ok := formatAll(x)
		if !ok {
			return "", false
		}
		return "(" + strings.Join(parts, ", ") + ")", true
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			val, ok := FormatLiteral(x[k])
			if !ok {
				return "", false
			}
			parts = append(parts, fmt.Sprintf("%s: %s", strconv.Quote(k), val))
		}
		return "{" + strings.Join(parts, ", ") + "}", true
	default:
		return "", false
	}
}

// LiteralTuple marks a slice that should render with tuple parentheses
// instead of list brackets.
type LiteralTuple []any

func formatAll(vs []any) ([]string, bool) {
	parts := make([]string, len(vs))
	for i, v := range vs {
		s, ok := FormatLiteral(v)
		if !ok {
			return nil, false
		}
		parts[i] = s
	}
	return parts, true
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	// Python floats always carry a decimal point or exponent.
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
