package contract

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Violation is one place where a decoded value breaks the contract.
type Violation struct {
	Path    string `json:"path"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a value produced by a json.Decoder with UseNumber enabled.
// Properties the contract does not declare are ignored. A nil result means the
// value conforms.
func (c *Contract) Validate(value any) []Violation {
	var out []Violation
	check(c.root, "$", value, &out)
	return out
}

func check(f Field, path string, value any, out *[]Violation) {
	add := func(rule, format string, args ...any) {
		*out = append(*out, Violation{Path: path, Rule: rule, Message: fmt.Sprintf(format, args...)})
	}

	switch f.Kind {
	case String:
		s, ok := value.(string)
		if !ok {
			add("type", "expected string, got %s", describe(value))
			return
		}
		if len(f.Enum) > 0 && !slices.Contains(f.Enum, s) {
			add("enum", "%q is not one of %v", s, f.Enum)
		}
		if n := utf8.RuneCountInString(strings.TrimSpace(s)); n < f.MinLength {
			add("minLength", "must carry at least %d non-blank characters, got %d", f.MinLength, n)
		}

	case Integer:
		n, ok := value.(json.Number)
		if !ok {
			add("type", "expected integer, got %s", describe(value))
			return
		}
		i, err := strconv.ParseInt(n.String(), 10, 64)
		if err != nil {
			add("integer", "%s is not an integer", n)
			return
		}
		checkRange(f, float64(i), n.String(), add)

	case Number:
		n, ok := value.(json.Number)
		if !ok {
			add("type", "expected number, got %s", describe(value))
			return
		}
		v, err := n.Float64()
		if err != nil {
			add("type", "%s is not a number", n)
			return
		}
		checkRange(f, v, n.String(), add)

	case Boolean:
		if _, ok := value.(bool); !ok {
			add("type", "expected boolean, got %s", describe(value))
		}

	case Array:
		items, ok := value.([]any)
		if !ok {
			add("type", "expected array, got %s", describe(value))
			return
		}
		if f.Items == nil {
			return
		}
		for i, item := range items {
			check(*f.Items, fmt.Sprintf("%s[%d]", path, i), item, out)
		}

	case Object:
		obj, ok := value.(map[string]any)
		if !ok {
			add("type", "expected object, got %s", describe(value))
			return
		}
		for _, p := range f.Properties {
			child := path + "." + p.Name
			v, present := obj[p.Name]
			if !present || v == nil {
				if p.Required {
					*out = append(*out, Violation{Path: child, Rule: "required", Message: "is required"})
				}
				continue
			}
			check(p, child, v, out)
		}
	}
}

func checkRange(f Field, v float64, raw string, add func(rule, format string, args ...any)) {
	if f.Min != nil && v < *f.Min {
		add("minimum", "%s is below the minimum %v", raw, *f.Min)
	}
	if f.Max != nil && v > *f.Max {
		add("maximum", "%s is above the maximum %v", raw, *f.Max)
	}
}

func describe(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", value)
	}
}
