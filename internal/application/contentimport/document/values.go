package document

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// object is a decoded mapping whose keys match regardless of case, "_", "-"
// and spaces, so "lessonPlans", "lesson_plans" and "Lesson-Plans" are one key.
type object struct {
	values map[string]any
	keys   map[string]string
}

func newObject(m map[string]any) object {
	o := object{values: m, keys: make(map[string]string, len(m))}
	for k := range m {
		nk := normalizeKey(k)
		// The first spelling wins when a document repeats a key in two styles.
		if prev, ok := o.keys[nk]; !ok || k < prev {
			o.keys[nk] = k
		}
	}
	return o
}

func normalizeKey(k string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(k) {
		switch r {
		case '_', '-', ' ':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// get returns the value of the first alias present with a non-nil value.
func (o object) get(aliases ...string) (any, bool) {
	for _, a := range aliases {
		if k, ok := o.keys[normalizeKey(a)]; ok {
			if v := o.values[k]; v != nil {
				return v, true
			}
		}
	}
	return nil, false
}

func (o object) has(aliases ...string) bool {
	_, ok := o.get(aliases...)
	return ok
}

func (o object) str(aliases ...string) string {
	v, ok := o.get(aliases...)
	if !ok {
		return ""
	}
	return strings.TrimSpace(asString(v))
}

// integer returns the value and whether it was present. Non-integral or
// non-numeric values are reported as an error naming the first alias.
func (o object) integer(aliases ...string) (int, bool, error) {
	v, ok := o.get(aliases...)
	if !ok {
		return 0, false, nil
	}
	n, err := asInt(v)
	if err != nil {
		return 0, true, fmt.Errorf("%s: %w", aliases[0], err)
	}
	return n, true, nil
}

func (o object) boolean(def bool, aliases ...string) bool {
	v, ok := o.get(aliases...)
	if !ok {
		return def
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		if parsed, err := strconv.ParseBool(strings.TrimSpace(b)); err == nil {
			return parsed
		}
	}
	return def
}

func (o object) list(aliases ...string) ([]any, bool) {
	v, ok := o.get(aliases...)
	if !ok {
		return nil, false
	}
	l, ok := v.([]any)
	return l, ok
}

func (o object) child(aliases ...string) (object, bool) {
	v, ok := o.get(aliases...)
	if !ok {
		return object{}, false
	}
	m, ok := asMap(v)
	if !ok {
		return object{}, false
	}
	return newObject(m), true
}

// stringList returns a list of non-empty strings; a single string is accepted
// as a one-element list.
func (o object) stringList(aliases ...string) []string {
	v, ok := o.get(aliases...)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return []string{s}
		}
		return nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := strings.TrimSpace(asString(item)); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}
	return nil, false
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	case map[string]any, map[any]any, []any:
		return ""
	default:
		return fmt.Sprint(s)
	}
}

func asInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%v is not a whole number", n)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("%q is not a whole number", n.String())
		}
		return int(i), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", n)
		}
		return i, nil
	}
	return 0, fmt.Errorf("unexpected %T", v)
}

// plain converts decoded YAML values into JSON-encodable ones.
func plain(v any) any {
	switch t := v.(type) {
	case map[any]any, map[string]any:
		m, _ := asMap(t)
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[k] = plain(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = plain(val)
		}
		return out
	default:
		return v
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
