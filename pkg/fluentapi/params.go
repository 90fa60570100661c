package fluentapi

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"time"

	"github.com/gorilla/schema"
)

var schemaEncoder = schema.NewEncoder()

// Params holds query parameters for a request.
type Params map[string]any

// Values converts the params to url.Values. Slices become repeated keys and
// nil values are skipped.
func (p Params) Values() url.Values {
	values := make(url.Values, len(p))

	for key, value := range p {
		if value == nil {
			continue
		}

		switch typed := value.(type) {
		case string:
			values.Add(key, typed)
		case []string:
			for _, item := range typed {
				values.Add(key, item)
			}
		case time.Time:
			values.Add(key, typed.Format(time.RFC3339))
		case fmt.Stringer:
			values.Add(key, typed.String())
		default:
			addReflected(values, key, value)
		}
	}

	return values
}

func addReflected(values url.Values, key string, value any) {
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		for i := range rv.Len() {
			item := rv.Index(i).Interface()
			if item != nil {
				values.Add(key, fmt.Sprint(item))
			}
		}

		return
	}

	values.Add(key, fmt.Sprint(value))
}

// Encode returns the params as a query string with sorted keys.
func (p Params) Encode() string {
	return p.Values().Encode()
}

// Clone returns a shallow copy. A nil receiver yields an empty map.
func (p Params) Clone() Params {
	clone := make(Params, len(p))
	for key, value := range p {
		clone[key] = value
	}

	return clone
}

// Keys returns the parameter names in sorted order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for key := range p {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// EncodeParams builds Params from a struct using `schema` field tags.
func EncodeParams(src any) (Params, error) {
	values := make(map[string][]string)

	err := schemaEncoder.Encode(src, values)
	if err != nil {
		return nil, fmt.Errorf("encoding params: %w", err)
	}

	params := make(Params, len(values))

	for key, list := range values {
		if len(list) == 1 {
			params[key] = list[0]
		} else {
			params[key] = list
		}
	}

	return params, nil
}
