// Package sanitize makes decoded table values safe for strict JSON encoders.
//
// encoding/json rejects NaN and infinite floats. Sanitize walks an arbitrary
// value tree and replaces every such float with nil, leaving every other
// value unchanged.
package sanitize

import (
	"encoding"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"

	"twstock/internal/table"
)

// Sanitize returns a copy of v in which every NaN or infinite float is
// replaced by nil. Maps and structs become map[string]any keyed the way
// encoding/json names them, and slices and arrays become []any. Values that
// marshal themselves, like time.Time, and non-float scalars are returned as
// is. Sanitize
// never fails and Sanitize(Sanitize(v)) equals Sanitize(v).
func Sanitize(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		return finite(x)
	case float32:
		return finite(float64(x))
	case string, bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return v
	case map[string]any:
		return sanitizeMap(x)
	case table.Row:
		return sanitizeMap(x)
	case []map[string]any:
		out := make([]any, len(x))
		for i, m := range x {
			out[i] = sanitizeMap(m)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Sanitize(e)
		}
		return out
	}
	return sanitizeValue(reflect.ValueOf(v))
}

// Records sanitizes a list of table records.
func Records(records []map[string]any) []map[string]any {
	out := make([]map[string]any, len(records))
	for i, m := range records {
		out[i] = sanitizeMap(m)
	}
	return out
}

// Float returns nil for a nil pointer or a non-finite value and the value
// otherwise.
func Float(f *float64) any {
	if f == nil {
		return nil
	}
	return finite(*f)
}

func finite(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}

func sanitizeMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, e := range m {
		out[k] = Sanitize(e)
	}
	return out
}

// sanitizeValue handles named and composite types through reflection.
func sanitizeValue(rv reflect.Value) any {
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return finite(rv.Float())
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return Sanitize(rv.Elem().Interface())
	case reflect.Map:
		if rv.IsNil() {
			return nil
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[mapKey(iter.Key())] = Sanitize(iter.Value().Interface())
		}
		return out
	case reflect.Struct:
		if marshalsItself(rv) {
			return rv.Interface()
		}
		out := make(map[string]any, rv.NumField())
		structFields(rv, out)
		return out
	case reflect.Slice:
		if rv.IsNil() {
			return nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return rv.Interface()
		}
		fallthrough
	case reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = Sanitize(rv.Index(i).Interface())
		}
		return out
	default:
		return rv.Interface()
	}
}

// mapKey renders a map key the way encoding/json does for the common kinds.
func mapKey(k reflect.Value) string {
	if k.Kind() == reflect.String {
		return k.String()
	}
	if tm, ok := k.Interface().(encoding.TextMarshaler); ok {
		if b, err := tm.MarshalText(); err == nil {
			return string(b)
		}
	}
	return fmt.Sprint(k.Interface())
}

var (
	jsonMarshaler = reflect.TypeFor[json.Marshaler]()
	textMarshaler = reflect.TypeFor[encoding.TextMarshaler]()
)

// marshalsItself reports whether v controls its own JSON form, like
// time.Time. Such values are left alone.
func marshalsItself(v reflect.Value) bool {
	t := v.Type()
	return t.Implements(jsonMarshaler) || t.Implements(textMarshaler)
}

// structFields copies the exported fields of v into out under their JSON
// names. Untagged embedded structs are inlined; unexported fields, fields
// tagged "-" and empty omitempty fields are dropped.
func structFields(v reflect.Value, out map[string]any) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		fv := v.Field(i)

		if f.Anonymous && name == "" {
			ev := fv
			if ev.Kind() == reflect.Pointer && f.IsExported() {
				if ev.IsNil() {
					continue
				}
				ev = ev.Elem()
			}
			// Exported fields of an unexported embedded struct stay readable.
			if ev.Kind() == reflect.Struct && !marshalsItself(ev) {
				structFields(ev, out)
				continue
			}
		}
		if !f.IsExported() {
			continue
		}
		if strings.Contains(opts, "omitempty") && fv.IsZero() {
			continue
		}
		if name == "" {
			name = f.Name
		}
		out[name] = Sanitize(fv.Interface())
	}
}
