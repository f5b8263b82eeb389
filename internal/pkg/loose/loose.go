// Package loose decodes schema-less upstream records into typed structs.
package loose

import (
	"reflect"
	"strconv"

	"github.com/mitchellh/mapstructure"
)

// Decode copies the fields of input into out using weak typing, so numbers
// and booleans become strings where out expects strings. Booleans read as
// "true" and "false". Fields that cannot be converted are left at their
// zero value and listed in the returned error; their siblings still decode.
// A nested struct is decoded as a unit, so callers wanting per-field
// tolerance keep nested objects as maps and decode them separately.
func Decode(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       boolToString,
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

func boolToString(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.Bool || to.Kind() != reflect.String {
		return data, nil
	}
	return strconv.FormatBool(reflect.ValueOf(data).Bool()), nil
}

// Accessor reads one optional string field of a decoded record.
type Accessor[T any] func(T) *string

// First evaluates accessors in order and returns the first present value.
// Present means non-nil: an empty string still wins over later accessors.
func First[T any](rec T, accessors ...Accessor[T]) *string {
	for _, get := range accessors {
		if v := get(rec); v != nil {
			return v
		}
	}
	return nil
}

// String dereferences p, returning "" for nil.
func String(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
