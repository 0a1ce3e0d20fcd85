package ingestion

import (
	"reflect"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Draft is the caller-owned record built across the declaration, payload and
// seal steps. The registry only reads it.
type Draft map[string]any

// Attachment is a file already stored by the platform
type Attachment struct {
	FileName string `json:"file_name"`
	SHA256   string `json:"sha256"`
}

// Text returns the trimmed string value of key, or "" when absent or not a string
func (d Draft) Text(key string) string {
	s, _ := d[key].(string)
	return strings.TrimSpace(s)
}

// Has reports whether key holds a present value
func (d Draft) Has(key string) bool { return present(d[key]) }

// Clone returns a shallow copy
func (d Draft) Clone() Draft {
	out := make(Draft, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// present is the truthiness rule for required fields: nil, the empty string,
// false, zero numbers and empty collections count as missing. A string of
// spaces is present.
func present(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case bool:
		return x
	case int:
		return x != 0
	case int64:
		return x != 0
	case float64:
		return x != 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.String:
		return rv.Len() > 0
	}
	return true
}

// minText reports whether v is a string of at least n characters, spaces
// included. Characters are counted as runes after NFC so composed and
// decomposed accents count the same.
func minText(v any, n int) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	s = norm.NFC.String(s)
	return utf8.RuneCountInString(s) >= n
}
