package logger

import (
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Field is a typed key/value attached to a log event.
type Field struct {
	key   string
	value interface{}
}

func String(key, value string) Field          { return Field{key, value} }
func Int(key string, value int) Field         { return Field{key, value} }
func Int64(key string, value int64) Field     { return Field{key, value} }
func Float64(key string, value float64) Field { return Field{key, value} }
func Bool(key string, value bool) Field       { return Field{key, value} }
func Any(key string, value interface{}) Field { return Field{key, value} }

// Error logs err under the "error" key.
func Error(err error) Field { return Field{zerolog.ErrorFieldName, err} }

// Duration is logged in whole milliseconds.
func Duration(key string, d time.Duration) Field { return Field{key, d.Milliseconds()} }

// Strings is logged as a single comma separated value.
func Strings(key string, values []string) Field { return Field{key, strings.Join(values, ", ")} }

func (f Field) addTo(e *zerolog.Event) {
	switch v := f.value.(type) {
	case string:
		e.Str(f.key, v)
	case int:
		e.Int(f.key, v)
	case int64:
		e.Int64(f.key, v)
	case float64:
		e.Float64(f.key, v)
	case bool:
		e.Bool(f.key, v)
	case error:
		e.AnErr(f.key, v)
	default:
		e.Interface(f.key, v)
	}
}

func (f Field) addToContext(c zerolog.Context) zerolog.Context {
	switch v := f.value.(type) {
	case string:
		return c.Str(f.key, v)
	case int:
		return c.Int(f.key, v)
	case int64:
		return c.Int64(f.key, v)
	case float64:
		return c.Float64(f.key, v)
	case bool:
		return c.Bool(f.key, v)
	case error:
		return c.AnErr(f.key, v)
	}
	return c.Interface(f.key, f.value)
}
