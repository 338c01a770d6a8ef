package audit

import (
	"fmt"
	"reflect"
	"time"
)

// Snapshot applies the audit serialization rule to a field set: binary values
// are dropped, booleans, numbers and strings are kept as they are, nil stays
// nil, and every other value is stored as its string representation.
func Snapshot(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if isBinary(v) {
			continue
		}
		out[k] = snapshotValue(v)
	}
	return out
}

func isBinary(v any) bool {
	switch v.(type) {
	case []byte, *[]byte:
		return true
	}
	return false
}

func snapshotValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return val
	case time.Time:
		return formatTime(val)
	case *time.Time:
		if val == nil {
			return nil
		}
		return formatTime(*val)
	case fmt.Stringer:
		return val.String()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		return snapshotValue(rv.Elem().Interface())
	case reflect.String:
		// Named string types such as enums.
		return rv.String()
	}
	return fmt.Sprint(v)
}

// formatTime renders calendar dates without a clock and everything else as RFC 3339.
func formatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.RFC3339)
}
