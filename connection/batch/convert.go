package batch

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/array"
)

// timeLayouts are the text forms accepted for dates and timestamps stored as strings
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

// appendValue appends v to b, converting from the Go value a driver returned
func appendValue(b array.Builder, v any) error {
	if v == nil {
		b.AppendNull()
		return nil
	}
	switch fb := b.(type) {
	case *array.Int8Builder:
		n, err := toInt64(v, math.MinInt8, math.MaxInt8)
		if err != nil {
			return err
		}
		fb.Append(int8(n))
	case *array.Int16Builder:
		n, err := toInt64(v, math.MinInt16, math.MaxInt16)
		if err != nil {
			return err
		}
		fb.Append(int16(n))
	case *array.Int32Builder:
		n, err := toInt64(v, math.MinInt32, math.MaxInt32)
		if err != nil {
			return err
		}
		fb.Append(int32(n))
	case *array.Int64Builder:
		n, err := toInt64(v, math.MinInt64, math.MaxInt64)
		if err != nil {
			return err
		}
		fb.Append(n)
	case *array.Float32Builder:
		f, err := toFloat64(v)
		if err != nil {
			return err
		}
		fb.Append(float32(f))
	case *array.Float64Builder:
		f, err := toFloat64(v)
		if err != nil {
			return err
		}
		fb.Append(f)
	case *array.BooleanBuilder:
		t, err := toBool(v)
		if err != nil {
			return err
		}
		fb.Append(t)
	case *array.StringBuilder:
		fb.Append(toString(v))
	case *array.LargeStringBuilder:
		fb.Append(toString(v))
	case *array.BinaryBuilder:
		switch x := v.(type) {
		case []byte:
			fb.Append(x)
		case string:
			fb.AppendString(x)
		default:
			return fmt.Errorf("cannot convert %T to binary", v)
		}
	case *array.Date32Builder:
		t, err := toTime(v)
		if err != nil {
			return err
		}
		fb.Append(arrow.Date32FromTime(t))
	case *array.TimestampBuilder:
		t, err := toTime(v)
		if err != nil {
			return err
		}
		unit := fb.Type().(*arrow.TimestampType).Unit
		fb.Append(timestampOf(t, unit))
	default:
		return fmt.Errorf("unsupported arrow type %s", b.Type())
	}
	return nil
}

func timestampOf(t time.Time, unit arrow.TimeUnit) arrow.Timestamp {
	switch unit {
	case arrow.Second:
		return arrow.Timestamp(t.Unix())
	case arrow.Millisecond:
		return arrow.Timestamp(t.UnixMilli())
	case arrow.Microsecond:
		return arrow.Timestamp(t.UnixMicro())
	default:
		return arrow.Timestamp(t.UnixNano())
	}
}

func toInt64(v any, lo, hi int64) (int64, error) {
	var n int64
	switch x := v.(type) {
	case int64:
		n = x
	case int32:
		n = int64(x)
	case int16:
		n = int64(x)
	case int8:
		n = int64(x)
	case int:
		n = int64(x)
	case uint8:
		n = int64(x)
	case uint16:
		n = int64(x)
	case uint32:
		n = int64(x)
	case uint64:
		if x > math.MaxInt64 {
			return 0, fmt.Errorf("value %d overflows int64", x)
		}
		n = int64(x)
	case bool:
		if x {
			n = 1
		}
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("value %v is not an integer", x)
		}
		n = int64(x)
	case float32:
		return toInt64(float64(x), lo, hi)
	case string:
		p, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return 0, err
		}
		n = p
	case []byte:
		return toInt64(string(x), lo, hi)
	default:
		return 0, fmt.Errorf("cannot convert %T to integer", v)
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("value %d out of range [%d, %d]", n, lo, hi)
	}
	return n, nil
}

func toFloat64(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int16:
		return float64(x), nil
	case int8:
		return float64(x), nil
	case int:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(x), 64)
	case []byte:
		return strconv.ParseFloat(strings.TrimSpace(string(x)), 64)
	default:
		return 0, fmt.Errorf("cannot convert %T to float", v)
	}
}

func toBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case int64:
		return x != 0, nil
	case int32:
		return x != 0, nil
	case int16:
		return x != 0, nil
	case int8:
		return x != 0, nil
	case int:
		return x != 0, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "t", "true", "1", "y", "yes":
			return true, nil
		case "f", "false", "0", "n", "no":
			return false, nil
		}
		return false, fmt.Errorf("cannot convert %q to boolean", x)
	case []byte:
		return toBool(string(x))
	default:
		return false, fmt.Errorf("cannot convert %T to boolean", v)
	}
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}

func toTime(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("cannot parse %q as time", x)
	case []byte:
		return toTime(string(x))
	case int64:
		return time.Unix(x, 0).UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("cannot convert %T to time", v)
	}
}
