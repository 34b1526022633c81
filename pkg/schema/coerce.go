package schema

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Zero returns the zero value used for the kind.
func Zero(k Kind) any {
	switch k {
	case KindDouble:
		return float64(0)
	case KindFloat:
		return float32(0)
	case KindInt32:
		return int32(0)
	case KindInt64:
		return int64(0)
	case KindUint32:
		return uint32(0)
	case KindUint64:
		return uint64(0)
	case KindBool:
		return false
	case KindString, KindEnum:
		return ""
	default:
		return nil
	}
}

// Coerce converts v into the Go type carried by kind k. Numbers convert
// between widths, strings are parsed for numeric and boolean kinds. Enum
// values are returned as names; validating them is the adapter's job.
func Coerce(k Kind, v any) (any, error) {
	switch k {
	case KindDouble:
		f, err := toFloat(v)
		if err != nil {
			return nil, err
		}
		return f, nil
	case KindFloat:
		f, err := toFloat(v)
		if err != nil {
			return nil, err
		}
		return float32(f), nil
	case KindInt32:
		i, err := toInt(v)
		if err != nil {
			return nil, err
		}
		if i < math.MinInt32 || i > math.MaxInt32 {
			return nil, fmt.Errorf("schema: %d overflows int32", i)
		}
		return int32(i), nil
	case KindInt64:
		i, err := toInt(v)
		if err != nil {
			return nil, err
		}
		return i, nil
	case KindUint32:
		u, err := toUint(v)
		if err != nil {
			return nil, err
		}
		if u > math.MaxUint32 {
			return nil, fmt.Errorf("schema: %d overflows uint32", u)
		}
		return uint32(u), nil
	case KindUint64:
		u, err := toUint(v)
		if err != nil {
			return nil, err
		}
		return u, nil
	case KindBool:
		switch typed := v.(type) {
		case bool:
			return typed, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(typed))
			if err != nil {
				return nil, fmt.Errorf("schema: parse bool %q: %w", typed, err)
			}
			return b, nil
		}
	case KindString, KindEnum:
		switch typed := v.(type) {
		case string:
			return typed, nil
		case fmt.Stringer:
			return typed.String(), nil
		}
	}
	return nil, fmt.Errorf("%w: cannot use %T as %s", ErrKindMismatch, v, k)
}

func toFloat(v any) (float64, error) {
	switch typed := v.(type) {
	case float64:
		return typed, nil
	case float32:
		return float64(typed), nil
	case int:
		return float64(typed), nil
	case int32:
		return float64(typed), nil
	case int64:
		return float64(typed), nil
	case uint:
		return float64(typed), nil
	case uint32:
		return float64(typed), nil
	case uint64:
		return float64(typed), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		if err != nil {
			return 0, fmt.Errorf("schema: parse number %q: %w", typed, err)
		}
		return f, nil
	}
	return 0, fmt.Errorf("%w: cannot use %T as number", ErrKindMismatch, v)
}

func toInt(v any) (int64, error) {
	switch typed := v.(type) {
	case int:
		return int64(typed), nil
	case int32:
		return int64(typed), nil
	case int64:
		return typed, nil
	case uint:
		if uint64(typed) > math.MaxInt64 {
			return 0, fmt.Errorf("schema: %d overflows int64", typed)
		}
		return int64(typed), nil
	case uint32:
		return int64(typed), nil
	case uint64:
		if typed > math.MaxInt64 {
			return 0, fmt.Errorf("schema: %d overflows int64", typed)
		}
		return int64(typed), nil
	case float32:
		return int64(typed), nil
	case float64:
		if math.IsNaN(typed) {
			return 0, nil
		}
		return int64(typed), nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(typed), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("schema: parse integer %q: %w", typed, err)
		}
		return i, nil
	}
	return 0, fmt.Errorf("%w: cannot use %T as integer", ErrKindMismatch, v)
}

func toUint(v any) (uint64, error) {
	switch typed := v.(type) {
	case uint:
		return uint64(typed), nil
	case uint32:
		return uint64(typed), nil
	case uint64:
		return typed, nil
	case int, int32, int64:
		i, _ := toInt(typed)
		if i < 0 {
			return 0, fmt.Errorf("schema: negative value %d for unsigned field", i)
		}
		return uint64(i), nil
	case float32:
		if typed < 0 {
			return 0, fmt.Errorf("schema: negative value %v for unsigned field", typed)
		}
		return uint64(typed), nil
	case float64:
		if math.IsNaN(typed) {
			return 0, nil
		}
		if typed < 0 {
			return 0, fmt.Errorf("schema: negative value %v for unsigned field", typed)
		}
		return uint64(typed), nil
	case string:
		u, err := strconv.ParseUint(strings.TrimSpace(typed), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("schema: parse unsigned %q: %w", typed, err)
		}
		return u, nil
	}
	return 0, fmt.Errorf("%w: cannot use %T as unsigned integer", ErrKindMismatch, v)
}
