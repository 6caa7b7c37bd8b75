// Package datatable derives filtered, sorted and paginated views over an
// in-memory row source. An Engine owns the complete state of one table view
// (sorting, column visibility, column filters, row selection, pagination) and
// recomputes a read-only Projection from that state on demand.
package datatable

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the type held by a Value.
type Kind int

const (
	// KindNull is an absent value.
	KindNull Kind = iota
	// KindBool holds Value.Bool.
	KindBool
	// KindNumber holds Value.Num.
	KindNumber
	// KindString holds Value.Str.
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBool:
		return "Bool"
	case KindNumber:
		return "Number"
	case KindString:
		return "String"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// Value is a typed cell value extracted from a row by a column accessor.
// Values are comparable and can be used as map keys.
type Value struct {
	Kind Kind
	Str  string
	Num  float64
	Bool bool
}

// Null returns the null value.
func Null() Value { return Value{} }

// String wraps s.
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// Number wraps n.
func Number(n float64) Value { return Value{Kind: KindNumber, Num: n} }

// Int wraps n as a number.
func Int(n int64) Value { return Value{Kind: KindNumber, Num: float64(n)} }

// Bool wraps b.
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// IsNull reports whether v holds no value.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// String formats v for display. Null formats as the empty string.
func (v Value) String() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	default:
		return ""
	}
}

// Compare orders a and b. Values of different kinds order by kind
// (null < bool < number < string). Strings compare case-insensitively first
// and fall back to a byte comparison so the order stays total.
func Compare(a, b Value) int {
	if a.Kind != b.Kind {
		if a.Kind < b.Kind {
			return -1
		}
		return 1
	}
	switch a.Kind {
	case KindBool:
		switch {
		case a.Bool == b.Bool:
			return 0
		case !a.Bool:
			return -1
		default:
			return 1
		}
	case KindNumber:
		switch {
		case a.Num < b.Num:
			return -1
		case a.Num > b.Num:
			return 1
		default:
			return 0
		}
	case KindString:
		if c := strings.Compare(strings.ToLower(a.Str), strings.ToLower(b.Str)); c != 0 {
			return c
		}
		return strings.Compare(a.Str, b.Str)
	default:
		return 0
	}
}
