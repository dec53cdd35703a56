package dict

import (
	"strconv"
	"strings"
)

// Series payloads render as a placeholder so diagnostics stay bounded.
const (
	placeholderDoubles = "seriesD<..>"
	placeholderInts    = "seriesI<..>"
	placeholderStrings = "seriesString<..>"
	placeholderAnys    = "seriesAny<..>"
)

// String renders d for diagnostics, in ascending key order:
//
//	Dict(marker:Dict(size:10), mode:markers, x:seriesI<..>)
//
// Nested dictionaries are rendered recursively; series are rendered as a
// placeholder rather than their contents.
func (d *Dictionary) String() string {
	var b strings.Builder
	d.writeTo(&b)
	return b.String()
}

func (d *Dictionary) writeTo(b *strings.Builder) {
	b.WriteString("Dict(")
	first := true
	d.Range(func(k string, v Value) bool {
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(k)
		b.WriteByte(':')
		v.writeTo(b)
		return true
	})
	b.WriteByte(')')
}

// String renders v for diagnostics. Unset renders as the empty string.
func (v Value) String() string {
	var b strings.Builder
	v.writeTo(&b)
	return b.String()
}

func (v Value) writeTo(b *strings.Builder) {
	switch v.kind {
	case KindUnset:
	case KindBool:
		b.WriteString(strconv.FormatBool(v.b))
	case KindInt:
		b.WriteString(strconv.FormatInt(v.i, 10))
	case KindDouble:
		b.WriteString(strconv.FormatFloat(v.f, 'g', -1, 64))
	case KindString:
		b.WriteString(v.s)
	case KindDoubleSeries:
		b.WriteString(placeholderDoubles)
	case KindIntSeries:
		b.WriteString(placeholderInts)
	case KindStringSeries:
		b.WriteString(placeholderStrings)
	case KindAnySeries:
		b.WriteString(placeholderAnys)
	case KindDict:
		v.d.writeTo(b)
	default:
		panic(unknownKind(v.kind))
	}
}

// String renders s for diagnostics; a gap renders as "null".
func (s Scalar) String() string {
	switch s.kind {
	case ScalarString:
		return s.s
	case ScalarDouble:
		return strconv.FormatFloat(s.f, 'g', -1, 64)
	case ScalarInt:
		return strconv.FormatInt(s.i, 10)
	}
	return "null"
}
