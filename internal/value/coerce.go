package value

import "strconv"

// CoerceToNumber implements spec §4.1: Integer/Float pass through;
// String is parsed as an integer first (decimal or 0x-hex), then as a
// float; anything else fails.
func CoerceToNumber(v Value) (Value, bool) {
	switch v.kind {
	case KindInteger, KindFloat:
		return v, true
	case KindString:
		return parseNumber(v.str)
	default:
		return Value{}, false
	}
}

func parseNumber(s string) (Value, bool) {
	s = trimSpace(s)
	if s == "" {
		return Value{}, false
	}
	if i, ok := parseIntLiteral(s); ok {
		return Int(i), true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Float(f), true
	}
	return Value{}, false
}

func parseIntLiteral(s string) (int64, bool) {
	neg := false
	rest := s
	if len(rest) > 0 && (rest[0] == '+' || rest[0] == '-') {
		neg = rest[0] == '-'
		rest = rest[1:]
	}
	base := 10
	if len(rest) > 2 && rest[0] == '0' && (rest[1] == 'x' || rest[1] == 'X') {
		base = 16
		rest = rest[2:]
	}
	if rest == "" {
		return 0, false
	}
	u, err := strconv.ParseUint(rest, base, 64)
	if err != nil {
		return 0, false
	}
	i := int64(u)
	if neg {
		i = -i
	}
	return i, true
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && isSpace(s[start]) {
		start++
	}
	for end > start && isSpace(s[end-1]) {
		end--
	}
	return s[start:end]
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\v' || b == '\f'
}

// CoerceToInteger implements spec §4.1: Integer passes through; Float
// succeeds iff it has no fractional part and fits in signed 64-bit;
// String is parsed then coerced the same way.
func CoerceToInteger(v Value) (int64, bool) {
	switch v.kind {
	case KindInteger:
		return v.integer, true
	case KindFloat:
		return floatToInteger(v.float)
	case KindString:
		n, ok := parseNumber(v.str)
		if !ok {
			return 0, false
		}
		return CoerceToInteger(n)
	default:
		return 0, false
	}
}

func floatToInteger(f float64) (int64, bool) {
	if f != float64(int64(f)) {
		return 0, false
	}
	// int64(f) above already reports the float's truncated value;
	// reject magnitudes that silently overflowed during that conversion.
	if f >= 9223372036854775808.0 || f < -9223372036854775808.0 {
		return 0, false
	}
	return int64(f), true
}

// CoerceToString implements spec §4.1: String passes through,
// Integer/Float format as decimal; other kinds are not coerced.
func CoerceToString(v Value) (string, bool) {
	switch v.kind {
	case KindString:
		return v.str, true
	case KindInteger, KindFloat:
		return v.String(), true
	default:
		return "", false
	}
}
