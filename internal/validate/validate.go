// Package validate contains the field-level predicates used by the
// per-entity transformers. Every function is total over arbitrary input and
// reports failure as a boolean; unparseable data is invalid, never an error.
package validate

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"unietl/pkg/records"
)

// ISODate is the default date layout accepted by Date.
const ISODate = "2006-01-02"

var (
	emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRe = regexp.MustCompile(`^[\d\s+\-()]{7,20}$`)
)

// Email reports whether v looks like local@domain.tld.
func Email(v any) bool {
	return emailRe.MatchString(strings.TrimSpace(records.AsString(v)))
}

// Phone reports whether v is a plausible phone number. Phone is optional, so
// absent/empty input passes.
func Phone(v any) bool {
	s := strings.TrimSpace(records.AsString(v))
	if s == "" {
		return true
	}
	return phoneRe.MatchString(s)
}

// Date reports whether v parses under layout. An empty layout means ISODate.
// No range check is applied.
func Date(v any, layout string) bool {
	if _, ok := v.(time.Time); ok {
		return true
	}
	if layout == "" {
		layout = ISODate
	}
	_, err := time.Parse(layout, strings.TrimSpace(records.AsString(v)))
	return err == nil
}

// Year reports whether v is an integer year in [1900, current year+1].
func Year(v any) bool {
	y, ok := Integer(v)
	if !ok {
		return false
	}
	max := int64(time.Now().Year() + 1)
	return y >= 1900 && y <= max
}

// Status reports whether the trimmed string form of v is one of allowed.
func Status(v any, allowed []string) bool {
	s := strings.TrimSpace(records.AsString(v))
	for _, a := range allowed {
		if s == a {
			return true
		}
	}
	return false
}

// Integer parses v as a 64-bit integer. Floats with a zero fractional part
// (common after JSON decoding) are accepted.
func Integer(v any) (int64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case int:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	case float64:
		if t == float64(int64(t)) {
			return int64(t), true
		}
		return 0, false
	}
	s := strings.TrimSpace(records.AsString(v))
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// IntegerInRange reports whether v parses as an integer in [min, max].
func IntegerInRange(v any, min, max int64) bool {
	n, ok := Integer(v)
	return ok && n >= min && n <= max
}

// CleanString trims the string form of v and truncates it to maxLen runes
// (maxLen <= 0 disables truncation). Absent or all-whitespace input yields
// nil so that optional columns land as SQL NULL.
func CleanString(v any, maxLen int) any {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(records.AsString(v))
	if s == "" {
		return nil
	}
	if maxLen > 0 {
		if r := []rune(s); len(r) > maxLen {
			s = string(r[:maxLen])
		}
	}
	return s
}
