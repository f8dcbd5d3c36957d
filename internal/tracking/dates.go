package tracking

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Today formats now as YYYY-MM-DD in the server's local calendar.
func Today(now time.Time) string {
	return now.Local().Format(dateLayout)
}

// NormalizeDate turns a stored date cell into a YYYY-MM-DD key. Native
// dates use the local calendar; anything else is stringified, trimmed and
// cut to its first 10 characters.
func NormalizeDate(v any) string {
	var s string
	switch d := v.(type) {
	case nil:
		return ""
	case time.Time:
		return d.Local().Format(dateLayout)
	case string:
		s = d
	case []byte:
		s = string(d)
	default:
		s = fmt.Sprint(d)
	}

	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > 10 {
		s = string(r[:10])
	}
	return s
}

// cellString stringifies a cell; empty cells yield "".
func cellString(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case []byte:
		return string(c)
	default:
		return fmt.Sprint(c)
	}
}
