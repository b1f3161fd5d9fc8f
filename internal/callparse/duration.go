package callparse

import (
	"strconv"
	"strings"
)

// ParseDuration converts a free-form duration such as "00:03:17", "3:17" or
// "197 сек" into total seconds. Every rune other than an ASCII digit or a colon
// is dropped first. The second return is false when nothing usable remains.
func ParseDuration(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}

	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == ':' {
			return r
		}
		return -1
	}, raw)

	var parts []int
	for _, seg := range strings.Split(cleaned, ":") {
		if seg == "" {
			continue
		}
		n, err := strconv.Atoi(seg)
		if err != nil {
			return 0, false
		}
		parts = append(parts, n)
	}

	switch len(parts) {
	case 3:
		return parts[0]*3600 + parts[1]*60 + parts[2], true
	case 2:
		return parts[0]*60 + parts[1], true
	case 1:
		return parts[0], true
	default:
		return 0, false
	}
}

// DurationSeconds is ParseDuration for an optional value.
func DurationSeconds(raw *string) *int {
	if raw == nil {
		return nil
	}
	n, ok := ParseDuration(*raw)
	if !ok {
		return nil
	}
	return &n
}
