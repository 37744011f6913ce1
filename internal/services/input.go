package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// dateKeyLayout is the YYYYMMDD form of date keys.
const dateKeyLayout = "20060102"

// ParseIDs splits a comma separated identifier list. Entries are trimmed
// and empty entries dropped. An empty result or more than max entries is
// ErrInvalidInput or ErrTooManyIDs; max <= 0 means no limit.
func ParseIDs(raw string, max int) ([]string, error) {
	parts := strings.Split(raw, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}

	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: at least one code is required", ErrInvalidInput)
	}
	if max > 0 && len(ids) > max {
		return nil, fmt.Errorf("%w: %d codes, at most %d allowed", ErrTooManyIDs, len(ids), max)
	}
	return ids, nil
}

// ParseDateKey parses a YYYYMMDD date into its integer key.
func ParseDateKey(s string) (int64, error) {
	if _, err := time.Parse(dateKeyLayout, s); err != nil {
		return 0, fmt.Errorf("%w: date %q is not YYYYMMDD", ErrInvalidInput, s)
	}
	key, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: date %q is not YYYYMMDD", ErrInvalidInput, s)
	}
	return key, nil
}
