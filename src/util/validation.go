package util

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"mpdee-accounts/src/ingest"
	"mpdee-accounts/src/models"
)

// ValidateID reports whether id looks like one of our generated identifiers.
func ValidateID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// QueryInt reads a non-negative integer parameter. Missing values yield 0.
func QueryInt(q url.Values, key string) (int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, models.InvalidInput("%s must be a non-negative integer", key)
	}
	return n, nil
}

// QueryDate reads an optional date parameter in any format the statement
// importer accepts.
func QueryDate(q url.Values, key string) (*time.Time, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	d, ok := ingest.ParseDate(raw)
	if !ok {
		return nil, models.InvalidInput("%s is not a valid date", key)
	}
	return &d, nil
}
