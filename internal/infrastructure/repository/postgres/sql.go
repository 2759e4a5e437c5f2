package postgres

import (
	"database/sql"
	"errors"
	"strings"
	"unicode/utf8"
)

// last_error is free text from the email provider; keep rows small.
const maxErrorLength = 1000

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// truncateReason trims a provider error to maxErrorLength bytes without
// splitting a multi-byte rune.
func truncateReason(reason string) string {
	reason = strings.TrimSpace(reason)
	if len(reason) <= maxErrorLength {
		return reason
	}
	cut := maxErrorLength
	for cut > 0 && !utf8.RuneStart(reason[cut]) {
		cut--
	}
	return reason[:cut]
}
