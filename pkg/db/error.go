package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// IsUniqueViolation reports whether err comes from a unique-constraint
// conflict. The dunning history table leans on this: a duplicate concurrent
// dispatch attempt must fail on write rather than double-send.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "duplicate key value violates unique constraint"): // postgres
		return true
	case strings.Contains(msg, "unique constraint failed"): // sqlite
		return true
	case strings.Contains(msg, "duplicate entry"): // mysql
		return true
	}
	return false
}

// IsNotFound reports whether err is gorm's record-not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
