package wsmtxca

import (
	"time"

	"github.com/rezonia/wsmtxca-client/internal/model"
)

// FormatDate converts a service date (YYYYMMDD) to YYYY-MM-DD
func FormatDate(compact string) (string, error) {
	if len(compact) != len(compactDateLayout) {
		return "", model.NewValidationError("date", compact, "len=8", "date must have the form YYYYMMDD")
	}
	for i := 0; i < len(compact); i++ {
		if compact[i] < '0' || compact[i] > '9' {
			return "", model.NewValidationError("date", compact, "numeric", "date must only contain digits")
		}
	}

	t, err := time.Parse(compactDateLayout, compact)
	if err != nil {
		return "", model.NewValidationError("date", compact, "date", "not a calendar date")
	}

	return t.Format(isoDateLayout), nil
}

// parseServiceDate reads a date sent by the service in either layout
func parseServiceDate(s string) (time.Time, error) {
	if t, err := time.Parse(isoDateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(compactDateLayout, s)
}
