package domain

import (
	"time"

	paymentErrors "github.com/sebuszqo/PaymentsManager/internal/payments/errors"
)

const expiresLayout = "01/2006"

// IsExpired reports whether a card with the given MM/YYYY expiry is expired
// as of today. A card stays valid through the last day of its expiry month:
// not expired on that day, expired the day after.
func IsExpired(expires string, today time.Time) (bool, error) {
	firstOfMonth, err := time.Parse(expiresLayout, expires)
	if err != nil {
		return false, paymentErrors.NewValidationError("expires must use the MM/YYYY format")
	}
	lastValidDay := firstOfMonth.AddDate(0, 1, -1)
	todayDate := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return todayDate.After(lastValidDay), nil
}

// IsExpired checks the card against the wall clock.
func (d *CardDetail) IsExpired(today time.Time) (bool, error) {
	return IsExpired(d.Expires, today)
}
