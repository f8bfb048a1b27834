package contract

import (
	"time"

	"github.com/ddj82/roomi/internal/domain"
)

// IsInProgress reports whether a confirmed stay is running at now.
// Both boundaries are exclusive and a missing date is never in progress.
func IsInProgress(now, checkIn, checkOut time.Time, status domain.ReservationStatus) bool {
	if status != domain.ReservationStatusConfirmed && status != domain.ReservationStatusInUse {
		return false
	}
	if checkIn.IsZero() || checkOut.IsZero() {
		return false
	}
	return checkIn.Before(now) && now.Before(checkOut)
}
