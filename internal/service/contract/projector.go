package contract

import (
	"strings"

	"github.com/ddj82/roomi/internal/domain"
)

// Tab selects current or past reservations on the contract management page.
type Tab string

const (
	TabCurrent Tab = "current"
	TabPast    Tab = "past"
)

func ParseTab(raw string) Tab {
	if Tab(strings.ToLower(strings.TrimSpace(raw))) == TabPast {
		return TabPast
	}
	return TabCurrent
}

var pastStatuses = map[domain.ReservationStatus]bool{
	domain.ReservationStatusCompleted:  true,
	domain.ReservationStatusCheckedOut: true,
	domain.ReservationStatusCancelled:  true,
	domain.ReservationStatusRejected:   true,
}

// TabOf places a status in a tab. Unknown statuses belong to no tab.
func TabOf(s domain.ReservationStatus) (Tab, bool) {
	if !s.IsKnown() {
		return "", false
	}
	if pastStatuses[s] {
		return TabPast, true
	}
	return TabCurrent, true
}

// Project filters reservations by tab, room and free text. The filters are
// ANDed and the input order is preserved. A nil roomID matches every room.
func Project(reservations []domain.Reservation, tab Tab, roomID *int64, searchText string) []domain.Reservation {
	query := strings.ToLower(strings.TrimSpace(searchText))

	result := make([]domain.Reservation, 0, len(reservations))
	for _, r := range reservations {
		if t, ok := TabOf(r.Status); !ok || t != tab {
			continue
		}
		if roomID != nil && r.Room.ID != *roomID {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(r.Room.Title), query) &&
			!strings.Contains(strings.ToLower(r.Room.Address), query) {
			continue
		}
		result = append(result, r)
	}
	return result
}

// Unclassified returns the reservations whose status fell outside the known
// vocabulary, so callers can report them instead of dropping them silently.
func Unclassified(reservations []domain.Reservation) []domain.Reservation {
	var result []domain.Reservation
	for _, r := range reservations {
		if !r.Status.IsKnown() {
			result = append(result, r)
		}
	}
	return result
}
