package contract

import (
	"time"

	"github.com/ddj82/roomi/internal/domain"
)

// ReservationView is a reservation decorated with everything a card or the
// detail page needs to render.
type ReservationView struct {
	domain.Reservation
	Label         string
	Tone          domain.Tone
	StatusLabel   string
	PaymentLabel  string
	InProgress    bool
	ActionSet     ActionSet
	CheckoutPanel bool
}

func NewView(r domain.Reservation, now time.Time) ReservationView {
	inProgress := IsInProgress(now, r.CheckInDate, r.CheckOutDate, r.Status)
	return ReservationView{
		Reservation:   r,
		Label:         domain.Label(r.Status, r.PaymentStatus, inProgress),
		Tone:          domain.BadgeTone(r.Status, r.PaymentStatus, inProgress),
		StatusLabel:   domain.StatusLabel(r.Status),
		PaymentLabel:  domain.PaymentLabel(r.PaymentStatus),
		InProgress:    inProgress,
		ActionSet:     ActionsFor(r, now),
		CheckoutPanel: CheckoutRequestPanelVisible(r, now),
	}
}
