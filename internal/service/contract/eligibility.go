package contract

import (
	"time"

	"github.com/ddj82/roomi/internal/domain"
)

// ActionSet is the single action block a reservation renders. Exactly one
// variant applies to any snapshot.
type ActionSet int

const (
	ActionSetNone ActionSet = iota
	ActionSetAwaitingDepositDeduction
	ActionSetPendingApproval
	ActionSetInProgressNoAction
	ActionSetConfirmedAwaitingStay
	ActionSetConfirmedUnpaid
	ActionSetClosed
)

var actionSetNames = map[ActionSet]string{
	ActionSetNone:                     "none",
	ActionSetAwaitingDepositDeduction: "awaiting_deposit_deduction",
	ActionSetPendingApproval:          "pending_approval",
	ActionSetInProgressNoAction:       "in_progress",
	ActionSetConfirmedAwaitingStay:    "confirmed_awaiting_stay",
	ActionSetConfirmedUnpaid:          "confirmed_unpaid",
	ActionSetClosed:                   "closed",
}

func (a ActionSet) String() string {
	if name, ok := actionSetNames[a]; ok {
		return name
	}
	return actionSetNames[ActionSetNone]
}

// Action is a host-facing operation offered by an action block.
type Action string

const (
	ActionAccept  Action = "accept"
	ActionReject  Action = "reject"
	ActionMessage Action = "message"
	ActionDelete  Action = "delete"
	ActionRefund  Action = "refund"
)

// Actions returns the buttons of the block in display order.
func (a ActionSet) Actions() []Action {
	switch a {
	case ActionSetAwaitingDepositDeduction:
		return []Action{ActionRefund}
	case ActionSetPendingApproval:
		return []Action{ActionAccept, ActionReject}
	case ActionSetConfirmedAwaitingStay:
		return []Action{ActionMessage, ActionReject}
	case ActionSetConfirmedUnpaid:
		return []Action{ActionReject}
	case ActionSetClosed:
		return []Action{ActionDelete}
	default:
		return nil
	}
}

func (a ActionSet) Allows(action Action) bool {
	for _, candidate := range a.Actions() {
		if candidate == action {
			return true
		}
	}
	return false
}

// ActionsFor classifies a reservation snapshot. The order of the checks is
// significant: a closed reservation still waiting on its deposit settlement
// must surface the refund review, not the delete action.
func ActionsFor(r domain.Reservation, now time.Time) ActionSet {
	s, p := r.Status, r.PaymentStatus
	finished := s == domain.ReservationStatusCompleted || s == domain.ReservationStatusCheckedOut
	confirmed := s == domain.ReservationStatusConfirmed || s == domain.ReservationStatusInUse

	switch {
	case finished && p == domain.PaymentStatusPending:
		return ActionSetAwaitingDepositDeduction
	case s == domain.ReservationStatusPending:
		return ActionSetPendingApproval
	case confirmed && p == domain.PaymentStatusPaid && IsInProgress(now, r.CheckInDate, r.CheckOutDate, s):
		return ActionSetInProgressNoAction
	case confirmed && p == domain.PaymentStatusPaid:
		return ActionSetConfirmedAwaitingStay
	case s == domain.ReservationStatusConfirmed && p == domain.PaymentStatusUnpaid:
		return ActionSetConfirmedUnpaid
	case (finished || s == domain.ReservationStatusCancelled) && p != domain.PaymentStatusPending:
		return ActionSetClosed
	default:
		return ActionSetNone
	}
}

// CheckoutRequestPanelVisible governs the checkout/deduction review panel,
// which is independent of the action block.
func CheckoutRequestPanelVisible(r domain.Reservation, now time.Time) bool {
	if !r.IsCheckoutRequested {
		return false
	}
	return IsInProgress(now, r.CheckInDate, r.CheckOutDate, r.Status) || r.Status == domain.ReservationStatusInUse
}
