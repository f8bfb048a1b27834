package domain

const defaultStatusLabel = "승인 대기"

var statusLabels = map[ReservationStatus]string{
	ReservationStatusPending:    "승인 대기",
	ReservationStatusConfirmed:  "예약 확정",
	ReservationStatusInUse:      "이용 중",
	ReservationStatusCompleted:  "이용 완료",
	ReservationStatusCheckedOut: "퇴실 완료",
	ReservationStatusCancelled:  "예약 취소",
	ReservationStatusRejected:   "예약 거절",
}

var paymentLabels = map[PaymentStatus]string{
	PaymentStatusUnpaid:   "결제 대기",
	PaymentStatusPaid:     "결제 완료",
	PaymentStatusPending:  "정산 대기",
	PaymentStatusRefunded: "환불 완료",
	PaymentStatusFailed:   "결제 실패",
}

// StatusLabel never fails; unknown input gets the awaiting label.
func StatusLabel(s ReservationStatus) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return defaultStatusLabel
}

func PaymentLabel(p PaymentStatus) string {
	if label, ok := paymentLabels[p]; ok {
		return label
	}
	return paymentLabels[PaymentStatusUnpaid]
}

// Tone is the colour class a card renders its status badge with.
type Tone string

const (
	ToneWarning Tone = "warning"
	ToneInfo    Tone = "info"
	ToneSuccess Tone = "success"
	ToneNeutral Tone = "neutral"
	ToneDanger  Tone = "danger"
)

// Label is the single badge text shown on a reservation card for the
// status x payment combination. inProgress is true while the stay is running.
func Label(s ReservationStatus, p PaymentStatus, inProgress bool) string {
	label, _ := badge(s, p, inProgress)
	return label
}

func BadgeTone(s ReservationStatus, p PaymentStatus, inProgress bool) Tone {
	_, tone := badge(s, p, inProgress)
	return tone
}

func badge(s ReservationStatus, p PaymentStatus, inProgress bool) (string, Tone) {
	switch {
	case (s == ReservationStatusCompleted || s == ReservationStatusCheckedOut) && p == PaymentStatusPending:
		return "보증금 정산 대기", ToneWarning
	case s == ReservationStatusPending:
		return statusLabels[ReservationStatusPending], ToneWarning
	case (s == ReservationStatusConfirmed || s == ReservationStatusInUse) && p == PaymentStatusPaid && inProgress:
		return statusLabels[ReservationStatusInUse], ToneSuccess
	case (s == ReservationStatusConfirmed || s == ReservationStatusInUse) && p == PaymentStatusPaid:
		return statusLabels[ReservationStatusConfirmed], ToneInfo
	case s == ReservationStatusConfirmed && p == PaymentStatusUnpaid:
		return paymentLabels[PaymentStatusUnpaid], ToneWarning
	case p == PaymentStatusFailed:
		return paymentLabels[PaymentStatusFailed], ToneDanger
	case s == ReservationStatusCancelled && p == PaymentStatusRefunded:
		return paymentLabels[PaymentStatusRefunded], ToneNeutral
	case s == ReservationStatusCancelled || s == ReservationStatusRejected:
		return statusLabels[s], ToneDanger
	case s == ReservationStatusCompleted || s == ReservationStatusCheckedOut:
		return statusLabels[s], ToneNeutral
	default:
		return StatusLabel(s), ToneWarning
	}
}
