package domain

import (
	"strings"
	"time"
)

// ReservationStatus is the lifecycle stage of a booking as reported by the backend.
type ReservationStatus string

const (
	ReservationStatusPending    ReservationStatus = "PENDING"
	ReservationStatusConfirmed  ReservationStatus = "CONFIRMED"
	ReservationStatusInUse      ReservationStatus = "IN_USE"
	ReservationStatusCompleted  ReservationStatus = "COMPLETED"
	ReservationStatusCheckedOut ReservationStatus = "CHECKED_OUT"
	ReservationStatusCancelled  ReservationStatus = "CANCELLED"
	ReservationStatusRejected   ReservationStatus = "REJECTED"
	ReservationStatusUnknown    ReservationStatus = "UNKNOWN"
)

var reservationStatuses = map[string]ReservationStatus{
	string(ReservationStatusPending):    ReservationStatusPending,
	string(ReservationStatusConfirmed):  ReservationStatusConfirmed,
	string(ReservationStatusInUse):      ReservationStatusInUse,
	string(ReservationStatusCompleted):  ReservationStatusCompleted,
	string(ReservationStatusCheckedOut): ReservationStatusCheckedOut,
	string(ReservationStatusCancelled):  ReservationStatusCancelled,
	string(ReservationStatusRejected):   ReservationStatusRejected,
}

// ParseReservationStatus maps a raw server string onto the closed status set.
// Anything unrecognised becomes ReservationStatusUnknown.
func ParseReservationStatus(raw string) ReservationStatus {
	if status, ok := reservationStatuses[strings.ToUpper(strings.TrimSpace(raw))]; ok {
		return status
	}
	return ReservationStatusUnknown
}

func (s ReservationStatus) IsKnown() bool {
	_, ok := reservationStatuses[string(s)]
	return ok
}

// PaymentStatus tracks money movement independently of ReservationStatus.
type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "UNPAID"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
	PaymentStatusFailed   PaymentStatus = "FAILED"
	PaymentStatusUnknown  PaymentStatus = "UNKNOWN"
)

var paymentStatuses = map[string]PaymentStatus{
	string(PaymentStatusUnpaid):   PaymentStatusUnpaid,
	string(PaymentStatusPaid):     PaymentStatusPaid,
	string(PaymentStatusPending):  PaymentStatusPending,
	string(PaymentStatusRefunded): PaymentStatusRefunded,
	string(PaymentStatusFailed):   PaymentStatusFailed,
}

func ParsePaymentStatus(raw string) PaymentStatus {
	if status, ok := paymentStatuses[strings.ToUpper(strings.TrimSpace(raw))]; ok {
		return status
	}
	return PaymentStatusUnknown
}

func (s PaymentStatus) IsKnown() bool {
	_, ok := paymentStatuses[string(s)]
	return ok
}

type Guest struct {
	ID    int64
	Name  string
	Email string
	Phone string
}

type RoomSnapshot struct {
	ID           int64
	Title        string
	Address      string
	ThumbnailURL string
}

// Reservation is a read-only snapshot of a booking owned by the backend.
// Zero CheckInDate/CheckOutDate mean the server sent no usable date.
type Reservation struct {
	ID                     int64
	Status                 ReservationStatus
	PaymentStatus          PaymentStatus
	CheckInDate            time.Time
	CheckOutDate           time.Time
	IsCheckoutRequested    bool
	RequestFeeRefundAmount *int64
	RequestFeeRefundReason string
	GuestAcceptedFee       *bool
	Price                  int64
	DepositAmount          int64
	MaintenanceFee         int64
	Guest                  Guest
	Room                   RoomSnapshot
	CreatedAt              time.Time
}

func (r Reservation) Total() int64 {
	return r.Price + r.DepositAmount + r.MaintenanceFee
}

// HasDeductionRequest reports whether the guest's checkout request carries a
// proposed deposit deduction.
func (r Reservation) HasDeductionRequest() bool {
	return r.RequestFeeRefundAmount != nil
}
