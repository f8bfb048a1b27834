package backend

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ddj82/roomi/internal/domain"
)

type guestDTO struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type roomSnapshotDTO struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Address   string `json:"address"`
	Thumbnail string `json:"thumbnail_url"`
}

type reservationDTO struct {
	ID                     int64           `json:"id"`
	Status                 string          `json:"status"`
	PaymentStatus          string          `json:"payment_status"`
	CheckInDate            string          `json:"check_in_date"`
	CheckOutDate           string          `json:"check_out_date"`
	IsCheckoutRequested    bool            `json:"is_checkout_requested"`
	RequestFeeRefundAmount *int64          `json:"request_fee_refund_amount"`
	RequestFeeRefundReason string          `json:"request_fee_refund_reason"`
	GuestAcceptedFee       *bool           `json:"guest_accepted_fee"`
	Price                  int64           `json:"price"`
	DepositAmount          int64           `json:"deposit_amount"`
	MaintenanceFee         int64           `json:"maintenance_fee"`
	Guest                  guestDTO        `json:"guest"`
	Room                   roomSnapshotDTO `json:"room"`
	CreatedAt              string          `json:"created_at"`
}

func (d reservationDTO) toDomain() domain.Reservation {
	return domain.Reservation{
		ID:                     d.ID,
		Status:                 domain.ParseReservationStatus(d.Status),
		PaymentStatus:          domain.ParsePaymentStatus(d.PaymentStatus),
		CheckInDate:            parseDate(d.CheckInDate),
		CheckOutDate:           parseDate(d.CheckOutDate),
		IsCheckoutRequested:    d.IsCheckoutRequested,
		RequestFeeRefundAmount: d.RequestFeeRefundAmount,
		RequestFeeRefundReason: d.RequestFeeRefundReason,
		GuestAcceptedFee:       d.GuestAcceptedFee,
		Price:                  d.Price,
		DepositAmount:          d.DepositAmount,
		MaintenanceFee:         d.MaintenanceFee,
		Guest: domain.Guest{
			ID:    d.Guest.ID,
			Name:  d.Guest.Name,
			Email: d.Guest.Email,
			Phone: d.Guest.Phone,
		},
		Room: domain.RoomSnapshot{
			ID:           d.Room.ID,
			Title:        d.Room.Title,
			Address:      d.Room.Address,
			ThumbnailURL: d.Room.Thumbnail,
		},
		CreatedAt: parseDate(d.CreatedAt),
	}
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// parseDate returns the zero time for empty or unparseable input.
func parseDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

func (c *Client) ListHostReservations(ctx context.Context, token string) ([]domain.Reservation, error) {
	var dtos []reservationDTO
	if err := c.doJSON(ctx, http.MethodGet, "/api/host/reservations", token, nil, &dtos); err != nil {
		return nil, err
	}
	reservations := make([]domain.Reservation, 0, len(dtos))
	for _, d := range dtos {
		reservations = append(reservations, d.toDomain())
	}
	return reservations, nil
}

func (c *Client) AcceptReservation(ctx context.Context, token string, id int64) error {
	return c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/reservations/%d/accept", id), token, nil, nil)
}

func (c *Client) RejectReservation(ctx context.Context, token string, id int64) error {
	return c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/reservations/%d/reject", id), token, nil, nil)
}

func (c *Client) DeleteReservation(ctx context.Context, token string, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/reservations/%d", id), token, nil, nil)
}

type partialRefundRequest struct {
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
}

func (c *Client) RequestPartialRefund(ctx context.Context, token string, id int64, amount int64, reason string) error {
	return c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/reservations/%d/partial-refund", id), token,
		partialRefundRequest{Amount: amount, Reason: reason}, nil)
}
