package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ddj82/roomi/internal/service/contract"
	"github.com/gin-gonic/gin"
)

type ReservationHandler struct {
	service contract.ContractUseCase
}

type guestResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type roomResponse struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Address      string `json:"address"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

type reservationResponse struct {
	ID                     int64         `json:"id"`
	Status                 string        `json:"status"`
	PaymentStatus          string        `json:"payment_status"`
	Label                  string        `json:"label"`
	Tone                   string        `json:"tone"`
	StatusLabel            string        `json:"status_label"`
	PaymentLabel           string        `json:"payment_label"`
	InProgress             bool          `json:"in_progress"`
	ActionSet              string        `json:"action_set"`
	Actions                []string      `json:"actions"`
	CheckoutRequestPanel   bool          `json:"checkout_request_panel"`
	CheckInDate            string        `json:"check_in_date,omitempty"`
	CheckOutDate           string        `json:"check_out_date,omitempty"`
	IsCheckoutRequested    bool          `json:"is_checkout_requested"`
	RequestFeeRefundAmount *int64        `json:"request_fee_refund_amount,omitempty"`
	RequestFeeRefundReason string        `json:"request_fee_refund_reason,omitempty"`
	GuestAcceptedFee       *bool         `json:"guest_accepted_fee,omitempty"`
	Price                  int64         `json:"price"`
	DepositAmount          int64         `json:"deposit_amount"`
	MaintenanceFee         int64         `json:"maintenance_fee"`
	Total                  int64         `json:"total"`
	Guest                  guestResponse `json:"guest"`
	Room                   roomResponse  `json:"room"`
}

type actionResponse struct {
	Reservation *reservationResponse `json:"reservation,omitempty"`
	Notice      string               `json:"notice,omitempty"`
}

func NewReservationHandler(service contract.ContractUseCase) *ReservationHandler {
	return &ReservationHandler{service: service}
}

func (h *ReservationHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
	router.POST("/:id/accept", h.accept)
	router.POST("/:id/reject", h.reject)
	router.POST("/:id/refund", h.refund)
	router.DELETE("/:id", h.delete)
}

func (h *ReservationHandler) list(c *gin.Context) {
	filter := contract.ListFilter{
		Tab:   contract.ParseTab(c.Query("tab")),
		Query: c.Query("q"),
	}
	if raw := strings.TrimSpace(c.Query("room_id")); raw != "" {
		roomID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room_id"})
			return
		}
		filter.RoomID = &roomID
	}

	views, err := h.service.List(c.Request.Context(), hostFrom(c), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := make([]reservationResponse, 0, len(views))
	for _, v := range views {
		resp = append(resp, toReservationResponse(v))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReservationHandler) get(c *gin.Context) {
	id, ok := reservationID(c)
	if !ok {
		return
	}
	view, err := h.service.Get(c.Request.Context(), hostFrom(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReservationResponse(*view))
}

func (h *ReservationHandler) accept(c *gin.Context) {
	h.trigger(c, contract.ActionAccept, contract.RefundInput{})
}

func (h *ReservationHandler) reject(c *gin.Context) {
	h.trigger(c, contract.ActionReject, contract.RefundInput{})
}

func (h *ReservationHandler) delete(c *gin.Context) {
	h.trigger(c, contract.ActionDelete, contract.RefundInput{})
}

func (h *ReservationHandler) refund(c *gin.Context) {
	var input contract.RefundInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.trigger(c, contract.ActionRefund, input)
}

// trigger runs action through the detail action panel of the reservation's
// current snapshot, then answers with the re-fetched reservation.
func (h *ReservationHandler) trigger(c *gin.Context, action contract.Action, refund contract.RefundInput) {
	id, ok := reservationID(c)
	if !ok {
		return
	}
	host := hostFrom(c)
	ctx := c.Request.Context()

	view, err := h.service.Get(ctx, host, id)
	if err != nil {
		writeError(c, err)
		return
	}

	var (
		applied   bool
		refreshed *contract.ReservationView
	)
	done := func(err error) error {
		applied = err == nil
		return err
	}
	callbacks := contract.Callbacks{
		OnAccept: func(ctx context.Context, id int64) error {
			return done(h.service.Accept(ctx, host, id))
		},
		OnReject: func(ctx context.Context, id int64) error {
			return done(h.service.Reject(ctx, host, id))
		},
		OnDelete: func(ctx context.Context, id int64) error {
			return done(h.service.Delete(ctx, host, id))
		},
		OnRefund: func(ctx context.Context, id int64) error {
			return done(h.service.RequestPartialRefund(ctx, host, id, refund))
		},
	}
	if action != contract.ActionDelete {
		callbacks.OnSuccess = func(ctx context.Context, id int64) error {
			refreshed, err = h.service.Get(ctx, host, id)
			return err
		}
	}

	notice := contract.NewActionPanel(view.ActionSet, callbacks).Trigger(ctx, action, id)
	switch {
	case notice != nil && applied:
		c.JSON(http.StatusOK, actionResponse{Notice: notice.Message})
	case notice != nil:
		writeError(c, notice)
	case refreshed != nil:
		resp := toReservationResponse(*refreshed)
		c.JSON(http.StatusOK, actionResponse{Reservation: &resp})
	default:
		c.Status(http.StatusNoContent)
	}
}

func reservationID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func toReservationResponse(v contract.ReservationView) reservationResponse {
	actions := make([]string, 0, 2)
	for _, a := range v.ActionSet.Actions() {
		actions = append(actions, string(a))
	}
	return reservationResponse{
		ID:                     v.ID,
		Status:                 string(v.Status),
		PaymentStatus:          string(v.PaymentStatus),
		Label:                  v.Label,
		Tone:                   string(v.Tone),
		StatusLabel:            v.StatusLabel,
		PaymentLabel:           v.PaymentLabel,
		InProgress:             v.InProgress,
		ActionSet:              v.ActionSet.String(),
		Actions:                actions,
		CheckoutRequestPanel:   v.CheckoutPanel,
		CheckInDate:            formatDate(v.CheckInDate),
		CheckOutDate:           formatDate(v.CheckOutDate),
		IsCheckoutRequested:    v.IsCheckoutRequested,
		RequestFeeRefundAmount: v.RequestFeeRefundAmount,
		RequestFeeRefundReason: v.RequestFeeRefundReason,
		GuestAcceptedFee:       v.GuestAcceptedFee,
		Price:                  v.Price,
		DepositAmount:          v.DepositAmount,
		MaintenanceFee:         v.MaintenanceFee,
		Total:                  v.Total(),
		Guest:                  guestResponse{ID: v.Guest.ID, Name: v.Guest.Name, Email: v.Guest.Email, Phone: v.Guest.Phone},
		Room:                   roomResponse{ID: v.Room.ID, Title: v.Room.Title, Address: v.Room.Address, ThumbnailURL: v.Room.ThumbnailURL},
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
