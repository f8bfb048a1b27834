package notify

import (
	"context"

	"github.com/ddj82/roomi/internal/kafka"
	"go.uber.org/zap"
)

var subjects = map[string]string{
	"reservation_accept": "예약이 승인되었습니다",
	"reservation_reject": "예약이 거절되었습니다",
	"reservation_delete": "예약 내역이 삭제되었습니다",
	"reservation_refund": "보증금 정산 요청이 접수되었습니다",
}

// Sender delivers guest notifications for reservation events.
type Sender struct {
	log *zap.Logger
}

func NewSender(log *zap.Logger) *Sender {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sender{log: log}
}

func (s *Sender) Send(ctx context.Context, event kafka.ReservationEvent) error {
	subject, ok := subjects[event.Type]
	if !ok || event.GuestEmail == "" {
		s.log.Debug("no notification for event", zap.String("type", event.Type), zap.Int64("reservation_id", event.ReservationID))
		return nil
	}
	s.log.Info("send guest notification",
		zap.String("to", event.GuestEmail),
		zap.String("subject", subject),
		zap.Int64("reservation_id", event.ReservationID),
		zap.Int64("room_id", event.RoomID),
		zap.Int64("amount", event.Amount))
	return nil
}
