package contract

import (
	"context"
	"fmt"
)

// Callback performs the side effect behind a button for reservation id.
type Callback func(ctx context.Context, id int64) error

type Callbacks struct {
	OnAccept  Callback
	OnReject  Callback
	OnMessage Callback
	OnDelete  Callback
	OnRefund  Callback
	// OnSuccess runs after a callback succeeds, typically to re-fetch the
	// reservation. It never runs after a failure.
	OnSuccess Callback
}

// Notice is a dismissible failure message for the host.
type Notice struct {
	Action  Action
	Message string
	Err     error
}

func (n *Notice) Error() string {
	return fmt.Sprintf("%s: %v", n.Message, n.Err)
}

func (n *Notice) Unwrap() error {
	return n.Err
}

var failureMessages = map[Action]string{
	ActionAccept:  "예약 승인에 실패했습니다.",
	ActionReject:  "예약 거절에 실패했습니다.",
	ActionMessage: "메시지 창을 열 수 없습니다.",
	ActionDelete:  "예약 삭제에 실패했습니다.",
	ActionRefund:  "보증금 정산 요청에 실패했습니다.",
}

// ActionPanel wires the buttons of one action block to their callbacks.
type ActionPanel struct {
	set       ActionSet
	callbacks Callbacks
}

func NewActionPanel(set ActionSet, callbacks Callbacks) *ActionPanel {
	return &ActionPanel{set: set, callbacks: callbacks}
}

func (p *ActionPanel) Buttons() []Action {
	return p.set.Actions()
}

// Trigger runs the callback for action. It never panics; any failure comes
// back as a Notice and skips OnSuccess.
func (p *ActionPanel) Trigger(ctx context.Context, action Action, id int64) (notice *Notice) {
	defer func() {
		if r := recover(); r != nil {
			notice = p.notice(action, fmt.Errorf("panic: %v", r))
		}
	}()

	if !p.set.Allows(action) {
		return p.notice(action, fmt.Errorf("%w: %s not offered for %s", ErrActionNotAllowed, action, p.set))
	}
	cb := p.callback(action)
	if cb == nil {
		return p.notice(action, fmt.Errorf("%w: no handler for %s", ErrActionNotAllowed, action))
	}
	if err := cb(ctx, id); err != nil {
		return p.notice(action, err)
	}
	if p.callbacks.OnSuccess != nil {
		if err := p.callbacks.OnSuccess(ctx, id); err != nil {
			return &Notice{Action: action, Message: "변경 사항을 불러오지 못했습니다. 새로고침 해주세요.", Err: err}
		}
	}
	return nil
}

func (p *ActionPanel) callback(action Action) Callback {
	switch action {
	case ActionAccept:
		return p.callbacks.OnAccept
	case ActionReject:
		return p.callbacks.OnReject
	case ActionMessage:
		return p.callbacks.OnMessage
	case ActionDelete:
		return p.callbacks.OnDelete
	case ActionRefund:
		return p.callbacks.OnRefund
	default:
		return nil
	}
}

func (p *ActionPanel) notice(action Action, err error) *Notice {
	msg, ok := failureMessages[action]
	if !ok {
		msg = "요청을 처리하지 못했습니다."
	}
	return &Notice{Action: action, Message: msg, Err: err}
}
