package app

import "github.com/anibaler123143423234321/backend-chat-sub000/internal/domain"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	MarkSlow
	KickMember
	DropFrame
)

// Policy decides what happens to a consumer whose send buffer is full.
type Policy interface {
	OnBackPressure(id domain.Identity) BackpressureAction
}

// SimplePolicy drops the frame: chat events are recoverable through the
// durable history, so a slow consumer is not worth a disconnect.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(domain.Identity) BackpressureAction {
	return DropFrame
}

// KickSlowPolicy disconnects consumers that cannot keep up.
type KickSlowPolicy struct{}

func (KickSlowPolicy) OnBackPressure(domain.Identity) BackpressureAction {
	return KickMember
}
