package model

import (
	"fmt"
	"strings"
)

// TransitionMode selects how administrative status changes are checked.
type TransitionMode string

const (
	// TransitionPermissive lets an administrator set any known status.
	TransitionPermissive TransitionMode = "permissive"
	// TransitionStrict only allows the edges of the fulfillment graph.
	TransitionStrict TransitionMode = "strict"
)

// ParseTransitionMode converts configuration input into a mode.
func ParseTransitionMode(raw string) (TransitionMode, error) {
	switch TransitionMode(strings.ToLower(strings.TrimSpace(raw))) {
	case TransitionPermissive, "":
		return TransitionPermissive, nil
	case TransitionStrict:
		return TransitionStrict, nil
	}
	return "", fmt.Errorf("unknown transition mode %q", raw)
}

var strictTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPlaced:    {OrderStatusPacked, OrderStatusCancelled, OrderStatusReturned},
	OrderStatusPacked:    {OrderStatusShipped, OrderStatusCancelled, OrderStatusReturned},
	OrderStatusShipped:   {OrderStatusDelivered, OrderStatusReturned},
	OrderStatusDelivered: {OrderStatusReturned},
	OrderStatusCancelled: {OrderStatusReturned},
}

// StatusMachine validates order status transitions.
type StatusMachine struct {
	mode TransitionMode
}

// NewStatusMachine builds a machine for the given mode.
func NewStatusMachine(mode TransitionMode) StatusMachine {
	if mode == "" {
		mode = TransitionPermissive
	}
	return StatusMachine{mode: mode}
}

// Mode returns configured transition mode.
func (m StatusMachine) Mode() TransitionMode {
	return m.mode
}

// CanTransition reports whether an order in from may move to to.
func (m StatusMachine) CanTransition(from, to OrderStatus) bool {
	if _, err := ParseOrderStatus(string(to)); err != nil {
		return false
	}
	if m.mode != TransitionStrict {
		return true
	}
	for _, next := range strictTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Next lists statuses reachable from the given one in strict mode.
func (m StatusMachine) Next(from OrderStatus) []OrderStatus {
	if m.mode != TransitionStrict {
		return append([]OrderStatus(nil), orderStatuses...)
	}
	return append([]OrderStatus(nil), strictTransitions[from]...)
}
