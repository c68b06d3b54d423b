package fsm

import (
	"context"
	"fmt"

	loopfsm "github.com/looplab/fsm"

	"github.com/neomorfeo/tenantdesk/internal/domain"
)

var _ domain.TransitionValidator = (*Validator)(nil)

// Validator checks administrator status changes with looplab/fsm.
type Validator struct {
	events []loopfsm.EventDesc
}

// New creates a validator for domain.AdminTransitions.
func New() *Validator {
	return NewFor(domain.AdminTransitions)
}

// NewFor creates a validator for an explicit transition table. Transitions
// sharing an event and destination collapse into one event with several sources.
func NewFor(transitions []domain.Transition) *Validator {
	type edge struct{ event, dst string }
	sources := make(map[edge][]string)
	var order []edge

	for _, t := range transitions {
		e := edge{event: string(t.Event), dst: string(t.Dst)}
		if _, seen := sources[e]; !seen {
			order = append(order, e)
		}
		sources[e] = append(sources[e], string(t.Src))
	}

	events := make([]loopfsm.EventDesc, 0, len(order))
	for _, e := range order {
		events = append(events, loopfsm.EventDesc{Name: e.event, Src: sources[e], Dst: e.dst})
	}
	return &Validator{events: events}
}

// Apply returns the status reached by event from current, or a
// *domain.TransitionError when the event is not allowed there.
// looplab machines are stateful, so every call seeds a fresh one.
func (v *Validator) Apply(ctx context.Context, current domain.AdminStatus, event domain.AdminEvent) (domain.AdminStatus, error) {
	machine := loopfsm.NewFSM(string(current), v.events, nil)

	if !machine.Can(string(event)) {
		return "", &domain.TransitionError{Event: event, Current: current}
	}
	if err := machine.Event(ctx, string(event)); err != nil {
		return "", fmt.Errorf("applying %s to %s: %w", event, current, err)
	}
	return domain.AdminStatus(machine.Current()), nil
}

// Available lists the events accepted from current.
func (v *Validator) Available(current domain.AdminStatus) []domain.AdminEvent {
	machine := loopfsm.NewFSM(string(current), v.events, nil)

	names := machine.AvailableTransitions()
	out := make([]domain.AdminEvent, len(names))
	for i, n := range names {
		out[i] = domain.AdminEvent(n)
	}
	return out
}
