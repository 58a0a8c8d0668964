package booking

import (
	"fmt"
	"strings"
)

// Status is the closed set of reservation lifecycle states.
//
//	Pending ──▶ Confirmed ──▶ Seated ──▶ Completed
//	   │            │
//	   │            ├──▶ NoShow
//	   ▼            ▼
//	Cancelled ◀─────┘
type Status string

const (
	StatusPending   Status = "Pending"
	StatusConfirmed Status = "Confirmed"
	StatusSeated    Status = "Seated"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
	StatusNoShow    Status = "NoShow"
)

var allStatuses = []Status{
	StatusPending, StatusConfirmed, StatusSeated,
	StatusCompleted, StatusCancelled, StatusNoShow,
}

var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusSeated, StatusNoShow, StatusCancelled},
	StatusSeated:    {StatusCompleted},
}

// Statuses returns every status in lifecycle order.
func Statuses() []Status {
	return append([]Status(nil), allStatuses...)
}

// ParseStatus accepts any casing and the "no_show"/"no-show" spellings.
func ParseStatus(s string) (Status, error) {
	norm := strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.ToLower(s))
	for _, st := range allStatuses {
		if strings.ToLower(string(st)) == norm {
			return st, nil
		}
	}
	return "", violation(RuleInvalidInput, "unknown reservation status %q", s)
}

func (s Status) Valid() bool {
	for _, st := range allStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// Occupies reports whether a reservation in this state blocks its table.
// NoShow keeps the table blocked for the rest of its slot.
func (s Status) Occupies() bool {
	return s != StatusCancelled && s != StatusCompleted
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, st := range transitions[s] {
		if st == next {
			return true
		}
	}
	return false
}

func (s Status) String() string { return string(s) }

func transitionError(from, to Status) error {
	return violation(RuleInvalidTransition, "%s", transitionMessage(from, to))
}

func transitionMessage(from, to Status) string {
	switch to {
	case StatusConfirmed:
		return "Only pending reservations can be confirmed"
	case StatusSeated:
		return "Only confirmed reservations can be seated"
	case StatusCompleted:
		return "Only seated reservations can be completed"
	case StatusNoShow:
		return "Only confirmed reservations can be marked as no-show"
	case StatusCancelled:
		return fmt.Sprintf("Cannot cancel a reservation that is %s", from)
	}
	return fmt.Sprintf("Cannot move reservation from %s to %s", from, to)
}
