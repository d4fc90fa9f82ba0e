// Package ledger holds the balance and status rules for a booking's payments.
//
// Every function here is pure: callers read the current booking, compute the next
// state with this package and persist the result. Remaining balance and status are
// always derived from total and advance, never taken from a client.
package ledger

import (
	"fmt"

	"github.com/sanctified-studios/studio/internal/money"
	"github.com/sanctified-studios/studio/internal/shared"
)

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known booking status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Snapshot is the money-bearing part of a booking.
type Snapshot struct {
	Total     money.Money
	Advance   money.Money
	Remaining money.Money
	Status    Status
}

// Warning is a non-blocking notice for the operator.
type Warning = shared.Warning

// WarningCancelWithBalance is raised when a booking is cancelled with money still owed.
const WarningCancelWithBalance = shared.WarningCancelWithBalance

// Derive computes remaining balance and status from the canonical total and advance.
// Cancelled is terminal and survives recomputation.
func Derive(total, advance money.Money, current Status) (money.Money, Status) {
	remaining := money.Max(0, total-advance)
	if current == StatusCancelled {
		return remaining, StatusCancelled
	}
	if total > 0 && remaining == 0 {
		return remaining, StatusCompleted
	}
	return remaining, StatusActive
}

// Open builds the initial snapshot of a new booking.
func Open(total, advance money.Money) Snapshot {
	total = money.Max(0, total)
	advance = money.Max(0, advance)
	remaining, status := Derive(total, advance, StatusActive)
	return Snapshot{Total: total, Advance: advance, Remaining: remaining, Status: status}
}

// ApplyPayment adds one payment to the running advance. Negative amounts are treated
// as zero so a payment can never reduce what has been collected.
func ApplyPayment(s Snapshot, amount money.Money) Snapshot {
	amount = money.Max(0, amount)
	next := s
	next.Advance = s.Advance + amount
	next.Remaining, next.Status = Derive(s.Total, next.Advance, s.Status)
	return next
}

// RecordAdvance applies an advance payment.
func RecordAdvance(s Snapshot, amount money.Money) Snapshot {
	return ApplyPayment(s, amount)
}

// RecordFinalSettlement applies the payment meant to close the balance. The arithmetic
// is the same as any other payment; "final" only changes what the operator sees.
func RecordFinalSettlement(s Snapshot, amountPaidNow money.Money) Snapshot {
	return ApplyPayment(s, amountPaidNow)
}

// EditTotals replaces the agreed total and recomputes the balance. Advance is untouched.
func EditTotals(s Snapshot, newTotal money.Money) Snapshot {
	next := s
	next.Total = money.Max(0, newTotal)
	next.Remaining, next.Status = Derive(next.Total, s.Advance, s.Status)
	return next
}

// Cancel marks the booking cancelled. Balances are left as they are; a warning is
// returned when money is still outstanding.
func Cancel(s Snapshot) (Snapshot, *Warning) {
	next := s
	next.Remaining, _ = Derive(s.Total, s.Advance, StatusCancelled)
	next.Status = StatusCancelled
	if next.Remaining > 0 {
		return next, &Warning{
			Code:    WarningCancelWithBalance,
			Message: fmt.Sprintf("booking cancelled with %s still outstanding; the balance is not cleared", money.Format(next.Remaining)),
		}
	}
	return next, nil
}
