package risk

import "github.com/amirphl/pantheon/internal/strategy"

const (
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// Decision is the risk verdict on one candidate trade.
type Decision struct {
	Symbol     string
	Action     strategy.Signal
	Confidence float64
	Price      float64
	Outcome    Outcome
}

// Outcome is either Approved or Rejected.
type Outcome interface {
	status() string
}

// Approved carries the dollar amount the trade may commit.
type Approved struct {
	PositionSize float64
}

// Rejected carries a human readable reason.
type Rejected struct {
	Reason string
}

func (Approved) status() string { return StatusApproved }
func (Rejected) status() string { return StatusRejected }

// Approved returns the approval, if any.
func (d Decision) Approved() (Approved, bool) {
	a, ok := d.Outcome.(Approved)
	return a, ok
}

// Status returns APPROVED or REJECTED.
func (d Decision) Status() string {
	if d.Outcome == nil {
		return StatusRejected
	}
	return d.Outcome.status()
}

// Reason returns the rejection reason, empty when approved.
func (d Decision) Reason() string {
	if r, ok := d.Outcome.(Rejected); ok {
		return r.Reason
	}
	return ""
}

// PositionSize returns the approved size, 0 when rejected.
func (d Decision) PositionSize() float64 {
	if a, ok := d.Approved(); ok {
		return a.PositionSize
	}
	return 0
}
