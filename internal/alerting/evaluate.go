package alerting

import "github.com/shopspring/decimal"

// Decision is the outcome of comparing an observed price to a target.
type Decision struct {
	Fires bool
	Delta decimal.Decimal
}

// Evaluate fires when the observed price has reached or fallen below the
// target. Delta is target minus observed, non-negative whenever the alert
// fires. Pure function: no I/O, no side effects, independent of any
// notification transport.
func Evaluate(observed, target decimal.Decimal) Decision {
	return Decision{
		Fires: observed.LessThanOrEqual(target),
		Delta: target.Sub(observed),
	}
}
