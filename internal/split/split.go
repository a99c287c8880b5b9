// Package split computes per-person meal charges. It is the single source of
// truth for the charge calculation: meal creation, meal edits, and the
// preview endpoint all go through Compute so the persisted result can never
// drift from what was shown.
package split

// RoundingUnit is the currency step per-person charges are rounded up to.
const RoundingUnit = 100

// Split is the result of dividing a meal total among participants.
type Split struct {
	// PerPerson is the charge applied to each participant, always a
	// multiple of RoundingUnit.
	PerPerson int64
	// Overhead is the rounding remainder, PerPerson*count - total.
	// Always >= 0 and < RoundingUnit*count.
	Overhead int64
}

// Compute divides totalAmount among participantCount people, rounding each
// share up to the nearest RoundingUnit. Degenerate input (non-positive total
// or count) yields a zero Split; callers must reject recording a meal in
// that state.
func Compute(totalAmount, participantCount int64) Split {
	if totalAmount <= 0 || participantCount <= 0 {
		return Split{}
	}

	raw := totalAmount / participantCount
	if totalAmount%participantCount != 0 {
		raw++
	}
	perPerson := raw
	if rem := perPerson % RoundingUnit; rem != 0 {
		perPerson += RoundingUnit - rem
	}

	return Split{
		PerPerson: perPerson,
		Overhead:  perPerson*participantCount - totalAmount,
	}
}
