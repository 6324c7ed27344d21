package bracket

import (
	"fmt"

	"github.com/Tencide/matsim/internal/domain/model"
)

// Validation is the non-throwing verdict of a structural check. Invalid
// sequences are reported as data so test and replay harnesses can assert
// on them without altering control flow.
type Validation struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

func valid() Validation {
	return Validation{Valid: true}
}

func invalid(format string, args ...any) Validation {
	return Validation{Valid: false, Message: fmt.Sprintf(format, args...)}
}

// ValidateMatchSequence checks the chronological contract of a match
// log: the 3rd/4th match, when present, must be the final entry.
func ValidateMatchSequence(matches []model.BracketMatchEntry) Validation {
	for i, m := range matches {
		if Round(m.Round) == RoundThirdFourth && i != len(matches)-1 {
			return invalid("match %q at index %d is followed by further matches", m.Round, i)
		}
	}
	return valid()
}

// ValidateResult checks that a placement and its match log are jointly
// possible under double-elimination rules: a second loss ends the run,
// placement 1 cannot carry two losses, and placement 2 cannot carry
// more than two.
func ValidateResult(placement int, matches []model.BracketMatchEntry) Validation {
	losses := 0
	for i, m := range matches {
		if m.Won {
			continue
		}
		losses++
		if losses == 2 && i != len(matches)-1 {
			return invalid("second loss in round %q is followed by further matches", m.Round)
		}
	}

	if placement == 1 && losses >= 2 {
		return invalid("placement 1 is impossible with %d losses", losses)
	}
	if placement == 2 && losses > 2 {
		return invalid("placement 2 is impossible with %d losses", losses)
	}
	return valid()
}
