package bracket

// Round labels a bracket stage. The labels are the wire strings logged
// in match entries, so they are stable identifiers, not display text.
type Round string

// Bracket round labels.
const (
	RoundR16          Round = "R16"
	RoundQuarterfinal Round = "Quarterfinal"
	RoundSemifinal    Round = "Semifinal"
	RoundWinnersFinal Round = "Winner's Final"
	RoundFinal        Round = "Final"
	RoundBracketReset Round = "Bracket Reset"
	RoundLBFinal      Round = "LB Final"
	RoundConsR1       Round = "Cons R1"
	RoundConsR2       Round = "Cons R2"
	RoundConsR3       Round = "Cons R3"
	RoundConsR4       Round = "Cons R4"
	RoundThirdFourth  Round = "3rd/4th"
)

// Supported bracket sizes.
const (
	Size8  = 8
	Size16 = 16
)

// winnersRounds is the winners-bracket sequence up to the Winner's
// Final, per size.
func winnersRounds(size int) []Round {
	if size == Size16 {
		return []Round{RoundR16, RoundQuarterfinal, RoundSemifinal, RoundWinnersFinal}
	}
	return []Round{RoundQuarterfinal, RoundSemifinal, RoundWinnersFinal}
}

// consolationEntry maps the winners-bracket round a wrestler lost to the
// consolation round where they re-enter. A Winner's Final loss is not
// listed; that path goes through the LB Final instead.
func consolationEntry(size int, lost Round) (Round, bool) {
	if size == Size16 {
		switch lost {
		case RoundR16:
			return RoundConsR1, true
		case RoundQuarterfinal:
			return RoundConsR3, true
		case RoundSemifinal:
			return RoundConsR4, true
		}
		return "", false
	}
	switch lost {
	case RoundQuarterfinal:
		return RoundConsR1, true
	case RoundSemifinal:
		return RoundConsR2, true
	}
	return "", false
}

// consolationLadder is the ordered consolation sequence for a size,
// ending just before the 3rd/4th match.
func consolationLadder(size int) []Round {
	if size == Size16 {
		return []Round{RoundConsR1, RoundConsR2, RoundConsR3, RoundConsR4}
	}
	return []Round{RoundConsR1, RoundConsR2}
}

// eliminationSlots returns the adjacent placement pair for a wrestler
// eliminated by losing the given consolation round. The engine does not
// model consolation sub-bracket depth beyond round count, so the final
// slot between the pair is settled by resolveEarlyExitPlacement.
func eliminationSlots(size int, lost Round) (int, int) {
	if size == Size16 {
		switch lost {
		case RoundConsR4:
			return 5, 6
		case RoundConsR3:
			return 7, 8
		case RoundConsR2:
			return 9, 10
		default:
			return 13, 14
		}
	}
	switch lost {
	case RoundConsR2:
		return 5, 6
	default:
		return 7, 8
	}
}
