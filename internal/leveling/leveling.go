// Package leveling implements the loyalty experience accumulation rule.
package leveling

// ExpThreshold is the experience required for one level-up. The
// threshold is flat: it does not grow with the member's level.
const ExpThreshold = 10

// Progress is a normalized (level, exp) pair: Exp < ExpThreshold.
type Progress struct {
	Level int
	Exp   int
}

// ApplyAward adds amount to the current progress and rolls surplus
// experience into level-ups. A single large award can cross several
// levels. amount must already be validated as positive by the caller;
// the computation itself cannot fail.
func ApplyAward(level, exp, amount int) Progress {
	if level < 1 {
		level = 1
	}
	if exp < 0 {
		exp = 0
	}

	total := exp + amount
	for total >= ExpThreshold {
		total -= ExpThreshold
		level++
	}

	return Progress{Level: level, Exp: total}
}
