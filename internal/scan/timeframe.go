package scan

import "ff-scanner/internal/models"

// Timeframe is one of the fixed target expiration pairings. Buffers widen
// the windows so real listed expirations can match the round targets.
type Timeframe struct {
	Name       string
	NearTarget int
	NearBuffer int
	NextTarget int
	NextBuffer int
}

// Timeframes returns the standard pairings: 30/60, 30/90 and 60/90 DTE.
func Timeframes() []Timeframe {
	return []Timeframe{
		{Name: "30/60", NearTarget: 30, NearBuffer: 15, NextTarget: 60, NextBuffer: 20},
		{Name: "30/90", NearTarget: 30, NearBuffer: 15, NextTarget: 90, NextBuffer: 25},
		{Name: "60/90", NearTarget: 60, NearBuffer: 20, NextTarget: 90, NextBuffer: 25},
	}
}

func (tf Timeframe) nearMatches(dte int) bool {
	return dte >= tf.NearTarget-tf.NearBuffer && dte <= tf.NearTarget+tf.NearBuffer
}

func (tf Timeframe) nextMatches(dte int) bool {
	return dte >= tf.NextTarget-tf.NextBuffer && dte <= tf.NextTarget+tf.NextBuffer
}

// deviation scores how far a candidate pair sits from the ideal targets.
// Lower is better.
func (tf Timeframe) deviation(nearDTE, nextDTE int) int {
	return abs(nearDTE-tf.NearTarget) + abs(nextDTE-tf.NextTarget)
}

// SelectPair picks the chain pair best matching the timeframe's targets.
// chains must be sorted ascending by DTE; the next-term chain is always
// strictly later in that ordering than the near-term one. On equal deviation
// the first pair encountered wins. ok is false when no pair fits the
// windows, which is a valid outcome rather than an error.
func SelectPair(chains []*models.Chain, tf Timeframe) (near, next *models.Chain, ok bool) {
	bestScore := -1

	for i, chain1 := range chains {
		if !tf.nearMatches(chain1.DTE) {
			continue
		}
		for _, chain2 := range chains[i+1:] {
			if !tf.nextMatches(chain2.DTE) {
				continue
			}
			score := tf.deviation(chain1.DTE, chain2.DTE)
			if bestScore < 0 || score < bestScore {
				bestScore = score
				near, next = chain1, chain2
				ok = true
			}
		}
	}
	return near, next, ok
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
