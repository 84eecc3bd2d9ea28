// Package confidence classifies transcript segments by their average
// log-probability.
package confidence

import (
	"fmt"
	"strings"

	"github.com/jwulff/transcript-review/internal/transcript"
)

// Tier is a confidence bucket. Higher tiers compare greater.
type Tier int

const (
	Poor Tier = iota
	Fair
	Good
	Excellent
)

// Thresholds on the raw log-probability; a score above a threshold belongs to
// the tier above it.
const (
	ExcellentAbove = -0.2
	GoodAbove      = -0.5
	FairAbove      = -1.0
)

// Tiers lists every tier in display order.
var Tiers = []Tier{Excellent, Good, Fair, Poor}

func (t Tier) String() string {
	switch t {
	case Excellent:
		return "Excellent"
	case Good:
		return "Good"
	case Fair:
		return "Fair"
	case Poor:
		return "Poor"
	}
	return fmt.Sprintf("Tier(%d)", int(t))
}

// ParseTier accepts a tier name in any case.
func ParseTier(s string) (Tier, error) {
	for _, t := range Tiers {
		if strings.EqualFold(s, t.String()) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown confidence tier %q", s)
}

// Classify maps an average log-probability to a tier. A missing score counts
// as 0.
func Classify(avgLogprob *float64) Tier {
	score := 0.0
	if avgLogprob != nil {
		score = *avgLogprob
	}
	return ClassifyScore(score)
}

// ClassifyScore maps a raw log-probability to a tier. NaN lands in Poor.
func ClassifyScore(score float64) Tier {
	switch {
	case score > ExcellentAbove:
		return Excellent
	case score > GoodAbove:
		return Good
	case score > FairAbove:
		return Fair
	}
	return Poor
}

// LowConfidence reports whether a segment should be flagged as possibly
// inaccurate. Missing scores are never flagged.
func LowConfidence(avgLogprob *float64) bool {
	return avgLogprob != nil && *avgLogprob < FairAbove
}

// BucketCounts counts segments per tier. Every tier has an entry.
func BucketCounts(segments []transcript.Segment) map[Tier]int {
	counts := make(map[Tier]int, len(Tiers))
	for _, t := range Tiers {
		counts[t] = 0
	}
	for _, s := range segments {
		counts[Classify(s.AvgLogprob)]++
	}
	return counts
}

// IndicesForTier returns the positions of segments in tier, in transcript order.
func IndicesForTier(segments []transcript.Segment, tier Tier) []int {
	var out []int
	for i, s := range segments {
		if Classify(s.AvgLogprob) == tier {
			out = append(out, i)
		}
	}
	return out
}
