// Package matching scores how likely a found item is the one a lost report
// describes.
package matching

import (
	"math"
	"strings"
	"time"

	"github.com/erazemk/traceback/internal/model"
)

// Score weights. They sum to 100.
const (
	CategoryWeight = 30
	OverlapWeight  = 40
	LocationWeight = 20
	RecencyWeight  = 10
)

// RecencyWindow is the largest event date distance that still earns RecencyWeight.
const RecencyWindow = 7 * 24 * time.Hour

// Breakdown holds the unrounded contribution of each scoring term.
type Breakdown struct {
	Category float64 `json:"category"`
	Overlap  float64 `json:"overlap"`
	Location float64 `json:"location"`
	Recency  float64 `json:"recency"`
}

// Total returns the rounded score.
func (b Breakdown) Total() int {
	return int(math.Round(b.Category + b.Overlap + b.Location + b.Recency))
}

// Explain computes the per-term contributions for a lost/found pair.
//
// The overlap term is normalised by the lost description's token count, so
// Explain(a, b) and Explain(b, a) generally differ.
func Explain(lost, found *model.Item) Breakdown {
	var b Breakdown

	if lost.Category == found.Category {
		b.Category = CategoryWeight
	}

	lostTokens := tokenize(lost.Description)
	if len(lostTokens) > 0 {
		foundSet := make(map[string]struct{})
		for _, tok := range tokenize(found.Description) {
			foundSet[tok] = struct{}{}
		}
		common := 0
		for _, tok := range lostTokens {
			if _, ok := foundSet[tok]; ok {
				common++
			}
		}
		b.Overlap = float64(common) / float64(len(lostTokens)) * OverlapWeight
	}

	if lost.Location == found.Location {
		b.Location = LocationWeight
	}

	gap := lost.EventDate.Sub(found.EventDate)
	if gap < 0 {
		gap = -gap
	}
	if gap <= RecencyWindow {
		b.Recency = RecencyWeight
	}

	return b
}

// Score returns the 0-100 similarity between a lost and a found report.
func Score(lost, found *model.Item) int {
	return Explain(lost, found).Total()
}

// tokenize lower-cases s and splits it on whitespace. Punctuation stays
// attached to its word.
func tokenize(s string) []string {
	return strings.Fields(strings.ToLower(s))
}
