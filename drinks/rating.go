package drinks

import "errors"

// ErrInvalidScore is returned when a score is outside 1..5. The drink is
// left untouched.
var ErrInvalidScore = errors.New("score must be between 1 and 5")

// ApplyRating records a single score on the drink's distribution. The
// matching bucket and the total are incremented once each, and the weighted
// mean is re-derived from the five counters. The update is incremental;
// nothing is ever recomputed from a rating log.
func ApplyRating(d *Drink, score int) error {
	switch score {
	case 1:
		d.Rate.Ratings.One++
	case 2:
		d.Rate.Ratings.Two++
	case 3:
		d.Rate.Ratings.Three++
	case 4:
		d.Rate.Ratings.Four++
	case 5:
		d.Rate.Ratings.Five++
	default:
		return ErrInvalidScore
	}
	d.Rate.Based++
	d.Rate.Rate = WeightedMean(d.Rate.Ratings, d.Rate.Based)
	return nil
}

// WeightedMean returns the mean of the bucket counters weighted by score
// over based ratings, or 0 when based is zero.
func WeightedMean(b Buckets, based int) float64 {
	if based == 0 {
		return 0
	}
	sum := b.One + 2*b.Two + 3*b.Three + 4*b.Four + 5*b.Five
	return float64(sum) / float64(based)
}
