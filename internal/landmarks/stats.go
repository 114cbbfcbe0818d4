package landmarks

import (
	"fmt"
	"math"
	"sort"
)

// Coefficients are the normalized head proportions derived from a batch of
// ground-truth annotations. Both ratios are normalized by the reference
// distance: inter-pupil distance plus the distance from the eye midpoint to
// the mouth midpoint.
type Coefficients struct {
	// ChinCrown is median(crown-to-chin distance / reference distance).
	ChinCrown float64
	// ChinFrown is median(eye-midpoint-to-chin distance / reference distance).
	ChinFrown float64
}

// CrownChinCoefficients computes the calibration coefficients over a batch of
// ground-truth records. The median is used rather than the mean so that a few
// mis-annotated samples do not skew the result.
func CrownChinCoefficients(batch []*Record) (Coefficients, error) {
	if len(batch) == 0 {
		return Coefficients{}, fmt.Errorf("empty annotation batch")
	}

	c1 := make([]float64, 0, len(batch))
	c2 := make([]float64, 0, len(batch))
	for _, lm := range batch {
		frownX, frownY := Midpoint(lm.EyeLeftPupil, lm.EyeRightPupil)
		mouthX, mouthY := Midpoint(lm.LipLeftCorner, lm.LipRightCorner)

		refDist := Distance(lm.EyeLeftPupil, lm.EyeRightPupil) +
			math.Hypot(frownX-mouthX, frownY-mouthY)

		chinCrown := Distance(lm.CrownPoint, lm.ChinPoint)
		chinFrown := math.Hypot(frownX-float64(lm.ChinPoint.X), frownY-float64(lm.ChinPoint.Y))

		c1 = append(c1, chinCrown/refDist)
		c2 = append(c2, chinFrown/refDist)
	}

	return Coefficients{
		ChinCrown: median(c1),
		ChinFrown: median(c2),
	}, nil
}

// median returns the middle value of the samples, or the average of the two
// middle values for even-sized input.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
