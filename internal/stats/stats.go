package stats

import (
	"math"
	"sort"
)

// madConsistency makes MAD a consistent estimator of the standard deviation
// under normality.
const madConsistency = 1.4826

// minHistory is the smallest sample the MAD and IQR tests accept; below it
// they report no signal instead of guessing.
const minHistory = 10

// Median returns the sample median, 0 for an empty sample.
func Median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	s := sortedCopy(xs)
	return medianSorted(s)
}

func medianSorted(s []float64) float64 {
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

// Quantile computes the q-th quantile with linear interpolation between
// order statistics (the R type-7 convention). Returns 0 for an empty sample.
func Quantile(xs []float64, q float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	s := sortedCopy(xs)
	idx := float64(len(s)-1) * q
	lo := int(math.Floor(idx))
	hi := int(math.Ceil(idx))
	if lo == hi {
		return s[lo]
	}
	return s[lo] + (idx-float64(lo))*(s[hi]-s[lo])
}

// Medcouple is a robust skewness estimator in [-1, 1]; positive means
// right-skewed, which is typical of retail price histories with a long tail
// of rare high prices. Samples shorter than 4 report 0 (no skew signal).
func Medcouple(xs []float64) float64 {
	if len(xs) < 4 {
		return 0
	}
	s := sortedCopy(xs)
	med := medianSorted(s)

	var left, right []float64
	for _, v := range s {
		if v <= med {
			left = append(left, v)
		}
		if v >= med {
			right = append(right, v)
		}
	}

	kernels := make([]float64, 0, len(left)*len(right))
	for _, xi := range left {
		for _, xj := range right {
			if xj == xi {
				// Both values sit on the median; the kernel degenerates to
				// the sign of the numerator.
				kernels = append(kernels, sign((xj-med)-(med-xi)))
				continue
			}
			kernels = append(kernels, ((xj-med)-(med-xi))/(xj-xi))
		}
	}
	return Median(kernels)
}

// DoubleMAD returns a modified z-score for current against history, using a
// MAD computed separately on each side of the median so that asymmetric
// price distributions do not mask drops. Positive means current sits below
// the historical median. Histories shorter than 10 report 0.
func DoubleMAD(current float64, history []float64) float64 {
	if len(history) < minHistory {
		return 0
	}
	med := Median(history)

	var lowerDev, upperDev, allDev []float64
	for _, v := range history {
		d := math.Abs(v - med)
		allDev = append(allDev, d)
		if v <= med {
			lowerDev = append(lowerDev, d)
		} else {
			upperDev = append(upperDev, d)
		}
	}

	sideMAD := madConsistency * Median(lowerDev)
	otherMAD := madConsistency * Median(upperDev)
	if current > med {
		sideMAD, otherMAD = otherMAD, sideMAD
	}

	// Degenerate-variance cascade: side MAD, then the other side, then the
	// overall MAD, then no signal at all.
	mad := sideMAD
	if mad == 0 {
		mad = otherMAD
	}
	if mad == 0 {
		mad = madConsistency * Median(allDev)
	}
	if mad == 0 {
		return 0
	}
	return (med - current) / mad
}

// AdjustedIQROutlier reports whether current falls outside skew-corrected
// IQR fences over history. The medcouple correction widens the fence on the
// short side of the distribution so a few high historical prices cannot make
// a genuine low-price drop look normal. Histories shorter than 10, or with
// zero spread, report false.
func AdjustedIQROutlier(current float64, history []float64, multiplier float64) bool {
	if len(history) < minHistory {
		return false
	}
	q1 := Quantile(history, 0.25)
	q3 := Quantile(history, 0.75)
	iqr := q3 - q1
	if iqr == 0 {
		return false
	}
	mc := Medcouple(history)
	lowerFence := q1 - multiplier*math.Exp(-4*mc)*iqr
	upperFence := q3 + multiplier*math.Exp(3*mc)*iqr
	return current < lowerFence || current > upperFence
}

// ZScore returns the classical standardized deviation of current from the
// history mean, using the population standard deviation. Positive means
// current sits below the mean. Histories shorter than 2, or with zero
// variance, report 0.
func ZScore(current float64, history []float64) float64 {
	if len(history) < 2 {
		return 0
	}
	var sum float64
	for _, v := range history {
		sum += v
	}
	mean := sum / float64(len(history))

	var variance float64
	for _, v := range history {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(history))

	stdDev := math.Sqrt(variance)
	if stdDev == 0 {
		return 0
	}
	return (mean - current) / stdDev
}

func sortedCopy(xs []float64) []float64 {
	s := make([]float64, len(xs))
	copy(s, xs)
	sort.Float64s(s)
	return s
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
