package profiler

import (
	"math"
	"sort"
)

// present returns the non-NaN values
func present(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) {
			out = append(out, x)
		}
	}
	return out
}

// Mean ignores NaN; it is NaN when no value is present
func Mean(xs []float64) float64 {
	vals := present(xs)
	if len(vals) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, x := range vals {
		sum += x
	}
	return sum / float64(len(vals))
}

// StdDev ignores NaN. ddof 1 gives the sample deviation, 0 the population one.
func StdDev(xs []float64, ddof int) float64 {
	vals := present(xs)
	if len(vals)-ddof <= 0 {
		return math.NaN()
	}
	m := Mean(vals)
	ss := 0.0
	for _, x := range vals {
		ss += (x - m) * (x - m)
	}
	return math.Sqrt(ss / float64(len(vals)-ddof))
}

// centralMoment is the biased k-th moment about the mean; NaN propagates
func centralMoment(xs []float64, k float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	m := 0.0
	for _, x := range xs {
		m += x
	}
	m /= float64(len(xs))
	sum := 0.0
	for _, x := range xs {
		sum += math.Pow(x-m, k)
	}
	return sum / float64(len(xs))
}

// Skewness is the biased sample skewness m3/m2^1.5. Any NaN or a constant
// column gives NaN.
func Skewness(xs []float64) float64 {
	m2 := centralMoment(xs, 2)
	if m2 == 0 || math.IsNaN(m2) {
		return math.NaN()
	}
	return centralMoment(xs, 3) / math.Pow(m2, 1.5)
}

// Kurtosis is the biased Fisher (excess) kurtosis m4/m2^2 - 3
func Kurtosis(xs []float64) float64 {
	m2 := centralMoment(xs, 2)
	if m2 == 0 || math.IsNaN(m2) {
		return math.NaN()
	}
	return centralMoment(xs, 4)/(m2*m2) - 3
}

// Quantile uses linear interpolation between closest ranks, ignoring NaN
func Quantile(xs []float64, q float64) float64 {
	vals := present(xs)
	if len(vals) == 0 {
		return math.NaN()
	}
	sort.Float64s(vals)
	pos := q * float64(len(vals)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	return vals[lo] + (vals[hi]-vals[lo])*(pos-float64(lo))
}

// ZScoreOutliers counts values more than three population deviations from
// the mean
func ZScoreOutliers(xs []float64) int {
	m := Mean(xs)
	sd := StdDev(xs, 0)
	if math.IsNaN(sd) || sd == 0 {
		return 0
	}
	n := 0
	for _, x := range xs {
		if !math.IsNaN(x) && math.Abs((x-m)/sd) > 3 {
			n++
		}
	}
	return n
}

// IQROutliers counts values outside [Q1 - 1.5 IQR, Q3 + 1.5 IQR]
func IQROutliers(xs []float64) int {
	q1, q3 := Quantile(xs, 0.25), Quantile(xs, 0.75)
	iqr := q3 - q1
	lower, upper := q1-1.5*iqr, q3+1.5*iqr
	n := 0
	for _, x := range xs {
		if x < lower || x > upper {
			n++
		}
	}
	return n
}
