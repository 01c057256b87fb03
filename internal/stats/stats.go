// Package stats holds the closed-form numerical helpers shared by the trend,
// prediction and distribution components. Everything here is a pure function
// over a time-ordered []float64.
package stats

import (
	"math"
	"sort"
)

// Mean returns the arithmetic mean, 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Variance returns the population variance, 0 for fewer than 2 values.
func Variance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := Mean(values)
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return sum / float64(len(values))
}

// StdDev returns the population standard deviation.
func StdDev(values []float64) float64 {
	return math.Sqrt(Variance(values))
}

// Median returns the middle value, 0 for an empty slice.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	s := sortedCopy(values)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

// Mode returns the most frequent value; ties break toward the smaller value.
// Values are bucketed to 3 decimal places so near-equal floats group.
func Mode(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	counts := make(map[float64]int, len(values))
	for _, v := range values {
		counts[math.Round(v*1000)/1000]++
	}
	best, bestCount := 0.0, 0
	for v, c := range counts {
		if c > bestCount || (c == bestCount && v < best) {
			best, bestCount = v, c
		}
	}
	return best
}

// Percentile returns the p-th percentile (0..100) by linear interpolation.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	s := sortedCopy(values)
	if p <= 0 {
		return s[0]
	}
	if p >= 100 {
		return s[len(s)-1]
	}
	rank := p / 100 * float64(len(s)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return s[lo]
	}
	frac := rank - float64(lo)
	return s[lo] + (s[hi]-s[lo])*frac
}

// Regression is an ordinary-least-squares fit of value against index.
type Regression struct {
	Slope     float64
	Intercept float64
	RSquared  float64
}

// FitRegression fits value = slope*index + intercept. Needs >= 2 points;
// with fewer it returns a flat line through the data with RSquared 0.
func FitRegression(values []float64) Regression {
	n := float64(len(values))
	if len(values) < 2 {
		var last float64
		if len(values) == 1 {
			last = values[0]
		}
		return Regression{Intercept: last}
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, v := range values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return Regression{Intercept: Mean(values)}
	}
	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n

	// R^2 = 1 - SSres/SStot; a constant series fits itself perfectly.
	meanY := sumY / n
	var ssRes, ssTot float64
	for i, v := range values {
		pred := slope*float64(i) + intercept
		ssRes += (v - pred) * (v - pred)
		ssTot += (v - meanY) * (v - meanY)
	}
	r2 := 1.0
	if ssTot > 0 {
		r2 = 1 - ssRes/ssTot
	}
	if r2 < 0 {
		r2 = 0
	}
	if r2 > 1 {
		r2 = 1
	}
	return Regression{Slope: slope, Intercept: intercept, RSquared: r2}
}

// ExponentialSmooth walks single-parameter exponential smoothing across the
// series and returns the final smoothed level. Returns 0 for an empty series.
func ExponentialSmooth(values []float64, alpha float64) float64 {
	if len(values) == 0 {
		return 0
	}
	level := values[0]
	for _, v := range values[1:] {
		level = alpha*v + (1-alpha)*level
	}
	return level
}

// Outliers returns the values outside 1.5*IQR of the quartiles.
func Outliers(values []float64) []float64 {
	if len(values) < 4 {
		return nil
	}
	q1 := Percentile(values, 25)
	q3 := Percentile(values, 75)
	iqr := q3 - q1
	lo := q1 - 1.5*iqr
	hi := q3 + 1.5*iqr
	var out []float64
	for _, v := range values {
		if v < lo || v > hi {
			out = append(out, v)
		}
	}
	return out
}

// JarqueBera runs the Jarque-Bera normality test. It returns the test
// statistic, an approximate p-value, and whether normality is plausible at
// the 5% level. Fewer than 8 points is treated as trivially normal.
func JarqueBera(values []float64) (statistic, pValue float64, isNormal bool) {
	n := float64(len(values))
	if len(values) < 8 {
		return 0, 1, true
	}
	m := Mean(values)
	var m2, m3, m4 float64
	for _, v := range values {
		d := v - m
		m2 += d * d
		m3 += d * d * d
		m4 += d * d * d * d
	}
	m2 /= n
	m3 /= n
	m4 /= n
	if m2 == 0 {
		return 0, 1, true
	}
	skew := m3 / math.Pow(m2, 1.5)
	kurt := m4/(m2*m2) - 3
	statistic = n / 6 * (skew*skew + kurt*kurt/4)
	// JB is asymptotically chi-squared with 2 degrees of freedom, whose
	// survival function is exp(-x/2).
	pValue = math.Exp(-statistic / 2)
	return statistic, pValue, pValue > 0.05
}

func sortedCopy(values []float64) []float64 {
	s := make([]float64, len(values))
	copy(s, values)
	sort.Float64s(s)
	return s
}
