package features

import "math"

// LogReturns computes percentage log returns r_t = 100 * ln(P_t / P_{t-1}).
// It returns a slice of length len(prices)-1, or nil if insufficient data.
// Non-positive prices yield a zero return for that step rather than NaN.
func LogReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		prev := prices[i-1]
		cur := prices[i]
		if prev <= 0 || cur <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, 100*math.Log(cur/prev))
	}
	return out
}
