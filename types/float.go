package types

import "math"

// Default tolerance for float comparisons.
const FloatCmpEpsilon float32 = 1e-6

// Check whether two floats are equal within epsilon.
func ApproxEqual(a, b, epsilon float32) bool {
	return float32(math.Abs(float64(a-b))) <= epsilon
}
